// Package store is a local content store on SQLite. It holds documents
// imported from a CMS NDJSON export and answers the same queries as the
// remote CMS, so the site can run from a local copy of its content.
package store

import "time"

// Document types held by the store.
const (
	TypeProject      = "project"
	TypeTestimonial  = "testimonial"
	TypeSiteSettings = "siteSettings"
	TypePricingTier  = "pricingTier"
)

// store_metadata keys describing the most recent import.
const (
	metaLastImportID        = "last_import_id"
	metaLastImportAt        = "last_import_at"
	metaLastImportDocuments = "last_import_documents"
)

// ImportResult summarizes an NDJSON import.
type ImportResult struct {
	// ID identifies the import run. It is a ULID, so runs sort by time.
	ID string    `json:"id"`
	At time.Time `json:"at"`
	// Imported counts the documents written, by type.
	Imported map[string]int `json:"imported"`
	// Skipped counts documents of other types and drafts.
	Skipped int `json:"skipped"`
}

// Total returns the number of documents written.
func (r *ImportResult) Total() int {
	n := 0
	for _, c := range r.Imported {
		n += c
	}
	return n
}

// ImportInfo describes the most recent import run.
type ImportInfo struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Documents int       `json:"documents"`
}
