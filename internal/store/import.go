package store

import (
	"bufio"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"
)

// maxDocumentBytes bounds one NDJSON line. Project bodies with long
// structured content can be large.
const maxDocumentBytes = 4 << 20

var importable = map[string]bool{
	TypeProject:      true,
	TypeTestimonial:  true,
	TypeSiteSettings: true,
	TypePricingTier:  true,
}

// ImportDocuments reads a CMS NDJSON export and upserts every document of a
// known type in a single transaction. Drafts and other types are skipped.
// Documents without an _id get an id derived from their content, so
// importing the same export twice leaves the store unchanged. A document
// replaces any stored document of its type with the same slug. A malformed
// line aborts the whole import.
func (s *SQLiteStore) ImportDocuments(ctx context.Context, r io.Reader) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, doc_type, slug, featured, sort_order, year, body, imported_at, import_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_type = excluded.doc_type,
			slug = excluded.slug,
			featured = excluded.featured,
			sort_order = excluded.sort_order,
			year = excluded.year,
			body = excluded.body,
			imported_at = excluded.imported_at,
			import_id = excluded.import_id
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare import: %w", err)
	}
	defer upsert.Close()

	replaceSlug, err := tx.PrepareContext(ctx,
		`DELETE FROM documents WHERE doc_type = ? AND slug = ? AND id <> ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare import: %w", err)
	}
	defer replaceSlug.Close()

	replaceSingleton, err := tx.PrepareContext(ctx,
		`DELETE FROM documents WHERE doc_type = ? AND id <> ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare import: %w", err)
	}
	defer replaceSingleton.Close()

	at := time.Now().UTC()
	result := &ImportResult{
		ID:       ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		At:       at,
		Imported: make(map[string]int),
	}
	now := at.Format(time.RFC3339Nano)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxDocumentBytes)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if !gjson.Valid(raw) {
			return nil, fmt.Errorf("%w: line %d is not valid JSON", ErrInvalidDocument, line)
		}

		docType := gjson.Get(raw, "_type").String()
		id := gjson.Get(raw, "_id").String()
		if !importable[docType] || strings.HasPrefix(id, "drafts.") {
			result.Skipped++
			continue
		}

		doc, err := flatten(raw, docType, id)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		switch {
		case doc.slug.Valid:
			_, err = replaceSlug.ExecContext(ctx, docType, doc.slug.String, doc.id)
		case docType == TypeSiteSettings:
			_, err = replaceSingleton.ExecContext(ctx, docType, doc.id)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: replace %s %s: %w", line, docType, doc.id, err)
		}

		if _, err := upsert.ExecContext(ctx,
			doc.id, docType, doc.slug, doc.featured, doc.sortOrder, doc.year, doc.body, now, result.ID,
		); err != nil {
			return nil, fmt.Errorf("line %d: store %s %s: %w", line, docType, doc.id, err)
		}
		result.Imported[docType]++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	if err := recordImport(ctx, tx, result); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return result, nil
}

// recordImport stores the import run in store_metadata.
func recordImport(ctx context.Context, tx *sql.Tx, res *ImportResult) error {
	values := map[string]string{
		metaLastImportID:        res.ID,
		metaLastImportAt:        res.At.Format(time.RFC3339Nano),
		metaLastImportDocuments: strconv.Itoa(res.Total()),
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO store_metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("record import: %w", err)
		}
	}
	return nil
}

type document struct {
	id        string
	slug      sql.NullString
	featured  bool
	sortOrder sql.NullFloat64
	year      int64
	body      string
}

// flatten projects a raw export document into the shape the queries return:
// slug objects become strings and pricing tier ids are flattened the same way.
func flatten(raw, docType, id string) (*document, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	doc := &document{}

	switch docType {
	case TypeProject:
		slug := slugValue(gjson.Get(raw, "slug"))
		if slug == "" {
			return nil, fmt.Errorf("%w: project %s has no slug", ErrInvalidDocument, id)
		}
		fields["slug"] = slug
		doc.slug = sql.NullString{String: slug, Valid: true}
		doc.featured = gjson.Get(raw, "featured").Bool()
		doc.year = gjson.Get(raw, "year").Int()
	case TypePricingTier:
		tierID := slugValue(gjson.Get(raw, "id"))
		if tierID == "" {
			return nil, fmt.Errorf("%w: pricing tier %s has no id", ErrInvalidDocument, id)
		}
		fields["id"] = tierID
		doc.slug = sql.NullString{String: tierID, Valid: true}
	}

	if id == "" {
		id = derivedID(raw, docType, doc.slug.String)
		fields["_id"] = id
	}
	doc.id = id

	if o := gjson.Get(raw, "order"); o.Type == gjson.Number {
		doc.sortOrder = sql.NullFloat64{Float64: o.Float(), Valid: true}
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", id, err)
	}
	doc.body = string(body)
	return doc, nil
}

// derivedID names a document exported without an _id. Slugged documents are
// named by type and slug, settings by type alone, and anything else by a
// hash of its compacted JSON.
func derivedID(raw, docType, slug string) string {
	switch {
	case slug != "":
		return docType + "." + slug
	case docType == TypeSiteSettings:
		return docType
	default:
		sum := sha256.Sum256([]byte(gjson.Get(raw, "@ugly").Raw))
		return docType + "." + hex.EncodeToString(sum[:8])
	}
}

// slugValue reads a slug field stored either as {"current": "..."} or as a
// plain string.
func slugValue(v gjson.Result) string {
	if v.IsObject() {
		return v.Get("current").String()
	}
	if v.Type == gjson.String {
		return v.Str
	}
	return ""
}
