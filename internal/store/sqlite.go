package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// SQLiteStore is the SQLite-backed local content store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Projects returns projects ordered by ascending order (unordered last) then
// descending year.
func (s *SQLiteStore) Projects(ctx context.Context, featuredOnly bool) ([]types.CMSProject, error) {
	q := `SELECT body FROM documents WHERE doc_type = ?`
	if featuredOnly {
		q += ` AND featured = 1`
	}
	q += ` ORDER BY sort_order IS NULL, sort_order ASC, year DESC, rowid ASC`

	return queryBodies[types.CMSProject](ctx, s.db, q, TypeProject)
}

// ProjectBySlug returns the project with slug, or nil when there is none.
func (s *SQLiteStore) ProjectBySlug(ctx context.Context, slug string) (*types.CMSProject, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE doc_type = ? AND slug = ?`,
		TypeProject, slug,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query project %q: %w", slug, err)
	}

	var p types.CMSProject
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("decode project %q: %w", slug, err)
	}
	return &p, nil
}

// SiteSettings returns the most recently imported settings document, or nil.
func (s *SQLiteStore) SiteSettings(ctx context.Context) (*types.CMSSiteSettings, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE doc_type = ? ORDER BY imported_at DESC, rowid DESC LIMIT 1`,
		TypeSiteSettings,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query site settings: %w", err)
	}

	var settings types.CMSSiteSettings
	if err := json.Unmarshal([]byte(body), &settings); err != nil {
		return nil, fmt.Errorf("decode site settings: %w", err)
	}
	return &settings, nil
}

// Testimonials returns testimonials, ordered ones first.
func (s *SQLiteStore) Testimonials(ctx context.Context) ([]types.CMSTestimonial, error) {
	return queryBodies[types.CMSTestimonial](ctx, s.db,
		`SELECT body FROM documents WHERE doc_type = ? ORDER BY sort_order IS NULL, sort_order ASC, rowid ASC`,
		TypeTestimonial,
	)
}

// PricingTiers returns pricing tiers by ascending order.
func (s *SQLiteStore) PricingTiers(ctx context.Context) ([]types.PricingTier, error) {
	return queryBodies[types.PricingTier](ctx, s.db,
		`SELECT body FROM documents WHERE doc_type = ? ORDER BY sort_order ASC, rowid ASC`,
		TypePricingTier,
	)
}

// Counts returns the number of stored documents by type.
func (s *SQLiteStore) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_type, COUNT(*) FROM documents GROUP BY doc_type`)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			docType string
			n       int
		)
		if err := rows.Scan(&docType, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[docType] = n
	}
	return counts, rows.Err()
}

// LastImport returns the most recent import run, or nil when nothing has
// been imported.
func (s *SQLiteStore) LastImport(ctx context.Context) (*ImportInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM store_metadata WHERE key IN (?, ?, ?)`,
		metaLastImportID, metaLastImportAt, metaLastImportDocuments,
	)
	if err != nil {
		return nil, fmt.Errorf("read import metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan import metadata: %w", err)
		}
		meta[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read import metadata: %w", err)
	}

	id := meta[metaLastImportID]
	if id == "" {
		return nil, nil
	}
	info := &ImportInfo{ID: id}
	if info.At, err = time.Parse(time.RFC3339Nano, meta[metaLastImportAt]); err != nil {
		return nil, fmt.Errorf("parse last import time: %w", err)
	}
	if info.Documents, err = strconv.Atoi(meta[metaLastImportDocuments]); err != nil {
		return nil, fmt.Errorf("parse last import size: %w", err)
	}
	return info, nil
}

func queryBodies[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var v T
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
