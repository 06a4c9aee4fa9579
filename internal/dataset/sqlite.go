package dataset

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// timeLayout is fixed-width so that created_at sorts as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens the database at path. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared between calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the tables if needed.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("initialize sqlite schema: %w", err)
	}
	return nil
}

// Save inserts records in one transaction, skipping known hashes.
func (s *SQLiteStore) Save(ctx context.Context, records []Record) (int, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO resolved_matches (id, hash, entry_key, text, observed, score, bindings, ambiguous, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		r = withDefaults(r)
		bindings, err := json.Marshal(r.Bindings)
		if err != nil {
			return 0, fmt.Errorf("encode bindings: %w", err)
		}
		res, err := stmt.ExecContext(ctx,
			r.ID, r.Hash, r.Key, r.Text, r.Observed, r.Score, string(bindings), r.Ambiguous,
			r.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return 0, fmt.Errorf("insert record %s: %w", r.Key, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	log.Info().Int("inserted", inserted).Int("records", len(records)).Str("path", s.path).Msg("Saved resolved matches")
	return inserted, nil
}

// All returns every record in insertion order.
func (s *SQLiteStore) All(ctx context.Context) ([]Record, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, entry_key, text, observed, score, bindings, ambiguous, created_at
		FROM resolved_matches
		ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			bindings  string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.Hash, &r.Key, &r.Text, &r.Observed, &r.Score, &bindings, &r.Ambiguous, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(bindings), &r.Bindings); err != nil {
			return nil, fmt.Errorf("decode bindings of %s: %w", r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// withDefaults fills the generated fields of a record.
func withDefaults(r Record) Record {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Bindings == nil {
		r.Bindings = map[string]string{}
	}
	return r
}
