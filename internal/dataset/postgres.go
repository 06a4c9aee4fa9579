package dataset

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed schema_postgres.sql
var postgresSchema string

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool. Close closes the pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ConnectPostgres opens and pings a pool for url.
func ConnectPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return NewPostgresStore(pool), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("initialize postgres schema: %w", err)
	}
	return nil
}

// Save inserts records, deduplicating by hash.
func (s *PostgresStore) Save(ctx context.Context, records []Record) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, r := range records {
		r = withDefaults(r)
		tag, err := tx.Exec(ctx, `
			INSERT INTO resolved_matches (id, hash, entry_key, text, observed, score, bindings, ambiguous, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (hash) DO NOTHING`,
			r.ID, r.Hash, r.Key, r.Text, r.Observed, r.Score, r.Bindings, r.Ambiguous, r.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert record %s: %w", r.Key, err)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	log.Info().Int("inserted", inserted).Int("records", len(records)).Msg("Saved resolved matches")
	return inserted, nil
}

func (s *PostgresStore) All(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, hash, entry_key, text, observed, score, bindings, ambiguous, created_at
		FROM resolved_matches
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Hash, &r.Key, &r.Text, &r.Observed, &r.Score, &r.Bindings, &r.Ambiguous, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
