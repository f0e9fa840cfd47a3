package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentradar/models"
)

// PostgresStore mirrors run records to a shared Postgres instance so
// several deployments can be watched from one place. It is optional:
// when DATABASE_URL is unset the process runs on SQLite alone.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 5
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_runs (
		id BIGSERIAL PRIMARY KEY,
		search_id TEXT NOT NULL,
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		status TEXT,
		records_scraped INT DEFAULT 0,
		duplicates_dropped INT DEFAULT 0,
		invalid_dropped INT DEFAULT 0,
		results INT DEFAULT 0,
		errors_count INT DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS source_runs (
		id BIGSERIAL PRIMARY KEY,
		search_id TEXT NOT NULL,
		source_id TEXT NOT NULL,
		records INT DEFAULT 0,
		pages INT DEFAULT 0,
		duration_ms BIGINT DEFAULT 0,
		timed_out BOOLEAN DEFAULT FALSE,
		escalated BOOLEAN DEFAULT FALSE,
		error TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_pg_source_runs_search ON source_runs(search_id);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// MirrorSearchRun inserts one finished run. The SQLite row id is not
// carried over; search_id ties the two stores together.
func (s *PostgresStore) MirrorSearchRun(ctx context.Context, run *models.SearchRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_runs (search_id, started_at, finished_at, status,
			records_scraped, duplicates_dropped, invalid_dropped, results, errors_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.SearchID, run.StartedAt, run.FinishedAt, run.Status,
		run.RecordsScraped, run.DuplicatesDropped, run.InvalidDropped,
		run.Results, run.ErrorsCount)
	return err
}

func (s *PostgresStore) MirrorSourceRun(ctx context.Context, searchID string, sr *models.SourceRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO source_runs (search_id, source_id, records, pages, duration_ms, timed_out, escalated, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		searchID, sr.SourceID, sr.Records, sr.Pages, sr.DurationMS, sr.TimedOut, sr.Escalated, sr.Error)
	return err
}
