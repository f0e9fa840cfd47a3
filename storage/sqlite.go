package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rentradar/models"
)

// SQLiteStore is the operational store: search runs, per-source runs,
// logs and source health. Listing data itself is never persisted here;
// every search recomputes from the live sources.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_runs (
		id INTEGER PRIMARY KEY,
		search_id TEXT NOT NULL,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		records_scraped INTEGER DEFAULT 0,
		duplicates_dropped INTEGER DEFAULT 0,
		invalid_dropped INTEGER DEFAULT 0,
		results INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS source_runs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER NOT NULL,
		source_id TEXT NOT NULL,
		records INTEGER DEFAULT 0,
		pages INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		timed_out BOOLEAN DEFAULT FALSE,
		escalated BOOLEAN DEFAULT FALSE,
		error TEXT,
		FOREIGN KEY (run_id) REFERENCES search_runs(id)
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		source_id TEXT
	);

	CREATE TABLE IF NOT EXISTS source_stats (
		source_id TEXT PRIMARY KEY,
		last_run_at DATETIME,
		last_run_status TEXT,
		total_records INTEGER DEFAULT 0,
		success_rate REAL DEFAULT 0,
		available BOOLEAN DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_source_runs_run ON source_runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) StartSearchRun(ctx context.Context, run *models.SearchRun) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO search_runs (search_id, started_at, status)
		VALUES (?, ?, ?)`,
		run.SearchID, run.StartedAt, run.Status)
	if err != nil {
		return err
	}
	run.ID, err = result.LastInsertId()
	return err
}

func (s *SQLiteStore) FinishSearchRun(ctx context.Context, run *models.SearchRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE search_runs
		SET finished_at = ?, status = ?, records_scraped = ?,
		    duplicates_dropped = ?, invalid_dropped = ?, results = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.RecordsScraped,
		run.DuplicatesDropped, run.InvalidDropped, run.Results, run.ErrorsCount,
		run.ID)
	return err
}

func (s *SQLiteStore) RecordSourceRun(ctx context.Context, sr *models.SourceRun) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO source_runs (run_id, source_id, records, pages, duration_ms, timed_out, escalated, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sr.RunID, sr.SourceID, sr.Records, sr.Pages, sr.DurationMS, sr.TimedOut, sr.Escalated, sr.Error)
	if err != nil {
		return err
	}
	sr.ID, err = result.LastInsertId()
	if err != nil {
		return err
	}
	return s.refreshSourceStats(ctx, sr.SourceID)
}

func (s *SQLiteStore) Log(ctx context.Context, runID *int64, level models.LogLevel, message, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_logs (run_id, timestamp, level, message, source_id)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, sourceID)
	return err
}

func (s *SQLiteStore) UpsertSourceStats(ctx context.Context, stats *models.SourceStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_stats (source_id, last_run_at, last_run_status, available)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			last_run_status = excluded.last_run_status,
			available = excluded.available`,
		stats.SourceID, stats.LastRunAt, stats.LastRunStatus, stats.Available)
	return err
}

// refreshSourceStats recomputes the rolling aggregate for a source
// from its recorded runs.
func (s *SQLiteStore) refreshSourceStats(ctx context.Context, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_stats (source_id, last_run_at, last_run_status, total_records, success_rate)
		SELECT
			?,
			CURRENT_TIMESTAMP,
			CASE WHEN (SELECT timed_out OR error != '' FROM source_runs WHERE source_id = ? ORDER BY id DESC LIMIT 1)
				THEN 'failed' ELSE 'ok' END,
			COALESCE(SUM(records), 0),
			COALESCE(AVG(CASE WHEN timed_out OR error != '' THEN 0.0 ELSE 1.0 END), 0)
		FROM source_runs WHERE source_id = ?
		ON CONFLICT(source_id) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			last_run_status = excluded.last_run_status,
			total_records = excluded.total_records,
			success_rate = excluded.success_rate`,
		sourceID, sourceID, sourceID)
	return err
}

func (s *SQLiteStore) GetSourceStats(ctx context.Context) ([]models.SourceStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, last_run_at, last_run_status, total_records, success_rate, available
		FROM source_stats ORDER BY source_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SourceStats
	for rows.Next() {
		var st models.SourceStats
		if err := rows.Scan(&st.SourceID, &st.LastRunAt, &st.LastRunStatus,
			&st.TotalRecords, &st.SuccessRate, &st.Available); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetRecentRuns(ctx context.Context, limit int) ([]models.SearchRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_id, started_at, finished_at, status,
		       records_scraped, duplicates_dropped, invalid_dropped, results, errors_count
		FROM search_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SearchRun
	for rows.Next() {
		var run models.SearchRun
		if err := rows.Scan(&run.ID, &run.SearchID, &run.StartedAt, &run.FinishedAt, &run.Status,
			&run.RecordsScraped, &run.DuplicatesDropped, &run.InvalidDropped,
			&run.Results, &run.ErrorsCount); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
