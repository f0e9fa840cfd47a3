package storage

import (
	"context"
	"log"
	"sync"

	"rentradar/models"
)

// DualStore writes run records to SQLite and, when configured, mirrors
// them to Postgres. SQLite is authoritative; mirror failures are logged
// and swallowed.
type DualStore struct {
	sqlite *SQLiteStore
	pg     *PostgresStore // nil when no DATABASE_URL

	mu        sync.Mutex
	searchIDs map[int64]string // run id -> search uuid, for the mirror
}

func NewDualStore(sqlite *SQLiteStore, pg *PostgresStore) *DualStore {
	return &DualStore{
		sqlite:    sqlite,
		pg:        pg,
		searchIDs: make(map[int64]string),
	}
}

func (d *DualStore) Close() error {
	if d.pg != nil {
		d.pg.Close()
	}
	return d.sqlite.Close()
}

func (d *DualStore) StartSearchRun(ctx context.Context, run *models.SearchRun) error {
	if err := d.sqlite.StartSearchRun(ctx, run); err != nil {
		return err
	}
	d.mu.Lock()
	d.searchIDs[run.ID] = run.SearchID
	d.mu.Unlock()
	return nil
}

func (d *DualStore) FinishSearchRun(ctx context.Context, run *models.SearchRun) error {
	err := d.sqlite.FinishSearchRun(ctx, run)

	if d.pg != nil {
		if mirrorErr := d.pg.MirrorSearchRun(ctx, run); mirrorErr != nil {
			log.Printf("[storage] mirror search run %s: %v", run.SearchID, mirrorErr)
		}
	}

	d.mu.Lock()
	delete(d.searchIDs, run.ID)
	d.mu.Unlock()
	return err
}

func (d *DualStore) RecordSourceRun(ctx context.Context, sr *models.SourceRun) error {
	err := d.sqlite.RecordSourceRun(ctx, sr)

	if d.pg != nil {
		d.mu.Lock()
		searchID := d.searchIDs[sr.RunID]
		d.mu.Unlock()
		if mirrorErr := d.pg.MirrorSourceRun(ctx, searchID, sr); mirrorErr != nil {
			log.Printf("[storage] mirror source run %s: %v", sr.SourceID, mirrorErr)
		}
	}
	return err
}

func (d *DualStore) UpsertSourceStats(ctx context.Context, stats *models.SourceStats) error {
	return d.sqlite.UpsertSourceStats(ctx, stats)
}

func (d *DualStore) GetSourceStats(ctx context.Context) ([]models.SourceStats, error) {
	return d.sqlite.GetSourceStats(ctx)
}

func (d *DualStore) GetRecentRuns(ctx context.Context, limit int) ([]models.SearchRun, error) {
	return d.sqlite.GetRecentRuns(ctx, limit)
}

func (d *DualStore) Log(ctx context.Context, runID *int64, level models.LogLevel, message, sourceID string) error {
	return d.sqlite.Log(ctx, runID, level, message, sourceID)
}
