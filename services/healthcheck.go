package services

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"rentradar/config"
	"rentradar/models"
)

// StatsStore persists per-source availability. Nil disables persistence
// but checks still run and log.
type StatsStore interface {
	UpsertSourceStats(ctx context.Context, stats *models.SourceStats) error
}

// consecutive probe failures before a source is considered down
const failureThreshold = 3

// HealthChecker probes each active source's base address. A source
// that keeps failing its probe is reported unavailable and the search
// service skips it until a probe succeeds again.
type HealthChecker struct {
	cfg    *config.Config
	client *http.Client
	store  StatsStore

	mu       sync.Mutex
	failures map[string]int
	down     map[string]bool
}

func NewHealthChecker(cfg *config.Config, client *http.Client, store StatsStore) *HealthChecker {
	return &HealthChecker{
		cfg:      cfg,
		client:   client,
		store:    store,
		failures: make(map[string]int),
		down:     make(map[string]bool),
	}
}

// Available reports whether a source has passed its recent probes.
// Sources never probed count as available.
func (h *HealthChecker) Available(sourceID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.down[sourceID]
}

// CheckAll probes every active source concurrently and returns
// availability keyed by source id.
func (h *HealthChecker) CheckAll(ctx context.Context) map[string]bool {
	sources := h.cfg.ActiveSources()
	results := make(map[string]bool, len(sources))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src *config.ScrapingSource) {
			defer wg.Done()
			ok := h.probe(ctx, src.BaseURL)
			available := h.track(src.ID, ok)

			mu.Lock()
			results[src.ID] = available
			mu.Unlock()

			if !available {
				log.Printf("[health] source %s unavailable at %s", src.ID, src.BaseURL)
			}
			h.persist(ctx, src.ID, available)
		}(src)
	}
	wg.Wait()
	return results
}

// track records one probe outcome and returns the source's resulting
// availability. One success clears the failure streak.
func (h *HealthChecker) track(sourceID string, ok bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ok {
		h.failures[sourceID] = 0
		h.down[sourceID] = false
		return true
	}
	h.failures[sourceID]++
	if h.failures[sourceID] >= failureThreshold {
		h.down[sourceID] = true
	}
	return !h.down[sourceID]
}

func (h *HealthChecker) probe(ctx context.Context, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
	if err != nil {
		return false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	// some sites reject HEAD outright; any response below 500 still
	// proves the host is up
	return resp.StatusCode < http.StatusInternalServerError
}

func (h *HealthChecker) persist(ctx context.Context, sourceID string, available bool) {
	if h.store == nil {
		return
	}
	now := time.Now()
	status := "ok"
	if !available {
		status = "unreachable"
	}
	stats := &models.SourceStats{
		SourceID:      sourceID,
		LastRunAt:     &now,
		LastRunStatus: status,
		Available:     available,
	}
	if err := h.store.UpsertSourceStats(ctx, stats); err != nil {
		log.Printf("[health] persist stats for %s: %v", sourceID, err)
	}
}
