package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentradar/config"
	"rentradar/models"
	"rentradar/scraper"
)

// SourceScraper is what the search service needs from one scraping
// engine. Satisfied by *scraper.Engine and by test fakes.
type SourceScraper interface {
	Source() *config.ScrapingSource
	Scrape(ctx context.Context, criteria models.SearchCriteria, maxPages int) ([]models.RawRecord, scraper.Info)
}

// RunStore records search executions for operator visibility. Recording
// is best effort: a store failure never affects the search response.
type RunStore interface {
	StartSearchRun(ctx context.Context, run *models.SearchRun) error
	FinishSearchRun(ctx context.Context, run *models.SearchRun) error
	RecordSourceRun(ctx context.Context, sr *models.SourceRun) error
	Log(ctx context.Context, runID *int64, level models.LogLevel, message, sourceID string) error
}

type SearchService struct {
	cfg      *config.Config
	scrapers []SourceScraper
	store    RunStore // nil disables run recording

	availability func(sourceID string) bool // nil means all available
}

func NewSearchService(cfg *config.Config, scrapers []SourceScraper, store RunStore) *SearchService {
	return &SearchService{cfg: cfg, scrapers: scrapers, store: store}
}

// SetAvailabilityCheck installs the health checker's availability view.
// Sources it marks down are skipped until they recover.
func (s *SearchService) SetAvailabilityCheck(fn func(sourceID string) bool) {
	s.availability = fn
}

type sourceOutcome struct {
	records  []models.RawRecord
	info     scraper.Info
	timedOut bool
	duration time.Duration
}

// Search is the single entry point. It never returns an error: any
// internal fault is caught at this level and surfaced as an empty,
// well-formed result.
func (s *SearchService) Search(ctx context.Context, criteria models.SearchCriteria, page, limit int) (result *models.SearchResult) {
	page, limit = s.clampPagination(page, limit)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[search] recovered from internal fault: %v", r)
			result = models.EmptyResult(page, limit)
		}
	}()

	if reason := checkCriteria(&criteria); reason != "" {
		log.Printf("[search] rejecting unsatisfiable criteria: %s", reason)
		return models.EmptyResult(page, limit)
	}

	start := time.Now()
	run := &models.SearchRun{
		SearchID:  uuid.NewString(),
		StartedAt: start,
		Status:    models.RunStatusRunning,
	}
	s.startRun(ctx, run)

	scrapers := s.resolveScrapers(criteria.OptionalFilters.Sources)
	outcomes := s.fanOut(ctx, scrapers, criteria)

	// normalize in priority order so first-seen-wins dedup is stable
	var properties []models.Property
	parseDropped := 0
	for i, sc := range scrapers {
		src := sc.Source()
		out := outcomes[i]
		run.RecordsScraped += len(out.records)
		if out.info.Failed || out.timedOut {
			run.ErrorsCount++
		}
		s.recordSourceRun(ctx, run, src.ID, out)

		for _, record := range out.records {
			p, err := Normalize(record, src)
			if err != nil {
				parseDropped++
				continue
			}
			properties = append(properties, p)
		}
	}

	unique, dupDropped := Deduplicate(properties)
	valid, invalidDropped := FilterValid(unique)
	run.DuplicatesDropped = dupDropped
	run.InvalidDropped = parseDropped + invalidDropped

	filtered := ApplyHardFilter(valid, criteria.HardRequirements)
	filtered = ApplyOptionalFilters(filtered, criteria.OptionalFilters)
	scored := ScoreAndRank(filtered, criteria, s.priorities())

	result = &models.SearchResult{
		Properties:    Paginate(scored, page, limit),
		Total:         len(scored),
		Page:          page,
		Limit:         limit,
		ExecutionTime: time.Since(start).Milliseconds(),
		Summary:       Summarize(scored),
	}

	run.Results = len(scored)
	run.Status = models.RunStatusCompleted
	s.finishRun(ctx, run)

	log.Printf("[search] %s done: %d scraped, %d dup, %d invalid, %d results in %dms",
		run.SearchID, run.RecordsScraped, run.DuplicatesDropped, run.InvalidDropped,
		run.Results, result.ExecutionTime)
	return result
}

// fanOut runs one scrape task per source, each under its own timeout.
// A slow or failed source contributes an empty outcome and never
// delays siblings beyond its own deadline.
func (s *SearchService) fanOut(ctx context.Context, scrapers []SourceScraper, criteria models.SearchCriteria) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(scrapers))
	var wg sync.WaitGroup
	for i, sc := range scrapers {
		wg.Add(1)
		go func(i int, sc SourceScraper) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[search] source %s panicked: %v", sc.Source().ID, r)
					outcomes[i] = sourceOutcome{}
				}
			}()

			srcCtx, cancel := context.WithTimeout(ctx, s.cfg.Search.SourceTimeout)
			defer cancel()

			started := time.Now()
			records, info := sc.Scrape(srcCtx, criteria, s.cfg.Search.MaxPages)
			outcomes[i] = sourceOutcome{
				records:  records,
				info:     info,
				timedOut: srcCtx.Err() == context.DeadlineExceeded,
				duration: time.Since(started),
			}
		}(i, sc)
	}
	wg.Wait()
	return outcomes
}

// resolveScrapers intersects the active engines with the caller's
// allow-list and the health checker's availability view. An empty
// allow-list means all active sources.
func (s *SearchService) resolveScrapers(allowed []string) []SourceScraper {
	var out []SourceScraper
	for _, sc := range s.scrapers {
		id := sc.Source().ID
		if len(allowed) > 0 && !containsFold(allowed, id) {
			continue
		}
		if s.availability != nil && !s.availability(id) {
			log.Printf("[search] skipping unavailable source %s", id)
			continue
		}
		out = append(out, sc)
	}
	return out
}

func (s *SearchService) priorities() map[string]int {
	out := make(map[string]int, len(s.scrapers))
	for _, sc := range s.scrapers {
		src := sc.Source()
		out[src.ID] = src.Priority
	}
	return out
}

func (s *SearchService) clampPagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.cfg.Search.DefaultLimit
	}
	if limit > s.cfg.Search.MaxLimit {
		limit = s.cfg.Search.MaxLimit
	}
	return page, limit
}

// checkCriteria rejects queries no listing could ever satisfy before
// they cost a full fan-out cycle. Returns "" when the criteria are
// satisfiable.
func checkCriteria(criteria *models.SearchCriteria) string {
	h := &criteria.HardRequirements
	checks := []struct {
		name     string
		min, max int
	}{
		{"price", h.MinPrice, h.MaxPrice},
		{"area", h.MinArea, h.MaxArea},
		{"rooms", h.MinRooms, h.MaxRooms},
		{"bathrooms", h.MinBathrooms, h.MaxBathrooms},
		{"stratum", h.MinStratum, h.MaxStratum},
	}
	var problems []string
	for _, c := range checks {
		if c.min > 0 && c.max > 0 && c.min > c.max {
			problems = append(problems, c.name+" range inverted")
		}
	}
	o := &criteria.OptionalFilters
	if o.MinPrice > 0 && o.MaxPrice > 0 && o.MinPrice > o.MaxPrice {
		problems = append(problems, "optional price range inverted")
	}
	return strings.Join(problems, "; ")
}

func (s *SearchService) startRun(ctx context.Context, run *models.SearchRun) {
	if s.store == nil {
		return
	}
	if err := s.store.StartSearchRun(ctx, run); err != nil {
		log.Printf("[search] record run start: %v", err)
	}
}

func (s *SearchService) finishRun(ctx context.Context, run *models.SearchRun) {
	if s.store == nil {
		return
	}
	now := time.Now()
	run.FinishedAt = &now
	if err := s.store.FinishSearchRun(ctx, run); err != nil {
		log.Printf("[search] record run finish: %v", err)
	}
}

func (s *SearchService) recordSourceRun(ctx context.Context, run *models.SearchRun, sourceID string, out sourceOutcome) {
	if s.store == nil {
		return
	}
	sr := &models.SourceRun{
		RunID:      run.ID,
		SourceID:   sourceID,
		Records:    len(out.records),
		Pages:      out.info.Pages,
		DurationMS: out.duration.Milliseconds(),
		TimedOut:   out.timedOut,
		Escalated:  out.info.Escalated,
	}
	if out.info.Failed {
		sr.Error = "fetch failed"
	}
	if err := s.store.RecordSourceRun(ctx, sr); err != nil {
		log.Printf("[search] record source run %s: %v", sourceID, err)
	}

	switch {
	case out.timedOut:
		s.storeLog(ctx, run, models.LogLevelWarn, "source timed out", sourceID)
	case out.info.Failed:
		s.storeLog(ctx, run, models.LogLevelError, "source fetch failed", sourceID)
	case out.info.Escalated:
		s.storeLog(ctx, run, models.LogLevelInfo, "escalated to rendered browser", sourceID)
	}
}

func (s *SearchService) storeLog(ctx context.Context, run *models.SearchRun, level models.LogLevel, message, sourceID string) {
	if err := s.store.Log(ctx, &run.ID, level, message, sourceID); err != nil {
		log.Printf("[search] store log: %v", err)
	}
}
