package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"rentradar/config"
	"rentradar/models"
	"rentradar/services"
)

// Scheduler runs the periodic background jobs: source health probes
// and an optional warm scrape that keeps the sources' anti-bot state
// friendly and surfaces extraction breakage before a user search does.
type Scheduler struct {
	cfg     *config.Config
	search  *services.SearchService
	health  *services.HealthChecker
	cron    *cron.Cron
	ticker  *time.Ticker
	stopCh  chan struct{}
	stopped bool
}

func New(cfg *config.Config, search *services.SearchService, health *services.HealthChecker) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		search: search,
		health: health,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	sched := s.cfg.Scheduler

	if sched.HealthCron != "" {
		log.Printf("[scheduler] healthcheck cron: %s", sched.HealthCron)
		_, err := s.cron.AddFunc(sched.HealthCron, func() {
			s.runHealthcheck(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid healthcheck cron expression: %w", err)
		}
	} else if sched.Interval > 0 {
		log.Printf("[scheduler] healthcheck interval: %s", sched.Interval)
		s.ticker = time.NewTicker(sched.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runHealthcheck(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	if sched.WarmCron != "" {
		log.Printf("[scheduler] warm scrape cron: %s", sched.WarmCron)
		_, err := s.cron.AddFunc(sched.WarmCron, func() {
			s.runWarmScrape(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid warm scrape cron expression: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.cron.Stop()
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) runHealthcheck(ctx context.Context) {
	results := s.health.CheckAll(ctx)
	up := 0
	for _, available := range results {
		if available {
			up++
		}
	}
	log.Printf("[scheduler] healthcheck: %d/%d sources available", up, len(results))
}

// runWarmScrape issues a deliberately broad single-page search. Its
// results are discarded; the run records it leaves behind are the
// point.
func (s *Scheduler) runWarmScrape(ctx context.Context) {
	criteria := models.SearchCriteria{
		HardRequirements: models.HardRequirements{Operation: "rent"},
	}
	result := s.search.Search(ctx, criteria, 1, 1)
	log.Printf("[scheduler] warm scrape: %d listings across sources", result.Total)
}
