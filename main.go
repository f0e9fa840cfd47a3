package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentradar/api"
	"rentradar/config"
	"rentradar/httputil"
	"rentradar/location"
	"rentradar/logging"
	"rentradar/models"
	"rentradar/scheduler"
	"rentradar/scraper"
	"rentradar/services"
	"rentradar/storage"
)

var (
	searchOnce   = flag.Bool("search", false, "Run one search from the command line and exit")
	criteriaPath = flag.String("criteria", "", "Path to a SearchCriteria JSON file for -search")
	searchLimit  = flag.Int("limit", 10, "Result limit for -search")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("rentradar.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting rentradar...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sources := cfg.ActiveSources()
	log.Printf("Loaded %d source configs, %d active", len(cfg.Sources), len(sources))
	for _, src := range sources {
		log.Printf("  - %s (%s)", src.Name, src.ID)
	}

	ctx := context.Background()

	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	log.Printf("SQLite database: %s", cfg.DBPath)

	var pgStore *storage.PostgresStore
	if cfg.DatabaseURL != "" {
		pgStore, err = storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Postgres mirror unavailable: %v", err)
		} else {
			log.Println("Postgres run mirror connected")
		}
	}
	store := storage.NewDualStore(sqliteStore, pgStore)
	defer store.Close()

	clients := httputil.NewClients(os.Getenv("PROXY_URL"))
	resolver := location.NewStaticResolver()

	scrapers := make([]services.SourceScraper, 0, len(sources))
	for _, src := range sources {
		scrapers = append(scrapers, scraper.NewEngine(src, clients, resolver, cfg.Search))
	}

	healthChecker := services.NewHealthChecker(cfg, clients.Health, store)
	searchService := services.NewSearchService(cfg, scrapers, store)
	searchService.SetAvailabilityCheck(healthChecker.Available)

	if *searchOnce {
		runSearchOnce(ctx, searchService)
		return
	}

	sched := scheduler.New(cfg, searchService, healthChecker)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	server := api.NewServer(cfg, searchService, store)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Goodbye!")
}

func runSearchOnce(ctx context.Context, search *services.SearchService) {
	criteria := models.SearchCriteria{
		HardRequirements: models.HardRequirements{Operation: "rent"},
	}
	if *criteriaPath != "" {
		data, err := os.ReadFile(*criteriaPath)
		if err != nil {
			log.Fatalf("Read criteria file: %v", err)
		}
		if err := json.Unmarshal(data, &criteria); err != nil {
			log.Fatalf("Parse criteria file: %v", err)
		}
	}

	result := search.Search(ctx, criteria, 1, *searchLimit)
	fmt.Printf("%d results (%d total) in %dms\n", len(result.Properties), result.Total, result.ExecutionTime)
	for i := range result.Properties {
		p := &result.Properties[i]
		fmt.Printf("%2d. [%s] %s - $%d, %dm², %d hab - score %s\n   %s\n",
			i+1, p.Source, p.Title, p.TotalPrice, p.Area, p.Rooms,
			services.DescribeScore(p), p.URL)
	}
}
