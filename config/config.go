package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr    string
	DBPath      string
	DatabaseURL string // optional Postgres mirror, empty disables it
	LogLevel    string
	Scheduler   SchedulerConfig
	Search      SearchConfig
	Sources     map[string]*ScrapingSource
}

type SchedulerConfig struct {
	HealthCron string
	WarmCron   string
	Interval   time.Duration
}

// SearchConfig bounds one search execution.
type SearchConfig struct {
	MaxPages       int
	SourceTimeout  time.Duration
	InterPageDelay time.Duration
	DefaultLimit   int
	MaxLimit       int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DBPath:      getEnv("DB_PATH", "rentradar.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Scheduler: SchedulerConfig{
			HealthCron: os.Getenv("HEALTHCHECK_CRON"),
			WarmCron:   os.Getenv("WARM_SCRAPE_CRON"),
		},
		Search: SearchConfig{
			MaxPages:       getEnvInt("SEARCH_MAX_PAGES", 3),
			SourceTimeout:  time.Duration(getEnvInt("SOURCE_TIMEOUT_SEC", 90)) * time.Second,
			InterPageDelay: time.Duration(getEnvInt("INTER_PAGE_DELAY_MS", 1200)) * time.Millisecond,
			DefaultLimit:   getEnvInt("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:       getEnvInt("SEARCH_MAX_LIMIT", 100),
		},
		Sources: make(map[string]*ScrapingSource),
	}

	if interval := os.Getenv("HEALTHCHECK_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSourceConfigs(getEnv("SOURCES_DIR", "config/sources")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSourceConfigs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var src ScrapingSource
		if err := yaml.Unmarshal(data, &src); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if src.ID == "" {
			return fmt.Errorf("%s: source id is required", path)
		}
		src.applyDefaults()

		c.Sources[src.ID] = &src
	}

	return nil
}

// ActiveSources returns active sources ordered by priority, then id, so
// that iteration order (and with it first-seen-wins dedup) is stable.
func (c *Config) ActiveSources() []*ScrapingSource {
	var out []*ScrapingSource
	for _, src := range c.Sources {
		if src.Active {
			out = append(out, src)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
