package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleSource = `
id: fincaraiz
name: Fincaraíz
base_url: https://www.fincaraiz.com.co
active: true
priority: 1
search_path: /{type}/{operation}/{city}?pagina={page}
rate_limit:
  requests_per_minute: 12
extraction:
  item_selector: "div.listingCard"
  fields:
    price:
      selectors: ["span.price"]
`

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_SourceConfigs(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "fincaraiz.yaml", sampleSource)
	writeSourceFile(t, dir, "notes.txt", "ignored")
	t.Setenv("SOURCES_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	src, ok := cfg.Sources["fincaraiz"]
	if !ok {
		t.Fatalf("source not loaded; have %v", cfg.Sources)
	}
	if src.RateLimit.RequestsPerMinute != 12 {
		t.Errorf("requestsPerMinute = %d, want 12", src.RateLimit.RequestsPerMinute)
	}
	// unset rate-limit fields get defaults
	if src.RateLimit.DelayBetweenRequestMS != 1000 {
		t.Errorf("delay = %d, want default 1000", src.RateLimit.DelayBetweenRequestMS)
	}
	if src.RateLimit.MaxConcurrentRequests != 1 {
		t.Errorf("maxConcurrent = %d, want default 1", src.RateLimit.MaxConcurrentRequests)
	}
	if src.Extraction.Fields["price"].Selectors[0] != "span.price" {
		t.Errorf("field descriptor not parsed: %+v", src.Extraction.Fields)
	}
}

func TestLoad_MissingSourcesDirIsNotFatal(t *testing.T) {
	t.Setenv("SOURCES_DIR", filepath.Join(t.TempDir(), "does-not-exist"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(cfg.Sources))
	}
}

func TestLoad_RejectsSourceWithoutID(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "broken.yaml", "name: No ID Here\n")
	t.Setenv("SOURCES_DIR", dir)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for source without id")
	}
}

func TestActiveSources_Ordering(t *testing.T) {
	cfg := &Config{Sources: map[string]*ScrapingSource{
		"c": {ID: "c", Active: true, Priority: 2},
		"a": {ID: "a", Active: true, Priority: 1},
		"b": {ID: "b", Active: true, Priority: 2},
		"d": {ID: "d", Active: false, Priority: 1},
	}}

	got := cfg.ActiveSources()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %d sources, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSearchDefaults(t *testing.T) {
	t.Setenv("SOURCES_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MaxPages != 3 {
		t.Errorf("maxPages = %d, want 3", cfg.Search.MaxPages)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxLimit != 100 {
		t.Errorf("limits = %d/%d", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
}
