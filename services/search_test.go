package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"rentradar/config"
	"rentradar/models"
	"rentradar/scraper"
)

type fakeScraper struct {
	src      *config.ScrapingSource
	records  []models.RawRecord
	delay    time.Duration
	panicMsg string
	calls    atomic.Int32
}

func (f *fakeScraper) Source() *config.ScrapingSource { return f.src }

func (f *fakeScraper) Scrape(ctx context.Context, criteria models.SearchCriteria, maxPages int) ([]models.RawRecord, scraper.Info) {
	f.calls.Add(1)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, scraper.Info{}
		}
	}
	return f.records, scraper.Info{Pages: 1}
}

func searchTestConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			MaxPages:      2,
			SourceTimeout: 200 * time.Millisecond,
			DefaultLimit:  20,
			MaxLimit:      50,
		},
		Sources: map[string]*config.ScrapingSource{},
	}
}

func fakeWithRecords(id string, priority int, records ...models.RawRecord) *fakeScraper {
	return &fakeScraper{
		src:     &config.ScrapingSource{ID: id, Priority: priority, Active: true},
		records: records,
	}
}

func rawListing(title, price, area, url string) models.RawRecord {
	return models.RawRecord{Title: title, Price: price, Area: area, Rooms: "3", URL: url}
}

func TestSearch_SlowSourceDoesNotBlockOthers(t *testing.T) {
	fast := fakeWithRecords("fincaraiz", 1,
		rawListing("Apartamento Cedritos amplio", "$2.500.000", "80 m²", "https://fr.com/1"))
	slow := fakeWithRecords("metrocuadrado", 2,
		rawListing("Apartamento Chicó", "$3.000.000", "90 m²", "https://mc.com/2"))
	slow.delay = 2 * time.Second

	svc := NewSearchService(searchTestConfig(), []SourceScraper{fast, slow}, nil)

	started := time.Now()
	result := svc.Search(context.Background(), models.SearchCriteria{}, 1, 20)
	elapsed := time.Since(started)

	if result.Total != 1 {
		t.Fatalf("total = %d, want 1 (fast source only)", result.Total)
	}
	if result.Properties[0].Source != "fincaraiz" {
		t.Errorf("source = %q", result.Properties[0].Source)
	}
	if elapsed > time.Second {
		t.Errorf("search took %s, should be bounded by the source timeout", elapsed)
	}
}

func TestSearch_PanickingSourceIsIsolated(t *testing.T) {
	ok := fakeWithRecords("fincaraiz", 1,
		rawListing("Apartamento Cedritos amplio", "$2.500.000", "80 m²", "https://fr.com/1"))
	bad := fakeWithRecords("ciencuadras", 3)
	bad.panicMsg = "selector exploded"

	svc := NewSearchService(searchTestConfig(), []SourceScraper{ok, bad}, nil)
	result := svc.Search(context.Background(), models.SearchCriteria{}, 1, 20)

	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}
}

func TestSearch_CrossSourceDedup(t *testing.T) {
	first := fakeWithRecords("fincaraiz", 1,
		rawListing("Apartamento Cedritos amplio", "$2.500.000", "80 m²", "https://portal.com/aviso/7"))
	second := fakeWithRecords("metrocuadrado", 2,
		rawListing("Apto Cedritos 80m2 lindo", "$2.500.000", "80 m²", "https://portal.com/aviso/7?src=mc"))

	svc := NewSearchService(searchTestConfig(), []SourceScraper{first, second}, nil)
	result := svc.Search(context.Background(), models.SearchCriteria{}, 1, 20)

	if result.Total != 1 {
		t.Fatalf("total = %d, want 1 after dedup", result.Total)
	}
	// priority order decides the survivor
	if result.Properties[0].Source != "fincaraiz" {
		t.Errorf("survivor from %q, want fincaraiz", result.Properties[0].Source)
	}
}

func TestSearch_RejectsInvertedRanges(t *testing.T) {
	src := fakeWithRecords("fincaraiz", 1,
		rawListing("Apartamento Cedritos amplio", "$2.500.000", "80 m²", "https://fr.com/1"))
	svc := NewSearchService(searchTestConfig(), []SourceScraper{src}, nil)

	criteria := models.SearchCriteria{
		HardRequirements: models.HardRequirements{MinArea: 120, MaxArea: 70},
	}
	result := svc.Search(context.Background(), criteria, 1, 20)

	if result.Total != 0 || len(result.Properties) != 0 {
		t.Errorf("expected empty result, got %d", result.Total)
	}
	if src.calls.Load() != 0 {
		t.Error("unsatisfiable criteria should never reach the sources")
	}
}

func TestSearch_SourceAllowList(t *testing.T) {
	a := fakeWithRecords("fincaraiz", 1,
		rawListing("Apartamento Cedritos amplio", "$2.500.000", "80 m²", "https://fr.com/1"))
	b := fakeWithRecords("metrocuadrado", 2,
		rawListing("Apartamento Chicó norte", "$3.000.000", "90 m²", "https://mc.com/2"))

	svc := NewSearchService(searchTestConfig(), []SourceScraper{a, b}, nil)
	criteria := models.SearchCriteria{
		OptionalFilters: models.OptionalFilters{Sources: []string{"metrocuadrado"}},
	}
	result := svc.Search(context.Background(), criteria, 1, 20)

	if result.Total != 1 || result.Properties[0].Source != "metrocuadrado" {
		t.Fatalf("got %d results from %v", result.Total, result.Properties)
	}
	if a.calls.Load() != 0 {
		t.Error("excluded source should not be scraped")
	}
}

func TestSearch_HardFilterApplied(t *testing.T) {
	src := fakeWithRecords("fincaraiz", 1,
		rawListing("Apartamento chico bonito", "$1.500.000", "45 m²", "https://fr.com/1"),
		rawListing("Apartamento Cedritos amplio", "$2.500.000", "80 m²", "https://fr.com/2"),
		rawListing("Penthouse enorme norte", "$8.000.000", "200 m²", "https://fr.com/3"))

	svc := NewSearchService(searchTestConfig(), []SourceScraper{src}, nil)
	criteria := models.SearchCriteria{
		HardRequirements: models.HardRequirements{MinArea: 70, MaxArea: 110},
	}
	result := svc.Search(context.Background(), criteria, 1, 20)

	if result.Total != 1 {
		t.Fatalf("total = %d, want 1", result.Total)
	}
	if result.Properties[0].Area != 80 {
		t.Errorf("area = %d, want 80", result.Properties[0].Area)
	}
}

func TestSearch_PaginationClamps(t *testing.T) {
	var records []models.RawRecord
	urls := []string{"a", "b", "c"}
	for _, u := range urls {
		records = append(records, rawListing("Apartamento "+u+" grande", "$2.000.000", "80 m²", "https://fr.com/"+u))
	}
	src := fakeWithRecords("fincaraiz", 1, records...)
	svc := NewSearchService(searchTestConfig(), []SourceScraper{src}, nil)

	result := svc.Search(context.Background(), models.SearchCriteria{}, 0, 0)
	if result.Page != 1 {
		t.Errorf("page = %d, want 1", result.Page)
	}
	if result.Limit != 20 {
		t.Errorf("limit = %d, want default 20", result.Limit)
	}

	result = svc.Search(context.Background(), models.SearchCriteria{}, 1, 10_000)
	if result.Limit != 50 {
		t.Errorf("limit = %d, want max 50", result.Limit)
	}
}

func TestSearch_SummaryCoversFullSetNotPage(t *testing.T) {
	var records []models.RawRecord
	for _, u := range []string{"1", "2", "3", "4"} {
		records = append(records, rawListing("Apartamento nro "+u, "$2.000.000", "80 m²", "https://fr.com/"+u))
	}
	src := fakeWithRecords("fincaraiz", 1, records...)
	svc := NewSearchService(searchTestConfig(), []SourceScraper{src}, nil)

	result := svc.Search(context.Background(), models.SearchCriteria{}, 1, 2)
	if len(result.Properties) != 2 {
		t.Errorf("page size = %d, want 2", len(result.Properties))
	}
	if result.Total != 4 {
		t.Errorf("total = %d, want 4", result.Total)
	}
	if result.Summary.SourceBreakdown["fincaraiz"] != 4 {
		t.Errorf("summary covers %d, want the full set of 4", result.Summary.SourceBreakdown["fincaraiz"])
	}
}
