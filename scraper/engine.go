package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rentradar/config"
	"rentradar/httputil"
	"rentradar/location"
	"rentradar/models"
	"rentradar/ratelimit"
)

// Renderer executes a page's scripts in a real browser and returns the
// rendered DOM as HTML. Used only as the escalation strategy when the
// static document yields nothing.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Info describes how one scrape invocation went. It exists for run
// records and logs; errors are absorbed, never returned.
type Info struct {
	Pages     int
	Escalated bool
	Failed    bool
}

// Engine is the generic, data-driven scraper for one source. Adding a
// source means adding a descriptor file, not code. Pages are fetched
// strictly sequentially within a source; the engine never parallelizes
// its own pagination.
type Engine struct {
	src      *config.ScrapingSource
	pipeline *Pipeline
	limiter  *ratelimit.Limiter
	client   *http.Client
	resolver location.Resolver
	renderer Renderer

	interPageDelay time.Duration
}

func NewEngine(src *config.ScrapingSource, clients *httputil.Clients, resolver location.Resolver, search config.SearchConfig) *Engine {
	return &Engine{
		src:      src,
		pipeline: NewPipeline(src),
		limiter: ratelimit.New(
			src.RateLimit.RequestsPerMinute,
			time.Duration(src.RateLimit.DelayBetweenRequestMS)*time.Millisecond,
			src.RateLimit.MaxConcurrentRequests,
		),
		client:         clients.Scraping,
		resolver:       resolver,
		renderer:       &PlaywrightRenderer{},
		interPageDelay: search.InterPageDelay,
	}
}

// SetRenderer swaps the escalation renderer. Tests install a stub.
func (e *Engine) SetRenderer(r Renderer) {
	e.renderer = r
}

func (e *Engine) Source() *config.ScrapingSource {
	return e.src
}

// Scrape fetches up to maxPages result pages and extracts raw records.
// It never fails: network and render errors end this source's
// pagination and whatever was collected so far is returned.
func (e *Engine) Scrape(ctx context.Context, criteria models.SearchCriteria, maxPages int) ([]models.RawRecord, Info) {
	var info Info

	loc, err := e.resolver.Resolve(criteria.HardRequirements.Location)
	if err != nil {
		log.Printf("[%s] location %q unresolved: %v", e.src.ID, criteria.HardRequirements.Location, err)
	}

	var records []models.RawRecord
	for page := 1; page <= maxPages; page++ {
		pageURL := buildSearchURL(e.src.BaseURL, e.src.SearchPath, criteria, loc, page)

		if err := e.limiter.Acquire(ctx); err != nil {
			return records, info
		}
		doc, err := e.fetchDocument(ctx, pageURL)
		e.limiter.Release()

		if err != nil {
			log.Printf("[%s] page %d fetch failed: %v", e.src.ID, page, err)
			info.Failed = true
			return records, info
		}

		pageRecords := e.pipeline.ExtractDocument(doc)

		if len(pageRecords) == 0 && page == 1 {
			// static strategy found nothing; escalate once to a real browser
			pageRecords, doc = e.escalate(ctx, pageURL, &info)
			if len(pageRecords) == 0 {
				log.Printf("[%s] no records after escalation, source contributes nothing", e.src.ID)
				return records, info
			}
		}
		if len(pageRecords) == 0 {
			// normal end of results, not an error
			return records, info
		}

		for i := range pageRecords {
			e.absolutize(&pageRecords[i])
		}
		records = append(records, pageRecords...)
		info.Pages++
		log.Printf("[%s] page %d: %d records (total %d)", e.src.ID, page, len(pageRecords), len(records))

		if doc != nil && !e.pipeline.HasNextPage(doc) {
			return records, info
		}

		// fixed extra delay between pages, on top of the limiter's own
		// pacing, so the traffic pattern does not look machine-timed
		if page < maxPages && !sleepCtx(ctx, e.interPageDelay) {
			return records, info
		}
	}

	return records, info
}

func (e *Engine) escalate(ctx context.Context, pageURL string, info *Info) ([]models.RawRecord, *goquery.Document) {
	info.Escalated = true
	log.Printf("[%s] escalating to rendered browser for %s", e.src.ID, pageURL)

	// the rendered fetch hits the source too and pays the same pacing
	if err := e.limiter.Acquire(ctx); err != nil {
		return nil, nil
	}
	html, err := e.renderer.Render(ctx, pageURL)
	e.limiter.Release()
	if err != nil {
		log.Printf("[%s] render failed: %v", e.src.ID, err)
		info.Failed = true
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[%s] rendered DOM unparseable: %v", e.src.ID, err)
		info.Failed = true
		return nil, nil
	}

	return e.pipeline.ExtractDocument(doc), doc
}

func (e *Engine) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := httputil.NewDocumentRequest(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// absolutize rewrites relative detail and image URLs against the
// source's base address.
func (e *Engine) absolutize(rec *models.RawRecord) {
	base := strings.TrimSuffix(e.src.BaseURL, "/")
	if rec.URL != "" && strings.HasPrefix(rec.URL, "/") {
		rec.URL = base + rec.URL
	}
	for i, img := range rec.Images {
		if strings.HasPrefix(img, "//") {
			rec.Images[i] = "https:" + img
		} else if strings.HasPrefix(img, "/") {
			rec.Images[i] = base + img
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
