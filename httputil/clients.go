package httputil

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Clients struct {
	Scraping *http.Client // for target listing sites
	Health   *http.Client // short-timeout HEAD probes
}

func NewClients(proxyURL string) *Clients {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		ForceAttemptHTTP2:   true,
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	return &Clients{
		Scraping: &http.Client{
			Timeout:   20 * time.Second,
			Transport: transport,
		},
		Health: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

// NewDocumentRequest builds a GET request with browser-like headers;
// several of the aggregated sites refuse default Go client headers.
func NewDocumentRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-CO,es;q=0.9,en;q=0.7")
	return req, nil
}
