package config

// ScrapingSource is the immutable per-source descriptor loaded at
// startup from config/sources/*.yaml. Adding a source is adding a file;
// there is no per-source code.
type ScrapingSource struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	BaseURL  string `yaml:"base_url"`
	Active   bool   `yaml:"active"`
	Priority int    `yaml:"priority"`

	// SearchPath is a template appended to BaseURL. Placeholders:
	// {operation}, {type}, {city}, {neighborhood}, {page}.
	SearchPath string `yaml:"search_path"`

	RateLimit  RateLimit  `yaml:"rate_limit"`
	Extraction Extraction `yaml:"extraction"`
}

type RateLimit struct {
	RequestsPerMinute     int `yaml:"requests_per_minute"`
	DelayBetweenRequestMS int `yaml:"delay_between_requests_ms"`
	MaxConcurrentRequests int `yaml:"max_concurrent_requests"`
}

// Extraction describes how to pull fields out of this source's markup.
// Strategies cascade per field: structured data first, then selectors,
// then regex patterns.
type Extraction struct {
	ItemSelector     string `yaml:"item_selector"`
	NextPageSelector string `yaml:"next_page_selector"`

	// StructuredKeys are key names whose joint presence marks an embedded
	// JSON object as an authoritative listing payload for this source.
	StructuredKeys []string `yaml:"structured_keys"`

	// Fields maps canonical field names (title, price, area, rooms, ...)
	// to ordered candidate selectors and regex fallbacks.
	Fields map[string]FieldDescriptor `yaml:"fields"`
}

type FieldDescriptor struct {
	Selectors []string `yaml:"selectors"`
	Attr      string   `yaml:"attr"` // attribute to read instead of text
	Patterns  []string `yaml:"patterns"`
}

func (s *ScrapingSource) applyDefaults() {
	if s.RateLimit.RequestsPerMinute <= 0 {
		s.RateLimit.RequestsPerMinute = 20
	}
	if s.RateLimit.DelayBetweenRequestMS <= 0 {
		s.RateLimit.DelayBetweenRequestMS = 1000
	}
	if s.RateLimit.MaxConcurrentRequests <= 0 {
		s.RateLimit.MaxConcurrentRequests = 1
	}
	if s.Priority <= 0 {
		s.Priority = 100
	}
}
