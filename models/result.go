package models

// PriceBucket is one bar of the price distribution histogram.
type PriceBucket struct {
	Range string `json:"range"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

type Summary struct {
	AveragePrice          int            `json:"average_price"`
	AveragePricePerM2     int            `json:"average_price_per_m2"`
	AverageArea           int            `json:"average_area"`
	SourceBreakdown       map[string]int `json:"source_breakdown"`
	NeighborhoodBreakdown map[string]int `json:"neighborhood_breakdown"`
	PriceDistribution     []PriceBucket  `json:"price_distribution"`
}

// SearchResult is the single search response. Total is the count before
// pagination; Properties holds one page of the scored ordering.
type SearchResult struct {
	Properties    []Property `json:"properties"`
	Total         int        `json:"total"`
	Page          int        `json:"page"`
	Limit         int        `json:"limit"`
	ExecutionTime int64      `json:"execution_time_ms"`
	Summary       Summary    `json:"summary"`
}

// EmptyResult is the well-formed zero response the orchestrator returns
// instead of propagating an internal failure.
func EmptyResult(page, limit int) *SearchResult {
	return &SearchResult{
		Properties: []Property{},
		Page:       page,
		Limit:      limit,
		Summary: Summary{
			SourceBreakdown:       map[string]int{},
			NeighborhoodBreakdown: map[string]int{},
			PriceDistribution:     []PriceBucket{},
		},
	}
}
