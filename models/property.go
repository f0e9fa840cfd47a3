package models

import (
	"math"
	"time"
)

// Coordinates as reported by a source, when it reports any.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	Address      string       `json:"address"`
	Neighborhood string       `json:"neighborhood,omitempty"`
	City         string       `json:"city"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

// Property is the canonical representation of a listing. It is created
// once by the normalizer, scored in place by the scorer, and never
// persisted between searches.
type Property struct {
	ID                string    `json:"id"`
	Source            string    `json:"source"`
	Title             string    `json:"title"`
	Price             int       `json:"price"`
	AdminFee          int       `json:"admin_fee"`
	TotalPrice        int       `json:"total_price"`
	Area              int       `json:"area"`
	Rooms             int       `json:"rooms"`
	Bathrooms         int       `json:"bathrooms,omitempty"`
	Parking           int       `json:"parking,omitempty"`
	Stratum           int       `json:"stratum,omitempty"`
	Location          Location  `json:"location"`
	Amenities         []string  `json:"amenities"`
	Description       string    `json:"description"`
	Images            []string  `json:"images"`
	URL               string    `json:"url"`
	ScrapedAt         time.Time `json:"scraped_at"`
	FirstSeenAt       time.Time `json:"first_seen_at"`
	PricePerM2        int       `json:"price_per_m2"`
	Score             float64   `json:"score,omitempty"`
	PreferenceMatches []string  `json:"preference_matches,omitempty"`
	IsActive          bool      `json:"is_active"`
}

// RecomputeDerived sets TotalPrice and PricePerM2 from price, admin fee
// and area. These two fields are never taken from a source directly.
func (p *Property) RecomputeDerived() {
	p.TotalPrice = p.Price
	if p.AdminFee > 0 {
		p.TotalPrice = p.Price + p.AdminFee
	}
	if p.Area > 0 {
		p.PricePerM2 = int(math.Round(float64(p.Price) / float64(p.Area)))
	} else {
		p.PricePerM2 = 0
	}
}
