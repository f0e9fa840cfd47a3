package models

// RawRecord is the loosely structured output of one extracted listing
// item, before normalization. Every field is optional; text fields keep
// whatever the source printed ("$2.500.000", "80 m²", "3 hab") and are
// parsed exactly once, by the normalizer.
type RawRecord struct {
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	AdminFee     string   `json:"admin_fee"`
	Area         string   `json:"area"`
	Rooms        string   `json:"rooms"`
	Bathrooms    string   `json:"bathrooms"`
	Parking      string   `json:"parking"`
	Stratum      string   `json:"stratum"`
	Location     string   `json:"location"`
	Neighborhood string   `json:"neighborhood"`
	City         string   `json:"city"`
	Lat          string   `json:"lat"`
	Lng          string   `json:"lng"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
	URL          string   `json:"url"`
	Description  string   `json:"description"`
}

// HasMinimumFields reports whether the record carries enough signal to
// be worth normalizing: a title or price, plus at least one of area or
// rooms. Items below this bar are discarded at extraction time.
func (r *RawRecord) HasMinimumFields() bool {
	if r.Title == "" && r.Price == "" {
		return false
	}
	return r.Area != "" || r.Rooms != ""
}
