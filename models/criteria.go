package models

// HardRequirements are mandatory. A listing outside any populated range
// is excluded outright and never reaches the scorer. Zero means "not
// set" for every numeric bound.
type HardRequirements struct {
	Operation     string   `json:"operation"` // rent, sale
	PropertyTypes []string `json:"property_types"`
	Location      string   `json:"location"` // free text, resolved upstream
	MinPrice      int      `json:"min_price"`
	MaxPrice      int      `json:"max_price"`
	MinArea       int      `json:"min_area"`
	MaxArea       int      `json:"max_area"`
	MinRooms      int      `json:"min_rooms"`
	MaxRooms      int      `json:"max_rooms"`
	MinBathrooms  int      `json:"min_bathrooms"`
	MaxBathrooms  int      `json:"max_bathrooms"`
	MinParking    int      `json:"min_parking"`
	MinStratum    int      `json:"min_stratum"`
	MaxStratum    int      `json:"max_stratum"`
}

const (
	PreferenceNice      = "nice"
	PreferenceEssential = "essential"
)

// PreferenceItem is a named soft criterion. Level is "nice" or
// "essential"; essential matches weigh more but still never exclude.
type PreferenceItem struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type PreferenceWeights struct {
	WetAreas   float64 `json:"wet_areas"`
	Sports     float64 `json:"sports"`
	Amenities  float64 `json:"amenities"`
	Location   float64 `json:"location"`
	PricePerM2 float64 `json:"price_per_m2"`
}

type Preferences struct {
	WetAreas  []PreferenceItem  `json:"wet_areas"`
	Sports    []PreferenceItem  `json:"sports"`
	Amenities []PreferenceItem  `json:"amenities"`
	Weights   PreferenceWeights `json:"weights"`
}

// OptionalFilters exclude like hard requirements do, but are request
// scoped and independent of the mandatory schema.
type OptionalFilters struct {
	Sources       []string `json:"sources"`
	Neighborhoods []string `json:"neighborhoods"`
	MinPrice      int      `json:"min_price"`
	MaxPrice      int      `json:"max_price"`
	Furnished     *bool    `json:"furnished,omitempty"`
	Parking       *bool    `json:"parking,omitempty"`
	Pets          *bool    `json:"pets,omitempty"`
}

type SearchCriteria struct {
	HardRequirements HardRequirements `json:"hard_requirements"`
	Preferences      Preferences      `json:"preferences"`
	OptionalFilters  OptionalFilters  `json:"optional_filters"`
}
