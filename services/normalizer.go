package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"rentradar/config"
	"rentradar/identity"
	"rentradar/location"
	"rentradar/models"
	"rentradar/scraper"
)

// ErrUnparseable is the one hard failure of the pipeline: a record
// where price, area and rooms are all unresolvable carries no signal
// worth keeping.
var ErrUnparseable = errors.New("record has no parseable price, area or rooms")

// Normalize turns one raw record into a canonical Property. It is a
// pure function: no network, no rate limiter, no shared state. Parse
// failures on individual fields default to zero; only a record with no
// numeric signal at all is rejected.
func Normalize(raw models.RawRecord, src *config.ScrapingSource) (models.Property, error) {
	price := scraper.ParseNumber(raw.Price)
	area := scraper.ParseNumber(raw.Area)
	rooms := scraper.ParseNumber(raw.Rooms)

	if price == 0 && area == 0 && rooms == 0 {
		return models.Property{}, ErrUnparseable
	}

	now := time.Now()
	p := models.Property{
		Source:      src.ID,
		Title:       strings.TrimSpace(raw.Title),
		Price:       price,
		AdminFee:    scraper.ParseNumber(raw.AdminFee),
		Area:        area,
		Rooms:       rooms,
		Bathrooms:   scraper.ParseNumber(raw.Bathrooms),
		Parking:     scraper.ParseNumber(raw.Parking),
		Stratum:     scraper.ParseNumber(raw.Stratum),
		Location:    normalizeLocation(raw),
		Amenities:   raw.Amenities,
		Description: strings.TrimSpace(raw.Description),
		Images:      raw.Images,
		URL:         raw.URL,
		ScrapedAt:   now,
		FirstSeenAt: now,
		IsActive:    true,
	}
	p.RecomputeDerived()
	p.ID = identity.PropertyID(src.ID, p.URL, p.Title, p.TotalPrice)

	return p, nil
}

const defaultCity = "Bogotá"

// normalizeLocation passes structured location data through and falls
// back to a comma-split heuristic for free-text strings: the second
// segment is the neighborhood, unless it names a city.
func normalizeLocation(raw models.RawRecord) models.Location {
	loc := models.Location{
		Address:      strings.TrimSpace(raw.Location),
		Neighborhood: strings.TrimSpace(raw.Neighborhood),
		City:         strings.TrimSpace(raw.City),
		Coordinates:  parseCoordinates(raw.Lat, raw.Lng),
	}

	if loc.Neighborhood == "" && loc.Address != "" {
		parts := strings.Split(loc.Address, ",")
		if len(parts) >= 2 {
			second := strings.TrimSpace(parts[1])
			if location.IsKnownCity(second) {
				loc.Neighborhood = strings.TrimSpace(parts[0])
				if loc.City == "" {
					loc.City = second
				}
			} else {
				loc.Neighborhood = second
			}
		}
	}

	if loc.City == "" {
		loc.City = defaultCity
	}
	return loc
}

func parseCoordinates(latText, lngText string) *models.Coordinates {
	if latText == "" || lngText == "" {
		return nil
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &models.Coordinates{Lat: lat, Lng: lng}
}
