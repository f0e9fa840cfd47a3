package services

import (
	"strings"

	"rentradar/location"
	"rentradar/models"
)

// ApplyHardFilter excludes every property outside any populated range
// of the mandatory requirements. Zero bounds are unset. Excluded
// records never reach the scorer.
func ApplyHardFilter(properties []models.Property, hard models.HardRequirements) []models.Property {
	out := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if matchesHard(&p, &hard) {
			out = append(out, p)
		}
	}
	return out
}

func matchesHard(p *models.Property, hard *models.HardRequirements) bool {
	if !inRange(p.Price, hard.MinPrice, hard.MaxPrice) {
		return false
	}
	if !inRange(p.Area, hard.MinArea, hard.MaxArea) {
		return false
	}
	if !inRange(p.Rooms, hard.MinRooms, hard.MaxRooms) {
		return false
	}
	if !inRange(p.Bathrooms, hard.MinBathrooms, hard.MaxBathrooms) {
		return false
	}
	if hard.MinParking > 0 && p.Parking < hard.MinParking {
		return false
	}
	// stratum 0 means the source never reported it; an unreported
	// stratum is not grounds for exclusion
	if p.Stratum > 0 && !inRange(p.Stratum, hard.MinStratum, hard.MaxStratum) {
		return false
	}
	if hard.Location != "" && !matchesLocation(p, hard.Location) {
		return false
	}
	return true
}

// matchesLocation tolerates the sources' inconsistent naming: direct
// containment in any location field, or a neighborhood-alias match.
func matchesLocation(p *models.Property, wanted string) bool {
	w := strings.ToLower(strings.TrimSpace(wanted))
	if w == "" {
		return true
	}
	for _, field := range []string{p.Location.Neighborhood, p.Location.City, p.Location.Address} {
		f := strings.ToLower(field)
		if f != "" && (strings.Contains(f, w) || strings.Contains(w, f)) {
			return true
		}
	}
	return location.Match(p.Location.Neighborhood, wanted) ||
		location.Match(p.Location.Address, wanted)
}

// ApplyOptionalFilters is the second, independent exclusion pass over
// the request-scoped optional criteria.
func ApplyOptionalFilters(properties []models.Property, opt models.OptionalFilters) []models.Property {
	out := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if matchesOptional(&p, &opt) {
			out = append(out, p)
		}
	}
	return out
}

func matchesOptional(p *models.Property, opt *models.OptionalFilters) bool {
	if len(opt.Sources) > 0 && !containsFold(opt.Sources, p.Source) {
		return false
	}
	if len(opt.Neighborhoods) > 0 {
		matched := false
		for _, hood := range opt.Neighborhoods {
			if matchesLocation(p, hood) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if !inRange(p.Price, opt.MinPrice, opt.MaxPrice) {
		return false
	}
	if opt.Furnished != nil && *opt.Furnished != hasAmenity(p, "amoblado") {
		return false
	}
	if opt.Parking != nil && *opt.Parking && p.Parking == 0 && !hasAmenity(p, "parqueadero") {
		return false
	}
	if opt.Pets != nil && *opt.Pets && !hasAmenity(p, "mascotas") {
		return false
	}
	return true
}

func inRange(v, min, max int) bool {
	if min > 0 && v < min {
		return false
	}
	if max > 0 && v > max {
		return false
	}
	return true
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func hasAmenity(p *models.Property, name string) bool {
	for _, a := range p.Amenities {
		if strings.Contains(strings.ToLower(a), name) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Description), name)
}
