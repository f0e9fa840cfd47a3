package services

import (
	"strings"

	"rentradar/models"
)

const minTitleLength = 5

// IsValid is the quality gate between normalization and filtering. It
// drops records that survived parsing but carry too little substance to
// show a user: trivial titles, non-positive prices, and listings with
// neither a resolvable location nor any size signal.
func IsValid(p *models.Property) bool {
	if len(strings.TrimSpace(p.Title)) < minTitleLength {
		return false
	}
	if p.Price <= 0 {
		return false
	}
	hasLocation := p.Location.Address != "" || p.Location.Neighborhood != "" || p.Location.City != ""
	if !hasLocation && p.Area <= 0 && p.Rooms <= 0 {
		return false
	}
	return true
}

// FilterValid returns the valid subset and how many were dropped.
func FilterValid(properties []models.Property) (valid []models.Property, dropped int) {
	valid = make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if IsValid(&p) {
			valid = append(valid, p)
		} else {
			dropped++
		}
	}
	return valid, dropped
}
