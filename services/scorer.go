package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"rentradar/location"
	"rentradar/models"
)

const (
	essentialMatchValue = 1.0
	niceMatchValue      = 0.5
)

// ScoreAndRank computes the weighted preference score for every
// property and returns the set ordered by descending score. Ties break
// on lower total price, then on source priority. Pure and
// deterministic: identical inputs produce identical ordering.
func ScoreAndRank(properties []models.Property, criteria models.SearchCriteria, priorities map[string]int) []models.Property {
	scored := make([]models.Property, len(properties))
	copy(scored, properties)

	minPPM2 := minPricePerM2(scored)
	prefs := criteria.Preferences
	for i := range scored {
		scoreProperty(&scored[i], &prefs, criteria.HardRequirements.Location, minPPM2)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := &scored[i], &scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TotalPrice != b.TotalPrice {
			return a.TotalPrice < b.TotalPrice
		}
		return priorities[a.Source] < priorities[b.Source]
	})
	return scored
}

func scoreProperty(p *models.Property, prefs *models.Preferences, wantedLocation string, minPPM2 int) {
	var score float64
	var matches []string

	score += matchGroup(p, prefs.WetAreas, prefs.Weights.WetAreas, &matches)
	score += matchGroup(p, prefs.Sports, prefs.Weights.Sports, &matches)
	score += matchGroup(p, prefs.Amenities, prefs.Weights.Amenities, &matches)

	if wantedLocation != "" && matchesLocation(p, wantedLocation) {
		score += prefs.Weights.Location
		matches = append(matches, "location:"+strings.ToLower(wantedLocation))
	}

	// cheaper per square meter scores higher; the set's best value
	// anchors the scale so the term stays in [0,1]
	if minPPM2 > 0 && p.PricePerM2 > 0 {
		score += prefs.Weights.PricePerM2 * float64(minPPM2) / float64(p.PricePerM2)
	}

	p.Score = math.Round(score*100) / 100
	p.PreferenceMatches = matches
}

func matchGroup(p *models.Property, items []models.PreferenceItem, weight float64, matches *[]string) float64 {
	var score float64
	for _, item := range items {
		if !propertyMentions(p, item.Name) {
			continue
		}
		value := niceMatchValue
		if item.Level == models.PreferenceEssential {
			value = essentialMatchValue
		}
		score += weight * value
		*matches = append(*matches, strings.ToLower(item.Name))
	}
	return score
}

// propertyMentions checks amenities, description and title for a
// preference term, tolerating the alias table for location-like terms.
func propertyMentions(p *models.Property, name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return false
	}
	for _, a := range p.Amenities {
		if strings.Contains(strings.ToLower(a), n) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(p.Description), n) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), n) {
		return true
	}
	return location.Match(p.Location.Neighborhood, n)
}

func minPricePerM2(properties []models.Property) int {
	min := 0
	for i := range properties {
		ppm2 := properties[i].PricePerM2
		if ppm2 <= 0 {
			continue
		}
		if min == 0 || ppm2 < min {
			min = ppm2
		}
	}
	return min
}

// DescribeScore is a debugging aid for the CLI search mode.
func DescribeScore(p *models.Property) string {
	if len(p.PreferenceMatches) == 0 {
		return fmt.Sprintf("%.2f", p.Score)
	}
	return fmt.Sprintf("%.2f (%s)", p.Score, strings.Join(p.PreferenceMatches, ", "))
}
