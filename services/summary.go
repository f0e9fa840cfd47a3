package services

import (
	"fmt"

	"rentradar/models"
)

// priceBucketBounds in Colombian pesos, chosen to match the rent bands
// the sources themselves advertise with.
var priceBucketBounds = []int{1_000_000, 2_000_000, 3_000_000, 5_000_000, 8_000_000}

// Summarize aggregates the full scored set (not just the returned
// page) into averages and breakdowns.
func Summarize(properties []models.Property) models.Summary {
	s := models.Summary{
		SourceBreakdown:       map[string]int{},
		NeighborhoodBreakdown: map[string]int{},
		PriceDistribution:     buildBuckets(),
	}
	if len(properties) == 0 {
		return s
	}

	var sumPrice, sumPPM2, sumArea, ppm2Count, areaCount int
	for i := range properties {
		p := &properties[i]
		sumPrice += p.Price
		if p.PricePerM2 > 0 {
			sumPPM2 += p.PricePerM2
			ppm2Count++
		}
		if p.Area > 0 {
			sumArea += p.Area
			areaCount++
		}
		s.SourceBreakdown[p.Source]++
		if hood := p.Location.Neighborhood; hood != "" {
			s.NeighborhoodBreakdown[hood]++
		}
		bucketFor(s.PriceDistribution, p.TotalPrice)
	}

	s.AveragePrice = sumPrice / len(properties)
	if ppm2Count > 0 {
		s.AveragePricePerM2 = sumPPM2 / ppm2Count
	}
	if areaCount > 0 {
		s.AverageArea = sumArea / areaCount
	}
	return s
}

func buildBuckets() []models.PriceBucket {
	buckets := make([]models.PriceBucket, 0, len(priceBucketBounds)+1)
	prev := 0
	for _, bound := range priceBucketBounds {
		buckets = append(buckets, models.PriceBucket{
			Range: fmt.Sprintf("%s-%s", formatMillions(prev), formatMillions(bound)),
			Min:   prev,
			Max:   bound,
		})
		prev = bound
	}
	buckets = append(buckets, models.PriceBucket{
		Range: formatMillions(prev) + "+",
		Min:   prev,
		Max:   0,
	})
	return buckets
}

func bucketFor(buckets []models.PriceBucket, price int) {
	for i := range buckets {
		b := &buckets[i]
		if price >= b.Min && (b.Max == 0 || price < b.Max) {
			b.Count++
			return
		}
	}
}

func formatMillions(v int) string {
	if v == 0 {
		return "0"
	}
	if v%1_000_000 == 0 {
		return fmt.Sprintf("%dM", v/1_000_000)
	}
	return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
}

// Paginate slices one page out of the ordered set. Pages are 1-based;
// out-of-range pages yield an empty slice, never an error.
func Paginate(properties []models.Property, page, limit int) []models.Property {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(properties) {
		return []models.Property{}
	}
	end := start + limit
	if end > len(properties) {
		end = len(properties)
	}
	return properties[start:end]
}
