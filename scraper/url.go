package scraper

import (
	"strconv"
	"strings"

	"rentradar/location"
	"rentradar/models"
)

var slugReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ü", "u", "ñ", "n", "²", "2",
)

// operation and property-type vocabulary as the Colombian portals spell
// it in their URL paths
var (
	operationSlugs = map[string]string{
		"rent": "arriendo",
		"sale": "venta",
	}
	typeSlugs = map[string]string{
		"apartment": "apartamentos",
		"house":     "casas",
		"studio":    "apartaestudios",
		"room":      "habitaciones",
	}
)

// buildSearchURL renders the source's search-path template for one
// result page. The free-text location has already been resolved by the
// location collaborator.
func buildSearchURL(base, path string, criteria models.SearchCriteria, loc location.Resolved, page int) string {
	hard := criteria.HardRequirements

	operation := operationSlugs[strings.ToLower(hard.Operation)]
	if operation == "" {
		operation = "arriendo"
	}

	propertyType := "apartamentos"
	if len(hard.PropertyTypes) > 0 {
		if slug, ok := typeSlugs[strings.ToLower(hard.PropertyTypes[0])]; ok {
			propertyType = slug
		}
	}

	r := strings.NewReplacer(
		"{operation}", operation,
		"{type}", propertyType,
		"{city}", Slugify(loc.City),
		"{neighborhood}", Slugify(loc.Neighborhood),
		"{page}", strconv.Itoa(page),
	)

	return strings.TrimSuffix(base, "/") + r.Replace(path)
}

// Slugify lowercases, strips accents and joins words with hyphens, the
// way the portals build their path segments.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugReplacer.Replace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	return strings.Join(fields, "-")
}
