package services

import (
	"fmt"
	"strings"

	"rentradar/identity"
	"rentradar/models"
)

// Deduplicate collapses the concatenated output of every source into
// unique listings. The key is the canonical absolute URL when the
// record has one, otherwise lowercased title plus total price. The
// first occurrence wins; sources are iterated in priority order, so a
// higher-priority source's version of a listing survives. Duplicates
// are dropped whole, never merged field by field.
func Deduplicate(properties []models.Property) (unique []models.Property, dropped int) {
	seen := make(map[string]struct{}, len(properties))
	unique = make([]models.Property, 0, len(properties))

	for _, p := range properties {
		key := dedupKey(&p)
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique, dropped
}

func dedupKey(p *models.Property) string {
	if canonical := identity.CanonicalURL(p.URL); canonical != "" {
		return canonical
	}
	return fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(p.Title)), p.TotalPrice)
}
