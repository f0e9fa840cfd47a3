package location

import "strings"

// Resolved is the outcome of turning free-text location input into a
// city plus optional neighborhood.
type Resolved struct {
	City         string
	Neighborhood string
	Confidence   float64
}

// Resolver turns free-text location names into structured locations.
// The production resolver is an external collaborator; StaticResolver
// below covers the cities and neighborhoods the bundled sources serve.
type Resolver interface {
	Resolve(freeText string) (Resolved, error)
}

// neighborhoodAliases maps a neighborhood to names third-party sites
// use for the same area. Matching is symmetric and case-insensitive.
var neighborhoodAliases = map[string][]string{
	"usaquén":       {"usaquen", "cedritos", "santa bárbara", "santa barbara", "country club"},
	"chapinero":     {"chapinero alto", "quinta camacho", "chico", "chicó", "el nogal"},
	"suba":          {"niza", "colina campestre", "mazurén", "mazuren"},
	"teusaquillo":   {"galerías", "galerias", "la soledad"},
	"el poblado":    {"poblado", "provenza", "manila"},
	"laureles":      {"laureles-estadio", "estadio"},
	"granada":       {"granada norte"},
	"ciudad jardín": {"ciudad jardin", "pance"},
}

var knownCities = []string{
	"bogotá", "bogota", "medellín", "medellin", "cali", "barranquilla",
	"cartagena", "bucaramanga", "pereira", "manizales",
}

// IsKnownCity reports whether the name is one of the cities the
// bundled sources serve.
func IsKnownCity(name string) bool {
	n := normalize(name)
	for _, city := range knownCities {
		if n == city {
			return true
		}
	}
	return false
}

// StaticResolver resolves against the alias table above. It never
// fails: unknown input resolves to itself as a city with low
// confidence, which keeps the engine usable for cities the table does
// not know.
type StaticResolver struct{}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{}
}

func (r *StaticResolver) Resolve(freeText string) (Resolved, error) {
	text := normalize(freeText)
	if text == "" {
		return Resolved{City: "bogotá", Confidence: 0.1}, nil
	}

	for _, city := range knownCities {
		if strings.Contains(text, city) {
			res := Resolved{City: city, Confidence: 0.9}
			if hood := matchNeighborhood(text); hood != "" {
				res.Neighborhood = hood
			}
			return res, nil
		}
	}

	if hood := matchNeighborhood(text); hood != "" {
		return Resolved{City: cityForNeighborhood(hood), Neighborhood: hood, Confidence: 0.7}, nil
	}

	return Resolved{City: text, Confidence: 0.3}, nil
}

// Match reports whether two neighborhood names refer to the same area,
// by containment or via the alias table. Third-party sites are
// inconsistent about naming, so exact comparison is useless here.
func Match(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	for canonical, aliases := range neighborhoodAliases {
		if nameInGroup(na, canonical, aliases) && nameInGroup(nb, canonical, aliases) {
			return true
		}
	}
	return false
}

func nameInGroup(name, canonical string, aliases []string) bool {
	if strings.Contains(name, canonical) || strings.Contains(canonical, name) {
		return true
	}
	for _, alias := range aliases {
		if strings.Contains(name, alias) || strings.Contains(alias, name) {
			return true
		}
	}
	return false
}

func matchNeighborhood(text string) string {
	for canonical, aliases := range neighborhoodAliases {
		if strings.Contains(text, canonical) {
			return canonical
		}
		for _, alias := range aliases {
			if strings.Contains(text, alias) {
				return canonical
			}
		}
	}
	return ""
}

func cityForNeighborhood(hood string) string {
	switch hood {
	case "el poblado", "laureles":
		return "medellín"
	case "granada", "ciudad jardín":
		return "cali"
	default:
		return "bogotá"
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
