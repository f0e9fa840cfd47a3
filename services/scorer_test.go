package services

import (
	"reflect"
	"testing"

	"rentradar/models"
)

func scoringCriteria() models.SearchCriteria {
	return models.SearchCriteria{
		HardRequirements: models.HardRequirements{Location: "Usaquén"},
		Preferences: models.Preferences{
			WetAreas: []models.PreferenceItem{
				{Name: "jacuzzi", Level: models.PreferenceEssential},
				{Name: "sauna", Level: models.PreferenceNice},
			},
			Sports: []models.PreferenceItem{
				{Name: "gimnasio", Level: models.PreferenceNice},
			},
			Amenities: []models.PreferenceItem{
				{Name: "terraza", Level: models.PreferenceEssential},
			},
			Weights: models.PreferenceWeights{
				WetAreas:   2.0,
				Sports:     1.0,
				Amenities:  1.5,
				Location:   3.0,
				PricePerM2: 2.0,
			},
		},
	}
}

func scoringSet() []models.Property {
	a := models.Property{
		ID: "a", Source: "fincaraiz", Title: "Apartamento con jacuzzi y terraza",
		Price: 3000000, Area: 100,
		Location:  models.Location{Neighborhood: "Cedritos"},
		Amenities: []string{"Jacuzzi", "Terraza", "Gimnasio"},
	}
	b := models.Property{
		ID: "b", Source: "metrocuadrado", Title: "Apartamento Kennedy",
		Price: 2000000, Area: 50,
		Location: models.Location{Neighborhood: "Kennedy"},
	}
	a.RecomputeDerived()
	b.RecomputeDerived()
	return []models.Property{b, a}
}

func TestScoreAndRank_Ordering(t *testing.T) {
	criteria := scoringCriteria()
	out := ScoreAndRank(scoringSet(), criteria, map[string]int{"fincaraiz": 1, "metrocuadrado": 2})

	if out[0].ID != "a" {
		t.Fatalf("top result = %s, want a", out[0].ID)
	}
	if out[0].Score <= out[1].Score {
		t.Errorf("scores not descending: %.2f <= %.2f", out[0].Score, out[1].Score)
	}

	// jacuzzi(essential)*2 + gimnasio(nice)*1*0.5 + terraza(essential)*1.5
	// + location 3 + price/m2 term; matches list only names the hits
	wantMatches := []string{"jacuzzi", "gimnasio", "terraza", "location:usaquén"}
	if !reflect.DeepEqual(out[0].PreferenceMatches, wantMatches) {
		t.Errorf("matches = %v, want %v", out[0].PreferenceMatches, wantMatches)
	}
}

func TestScoreAndRank_Deterministic(t *testing.T) {
	criteria := scoringCriteria()
	priorities := map[string]int{"fincaraiz": 1, "metrocuadrado": 2}

	first := ScoreAndRank(scoringSet(), criteria, priorities)
	for i := 0; i < 5; i++ {
		again := ScoreAndRank(scoringSet(), criteria, priorities)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced different output", i)
		}
	}
}

func TestScoreAndRank_TieBreaks(t *testing.T) {
	// no preferences: everything scores identically on the ppm2 term
	// when price per m2 is equal
	a := models.Property{ID: "a", Source: "metrocuadrado", Title: "A", Price: 2000000, Area: 100}
	b := models.Property{ID: "b", Source: "fincaraiz", Title: "B", Price: 2000000, Area: 100}
	c := models.Property{ID: "c", Source: "fincaraiz", Title: "C", Price: 1000000, Area: 50}
	for _, p := range []*models.Property{&a, &b, &c} {
		p.RecomputeDerived()
	}

	out := ScoreAndRank([]models.Property{a, b, c}, models.SearchCriteria{}, map[string]int{"fincaraiz": 1, "metrocuadrado": 2})

	// same score everywhere: cheaper total price first, then priority
	if out[0].ID != "c" {
		t.Errorf("first = %s, want c (lowest total price)", out[0].ID)
	}
	if out[1].ID != "b" || out[2].ID != "a" {
		t.Errorf("order = %s, %s; want b then a (priority)", out[1].ID, out[2].ID)
	}
}

func TestScoreAndRank_CheaperPerM2ScoresHigher(t *testing.T) {
	cheap := models.Property{ID: "cheap", Source: "s", Title: "X", Price: 2000000, Area: 100}
	dear := models.Property{ID: "dear", Source: "s", Title: "Y", Price: 4000000, Area: 100}
	cheap.RecomputeDerived()
	dear.RecomputeDerived()

	criteria := models.SearchCriteria{
		Preferences: models.Preferences{Weights: models.PreferenceWeights{PricePerM2: 1.0}},
	}
	out := ScoreAndRank([]models.Property{dear, cheap}, criteria, nil)
	if out[0].ID != "cheap" {
		t.Errorf("top = %s, want cheap", out[0].ID)
	}
}

func TestScoreAndRank_DoesNotMutateInput(t *testing.T) {
	set := scoringSet()
	ScoreAndRank(set, scoringCriteria(), nil)
	for _, p := range set {
		if p.Score != 0 || p.PreferenceMatches != nil {
			t.Fatal("input slice was mutated")
		}
	}
}
