package services

import (
	"testing"

	"rentradar/models"
)

func boolPtr(b bool) *bool { return &b }

func TestHardFilter_AreaRange(t *testing.T) {
	input := []models.Property{
		{Title: "A", Price: 2000000, Area: 60},
		{Title: "B", Price: 2200000, Area: 80},
		{Title: "C", Price: 5000000, Area: 150},
	}
	hard := models.HardRequirements{MinArea: 70, MaxArea: 110}

	out := ApplyHardFilter(input, hard)
	if len(out) != 1 {
		t.Fatalf("kept %d, want 1", len(out))
	}
	if out[0].Area != 80 {
		t.Errorf("kept area %d, want 80", out[0].Area)
	}
}

func TestHardFilter_UnsetBoundsPassEverything(t *testing.T) {
	input := []models.Property{
		{Title: "A", Price: 900000, Area: 30, Rooms: 1},
		{Title: "B", Price: 9000000, Area: 300, Rooms: 6},
	}
	out := ApplyHardFilter(input, models.HardRequirements{})
	if len(out) != 2 {
		t.Errorf("kept %d, want 2", len(out))
	}
}

func TestHardFilter_UnreportedStratumNotExcluded(t *testing.T) {
	input := []models.Property{
		{Title: "reported low", Price: 2000000, Area: 80, Stratum: 2},
		{Title: "reported ok", Price: 2000000, Area: 80, Stratum: 4},
		{Title: "unreported", Price: 2000000, Area: 80, Stratum: 0},
	}
	hard := models.HardRequirements{MinStratum: 3, MaxStratum: 6}

	out := ApplyHardFilter(input, hard)
	if len(out) != 2 {
		t.Fatalf("kept %d, want 2", len(out))
	}
	for _, p := range out {
		if p.Stratum == 2 {
			t.Error("stratum 2 should have been excluded")
		}
	}
}

func TestHardFilter_LocationAliases(t *testing.T) {
	input := []models.Property{
		{Title: "A", Price: 2000000, Area: 80, Location: models.Location{Neighborhood: "Cedritos"}},
		{Title: "B", Price: 2000000, Area: 80, Location: models.Location{Neighborhood: "Kennedy"}},
	}
	// Cedritos sits inside Usaquén; the alias table should bridge that
	out := ApplyHardFilter(input, models.HardRequirements{Location: "Usaquén"})
	if len(out) != 1 {
		t.Fatalf("kept %d, want 1", len(out))
	}
	if out[0].Location.Neighborhood != "Cedritos" {
		t.Errorf("kept %q, want Cedritos", out[0].Location.Neighborhood)
	}
}

func TestOptionalFilters(t *testing.T) {
	base := []models.Property{
		{Title: "A", Source: "fincaraiz", Price: 2000000, Area: 80,
			Location: models.Location{Neighborhood: "Cedritos"},
			Amenities: []string{"Amoblado", "Parqueadero cubierto"}},
		{Title: "B", Source: "metrocuadrado", Price: 3500000, Area: 95,
			Location:    models.Location{Neighborhood: "Chicó"},
			Description: "acepta mascotas"},
	}

	t.Run("source allow-list", func(t *testing.T) {
		out := ApplyOptionalFilters(base, models.OptionalFilters{Sources: []string{"Metrocuadrado"}})
		if len(out) != 1 || out[0].Source != "metrocuadrado" {
			t.Errorf("got %+v", out)
		}
	})

	t.Run("neighborhood list", func(t *testing.T) {
		out := ApplyOptionalFilters(base, models.OptionalFilters{Neighborhoods: []string{"cedritos"}})
		if len(out) != 1 || out[0].Title != "A" {
			t.Errorf("got %d results", len(out))
		}
	})

	t.Run("price sub-range", func(t *testing.T) {
		out := ApplyOptionalFilters(base, models.OptionalFilters{MaxPrice: 3000000})
		if len(out) != 1 || out[0].Title != "A" {
			t.Errorf("got %d results", len(out))
		}
	})

	t.Run("furnished", func(t *testing.T) {
		out := ApplyOptionalFilters(base, models.OptionalFilters{Furnished: boolPtr(true)})
		if len(out) != 1 || out[0].Title != "A" {
			t.Errorf("got %d results", len(out))
		}
		out = ApplyOptionalFilters(base, models.OptionalFilters{Furnished: boolPtr(false)})
		if len(out) != 1 || out[0].Title != "B" {
			t.Errorf("got %d results", len(out))
		}
	})

	t.Run("pets from description", func(t *testing.T) {
		out := ApplyOptionalFilters(base, models.OptionalFilters{Pets: boolPtr(true)})
		if len(out) != 1 || out[0].Title != "B" {
			t.Errorf("got %d results", len(out))
		}
	})
}
