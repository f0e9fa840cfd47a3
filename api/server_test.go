package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rentradar/config"
	"rentradar/models"
)

type stubSearcher struct {
	lastCriteria models.SearchCriteria
	result       *models.SearchResult
}

func (s *stubSearcher) Search(ctx context.Context, criteria models.SearchCriteria, page, limit int) *models.SearchResult {
	s.lastCriteria = criteria
	if s.result != nil {
		return s.result
	}
	return models.EmptyResult(page, limit)
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr: ":0",
		Sources: map[string]*config.ScrapingSource{
			"fincaraiz":     {ID: "fincaraiz", Name: "Fincaraíz", Active: true, Priority: 1},
			"metrocuadrado": {ID: "metrocuadrado", Name: "Metrocuadrado", Active: true, Priority: 2},
			"properati":     {ID: "properati", Name: "Properati", Active: false},
		},
	}
}

func TestHandleSearch(t *testing.T) {
	searcher := &stubSearcher{
		result: &models.SearchResult{
			Properties: []models.Property{{ID: "p1", Title: "Apartamento Cedritos", Price: 2500000}},
			Total:      1,
			Page:       1,
			Limit:      20,
		},
	}
	srv := NewServer(testConfig(), searcher, nil)

	body := `{"criteria":{"hard_requirements":{"operation":"rent","min_area":70}},"page":1,"limit":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Success bool                `json:"success"`
		Data    models.SearchResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Total != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if searcher.lastCriteria.HardRequirements.MinArea != 70 {
		t.Errorf("criteria not passed through: %+v", searcher.lastCriteria.HardRequirements)
	}
}

func TestHandleSearch_BadBody(t *testing.T) {
	srv := NewServer(testConfig(), &stubSearcher{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSources(t *testing.T) {
	srv := NewServer(testConfig(), &stubSearcher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp struct {
		Success bool         `json:"success"`
		Data    []sourceInfo `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d sources, want 2 active", len(resp.Data))
	}
	// priority order
	if resp.Data[0].ID != "fincaraiz" || resp.Data[1].ID != "metrocuadrado" {
		t.Errorf("order = %s, %s", resp.Data[0].ID, resp.Data[1].ID)
	}
}

func TestHandleRuns_Disabled(t *testing.T) {
	srv := NewServer(testConfig(), &stubSearcher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(testConfig(), &stubSearcher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status["status"] != "ok" {
		t.Errorf("status = %v", status["status"])
	}
}
