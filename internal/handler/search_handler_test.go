package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/entity"
	"github.com/platemark/platemark-api/internal/geo"
	"github.com/platemark/platemark-api/internal/geocode"
	"github.com/platemark/platemark-api/internal/service"
)

type stubSearchRepo struct {
	matches []entity.Restaurant
}

func (s *stubSearchRepo) FindByText(ctx context.Context, q string, filter dto.ListFilter) ([]entity.Restaurant, error) {
	return s.matches, nil
}

func (s *stubSearchRepo) FindByRadius(ctx context.Context, center geo.Point, radiusKm float64, filter dto.ListFilter) ([]entity.Restaurant, error) {
	return nil, nil
}

func (s *stubSearchRepo) FindByCity(ctx context.Context, city string) ([]entity.Restaurant, error) {
	return nil, nil
}

type stubHandlerGeocoder struct{}

func (stubHandlerGeocoder) Geocode(ctx context.Context, query string, opts geocode.Options) (*geocode.Result, error) {
	return nil, nil
}

func TestSearchHandler_LocalMatch(t *testing.T) {
	svc := service.NewSearchService(&stubSearchRepo{matches: []entity.Restaurant{{Name: "Da Enzo"}}}, stubHandlerGeocoder{})
	handler := NewSearchHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/search?q=enzo", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Message != `Found 1 restaurant matching "enzo"` {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
}

func TestSearchHandler_BlankQuery(t *testing.T) {
	svc := service.NewSearchService(&stubSearchRepo{}, stubHandlerGeocoder{})
	handler := NewSearchHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Message != "Please enter a search term" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
}

func TestSearchHandler_InvalidCoordinates(t *testing.T) {
	svc := service.NewSearchService(&stubSearchRepo{}, stubHandlerGeocoder{})
	handler := NewSearchHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/search?q=enzo&lat=abc&lng=2.1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Search(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/search?q=enzo&lat=91&lng=2.1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	_ = handler.Search(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range latitude, got %d", rec.Code)
	}
}
