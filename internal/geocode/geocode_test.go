package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/platemark/platemark-api/internal/geo"
)

func TestGoogleProxyGeocoderParsesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "Le Comptoir Paris" {
			t.Errorf("unexpected address param with hint: %q", got)
		}
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"geometry": {"location": {"lat": 48.8566, "lng": 2.3522}},
				"formatted_address": "Paris, France",
				"address_components": [
					{"long_name": "Paris", "types": ["locality", "political"]},
					{"long_name": "France", "types": ["country"]}
				]
			}]
		}`))
	}))
	defer server.Close()

	g := NewGoogleProxyGeocoder(server.Client(), server.URL)
	result, err := g.Geocode(context.Background(), "Paris", Options{Hint: "Le Comptoir"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatalf("expected a result")
	}
	if result.Point.Lat != 48.8566 || result.Point.Lng != 2.3522 {
		t.Fatalf("unexpected point: %+v", result.Point)
	}
	if result.City != "Paris" {
		t.Fatalf("expected locality city, got %q", result.City)
	}
}

func TestGoogleProxyGeocoderZeroResultsIsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	g := NewGoogleProxyGeocoder(server.Client(), server.URL)
	result, err := g.Geocode(context.Background(), "nowhere at all", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected miss, got %+v", result)
	}
}

func TestGoogleProxyGeocoderMalformedStatusIsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT"}`))
	}))
	defer server.Close()

	g := NewGoogleProxyGeocoder(server.Client(), server.URL)
	result, err := g.Geocode(context.Background(), "Paris", Options{})
	if err != nil || result != nil {
		t.Fatalf("non-OK status should collapse to a miss, got %+v, %v", result, err)
	}
}

func TestGoogleProxyGeocoderHTTPFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	g := NewGoogleProxyGeocoder(server.Client(), server.URL)
	if _, err := g.Geocode(context.Background(), "Paris", Options{}); err == nil {
		t.Fatalf("expected transport-level error for 502")
	}
}

func TestGoogleProxyGeocoderRejectsEmptyQuery(t *testing.T) {
	g := NewGoogleProxyGeocoder(&http.Client{}, "http://unused")
	if _, err := g.Geocode(context.Background(), "   ", Options{}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestNominatimGeocoderParsesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{
			"lat": "45.5017",
			"lon": "-73.5673",
			"display_name": "Montreal, Quebec, Canada",
			"address": {"city": "Montreal"}
		}]`))
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.Client(), server.URL)
	result, err := g.Geocode(context.Background(), "Montreal", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.City != "Montreal" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Point.Lat != 45.5017 || result.Point.Lng != -73.5673 {
		t.Fatalf("unexpected point: %+v", result.Point)
	}
}

func TestNominatimGeocoderEmptyArrayIsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.Client(), server.URL)
	result, err := g.Geocode(context.Background(), "nowhere", Options{})
	if err != nil || result != nil {
		t.Fatalf("expected miss, got %+v, %v", result, err)
	}
}

type stubGeocoder struct {
	result *Result
	err    error
	calls  int
}

func (s *stubGeocoder) Geocode(_ context.Context, _ string, _ Options) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func TestChainPrimaryMissDoesNotHitFallback(t *testing.T) {
	primary := &stubGeocoder{}
	fallback := &stubGeocoder{result: &Result{City: "Fallbackville"}}
	chain := NewChain(primary, fallback)

	result, err := chain.Geocode(context.Background(), "somewhere", Options{})
	if err != nil || result != nil {
		t.Fatalf("expected clean miss, got %+v, %v", result, err)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not be consulted after a clean primary miss")
	}
}

func TestChainPrimaryFailureFallsBack(t *testing.T) {
	primary := &stubGeocoder{err: errors.New("connection refused")}
	fallback := &stubGeocoder{result: &Result{City: "Lyon", Point: geo.Point{Lat: 45.76, Lng: 4.83}}}
	chain := NewChain(primary, fallback)

	result, err := chain.Geocode(context.Background(), "Lyon", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.City != "Lyon" {
		t.Fatalf("expected fallback result, got %+v", result)
	}
}

func TestChainNoPrimaryUsesFallback(t *testing.T) {
	fallback := &stubGeocoder{result: &Result{City: "Oslo"}}
	chain := NewChain(nil, fallback)

	result, err := chain.Geocode(context.Background(), "Oslo", Options{})
	if err != nil || result == nil || result.City != "Oslo" {
		t.Fatalf("expected fallback result, got %+v, %v", result, err)
	}
}

func TestChainBothFailingCollapsesToMiss(t *testing.T) {
	primary := &stubGeocoder{err: errors.New("down")}
	fallback := &stubGeocoder{err: errors.New("also down")}
	chain := NewChain(primary, fallback)

	result, err := chain.Geocode(context.Background(), "anywhere", Options{})
	if err != nil || result != nil {
		t.Fatalf("expected collapsed miss, got %+v, %v", result, err)
	}
}
