package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/entity"
	"github.com/platemark/platemark-api/internal/geo"
	"github.com/platemark/platemark-api/internal/geocode"
)

const (
	// defaultWalkingLimitMinutes bounds the proximity tier to a walk a
	// person would actually take.
	defaultWalkingLimitMinutes = 20

	// geocodeBiasRadiusKm keeps geocoding results near the user when their
	// position is known.
	geocodeBiasRadiusKm = 50
)

// SearchRepository is the slice of restaurant persistence the search tiers
// need.
type SearchRepository interface {
	FindByText(ctx context.Context, q string, filter dto.ListFilter) ([]entity.Restaurant, error)
	FindByRadius(ctx context.Context, center geo.Point, radiusKm float64, filter dto.ListFilter) ([]entity.Restaurant, error)
	FindByCity(ctx context.Context, city string) ([]entity.Restaurant, error)
}

// SearchService runs the tiered restaurant search: saved entries first, then
// walking distance around a geocoded place, then the whole city.
type SearchService struct {
	repo                SearchRepository
	geocoder            geocode.Geocoder
	walkingLimitMinutes float64
}

// NewSearchService wires the search orchestrator.
func NewSearchService(repo SearchRepository, geocoder geocode.Geocoder) *SearchService {
	return &SearchService{
		repo:                repo,
		geocoder:            geocoder,
		walkingLimitMinutes: defaultWalkingLimitMinutes,
	}
}

// Search resolves a query through the three tiers. It only returns an error
// for repository failures; geocoding misses degrade to an empty result.
func (s *SearchService) Search(ctx context.Context, query dto.SearchQuery) (*dto.SearchResult, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return &dto.SearchResult{
			Strategy:    dto.StrategyLocal,
			Restaurants: []entity.Restaurant{},
			Message:     "Please enter a search term",
		}, nil
	}

	filter := dto.ListFilter{Cuisine: query.Cuisine, Status: query.Status}

	matches, err := s.repo.FindByText(ctx, text, filter)
	if err != nil {
		return nil, fmt.Errorf("local search: %w", err)
	}
	if len(matches) > 0 {
		return &dto.SearchResult{
			Strategy:    dto.StrategyLocal,
			Restaurants: matches,
			Message:     fmt.Sprintf("Found %s matching %q", countPhrase(len(matches)), text),
		}, nil
	}

	opts := geocode.Options{}
	if query.UserLocation != nil && query.UserLocation.Valid() {
		opts.BiasCenter = query.UserLocation
		opts.BiasRadiusKm = geocodeBiasRadiusKm
	}
	place, err := s.geocoder.Geocode(ctx, text, opts)
	if err != nil || place == nil {
		return &dto.SearchResult{
			Strategy:    dto.StrategyLocal,
			Restaurants: []entity.Restaurant{},
			Message:     fmt.Sprintf("No restaurants found matching %q", text),
		}, nil
	}

	location := &dto.SearchLocation{Point: place.Point, City: place.City}

	radiusKm := geo.WalkingRadiusKm(s.walkingLimitMinutes)
	nearby, err := s.repo.FindByRadius(ctx, place.Point, radiusKm, filter)
	if err != nil {
		return nil, fmt.Errorf("proximity search: %w", err)
	}
	if len(nearby) > 0 {
		return &dto.SearchResult{
			Strategy:       dto.StrategyProximity,
			Restaurants:    nearby,
			SearchLocation: location,
			Message:        fmt.Sprintf("Found %s within walking distance", countPhrase(len(nearby))),
		}, nil
	}

	city := strings.TrimSpace(place.City)
	if city == "" {
		return &dto.SearchResult{
			Strategy:       dto.StrategyLocal,
			Restaurants:    []entity.Restaurant{},
			SearchLocation: location,
			Message:        fmt.Sprintf("No restaurants found matching %q", text),
		}, nil
	}

	inCity, err := s.repo.FindByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("city search: %w", err)
	}
	if inCity == nil {
		inCity = []entity.Restaurant{}
	}

	return &dto.SearchResult{
		Strategy:       dto.StrategyCity,
		Restaurants:    inCity,
		SearchLocation: location,
		Message:        "Showing all restaurants in " + city,
	}, nil
}

func countPhrase(n int) string {
	if n == 1 {
		return "1 restaurant"
	}
	return fmt.Sprintf("%d restaurants", n)
}
