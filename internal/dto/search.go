package dto

import (
	"github.com/platemark/platemark-api/internal/entity"
	"github.com/platemark/platemark-api/internal/geo"
)

// SearchStrategy names the tier that produced a search result.
type SearchStrategy string

// Search strategies, in fallback order.
const (
	StrategyLocal     SearchStrategy = "local"
	StrategyProximity SearchStrategy = "proximity"
	StrategyCity      SearchStrategy = "city"
)

// SearchQuery is the immutable per-call input to the smart geo search.
// Filters travel with the query instead of living in shared state.
type SearchQuery struct {
	Text         string
	Cuisine      string
	Status       string
	UserLocation *geo.Point
}

// SearchLocation is the geocoded anchor of a proximity or city result.
type SearchLocation struct {
	Point geo.Point `json:"point"`
	City  string    `json:"city"`
}

// SearchResult is the transient outcome of one search call.
type SearchResult struct {
	Strategy       SearchStrategy      `json:"strategy"`
	Restaurants    []entity.Restaurant `json:"restaurants"`
	SearchLocation *SearchLocation     `json:"search_location,omitempty"`
	Message        string              `json:"message"`
}
