package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks whether a restaurant has been visited yet.
type Status string

// Restaurant status values.
const (
	StatusToVisit Status = "to-visit"
	StatusVisited Status = "visited"
)

// Appreciation is the personal enjoyment rating, distinct from the public
// aggregate rating.
type Appreciation string

// Appreciation levels. Unknown is the restaurant-level default and never a
// valid visit rating.
const (
	AppreciationUnknown Appreciation = "unknown"
	AppreciationAvoid   Appreciation = "avoid"
	AppreciationFine    Appreciation = "fine"
	AppreciationGood    Appreciation = "good"
	AppreciationGreat   Appreciation = "great"
)

// PriceRange buckets a restaurant by cost.
type PriceRange string

// Price range buckets.
const (
	PriceCheap     PriceRange = "$"
	PriceModerate  PriceRange = "$$"
	PriceExpensive PriceRange = "$$$"
	PriceLuxury    PriceRange = "$$$$"
)

// Restaurant is a bookmarked establishment with its locations and any
// enrichment pulled from Google Places.
type Restaurant struct {
	ID                   uuid.UUID    `json:"id"`
	Name                 string       `json:"name"`
	Status               Status       `json:"status"`
	Cuisine              string       `json:"cuisine"`
	PriceRange           PriceRange   `json:"price_range"`
	Phone                *string      `json:"phone,omitempty"`
	PublicRating         *float64     `json:"public_rating,omitempty"`
	PublicRatingCount    *int         `json:"public_rating_count,omitempty"`
	PersonalAppreciation Appreciation `json:"personal_appreciation"`
	MustTryDishes        []string     `json:"must_try_dishes"`
	ReviewSummary        *string      `json:"review_summary,omitempty"`
	SummaryUpdatedAt     *time.Time   `json:"summary_updated_at,omitempty"`
	LatestReviewDate     *time.Time   `json:"latest_review_date,omitempty"`
	Locations            []Location   `json:"locations"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// Location is one address of a restaurant. A restaurant owns one or more.
type Location struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	FullAddress  string    `json:"full_address"`
	City         string    `json:"city"`
	Country      *string   `json:"country,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
}

// PrimaryLocation returns the first location, if any.
func (r *Restaurant) PrimaryLocation() *Location {
	if len(r.Locations) == 0 {
		return nil
	}
	return &r.Locations[0]
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	return s == StatusToVisit || s == StatusVisited
}

// ValidVisitRating reports whether a is acceptable as a visit rating.
// Unknown is deliberately excluded: a visit must carry a real judgment.
func ValidVisitRating(a Appreciation) bool {
	switch a {
	case AppreciationAvoid, AppreciationFine, AppreciationGood, AppreciationGreat:
		return true
	default:
		return false
	}
}

// ValidPriceRange reports whether p is a known price bucket.
func ValidPriceRange(p PriceRange) bool {
	switch p {
	case PriceCheap, PriceModerate, PriceExpensive, PriceLuxury:
		return true
	default:
		return false
	}
}
