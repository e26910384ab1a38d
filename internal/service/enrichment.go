package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/time/rate"

	"github.com/platemark/platemark-api/internal/ai"
	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/entity"
	"github.com/platemark/platemark-api/internal/places"
	"github.com/platemark/platemark-api/internal/repository"
)

// ErrPlaceNotFound is surfaced verbatim to the caller when a restaurant has
// no match on Google Places.
var ErrPlaceNotFound = errors.New("Restaurant not found in Google Places")

const (
	// enrichmentStaleAfter is how long a summary stays fresh before a new
	// run picks the restaurant up again.
	enrichmentStaleAfter = 30 * 24 * time.Hour

	maxReviewsForSummary = 5
	maxExtractedDishes   = 3
)

// PlacesClient is the slice of the Places API the pipeline needs.
type PlacesClient interface {
	FindPlaceID(ctx context.Context, query string) (string, error)
	Details(ctx context.Context, placeID string) (*places.Details, error)
}

// EnrichmentRepository is the persistence surface of the pipeline.
type EnrichmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error)
	FindAllWithLocations(ctx context.Context) ([]entity.Restaurant, error)
	UpdateEnrichment(ctx context.Context, id uuid.UUID, update repository.EnrichmentUpdate) error
}

// ProgressFunc receives human-readable step notifications during a run.
type ProgressFunc func(step string)

// EnrichmentService pulls public data for bookmarked restaurants: rating,
// phone, recent reviews and an AI summary of them.
type EnrichmentService struct {
	repo        EnrichmentRepository
	places      PlacesClient
	summarizer  ai.Summarizer
	phoneRegion string
	delay       time.Duration
}

// NewEnrichmentService wires the enrichment pipeline. The delay paces
// consecutive restaurants in a batch.
func NewEnrichmentService(repo EnrichmentRepository, placesClient PlacesClient, summarizer ai.Summarizer, phoneRegion string, delay time.Duration) *EnrichmentService {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &EnrichmentService{
		repo:        repo,
		places:      placesClient,
		summarizer:  summarizer,
		phoneRegion: phoneRegion,
		delay:       delay,
	}
}

// NeedsEnrichment reports whether a restaurant has no summary yet or a stale
// one.
func NeedsEnrichment(restaurant *entity.Restaurant, now time.Time) bool {
	if restaurant.SummaryUpdatedAt == nil {
		return true
	}
	return now.Sub(*restaurant.SummaryUpdatedAt) > enrichmentStaleAfter
}

// EnrichRestaurant runs the full pipeline for one restaurant and persists the
// outcome. The progress callback is optional.
func (s *EnrichmentService) EnrichRestaurant(ctx context.Context, restaurant *entity.Restaurant, progress ProgressFunc) error {
	notify := func(step string) {
		if progress != nil {
			progress(step)
		}
	}

	notify(fmt.Sprintf("looking up %s on Google Places", restaurant.Name))
	placeID, err := s.places.FindPlaceID(ctx, buildPlacesQuery(restaurant))
	if err != nil {
		return fmt.Errorf("place lookup for %s: %w", restaurant.Name, err)
	}
	if placeID == "" {
		return ErrPlaceNotFound
	}

	notify("fetching place details and reviews")
	details, err := s.places.Details(ctx, placeID)
	if err != nil {
		return fmt.Errorf("place details for %s: %w", restaurant.Name, err)
	}

	reviews := newestReviews(details.Reviews, maxReviewsForSummary)
	texts := reviewTexts(reviews)

	var (
		summaryText string
		dishes      []string
	)
	if len(texts) == 0 {
		notify("no reviews available, using rating only")
		summaryText = ratingOnlySummary(details)
	} else {
		notify(fmt.Sprintf("summarizing %d reviews", len(texts)))
		summary, err := s.summarizer.Summarize(ctx, texts)
		if err != nil {
			return fmt.Errorf("summarize reviews for %s: %w", restaurant.Name, err)
		}
		summaryText = summary.Summary
		dishes = NormalizeDishes(summary.PopularDishes)
		if len(dishes) > maxExtractedDishes {
			dishes = dishes[:maxExtractedDishes]
		}
	}

	update := repository.EnrichmentUpdate{
		PublicRating:      details.Rating,
		PublicRatingCount: details.RatingCount,
		ReviewSummary:     summaryText,
		MustTryDishes:     mergeDishes(restaurant.MustTryDishes, dishes),
		LatestReviewDate:  latestReviewDate(reviews),
	}
	if phone := normalizePhoneNumber(details.Phone, s.phoneRegion); phone != "" {
		update.Phone = &phone
	}

	notify("saving enrichment")
	if err := s.repo.UpdateEnrichment(ctx, restaurant.ID, update); err != nil {
		return fmt.Errorf("save enrichment for %s: %w", restaurant.Name, err)
	}
	return nil
}

// RunBatch enriches the requested restaurants, or every stale one when the
// request names none. Failures are isolated per restaurant.
func (s *EnrichmentService) RunBatch(ctx context.Context, req dto.EnrichBatchRequest, progress ProgressFunc) (*dto.EnrichBatchResponse, error) {
	targets, err := s.collectTargets(ctx, req)
	if err != nil {
		return nil, err
	}

	response := &dto.EnrichBatchResponse{Items: make([]dto.EnrichItemResult, 0, len(targets))}
	limiter := rate.NewLimiter(rate.Every(s.delay), 1)

	for i := range targets {
		restaurant := &targets[i]
		if err := limiter.Wait(ctx); err != nil {
			return response, fmt.Errorf("batch interrupted: %w", err)
		}

		item := dto.EnrichItemResult{RestaurantID: restaurant.ID, Name: restaurant.Name}
		if err := s.EnrichRestaurant(ctx, restaurant, progress); err != nil {
			log.Printf("enrich %s failed: %v", restaurant.Name, err)
			item.Message = err.Error()
		} else {
			item.Success = true
		}

		response.Processed++
		if item.Success {
			response.Succeeded++
		} else {
			response.Failed++
		}
		response.Items = append(response.Items, item)
	}

	return response, nil
}

func (s *EnrichmentService) collectTargets(ctx context.Context, req dto.EnrichBatchRequest) ([]entity.Restaurant, error) {
	if len(req.RestaurantIDs) > 0 {
		targets := make([]entity.Restaurant, 0, len(req.RestaurantIDs))
		for _, id := range req.RestaurantIDs {
			restaurant, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load restaurant %s: %w", id, err)
			}
			targets = append(targets, *restaurant)
		}
		return targets, nil
	}

	all, err := s.repo.FindAllWithLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load restaurants: %w", err)
	}

	now := time.Now()
	targets := make([]entity.Restaurant, 0, len(all))
	for _, restaurant := range all {
		if NeedsEnrichment(&restaurant, now) {
			targets = append(targets, restaurant)
		}
	}
	return targets, nil
}

// buildPlacesQuery anchors the text search with whatever location context the
// restaurant has.
func buildPlacesQuery(restaurant *entity.Restaurant) string {
	location := restaurant.PrimaryLocation()
	if location == nil {
		return restaurant.Name + " restaurant"
	}

	parts := []string{restaurant.Name}
	if city := strings.TrimSpace(location.City); city != "" {
		parts = append(parts, city)
		if area := strings.TrimSpace(location.Name); area != "" && !strings.EqualFold(area, restaurant.Name) {
			parts = append(parts, area)
		}
	} else if address := strings.TrimSpace(location.FullAddress); address != "" {
		parts = append(parts, address)
	}
	parts = append(parts, "restaurant")
	return strings.Join(parts, " ")
}

func newestReviews(reviews []places.Review, limit int) []places.Review {
	sorted := make([]places.Review, len(reviews))
	copy(sorted, reviews)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time > sorted[j].Time })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func reviewTexts(reviews []places.Review) []string {
	texts := make([]string, 0, len(reviews))
	for _, review := range reviews {
		if text := strings.TrimSpace(review.Text); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func latestReviewDate(reviews []places.Review) *time.Time {
	var latest int64
	for _, review := range reviews {
		if review.Time > latest {
			latest = review.Time
		}
	}
	if latest == 0 {
		return nil
	}
	ts := time.Unix(latest, 0).UTC()
	return &ts
}

// ratingOnlySummary degrades gracefully when a place has no review text.
func ratingOnlySummary(details *places.Details) string {
	if details.Rating == nil {
		return "No recent reviews available for this restaurant."
	}
	if details.RatingCount != nil {
		return fmt.Sprintf("No recent reviews available. Holds a %.1f/5 rating from %d ratings on Google.", *details.Rating, *details.RatingCount)
	}
	return fmt.Sprintf("No recent reviews available. Holds a %.1f/5 rating on Google.", *details.Rating)
}

func mergeDishes(existing, extracted []string) []string {
	merged := make([]string, 0, len(existing)+len(extracted))
	merged = append(merged, existing...)
	merged = append(merged, extracted...)
	return NormalizeDishes(merged)
}

func normalizePhoneNumber(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = "US"
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
