package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/entity"
	"github.com/platemark/platemark-api/internal/repository"
)

const maxMustTryDishes = 5

// RestaurantsService covers the bookmarking lifecycle: catalogue CRUD, visit
// recording and the CSV import.
type RestaurantsService struct {
	repo repository.RestaurantsRepository
}

// NewRestaurantsService builds the catalogue service.
func NewRestaurantsService(repo repository.RestaurantsRepository) *RestaurantsService {
	return &RestaurantsService{repo: repo}
}

// List returns restaurants matching the filter with pagination applied.
func (s *RestaurantsService) List(ctx context.Context, filter dto.ListFilter) ([]entity.Restaurant, error) {
	return s.repo.List(ctx, filter)
}

// Get fetches one restaurant by id.
func (s *RestaurantsService) Get(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a manually entered restaurant.
func (s *RestaurantsService) Create(ctx context.Context, req dto.CreateRestaurantRequest) (*entity.Restaurant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &ValidationError{Message: "name is required"}
	}
	cuisine := strings.TrimSpace(req.Cuisine)
	if cuisine == "" {
		return nil, &ValidationError{Message: "cuisine is required"}
	}
	priceRange := entity.PriceRange(strings.TrimSpace(req.PriceRange))
	if priceRange == "" {
		priceRange = entity.PriceModerate
	}
	if !entity.ValidPriceRange(priceRange) {
		return nil, &ValidationError{Message: "price range must be one of $, $$, $$$ or $$$$"}
	}
	if len(req.Locations) == 0 {
		return nil, &ValidationError{Message: "at least one location is required"}
	}

	restaurant := &entity.Restaurant{
		Name:                 name,
		Status:               entity.StatusToVisit,
		Cuisine:              cuisine,
		PriceRange:           priceRange,
		PersonalAppreciation: entity.AppreciationUnknown,
		MustTryDishes:        NormalizeDishes(req.MustTryDishes),
	}

	for _, loc := range req.Locations {
		address := strings.TrimSpace(loc.FullAddress)
		city := strings.TrimSpace(loc.City)
		if address == "" || city == "" {
			return nil, &ValidationError{Message: "each location needs a full address and a city"}
		}
		locationName := strings.TrimSpace(loc.Name)
		if locationName == "" {
			locationName = name
		}
		restaurant.Locations = append(restaurant.Locations, entity.Location{
			Name:        locationName,
			FullAddress: address,
			City:        city,
			Country:     loc.Country,
			Latitude:    loc.Latitude,
			Longitude:   loc.Longitude,
		})
	}

	if err := s.repo.Create(ctx, restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// SetStatus flips a restaurant between to-visit and visited. Moving back to
// to-visit clears the personal appreciation, since it derives from visits.
func (s *RestaurantsService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Restaurant, error) {
	newStatus := entity.Status(strings.TrimSpace(status))
	if !entity.ValidStatus(newStatus) {
		return nil, &ValidationError{Message: "status must be to-visit or visited"}
	}

	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	appreciation := restaurant.PersonalAppreciation
	if newStatus == entity.StatusToVisit {
		appreciation = entity.AppreciationUnknown
	}

	if err := s.repo.SetStatus(ctx, id, newStatus, appreciation); err != nil {
		return nil, err
	}

	restaurant.Status = newStatus
	restaurant.PersonalAppreciation = appreciation
	return restaurant, nil
}

// Delete removes a restaurant with its locations and visits.
func (s *RestaurantsService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// RecordVisit validates and stores a visit, marks the restaurant visited and
// refreshes its appreciation from the most recent visit.
func (s *RestaurantsService) RecordVisit(ctx context.Context, restaurantID uuid.UUID, req dto.VisitRequest) (*entity.Visit, error) {
	validated, err := ValidateVisit(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	visit := &entity.Visit{
		RestaurantID:    restaurantID,
		VisitDate:       validated.VisitDate,
		Rating:          validated.Rating,
		ExperienceNotes: validated.ExperienceNotes,
		CompanyNotes:    validated.CompanyNotes,
	}
	if err := s.repo.InsertVisit(ctx, visit); err != nil {
		return nil, err
	}

	if err := s.refreshAppreciation(ctx, restaurantID, true); err != nil {
		return nil, err
	}
	return visit, nil
}

// EditVisit revalidates and rewrites an existing visit, then refreshes the
// restaurant appreciation in case the latest visit changed.
func (s *RestaurantsService) EditVisit(ctx context.Context, restaurantID, visitID uuid.UUID, req dto.VisitRequest) (*entity.Visit, error) {
	validated, err := ValidateVisit(req)
	if err != nil {
		return nil, err
	}

	visit := &entity.Visit{
		ID:              visitID,
		RestaurantID:    restaurantID,
		VisitDate:       validated.VisitDate,
		Rating:          validated.Rating,
		ExperienceNotes: validated.ExperienceNotes,
		CompanyNotes:    validated.CompanyNotes,
	}
	if err := s.repo.UpdateVisit(ctx, visit); err != nil {
		return nil, err
	}

	if err := s.refreshAppreciation(ctx, restaurantID, false); err != nil {
		return nil, err
	}
	return visit, nil
}

// ListVisits returns the visit history of a restaurant, most recent first.
func (s *RestaurantsService) ListVisits(ctx context.Context, restaurantID uuid.UUID) ([]entity.Visit, error) {
	if _, err := s.repo.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.repo.ListVisits(ctx, restaurantID)
}

func (s *RestaurantsService) refreshAppreciation(ctx context.Context, restaurantID uuid.UUID, markVisited bool) error {
	latest, err := s.repo.LatestVisit(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrVisitNotFound) {
			return nil
		}
		return err
	}

	if markVisited {
		return s.repo.SetStatus(ctx, restaurantID, entity.StatusVisited, latest.Rating)
	}
	return s.repo.UpdateAppreciation(ctx, restaurantID, latest.Rating)
}

// NormalizeDishes trims, dedupes case-insensitively and caps the must-try
// dish list.
func NormalizeDishes(dishes []string) []string {
	seen := make(map[string]struct{}, len(dishes))
	normalized := make([]string, 0, len(dishes))
	for _, raw := range dishes {
		dish := strings.TrimSpace(raw)
		if dish == "" {
			continue
		}
		key := strings.ToLower(dish)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, dish)
		if len(normalized) == maxMustTryDishes {
			break
		}
	}
	return normalized
}

var csvRequiredColumns = []string{"name", "cuisine", "address", "city"}

// ImportRestaurantsCSV parses an uploaded CSV and upserts its rows. The
// header decides column order; name, cuisine, address and city are required.
func (s *RestaurantsService) ImportRestaurantsCSV(ctx context.Context, r io.Reader) (repository.BulkUpsertResult, error) {
	var result repository.BulkUpsertResult

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return result, &ValidationError{Message: "csv file is empty or unreadable"}
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range csvRequiredColumns {
		if _, ok := index[required]; !ok {
			return result, &ValidationError{Message: fmt.Sprintf("csv is missing the %q column", required)}
		}
	}

	var records []repository.BulkUpsertRestaurantInput
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, &ValidationError{Message: fmt.Sprintf("csv row %d is malformed", len(records)+2)}
		}

		record := repository.BulkUpsertRestaurantInput{
			Name:         csvField(row, index, "name"),
			Cuisine:      csvField(row, index, "cuisine"),
			PriceRange:   csvField(row, index, "price_range"),
			LocationName: csvField(row, index, "location_name"),
			Address:      csvField(row, index, "address"),
			City:         csvField(row, index, "city"),
		}
		if record.Name == "" || record.Address == "" || record.City == "" {
			continue
		}
		if record.PriceRange == "" || !entity.ValidPriceRange(entity.PriceRange(record.PriceRange)) {
			record.PriceRange = string(entity.PriceModerate)
		}
		if record.LocationName == "" {
			record.LocationName = record.Name
		}
		if country := csvField(row, index, "country"); country != "" {
			record.Country = &country
		}
		if lat, ok := csvFloat(row, index, "latitude"); ok {
			record.Latitude = &lat
		}
		if lng, ok := csvFloat(row, index, "longitude"); ok {
			record.Longitude = &lng
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		return result, &ValidationError{Message: "csv contains no importable rows"}
	}

	return s.repo.BulkUpsert(ctx, records)
}

func csvField(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func csvFloat(row []string, index map[string]int, column string) (float64, bool) {
	raw := csvField(row, index, column)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
