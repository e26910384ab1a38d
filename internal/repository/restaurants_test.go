package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/entity"
	"github.com/platemark/platemark-api/internal/geo"
)

type stubRestaurantRows struct {
	called bool
}

func (s *stubRestaurantRows) Close()                                       {}
func (s *stubRestaurantRows) Err() error                                   { return nil }
func (s *stubRestaurantRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (s *stubRestaurantRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (s *stubRestaurantRows) Next() bool {
	if s.called {
		return false
	}
	s.called = true
	return true
}

func (s *stubRestaurantRows) Scan(dest ...any) error {
	if !s.called {
		return errors.New("scan called before next")
	}
	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	created := time.Now()
	updated := created
	phone := sql.NullString{String: "+14155550123", Valid: true}
	rating := sql.NullFloat64{Float64: 4.4, Valid: true}
	ratingCount := sql.NullInt64{Int64: 980, Valid: true}
	summary := sql.NullString{String: "Beloved for fresh handmade pasta.", Valid: true}
	summaryAt := sql.NullTime{Time: created, Valid: true}
	latestReview := sql.NullTime{Time: created.Add(-48 * time.Hour), Valid: true}

	*dest[0].(*uuid.UUID) = id
	*dest[1].(*string) = "Trattoria Da Enzo"
	*dest[2].(*entity.Status) = entity.StatusToVisit
	*dest[3].(*string) = "Italian"
	*dest[4].(*entity.PriceRange) = entity.PriceModerate
	*dest[5].(*sql.NullString) = phone
	*dest[6].(*sql.NullFloat64) = rating
	*dest[7].(*sql.NullInt64) = ratingCount
	*dest[8].(*entity.Appreciation) = entity.AppreciationUnknown
	*dest[9].(*[]string) = []string{"cacio e pepe"}
	*dest[10].(*sql.NullString) = summary
	*dest[11].(*sql.NullTime) = summaryAt
	*dest[12].(*sql.NullTime) = latestReview
	*dest[13].(*time.Time) = created
	*dest[14].(*time.Time) = updated
	return nil
}

func (s *stubRestaurantRows) Values() ([]any, error) { return nil, nil }
func (s *stubRestaurantRows) RawValues() [][]byte    { return nil }
func (s *stubRestaurantRows) Conn() *pgx.Conn        { return nil }

func TestScanRestaurants(t *testing.T) {
	rows, err := scanRestaurants(&stubRestaurantRows{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 restaurant, got %d", len(rows))
	}

	restaurant := rows[0]
	if restaurant.Name != "Trattoria Da Enzo" || restaurant.Cuisine != "Italian" {
		t.Fatalf("unexpected restaurant: %+v", restaurant)
	}
	if restaurant.Phone == nil || *restaurant.Phone != "+14155550123" {
		t.Fatalf("expected phone set, got %+v", restaurant.Phone)
	}
	if restaurant.PublicRating == nil || *restaurant.PublicRating != 4.4 {
		t.Fatalf("expected public rating set")
	}
	if restaurant.PublicRatingCount == nil || *restaurant.PublicRatingCount != 980 {
		t.Fatalf("expected rating count set")
	}
	if len(restaurant.MustTryDishes) != 1 || restaurant.MustTryDishes[0] != "cacio e pepe" {
		t.Fatalf("unexpected dishes: %+v", restaurant.MustTryDishes)
	}
	if restaurant.ReviewSummary == nil || restaurant.SummaryUpdatedAt == nil || restaurant.LatestReviewDate == nil {
		t.Fatalf("expected enrichment fields set: %+v", restaurant)
	}
}

func TestPGXRestaurantsRepository_CreateValidation(t *testing.T) {
	repo := &PGXRestaurantsRepository{}
	if err := repo.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil restaurant")
	}
}

func TestPGXRestaurantsRepository_BulkUpsertEmpty(t *testing.T) {
	repo := &PGXRestaurantsRepository{}
	res, err := repo.BulkUpsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 {
		t.Fatalf("expected zero summary, got %+v", res)
	}
}

func TestPGXRestaurantsRepository_SetStatusNotFound(t *testing.T) {
	repo := &PGXRestaurantsRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}}

	err := repo.SetStatus(context.Background(), uuid.New(), entity.StatusVisited, entity.AppreciationUnknown)
	if !errors.Is(err, ErrRestaurantNotFound) {
		t.Fatalf("expected ErrRestaurantNotFound, got %v", err)
	}
}

func TestPGXRestaurantsRepository_UpdateAppreciation(t *testing.T) {
	var gotArgs []any
	repo := &PGXRestaurantsRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			gotArgs = args
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}}

	id := uuid.New()
	if err := repo.UpdateAppreciation(context.Background(), id, entity.AppreciationGreat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotArgs) != 2 || gotArgs[0] != id || gotArgs[1] != entity.AppreciationGreat {
		t.Fatalf("unexpected args: %+v", gotArgs)
	}
}

func TestPGXRestaurantsRepository_FindByRadiusQuery(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	repo := &PGXRestaurantsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			gotQuery = query
			gotArgs = args
			return &stubRows{}, nil
		},
	}}

	center := geo.Point{Lat: 45.5, Lng: -73.6}
	if _, err := repo.FindByRadius(context.Background(), center, 1.667, dto.ListFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "ST_DWithin") {
		t.Fatalf("expected geography radius query, got: %s", gotQuery)
	}
	if len(gotArgs) != 3 {
		t.Fatalf("expected 3 args, got %d", len(gotArgs))
	}
	if gotArgs[0] != -73.6 || gotArgs[1] != 45.5 {
		t.Fatalf("expected lng/lat order, got %+v", gotArgs)
	}
	if gotArgs[2] != 1667.0 {
		t.Fatalf("expected radius in meters, got %v", gotArgs[2])
	}
}

func TestHelperConversions(t *testing.T) {
	if res := stringSliceOrEmpty(nil); res == nil || len(res) != 0 {
		t.Fatalf("expected empty slice when input nil")
	}
	if res := stringSliceOrEmpty([]string{"a"}); len(res) != 1 || res[0] != "a" {
		t.Fatalf("expected matching slice, got %+v", res)
	}
}

func TestScanVisits(t *testing.T) {
	visitID := uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")
	restaurantID := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	visitDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	created := time.Now()

	rows := &stubRows{scans: []func(dest ...any) error{
		func(dest ...any) error {
			*dest[0].(*uuid.UUID) = visitID
			*dest[1].(*uuid.UUID) = restaurantID
			*dest[2].(*time.Time) = visitDate
			*dest[3].(*entity.Appreciation) = entity.AppreciationGood
			*dest[4].(*sql.NullString) = sql.NullString{String: "Great service", Valid: true}
			*dest[5].(*sql.NullString) = sql.NullString{}
			*dest[6].(*time.Time) = created
			*dest[7].(*time.Time) = created
			return nil
		},
	}}

	visits, err := scanVisits(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("expected 1 visit, got %d", len(visits))
	}
	visit := visits[0]
	if visit.Rating != entity.AppreciationGood {
		t.Fatalf("unexpected rating: %s", visit.Rating)
	}
	if visit.ExperienceNotes == nil || *visit.ExperienceNotes != "Great service" {
		t.Fatalf("expected experience notes set")
	}
	if visit.CompanyNotes != nil {
		t.Fatalf("expected nil company notes")
	}
}

func TestPGXRestaurantsRepository_LatestVisitNotFound(t *testing.T) {
	repo := &PGXRestaurantsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{}, nil
		},
	}}

	if _, err := repo.LatestVisit(context.Background(), uuid.New()); !errors.Is(err, ErrVisitNotFound) {
		t.Fatalf("expected ErrVisitNotFound, got %v", err)
	}
}
