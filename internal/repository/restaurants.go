package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/entity"
	"github.com/platemark/platemark-api/internal/geo"
)

// Sentinel errors for restaurant lookups.
var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrVisitNotFound      = errors.New("visit not found")
)

// RestaurantsRepository describes persistence operations for the catalogue,
// the geo search tiers, visits and enrichment writes.
type RestaurantsRepository interface {
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Restaurant, error)
	FindByText(ctx context.Context, q string, filter dto.ListFilter) ([]entity.Restaurant, error)
	FindByRadius(ctx context.Context, center geo.Point, radiusKm float64, filter dto.ListFilter) ([]entity.Restaurant, error)
	FindByCity(ctx context.Context, city string) ([]entity.Restaurant, error)
	FindAllWithLocations(ctx context.Context) ([]entity.Restaurant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error)
	Create(ctx context.Context, restaurant *entity.Restaurant) error
	BulkUpsert(ctx context.Context, records []BulkUpsertRestaurantInput) (BulkUpsertResult, error)
	SetStatus(ctx context.Context, id uuid.UUID, status entity.Status, appreciation entity.Appreciation) error
	UpdateAppreciation(ctx context.Context, id uuid.UUID, appreciation entity.Appreciation) error
	UpdateEnrichment(ctx context.Context, id uuid.UUID, update EnrichmentUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error

	InsertVisit(ctx context.Context, visit *entity.Visit) error
	UpdateVisit(ctx context.Context, visit *entity.Visit) error
	ListVisits(ctx context.Context, restaurantID uuid.UUID) ([]entity.Visit, error)
	LatestVisit(ctx context.Context, restaurantID uuid.UUID) (*entity.Visit, error)
}

// EnrichmentUpdate carries the fields written back after a successful
// enrichment run.
type EnrichmentUpdate struct {
	PublicRating      *float64
	PublicRatingCount *int
	Phone             *string
	ReviewSummary     string
	MustTryDishes     []string
	LatestReviewDate  *time.Time
}

// BulkUpsertRestaurantInput represents the minimal fields required for CSV ingestion.
type BulkUpsertRestaurantInput struct {
	Name         string
	Cuisine      string
	PriceRange   string
	LocationName string
	Address      string
	City         string
	Country      *string
	Latitude     *float64
	Longitude    *float64
}

// BulkUpsertResult summarises the number of rows inserted or updated.
type BulkUpsertResult struct {
	Inserted int
	Updated  int
	Total    int
}

// PGXRestaurantsRepository implements RestaurantsRepository using pgx.
type PGXRestaurantsRepository struct {
	pool pgxPool
}

// NewPGXRestaurantsRepository wires a pgx backed repository.
func NewPGXRestaurantsRepository(pool *pgxpool.Pool) *PGXRestaurantsRepository {
	return &PGXRestaurantsRepository{pool: pool}
}

const restaurantColumns = `
        id,
        name,
        status,
        cuisine,
        price_range,
        phone,
        public_rating,
        public_rating_count,
        personal_appreciation,
        must_try_dishes,
        review_summary,
        summary_updated_at,
        latest_review_date,
        created_at,
        updated_at
`

// List retrieves restaurants matching the provided filter, name-sorted.
func (r *PGXRestaurantsRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Restaurant, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString("SELECT " + restaurantColumns + " FROM restaurants")

	clauses, args, idx := filterClauses(filter, 1)
	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf(
			"(name ILIKE $%d OR EXISTS (SELECT 1 FROM restaurant_locations l WHERE l.restaurant_id = restaurants.id AND l.full_address ILIKE $%d))", idx, idx))
		args = append(args, pattern)
		idx++
	}
	if filter.City != "" {
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM restaurant_locations l WHERE l.restaurant_id = restaurants.id AND LOWER(l.city) = LOWER($%d))", idx))
		args = append(args, filter.City)
		idx++
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}
	baseQuery.WriteString(" ORDER BY name ASC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	restaurants, err := scanRestaurants(rows)
	if err != nil {
		return nil, err
	}
	return r.attachLocations(ctx, restaurants)
}

// FindByText performs the tier-1 free-text match on name and address.
func (r *PGXRestaurantsRepository) FindByText(ctx context.Context, q string, filter dto.ListFilter) ([]entity.Restaurant, error) {
	pattern := fmt.Sprintf("%%%s%%", q)

	clauses := []string{
		"(name ILIKE $1 OR EXISTS (SELECT 1 FROM restaurant_locations l WHERE l.restaurant_id = restaurants.id AND l.full_address ILIKE $1))",
	}
	args := []any{pattern}
	extra, extraArgs, _ := filterClauses(filter, 2)
	clauses = append(clauses, extra...)
	args = append(args, extraArgs...)

	query := "SELECT " + restaurantColumns + " FROM restaurants WHERE " +
		strings.Join(clauses, " AND ") + " ORDER BY name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find restaurants by text: %w", err)
	}
	defer rows.Close()

	restaurants, err := scanRestaurants(rows)
	if err != nil {
		return nil, err
	}
	return r.attachLocations(ctx, restaurants)
}

// FindByRadius performs the tier-2 proximity match against geocoded
// locations using the PostGIS geography column.
func (r *PGXRestaurantsRepository) FindByRadius(ctx context.Context, center geo.Point, radiusKm float64, filter dto.ListFilter) ([]entity.Restaurant, error) {
	clauses := []string{
		`EXISTS (
            SELECT 1 FROM restaurant_locations l
            WHERE l.restaurant_id = restaurants.id
              AND l.location IS NOT NULL
              AND ST_DWithin(l.location, ST_SetSRID(ST_MakePoint($1::float8, $2::float8), 4326)::geography, $3)
        )`,
	}
	args := []any{center.Lng, center.Lat, radiusKm * 1000}
	extra, extraArgs, _ := filterClauses(filter, 4)
	clauses = append(clauses, extra...)
	args = append(args, extraArgs...)

	query := "SELECT " + restaurantColumns + " FROM restaurants WHERE " +
		strings.Join(clauses, " AND ") + " ORDER BY name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find restaurants by radius: %w", err)
	}
	defer rows.Close()

	restaurants, err := scanRestaurants(rows)
	if err != nil {
		return nil, err
	}
	return r.attachLocations(ctx, restaurants)
}

// FindByCity is the tier-3 fallback: every restaurant with a location in the
// given city, radius ignored.
func (r *PGXRestaurantsRepository) FindByCity(ctx context.Context, city string) ([]entity.Restaurant, error) {
	query := "SELECT " + restaurantColumns + ` FROM restaurants
        WHERE EXISTS (
            SELECT 1 FROM restaurant_locations l
            WHERE l.restaurant_id = restaurants.id AND LOWER(l.city) = LOWER($1)
        )
        ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("find restaurants by city: %w", err)
	}
	defer rows.Close()

	restaurants, err := scanRestaurants(rows)
	if err != nil {
		return nil, err
	}
	return r.attachLocations(ctx, restaurants)
}

// FindAllWithLocations returns the whole catalogue with locations attached.
func (r *PGXRestaurantsRepository) FindAllWithLocations(ctx context.Context) ([]entity.Restaurant, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+restaurantColumns+" FROM restaurants ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list all restaurants: %w", err)
	}
	defer rows.Close()

	restaurants, err := scanRestaurants(rows)
	if err != nil {
		return nil, err
	}
	return r.attachLocations(ctx, restaurants)
}

// GetByID fetches one restaurant with its locations.
func (r *PGXRestaurantsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+restaurantColumns+" FROM restaurants WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	defer rows.Close()

	restaurants, err := scanRestaurants(rows)
	if err != nil {
		return nil, err
	}
	if len(restaurants) == 0 {
		return nil, ErrRestaurantNotFound
	}

	restaurants, err = r.attachLocations(ctx, restaurants)
	if err != nil {
		return nil, err
	}
	return &restaurants[0], nil
}

// Create inserts a restaurant with its locations in one transaction.
func (r *PGXRestaurantsRepository) Create(ctx context.Context, restaurant *entity.Restaurant) error {
	if restaurant == nil {
		return fmt.Errorf("restaurant payload is nil")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start create tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
        INSERT INTO restaurants (name, status, cuisine, price_range, personal_appreciation, must_try_dishes)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `,
		restaurant.Name,
		restaurant.Status,
		restaurant.Cuisine,
		restaurant.PriceRange,
		restaurant.PersonalAppreciation,
		stringSliceOrEmpty(restaurant.MustTryDishes),
	)
	if err := row.Scan(&restaurant.ID, &restaurant.CreatedAt, &restaurant.UpdatedAt); err != nil {
		return fmt.Errorf("insert restaurant: %w", err)
	}

	for i := range restaurant.Locations {
		loc := &restaurant.Locations[i]
		loc.RestaurantID = restaurant.ID
		if err := insertLocation(ctx, tx, loc, i); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create tx: %w", err)
	}
	return nil
}

func insertLocation(ctx context.Context, tx pgx.Tx, loc *entity.Location, position int) error {
	var lng, lat any
	if loc.Longitude != nil {
		lng = *loc.Longitude
	}
	if loc.Latitude != nil {
		lat = *loc.Latitude
	}

	row := tx.QueryRow(ctx, `
        INSERT INTO restaurant_locations (restaurant_id, name, full_address, city, country, latitude, longitude, location, position)
        VALUES ($1, $2, $3, $4, $5, $6, $7,
            CASE WHEN $6 IS NOT NULL AND $7 IS NOT NULL THEN
                ST_SetSRID(ST_MakePoint($7::float8, $6::float8), 4326)::geography
            ELSE NULL END,
            $8)
        RETURNING id
    `,
		loc.RestaurantID,
		loc.Name,
		loc.FullAddress,
		loc.City,
		loc.Country,
		lat,
		lng,
		position,
	)
	if err := row.Scan(&loc.ID); err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

const bulkUpsertRestaurantSQL = `
        INSERT INTO restaurants (name, status, cuisine, price_range, personal_appreciation, must_try_dishes)
        VALUES ($1, 'to-visit', $2, $3, 'unknown', '{}')
        ON CONFLICT (name) DO UPDATE SET
            cuisine = EXCLUDED.cuisine,
            price_range = EXCLUDED.price_range,
            updated_at = NOW()
        RETURNING id, xmax = 0;
    `

const bulkUpsertLocationSQL = `
        INSERT INTO restaurant_locations (restaurant_id, name, full_address, city, country, latitude, longitude, location, position)
        VALUES ($1, $2, $3, $4, $5, $6, $7,
            CASE WHEN $6 IS NOT NULL AND $7 IS NOT NULL THEN
                ST_SetSRID(ST_MakePoint($7::float8, $6::float8), 4326)::geography
            ELSE NULL END,
            0)
        ON CONFLICT (restaurant_id, full_address) DO UPDATE SET
            name = EXCLUDED.name,
            city = EXCLUDED.city,
            country = EXCLUDED.country,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            location = EXCLUDED.location;
    `

// BulkUpsert persists a batch of restaurants with idempotent semantics.
func (r *PGXRestaurantsRepository) BulkUpsert(ctx context.Context, records []BulkUpsertRestaurantInput) (BulkUpsertResult, error) {
	var result BulkUpsertResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("start bulk upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, record := range records {
		var (
			restaurantID uuid.UUID
			inserted     bool
		)
		row := tx.QueryRow(ctx, bulkUpsertRestaurantSQL, record.Name, record.Cuisine, record.PriceRange)
		if err := row.Scan(&restaurantID, &inserted); err != nil {
			return result, fmt.Errorf("bulk upsert restaurant %q: %w", record.Name, err)
		}

		var lat, lng any
		if record.Latitude != nil {
			lat = *record.Latitude
		}
		if record.Longitude != nil {
			lng = *record.Longitude
		}
		_, err := tx.Exec(ctx, bulkUpsertLocationSQL,
			restaurantID,
			record.LocationName,
			record.Address,
			record.City,
			record.Country,
			lat,
			lng,
		)
		if err != nil {
			return result, fmt.Errorf("bulk upsert location for %q: %w", record.Name, err)
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		result.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit bulk upsert tx: %w", err)
	}
	return result, nil
}

// SetStatus updates the visit status and appreciation together so a flip back
// to to-visit can reset the appreciation atomically.
func (r *PGXRestaurantsRepository) SetStatus(ctx context.Context, id uuid.UUID, status entity.Status, appreciation entity.Appreciation) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE restaurants SET status = $2, personal_appreciation = $3, updated_at = NOW() WHERE id = $1`,
		id, status, appreciation)
	if err != nil {
		return fmt.Errorf("set restaurant status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// UpdateAppreciation writes the personal appreciation derived from visits.
func (r *PGXRestaurantsRepository) UpdateAppreciation(ctx context.Context, id uuid.UUID, appreciation entity.Appreciation) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE restaurants SET personal_appreciation = $2, updated_at = NOW() WHERE id = $1`,
		id, appreciation)
	if err != nil {
		return fmt.Errorf("update appreciation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// UpdateEnrichment stores the outcome of an enrichment run.
func (r *PGXRestaurantsRepository) UpdateEnrichment(ctx context.Context, id uuid.UUID, update EnrichmentUpdate) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE restaurants SET
            public_rating = $2,
            public_rating_count = $3,
            phone = COALESCE($4, phone),
            review_summary = $5,
            summary_updated_at = NOW(),
            latest_review_date = $6,
            must_try_dishes = $7,
            updated_at = NOW()
        WHERE id = $1
    `,
		id,
		update.PublicRating,
		update.PublicRatingCount,
		update.Phone,
		update.ReviewSummary,
		update.LatestReviewDate,
		stringSliceOrEmpty(update.MustTryDishes),
	)
	if err != nil {
		return fmt.Errorf("update enrichment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// Delete removes a restaurant with its children, child rows first.
func (r *PGXRestaurantsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start delete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM visits WHERE restaurant_id = $1`, id); err != nil {
		return fmt.Errorf("delete visits: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM restaurant_locations WHERE restaurant_id = $1`, id); err != nil {
		return fmt.Errorf("delete locations: %w", err)
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrRestaurantNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

func filterClauses(filter dto.ListFilter, startIdx int) ([]string, []any, int) {
	var (
		clauses []string
		args    []any
		idx     = startIdx
	)

	if filter.Cuisine != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(cuisine) = LOWER($%d)", idx))
		args = append(args, filter.Cuisine)
		idx++
	}
	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.PriceRange != "" {
		clauses = append(clauses, fmt.Sprintf("price_range = $%d", idx))
		args = append(args, filter.PriceRange)
		idx++
	}

	return clauses, args, idx
}

func (r *PGXRestaurantsRepository) attachLocations(ctx context.Context, restaurants []entity.Restaurant) ([]entity.Restaurant, error) {
	if len(restaurants) == 0 {
		return restaurants, nil
	}

	ids := make([]uuid.UUID, 0, len(restaurants))
	index := make(map[uuid.UUID]int, len(restaurants))
	for i, restaurant := range restaurants {
		ids = append(ids, restaurant.ID)
		index[restaurant.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, restaurant_id, name, full_address, city, country, latitude, longitude
        FROM restaurant_locations
        WHERE restaurant_id = ANY($1)
        ORDER BY restaurant_id, position ASC
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			loc     entity.Location
			country sql.NullString
			lat     sql.NullFloat64
			lng     sql.NullFloat64
		)
		if err := rows.Scan(&loc.ID, &loc.RestaurantID, &loc.Name, &loc.FullAddress, &loc.City, &country, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		if country.Valid {
			val := country.String
			loc.Country = &val
		}
		if lat.Valid {
			val := lat.Float64
			loc.Latitude = &val
		}
		if lng.Valid {
			val := lng.Float64
			loc.Longitude = &val
		}

		if i, ok := index[loc.RestaurantID]; ok {
			restaurants[i].Locations = append(restaurants[i].Locations, loc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}

	return restaurants, nil
}

func scanRestaurants(rows pgx.Rows) ([]entity.Restaurant, error) {
	var restaurants []entity.Restaurant
	for rows.Next() {
		var (
			r                entity.Restaurant
			phone            sql.NullString
			publicRating     sql.NullFloat64
			ratingCount      sql.NullInt64
			dishes           []string
			reviewSummary    sql.NullString
			summaryUpdatedAt sql.NullTime
			latestReviewDate sql.NullTime
		)

		err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.Status,
			&r.Cuisine,
			&r.PriceRange,
			&phone,
			&publicRating,
			&ratingCount,
			&r.PersonalAppreciation,
			&dishes,
			&reviewSummary,
			&summaryUpdatedAt,
			&latestReviewDate,
			&r.CreatedAt,
			&r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}

		if phone.Valid {
			val := phone.String
			r.Phone = &val
		}
		if publicRating.Valid {
			val := publicRating.Float64
			r.PublicRating = &val
		}
		if ratingCount.Valid {
			cast := int(ratingCount.Int64)
			r.PublicRatingCount = &cast
		}
		if reviewSummary.Valid {
			val := reviewSummary.String
			r.ReviewSummary = &val
		}
		if summaryUpdatedAt.Valid {
			ts := summaryUpdatedAt.Time
			r.SummaryUpdatedAt = &ts
		}
		if latestReviewDate.Valid {
			ts := latestReviewDate.Time
			r.LatestReviewDate = &ts
		}
		r.MustTryDishes = stringSliceOrEmpty(dishes)

		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurants: %w", err)
	}
	return restaurants, nil
}

func stringSliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
