package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/platemark/platemark-api/internal/entity"
)

const visitColumns = `id, restaurant_id, visit_date, rating, experience_notes, company_notes, created_at, updated_at`

// InsertVisit records a new visit for a restaurant.
func (r *PGXRestaurantsRepository) InsertVisit(ctx context.Context, visit *entity.Visit) error {
	if visit == nil {
		return fmt.Errorf("visit payload is nil")
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO visits (restaurant_id, visit_date, rating, experience_notes, company_notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `,
		visit.RestaurantID,
		visit.VisitDate,
		visit.Rating,
		visit.ExperienceNotes,
		visit.CompanyNotes,
	)
	if err := row.Scan(&visit.ID, &visit.CreatedAt, &visit.UpdatedAt); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

// UpdateVisit rewrites an existing visit.
func (r *PGXRestaurantsRepository) UpdateVisit(ctx context.Context, visit *entity.Visit) error {
	if visit == nil {
		return fmt.Errorf("visit payload is nil")
	}

	row := r.pool.QueryRow(ctx, `
        UPDATE visits SET
            visit_date = $2,
            rating = $3,
            experience_notes = $4,
            company_notes = $5,
            updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `,
		visit.ID,
		visit.VisitDate,
		visit.Rating,
		visit.ExperienceNotes,
		visit.CompanyNotes,
	)
	if err := row.Scan(&visit.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVisitNotFound
		}
		return fmt.Errorf("update visit: %w", err)
	}
	return nil
}

// ListVisits returns all visits for a restaurant, most recent first.
func (r *PGXRestaurantsRepository) ListVisits(ctx context.Context, restaurantID uuid.UUID) ([]entity.Visit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE restaurant_id = $1 ORDER BY visit_date DESC, created_at DESC`,
		restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	return scanVisits(rows)
}

// LatestVisit returns the most recent visit for a restaurant, or
// ErrVisitNotFound when none exist.
func (r *PGXRestaurantsRepository) LatestVisit(ctx context.Context, restaurantID uuid.UUID) (*entity.Visit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE restaurant_id = $1 ORDER BY visit_date DESC, created_at DESC LIMIT 1`,
		restaurantID)
	if err != nil {
		return nil, fmt.Errorf("latest visit: %w", err)
	}
	defer rows.Close()

	visits, err := scanVisits(rows)
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return nil, ErrVisitNotFound
	}
	return &visits[0], nil
}

func scanVisits(rows pgx.Rows) ([]entity.Visit, error) {
	var visits []entity.Visit
	for rows.Next() {
		var (
			visit           entity.Visit
			experienceNotes sql.NullString
			companyNotes    sql.NullString
		)
		err := rows.Scan(
			&visit.ID,
			&visit.RestaurantID,
			&visit.VisitDate,
			&visit.Rating,
			&experienceNotes,
			&companyNotes,
			&visit.CreatedAt,
			&visit.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		if experienceNotes.Valid {
			val := experienceNotes.String
			visit.ExperienceNotes = &val
		}
		if companyNotes.Valid {
			val := companyNotes.String
			visit.CompanyNotes = &val
		}
		visits = append(visits, visit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}
	return visits, nil
}
