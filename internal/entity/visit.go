package entity

import (
	"time"

	"github.com/google/uuid"
)

// Visit records one trip to a restaurant. Immutable once created except
// through an explicit edit.
type Visit struct {
	ID              uuid.UUID    `json:"id"`
	RestaurantID    uuid.UUID    `json:"restaurant_id"`
	VisitDate       time.Time    `json:"visit_date"`
	Rating          Appreciation `json:"rating"`
	ExperienceNotes *string      `json:"experience_notes,omitempty"`
	CompanyNotes    *string      `json:"company_notes,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
