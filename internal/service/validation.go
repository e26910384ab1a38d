package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/entity"
)

// ValidationError marks input problems that map to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	visitDateLayout         = "2006-01-02"
	maxExperienceNotesChars = 2000
	maxCompanyNotesChars    = 500
)

var earliestVisitDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// timeNow is swapped in tests that pin "today".
var timeNow = time.Now

// ValidatedVisit is the parsed outcome of a visit payload.
type ValidatedVisit struct {
	VisitDate       time.Time
	Rating          entity.Appreciation
	ExperienceNotes *string
	CompanyNotes    *string
}

// ValidateVisit checks a visit payload against the recording rules: a real
// calendar date between 1900-01-01 and today, a definite rating, and bounded
// notes free of markup characters.
func ValidateVisit(req dto.VisitRequest) (*ValidatedVisit, error) {
	dateStr := strings.TrimSpace(req.VisitDate)
	if dateStr == "" {
		return nil, &ValidationError{Message: "visit date is required"}
	}

	visitDate, err := time.Parse(visitDateLayout, dateStr)
	if err != nil {
		return nil, &ValidationError{Message: "visit date must use the YYYY-MM-DD format"}
	}
	if visitDate.Before(earliestVisitDate) {
		return nil, &ValidationError{Message: "visit date cannot be before 1900-01-01"}
	}

	now := timeNow().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if visitDate.After(today) {
		return nil, &ValidationError{Message: "visit date cannot be in the future"}
	}

	rating := entity.Appreciation(strings.TrimSpace(req.Rating))
	if !entity.ValidVisitRating(rating) {
		return nil, &ValidationError{Message: "rating must be one of avoid, fine, good or great"}
	}

	experienceNotes, err := validateNotes(req.ExperienceNotes, "experience notes", maxExperienceNotesChars)
	if err != nil {
		return nil, err
	}
	companyNotes, err := validateNotes(req.CompanyNotes, "company notes", maxCompanyNotesChars)
	if err != nil {
		return nil, err
	}

	return &ValidatedVisit{
		VisitDate:       visitDate,
		Rating:          rating,
		ExperienceNotes: experienceNotes,
		CompanyNotes:    companyNotes,
	}, nil
}

func validateNotes(notes *string, field string, maxChars int) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > maxChars {
		return nil, &ValidationError{Message: fmt.Sprintf("%s cannot exceed %d characters", field, maxChars)}
	}
	if strings.ContainsAny(trimmed, "<>&") {
		return nil, &ValidationError{Message: field + " cannot contain <, > or & characters"}
	}
	return &trimmed, nil
}
