package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/entity"
)

func pinNow(t *testing.T, fixed time.Time) {
	t.Helper()
	old := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = old })
}

func strPtr(s string) *string { return &s }

func TestValidateVisit(t *testing.T) {
	pinNow(t, time.Date(2026, time.August, 30, 15, 0, 0, 0, time.UTC))

	tests := map[string]struct {
		req         dto.VisitRequest
		expectError string
	}{
		"missing date": {
			req:         dto.VisitRequest{Rating: "good"},
			expectError: "visit date is required",
		},
		"malformed date": {
			req:         dto.VisitRequest{VisitDate: "30/08/2026", Rating: "good"},
			expectError: "visit date must use the YYYY-MM-DD format",
		},
		"before 1900": {
			req:         dto.VisitRequest{VisitDate: "1899-12-31", Rating: "good"},
			expectError: "visit date cannot be before 1900-01-01",
		},
		"future date": {
			req:         dto.VisitRequest{VisitDate: "2026-08-31", Rating: "good"},
			expectError: "visit date cannot be in the future",
		},
		"unknown rating rejected": {
			req:         dto.VisitRequest{VisitDate: "2026-08-01", Rating: "unknown"},
			expectError: "rating must be one of avoid, fine, good or great",
		},
		"empty rating rejected": {
			req:         dto.VisitRequest{VisitDate: "2026-08-01"},
			expectError: "rating must be one of avoid, fine, good or great",
		},
		"experience notes too long": {
			req: dto.VisitRequest{
				VisitDate:       "2026-08-01",
				Rating:          "great",
				ExperienceNotes: strPtr(strings.Repeat("a", 2001)),
			},
			expectError: "experience notes cannot exceed 2000 characters",
		},
		"company notes too long": {
			req: dto.VisitRequest{
				VisitDate:    "2026-08-01",
				Rating:       "great",
				CompanyNotes: strPtr(strings.Repeat("b", 501)),
			},
			expectError: "company notes cannot exceed 500 characters",
		},
		"markup in notes": {
			req: dto.VisitRequest{
				VisitDate:       "2026-08-01",
				Rating:          "fine",
				ExperienceNotes: strPtr("dinner with <script>"),
			},
			expectError: "experience notes cannot contain <, > or & characters",
		},
		"ampersand in company notes": {
			req: dto.VisitRequest{
				VisitDate:    "2026-08-01",
				Rating:       "fine",
				CompanyNotes: strPtr("me & my partner"),
			},
			expectError: "company notes cannot contain <, > or & characters",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateVisit(tc.req)
			if err == nil {
				t.Fatalf("expected error %q", tc.expectError)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if ve.Message != tc.expectError {
				t.Fatalf("expected %q, got %q", tc.expectError, ve.Message)
			}
		})
	}
}

func TestValidateVisitBoundaryDates(t *testing.T) {
	pinNow(t, time.Date(2026, time.August, 30, 23, 59, 0, 0, time.UTC))

	for _, date := range []string{"1900-01-01", "2026-08-30"} {
		visit, err := ValidateVisit(dto.VisitRequest{VisitDate: date, Rating: "good"})
		if err != nil {
			t.Fatalf("date %s should be accepted: %v", date, err)
		}
		if visit.Rating != entity.AppreciationGood {
			t.Fatalf("unexpected rating: %s", visit.Rating)
		}
	}
}

func TestValidateVisitNormalizesNotes(t *testing.T) {
	pinNow(t, time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC))

	visit, err := ValidateVisit(dto.VisitRequest{
		VisitDate:       "2026-05-20",
		Rating:          "great",
		ExperienceNotes: strPtr("  incredible tasting menu  "),
		CompanyNotes:    strPtr("   "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visit.ExperienceNotes == nil || *visit.ExperienceNotes != "incredible tasting menu" {
		t.Fatalf("expected trimmed experience notes, got %+v", visit.ExperienceNotes)
	}
	if visit.CompanyNotes != nil {
		t.Fatalf("blank company notes should collapse to nil")
	}
}
