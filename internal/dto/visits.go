package dto

// VisitRequest captures a visit create or edit payload. The date uses the
// 2006-01-02 calendar form.
type VisitRequest struct {
	VisitDate       string  `json:"visit_date"`
	Rating          string  `json:"rating"`
	ExperienceNotes *string `json:"experience_notes,omitempty"`
	CompanyNotes    *string `json:"company_notes,omitempty"`
}
