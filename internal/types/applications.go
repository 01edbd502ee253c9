// Package types provides request and response definitions for the membership
// workflow API.
package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/andrei/membership-portal/internal/workflow"
)

// SaveDraftRequest carries the candidate-editable sections of an application.
type SaveDraftRequest struct {
	Personal struct {
		FullName string `json:"full_name" validate:"required,min=1"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone,omitempty"`
	} `json:"personal" validate:"required"`
	Education struct {
		School         string `json:"school,omitempty"`
		Degree         string `json:"degree,omitempty"`
		Field          string `json:"field,omitempty"`
		GraduationYear int    `json:"graduation_year,omitempty" validate:"omitempty,min=1900,max=2100"`
	} `json:"education"`
	Technical struct {
		Skills       []string `json:"skills,omitempty"`
		Experience   string   `json:"experience,omitempty"`
		PortfolioURL string   `json:"portfolio_url,omitempty" validate:"omitempty,url"`
	} `json:"technical"`
	Motivation   string   `json:"motivation,omitempty"`
	DocumentRefs []string `json:"document_refs,omitempty" validate:"omitempty,dive,uri"`
}

// Sections converts the request into the domain representation.
func (r *SaveDraftRequest) Sections() workflow.ApplicationSections {
	return workflow.ApplicationSections{
		Personal: workflow.PersonalInfo{
			FullName: r.Personal.FullName,
			Email:    r.Personal.Email,
			Phone:    r.Personal.Phone,
		},
		Education: workflow.EducationInfo{
			School:         r.Education.School,
			Degree:         r.Education.Degree,
			Field:          r.Education.Field,
			GraduationYear: r.Education.GraduationYear,
		},
		Technical: workflow.TechnicalInfo{
			Skills:       r.Technical.Skills,
			Experience:   r.Technical.Experience,
			PortfolioURL: r.Technical.PortfolioURL,
		},
		Motivation:   r.Motivation,
		DocumentRefs: r.DocumentRefs,
	}
}

// Validate validates the SaveDraftRequest using the validator.
func (r *SaveDraftRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ReviewRequest carries a staff review decision.
type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=under_review accepted rejected"`
	Notes  string `json:"notes,omitempty"`
}

// Validate validates the ReviewRequest using the validator.
func (r *ReviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// StatsResponse is the per-status application count aggregate.
type StatsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}
