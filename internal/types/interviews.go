package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/andrei/membership-portal/internal/workflow"
)

// CreateInterviewRequest carries a staff request to schedule an interview.
// The field matching the location must be present; the domain layer enforces
// the coupling and the future-time rule.
type CreateInterviewRequest struct {
	ApplicationID uuid.UUID   `json:"application_id" validate:"required"`
	InterviewAt   time.Time   `json:"interview_at" validate:"required"`
	Duration      int         `json:"duration_minutes" validate:"required,min=1"`
	Location      string      `json:"location" validate:"required,oneof=online office phone"`
	MeetingLink   string      `json:"meeting_link,omitempty" validate:"omitempty,url"`
	OfficeAddress string      `json:"office_address,omitempty"`
	PhoneNumber   string      `json:"phone_number,omitempty"`
	Interviewers  []uuid.UUID `json:"interviewers,omitempty"`
	Type          string      `json:"type,omitempty"`
	Notes         string      `json:"notes,omitempty"`
}

// Params converts the request into domain parameters.
func (r *CreateInterviewRequest) Params() workflow.CreateInterviewParams {
	return workflow.CreateInterviewParams{
		ApplicationID: r.ApplicationID,
		InterviewAt:   r.InterviewAt,
		Duration:      r.Duration,
		Location:      workflow.InterviewLocation(r.Location),
		MeetingLink:   r.MeetingLink,
		OfficeAddress: r.OfficeAddress,
		PhoneNumber:   r.PhoneNumber,
		Interviewers:  r.Interviewers,
		Type:          r.Type,
		Notes:         r.Notes,
	}
}

// Validate validates the CreateInterviewRequest using the validator.
func (r *CreateInterviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RescheduleRequest carries a candidate's reschedule reason. The domain layer
// enforces the minimum trimmed length and the 24-hour window.
type RescheduleRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Validate validates the RescheduleRequest using the validator.
func (r *RescheduleRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CancelRequest carries a staff cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Validate validates the CancelRequest using the validator.
func (r *CancelRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CompleteRequest carries the final interview mark with optional feedback and
// score.
type CompleteRequest struct {
	Feedback string `json:"feedback,omitempty"`
	Score    *int   `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
}

// Validate validates the CompleteRequest using the validator.
func (r *CompleteRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// FeedbackRequest attaches notes to an interview mid-flow, before the final
// mark.
type FeedbackRequest struct {
	Feedback string `json:"feedback,omitempty"`
	Score    *int   `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
}

// Validate validates the FeedbackRequest using the validator.
func (r *FeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
