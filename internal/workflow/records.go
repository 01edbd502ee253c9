// Package workflow implements the membership application review and interview
// scheduling state machines, their guards, and the authorization gate shared by
// both services.
package workflow

import (
	"time"

	"github.com/google/uuid"
)

// PersonalInfo is the personal section of an application.
type PersonalInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// EducationInfo is the education section of an application.
type EducationInfo struct {
	School         string `json:"school"`
	Degree         string `json:"degree,omitempty"`
	Field          string `json:"field,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty"`
}

// TechnicalInfo is the technical background section of an application.
type TechnicalInfo struct {
	Skills       []string `json:"skills,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	PortfolioURL string   `json:"portfolio_url,omitempty"`
}

// ApplicationSections groups the candidate-editable content of an application.
// Document references are opaque URIs; the file bytes live elsewhere.
type ApplicationSections struct {
	Personal     PersonalInfo  `json:"personal"`
	Education    EducationInfo `json:"education"`
	Technical    TechnicalInfo `json:"technical"`
	Motivation   string        `json:"motivation,omitempty"`
	DocumentRefs []string      `json:"document_refs,omitempty"`
}

// Application is a candidate's membership request record and its review state.
// At most one non-terminal application exists per candidate at a time.
type Application struct {
	ID          uuid.UUID           `json:"id"`
	CandidateID uuid.UUID           `json:"candidate_id"`
	Sections    ApplicationSections `json:"sections"`
	Status      ApplicationStatus   `json:"status"`
	ReviewNotes string              `json:"review_notes,omitempty"`
	ReviewedBy  *uuid.UUID          `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time          `json:"reviewed_at,omitempty"`
	SubmittedAt *time.Time          `json:"submitted_at,omitempty"`
	Version     int64               `json:"version"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// InterviewLocation is where an interview takes place.
type InterviewLocation string

// Interview locations. Each requires its own contact field on the record.
const (
	LocationOnline InterviewLocation = "online"
	LocationOffice InterviewLocation = "office"
	LocationPhone  InterviewLocation = "phone"
)

// Interview is a scheduled meeting tied to one application. An application may
// accumulate several interviews over time (a reschedule terminates the old
// record; a replacement is a separate staff-created one).
type Interview struct {
	ID            uuid.UUID         `json:"id"`
	ApplicationID uuid.UUID         `json:"application_id"`
	CandidateID   uuid.UUID         `json:"candidate_id"`
	Status        InterviewStatus   `json:"status"`
	InterviewAt   time.Time         `json:"interview_at"` // single UTC instant
	Duration      int               `json:"duration_minutes"`
	Location      InterviewLocation `json:"location"`
	MeetingLink   string            `json:"meeting_link,omitempty"`
	OfficeAddress string            `json:"office_address,omitempty"`
	PhoneNumber   string            `json:"phone_number,omitempty"`
	Interviewers  []uuid.UUID       `json:"interviewers,omitempty"`
	Type          string            `json:"type,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Feedback      string            `json:"feedback,omitempty"`
	Score         *int              `json:"score,omitempty"`

	RescheduleReason      string     `json:"reschedule_reason,omitempty"`
	RescheduleRequestedAt *time.Time `json:"reschedule_requested_at,omitempty"`
	RescheduleRequestedBy *uuid.UUID `json:"reschedule_requested_by,omitempty"`
	CancelledReason       string     `json:"cancelled_reason,omitempty"`
	CancelledAt           *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy           *uuid.UUID `json:"cancelled_by,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
