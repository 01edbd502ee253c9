package workflow

import "time"

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

// Application statuses. Accepted, rejected and withdrawn are terminal.
const (
	StatusDraft              ApplicationStatus = "draft"
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
)

// InterviewStatus is the lifecycle state of an interview.
type InterviewStatus string

// Interview statuses. Completed, cancelled, rescheduled and no_show are
// terminal; a rescheduled interview is replaced by a new staff-created one.
const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewConfirmed   InterviewStatus = "confirmed"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewRescheduled InterviewStatus = "rescheduled"
	InterviewNoShow      InterviewStatus = "no_show"
)

// Scheduling thresholds. Product constants, not configuration.
const (
	// RescheduleWindow is how far ahead of the interview a candidate may
	// still request a reschedule.
	RescheduleWindow = 24 * time.Hour
	// MinRescheduleReasonLen is the minimum length of a trimmed reschedule
	// reason.
	MinRescheduleReasonLen = 10
)

// IsTerminal reports whether the application status has no outgoing edges.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsKnown reports whether s is one of the defined application statuses.
func (s ApplicationStatus) IsKnown() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusInterviewScheduled,
		StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// isReviewTarget reports whether s is a status review() may move an
// application into.
func isReviewTarget(s ApplicationStatus) bool {
	return s == StatusUnderReview || s == StatusAccepted || s == StatusRejected
}

// IsTerminal reports whether the interview status has no outgoing edges.
func (s InterviewStatus) IsTerminal() bool {
	switch s {
	case InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow:
		return true
	default:
		return false
	}
}

// IsKnown reports whether s is one of the defined interview statuses.
func (s InterviewStatus) IsKnown() bool {
	switch s {
	case InterviewScheduled, InterviewConfirmed, InterviewCompleted,
		InterviewCancelled, InterviewRescheduled, InterviewNoShow:
		return true
	default:
		return false
	}
}

// IsKnown reports whether l is one of the defined interview locations.
func (l InterviewLocation) IsKnown() bool {
	switch l {
	case LocationOnline, LocationOffice, LocationPhone:
		return true
	default:
		return false
	}
}
