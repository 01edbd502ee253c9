package workflow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InterviewService owns the interview state machine. It reads application
// status to decide whether creation is permitted but never writes it; the two
// services interact only through events.
type InterviewService struct {
	store  InterviewStore
	apps   ApplicationReader
	gate   *Gate
	clock  Clock
	events Emitter
}

// NewInterviewService creates the interview scheduling service.
func NewInterviewService(store InterviewStore, apps ApplicationReader, gate *Gate, clock Clock, events Emitter) *InterviewService {
	return &InterviewService{store: store, apps: apps, gate: gate, clock: clock, events: events}
}

// CreateInterviewParams carries everything needed to schedule an interview.
type CreateInterviewParams struct {
	ApplicationID uuid.UUID
	CandidateID   uuid.UUID
	InterviewAt   time.Time
	Duration      int
	Location      InterviewLocation
	MeetingLink   string
	OfficeAddress string
	PhoneNumber   string
	Interviewers  []uuid.UUID
	Type          string
	Notes         string
}

// Create schedules a new interview for a non-terminal application. Staff only.
func (s *InterviewService) Create(ctx context.Context, caller Identity, p CreateInterviewParams) (*Interview, error) {
	if !s.gate.Allowed(caller, OpCreateInterview) {
		return nil, &ErrForbidden{Operation: OpCreateInterview}
	}
	if err := s.validateCreate(p); err != nil {
		return nil, err
	}

	app, err := s.apps.GetByID(ctx, p.ApplicationID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}
	if app == nil {
		return nil, &ErrNotFound{Entity: "application", ID: p.ApplicationID}
	}
	if app.Status.IsTerminal() {
		return nil, &ErrInvalidTransition{
			Entity: "application",
			From:   string(app.Status),
			To:     string(StatusInterviewScheduled),
			Reason: "application is closed",
		}
	}

	now := s.clock.Now()
	iv := &Interview{
		ID:            uuid.New(),
		ApplicationID: p.ApplicationID,
		CandidateID:   app.CandidateID,
		Status:        InterviewScheduled,
		InterviewAt:   p.InterviewAt.UTC(),
		Duration:      p.Duration,
		Location:      p.Location,
		MeetingLink:   p.MeetingLink,
		OfficeAddress: p.OfficeAddress,
		PhoneNumber:   p.PhoneNumber,
		Interviewers:  p.Interviewers,
		Type:          p.Type,
		Notes:         p.Notes,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, iv); err != nil {
		return nil, &ErrStorage{Err: err}
	}

	s.events.Emit(ctx, Event{
		Name:          EventInterviewCreated,
		ApplicationID: iv.ApplicationID,
		InterviewID:   iv.ID,
		CandidateID:   iv.CandidateID,
		At:            now,
	})
	return iv, nil
}

func (s *InterviewService) validateCreate(p CreateInterviewParams) error {
	if !p.Location.IsKnown() {
		return &ErrValidation{Field: "location", Message: "location must be online, office, or phone"}
	}
	switch p.Location {
	case LocationOnline:
		if strings.TrimSpace(p.MeetingLink) == "" {
			return &ErrValidation{Field: "meeting_link", Message: "meeting_link is required for online interviews"}
		}
	case LocationOffice:
		if strings.TrimSpace(p.OfficeAddress) == "" {
			return &ErrValidation{Field: "office_address", Message: "office_address is required for office interviews"}
		}
	case LocationPhone:
		if strings.TrimSpace(p.PhoneNumber) == "" {
			return &ErrValidation{Field: "phone_number", Message: "phone_number is required for phone interviews"}
		}
	}
	if p.Duration <= 0 {
		return &ErrValidation{Field: "duration_minutes", Message: "duration must be positive"}
	}
	if !p.InterviewAt.After(s.clock.Now()) {
		return &ErrValidation{Field: "interview_at", Message: "interview time must be in the future"}
	}
	return nil
}

// Confirm marks a scheduled future interview as confirmed. Only the owning
// candidate may confirm, and only while the interview is still ahead.
func (s *InterviewService) Confirm(ctx context.Context, caller Identity, interviewID uuid.UUID) (*Interview, error) {
	iv, err := s.ownedInterview(ctx, caller, OpConfirmInterview, interviewID)
	if err != nil {
		return nil, err
	}

	updated, err := s.saveWithRetry(ctx, iv, func(iv *Interview) error {
		if iv.Status != InterviewScheduled {
			return &ErrInvalidTransition{Entity: "interview", From: string(iv.Status), To: string(InterviewConfirmed)}
		}
		if !iv.InterviewAt.After(s.clock.Now()) {
			return &ErrInvalidTransition{
				Entity: "interview",
				From:   string(iv.Status),
				To:     string(InterviewConfirmed),
				Reason: "interview time has passed",
			}
		}
		iv.Status = InterviewConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventInterviewConfirmed, updated, nil)
	return updated, nil
}

// RequestReschedule terminates the interview record with status rescheduled
// and records the audit trail. Only the owning candidate may request it, only
// while more than RescheduleWindow remains, and only with a substantive
// reason. A replacement interview is a separate staff Create call.
func (s *InterviewService) RequestReschedule(ctx context.Context, caller Identity, interviewID uuid.UUID, reason string) (*Interview, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < MinRescheduleReasonLen {
		return nil, &ErrValidation{Field: "reason", Message: "reason must be at least 10 characters"}
	}

	iv, err := s.ownedInterview(ctx, caller, OpRequestReschedule, interviewID)
	if err != nil {
		return nil, err
	}

	updated, err := s.saveWithRetry(ctx, iv, func(iv *Interview) error {
		if iv.Status != InterviewScheduled && iv.Status != InterviewConfirmed {
			return &ErrInvalidTransition{Entity: "interview", From: string(iv.Status), To: string(InterviewRescheduled)}
		}
		if iv.InterviewAt.Sub(s.clock.Now()) <= RescheduleWindow {
			return &ErrInvalidTransition{
				Entity: "interview",
				From:   string(iv.Status),
				To:     string(InterviewRescheduled),
				Reason: "less than 24 hours before the interview",
			}
		}
		now := s.clock.Now()
		requester := caller.ID
		iv.Status = InterviewRescheduled
		iv.RescheduleReason = reason
		iv.RescheduleRequestedAt = &now
		iv.RescheduleRequestedBy = &requester
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventInterviewRescheduleRequested, updated, map[string]string{"reason": reason})
	return updated, nil
}

// Cancel moves a non-terminal interview to cancelled with an audit trail.
// Staff only; a reason is required.
func (s *InterviewService) Cancel(ctx context.Context, caller Identity, interviewID uuid.UUID, reason string) (*Interview, error) {
	if !s.gate.Allowed(caller, OpCancelInterview) {
		return nil, &ErrForbidden{Operation: OpCancelInterview}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ErrValidation{Field: "reason", Message: "reason is required"}
	}

	iv, err := s.loadInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	updated, err := s.saveWithRetry(ctx, iv, func(iv *Interview) error {
		if iv.Status.IsTerminal() {
			return &ErrInvalidTransition{Entity: "interview", From: string(iv.Status), To: string(InterviewCancelled)}
		}
		now := s.clock.Now()
		staff := caller.ID
		iv.Status = InterviewCancelled
		iv.CancelledReason = reason
		iv.CancelledAt = &now
		iv.CancelledBy = &staff
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventInterviewCancelled, updated, map[string]string{"reason": reason})
	return updated, nil
}

// Complete marks a scheduled or confirmed interview as completed, optionally
// capturing feedback and a 0-100 score. Staff only.
func (s *InterviewService) Complete(ctx context.Context, caller Identity, interviewID uuid.UUID, feedback string, score *int) (*Interview, error) {
	if !s.gate.Allowed(caller, OpCompleteInterview) {
		return nil, &ErrForbidden{Operation: OpCompleteInterview}
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}

	iv, err := s.loadInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	updated, err := s.saveWithRetry(ctx, iv, func(iv *Interview) error {
		if iv.Status != InterviewScheduled && iv.Status != InterviewConfirmed {
			return &ErrInvalidTransition{Entity: "interview", From: string(iv.Status), To: string(InterviewCompleted)}
		}
		iv.Status = InterviewCompleted
		if feedback != "" {
			iv.Feedback = feedback
		}
		if score != nil {
			iv.Score = score
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventInterviewCompleted, updated, nil)
	return updated, nil
}

// MarkNoShow records that the candidate did not appear. Staff only, and only
// once the interview time has passed.
func (s *InterviewService) MarkNoShow(ctx context.Context, caller Identity, interviewID uuid.UUID) (*Interview, error) {
	if !s.gate.Allowed(caller, OpMarkNoShow) {
		return nil, &ErrForbidden{Operation: OpMarkNoShow}
	}

	iv, err := s.loadInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	updated, err := s.saveWithRetry(ctx, iv, func(iv *Interview) error {
		if iv.Status != InterviewScheduled && iv.Status != InterviewConfirmed {
			return &ErrInvalidTransition{Entity: "interview", From: string(iv.Status), To: string(InterviewNoShow)}
		}
		if iv.InterviewAt.After(s.clock.Now()) {
			return &ErrInvalidTransition{
				Entity: "interview",
				From:   string(iv.Status),
				To:     string(InterviewNoShow),
				Reason: "interview has not happened yet",
			}
		}
		iv.Status = InterviewNoShow
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventInterviewNoShow, updated, nil)
	return updated, nil
}

// AttachFeedback records interviewer notes on a scheduled or confirmed
// interview without completing it, so notes can be taken mid-flow.
func (s *InterviewService) AttachFeedback(ctx context.Context, caller Identity, interviewID uuid.UUID, feedback string, score *int) (*Interview, error) {
	if !s.gate.Allowed(caller, OpAttachFeedback) {
		return nil, &ErrForbidden{Operation: OpAttachFeedback}
	}
	if strings.TrimSpace(feedback) == "" && score == nil {
		return nil, &ErrValidation{Field: "feedback", Message: "feedback or score is required"}
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}

	iv, err := s.loadInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	return s.saveWithRetry(ctx, iv, func(iv *Interview) error {
		if iv.Status != InterviewScheduled && iv.Status != InterviewConfirmed {
			return &ErrInvalidTransition{
				Entity: "interview",
				From:   string(iv.Status),
				To:     string(iv.Status),
				Reason: "feedback can only be attached before the final mark",
			}
		}
		if feedback != "" {
			iv.Feedback = feedback
		}
		if score != nil {
			iv.Score = score
		}
		return nil
	})
}

// MyInterviews returns all of the caller's interviews, newest first.
func (s *InterviewService) MyInterviews(ctx context.Context, caller Identity) ([]Interview, error) {
	if !s.gate.Allowed(caller, OpViewInterviews) {
		return nil, &ErrForbidden{Operation: OpViewInterviews}
	}
	list, err := s.store.ListByCandidate(ctx, caller.ID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].InterviewAt.After(list[j].InterviewAt) })
	return list, nil
}

// Upcoming returns the caller's scheduled or confirmed interviews that have
// not started yet, earliest first.
func (s *InterviewService) Upcoming(ctx context.Context, caller Identity) ([]Interview, error) {
	if !s.gate.Allowed(caller, OpViewInterviews) {
		return nil, &ErrForbidden{Operation: OpViewInterviews}
	}
	return s.upcoming(ctx, caller.ID)
}

func (s *InterviewService) upcoming(ctx context.Context, candidateID uuid.UUID) ([]Interview, error) {
	list, err := s.store.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}
	now := s.clock.Now()
	out := make([]Interview, 0, len(list))
	for _, iv := range list {
		if (iv.Status == InterviewScheduled || iv.Status == InterviewConfirmed) && !iv.InterviewAt.Before(now) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InterviewAt.Before(out[j].InterviewAt) })
	return out, nil
}

// Past returns the caller's interviews that already happened or ended in a
// terminal state, most recent first.
func (s *InterviewService) Past(ctx context.Context, caller Identity) ([]Interview, error) {
	if !s.gate.Allowed(caller, OpViewInterviews) {
		return nil, &ErrForbidden{Operation: OpViewInterviews}
	}
	list, err := s.store.ListByCandidate(ctx, caller.ID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}
	now := s.clock.Now()
	out := make([]Interview, 0, len(list))
	for _, iv := range list {
		if iv.InterviewAt.Before(now) || iv.Status.IsTerminal() {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InterviewAt.After(out[j].InterviewAt) })
	return out, nil
}

// NextInterview returns the caller's earliest upcoming interview.
func (s *InterviewService) NextInterview(ctx context.Context, caller Identity) (*Interview, error) {
	if !s.gate.Allowed(caller, OpViewInterviews) {
		return nil, &ErrForbidden{Operation: OpViewInterviews}
	}
	upcoming, err := s.upcoming(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if len(upcoming) == 0 {
		return nil, &ErrNotFound{Entity: "interview"}
	}
	return &upcoming[0], nil
}

// DaySchedule groups an application's interviews on one UTC calendar day.
type DaySchedule struct {
	Date       string      `json:"date"` // YYYY-MM-DD
	Interviews []Interview `json:"interviews"`
}

// Schedule returns an application's interviews grouped by calendar day,
// days ascending and interviews within a day ascending. Staff only.
func (s *InterviewService) Schedule(ctx context.Context, caller Identity, applicationID uuid.UUID) ([]DaySchedule, error) {
	if !s.gate.Allowed(caller, OpViewSchedule) {
		return nil, &ErrForbidden{Operation: OpViewSchedule}
	}
	list, err := s.store.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}

	byDay := make(map[string][]Interview)
	for _, iv := range list {
		day := iv.InterviewAt.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], iv)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]DaySchedule, 0, len(days))
	for _, day := range days {
		ivs := byDay[day]
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].InterviewAt.Before(ivs[j].InterviewAt) })
		out = append(out, DaySchedule{Date: day, Interviews: ivs})
	}
	return out, nil
}

func validateScore(score *int) error {
	if score != nil && (*score < 0 || *score > 100) {
		return &ErrValidation{Field: "score", Message: "score must be between 0 and 100"}
	}
	return nil
}

// ownedInterview loads an interview for a candidate-only operation, checking
// role and ownership.
func (s *InterviewService) ownedInterview(ctx context.Context, caller Identity, op Operation, interviewID uuid.UUID) (*Interview, error) {
	if !s.gate.Allowed(caller, op) {
		return nil, &ErrForbidden{Operation: op}
	}
	iv, err := s.loadInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !s.gate.AllowedOwner(caller, op, iv.CandidateID) {
		return nil, &ErrForbidden{Operation: op}
	}
	return iv, nil
}

func (s *InterviewService) loadInterview(ctx context.Context, interviewID uuid.UUID) (*Interview, error) {
	iv, err := s.store.GetByID(ctx, interviewID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}
	if iv == nil {
		return nil, &ErrNotFound{Entity: "interview", ID: interviewID}
	}
	return iv, nil
}

func (s *InterviewService) emit(ctx context.Context, name string, iv *Interview, detail map[string]string) {
	s.events.Emit(ctx, Event{
		Name:          name,
		ApplicationID: iv.ApplicationID,
		InterviewID:   iv.ID,
		CandidateID:   iv.CandidateID,
		Detail:        detail,
		At:            s.clock.Now(),
	})
}

// saveWithRetry applies mutate and writes the record, re-reading and retrying
// exactly once on a stale-version write.
func (s *InterviewService) saveWithRetry(ctx context.Context, iv *Interview, mutate func(*Interview) error) (*Interview, error) {
	for attempt := 0; ; attempt++ {
		if err := mutate(iv); err != nil {
			return nil, err
		}
		iv.UpdatedAt = s.clock.Now()

		err := s.store.Update(ctx, iv)
		if err == nil {
			return iv, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, &ErrStorage{Err: err}
		}
		if attempt == 1 {
			return nil, &ErrConcurrentModification{Entity: "interview", ID: iv.ID}
		}

		fresh, gerr := s.store.GetByID(ctx, iv.ID)
		if gerr != nil {
			return nil, &ErrStorage{Err: gerr}
		}
		if fresh == nil {
			return nil, &ErrNotFound{Entity: "interview", ID: iv.ID}
		}
		iv = fresh
	}
}
