package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ApplicationService owns the application state machine: draft saving,
// submission, withdrawal and staff review.
type ApplicationService struct {
	store  ApplicationStore
	gate   *Gate
	clock  Clock
	events Emitter
}

// NewApplicationService creates the application workflow service.
func NewApplicationService(store ApplicationStore, gate *Gate, clock Clock, events Emitter) *ApplicationService {
	return &ApplicationService{store: store, gate: gate, clock: clock, events: events}
}

// SaveDraft upserts the candidate's draft application. A candidate whose
// previous application ended withdrawn or rejected starts over with a new
// record; a candidate with an in-flight application gets ErrApplicationLocked.
func (s *ApplicationService) SaveDraft(ctx context.Context, caller Identity, sections ApplicationSections) (*Application, error) {
	if !s.gate.Allowed(caller, OpSaveDraft) {
		return nil, &ErrForbidden{Operation: OpSaveDraft}
	}

	existing, err := s.store.GetByCandidate(ctx, caller.ID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}

	switch {
	case existing == nil:
		return s.createDraft(ctx, caller.ID, sections)
	case existing.Status == StatusDraft:
		return s.saveWithRetry(ctx, existing, func(app *Application) error {
			if app.Status != StatusDraft {
				return &ErrApplicationLocked{Status: app.Status}
			}
			app.Sections = sections
			return nil
		})
	case existing.Status == StatusWithdrawn || existing.Status == StatusRejected:
		// Previous run is over; a fresh application gets a new identity.
		return s.createDraft(ctx, caller.ID, sections)
	default:
		return nil, &ErrApplicationLocked{Status: existing.Status}
	}
}

func (s *ApplicationService) createDraft(ctx context.Context, candidateID uuid.UUID, sections ApplicationSections) (*Application, error) {
	now := s.clock.Now()
	app := &Application{
		ID:          uuid.New(),
		CandidateID: candidateID,
		Sections:    sections,
		Status:      StatusDraft,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, app); err != nil {
		return nil, &ErrStorage{Err: err}
	}
	return app, nil
}

// Submit moves the candidate's draft application to submitted.
func (s *ApplicationService) Submit(ctx context.Context, caller Identity) (*Application, error) {
	if !s.gate.Allowed(caller, OpSubmit) {
		return nil, &ErrForbidden{Operation: OpSubmit}
	}

	app, err := s.currentApplication(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.saveWithRetry(ctx, app, func(app *Application) error {
		if app.Status != StatusDraft {
			return &ErrInvalidTransition{Entity: "application", From: string(app.Status), To: string(StatusSubmitted)}
		}
		now := s.clock.Now()
		app.Status = StatusSubmitted
		app.SubmittedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, Event{
		Name:          EventApplicationSubmitted,
		ApplicationID: updated.ID,
		CandidateID:   updated.CandidateID,
		At:            s.clock.Now(),
	})
	return updated, nil
}

// Withdraw moves the candidate's application to withdrawn. Legal from any
// status except the two review outcomes; a second withdraw fails.
func (s *ApplicationService) Withdraw(ctx context.Context, caller Identity) (*Application, error) {
	if !s.gate.Allowed(caller, OpWithdraw) {
		return nil, &ErrForbidden{Operation: OpWithdraw}
	}

	app, err := s.currentApplication(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.saveWithRetry(ctx, app, func(app *Application) error {
		if app.Status.IsTerminal() {
			return &ErrInvalidTransition{Entity: "application", From: string(app.Status), To: string(StatusWithdrawn)}
		}
		app.Status = StatusWithdrawn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, Event{
		Name:          EventApplicationWithdrawn,
		ApplicationID: updated.ID,
		CandidateID:   updated.CandidateID,
		At:            s.clock.Now(),
	})
	return updated, nil
}

// Review moves a non-terminal application to under_review, accepted or
// rejected and records who reviewed it. Staff only; no ordering beyond "not
// terminal" is enforced between the three targets.
func (s *ApplicationService) Review(ctx context.Context, caller Identity, applicationID uuid.UUID, target ApplicationStatus, notes string) (*Application, error) {
	if !s.gate.Allowed(caller, OpReviewApplication) {
		return nil, &ErrForbidden{Operation: OpReviewApplication}
	}
	if !isReviewTarget(target) {
		return nil, &ErrValidation{Field: "status", Message: "status must be under_review, accepted, or rejected"}
	}

	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}
	if app == nil {
		return nil, &ErrNotFound{Entity: "application", ID: applicationID}
	}

	updated, err := s.saveWithRetry(ctx, app, func(app *Application) error {
		if app.Status.IsTerminal() {
			return &ErrInvalidTransition{Entity: "application", From: string(app.Status), To: string(target)}
		}
		now := s.clock.Now()
		reviewer := caller.ID
		app.Status = target
		app.ReviewNotes = strings.TrimSpace(notes)
		app.ReviewedBy = &reviewer
		app.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, Event{
		Name:          EventApplicationReviewed,
		ApplicationID: updated.ID,
		CandidateID:   updated.CandidateID,
		Detail:        map[string]string{"status": string(target)},
		At:            s.clock.Now(),
	})
	return updated, nil
}

// MyApplication returns the caller's most recent application.
func (s *ApplicationService) MyApplication(ctx context.Context, caller Identity) (*Application, error) {
	if !s.gate.Allowed(caller, OpViewApplication) {
		return nil, &ErrForbidden{Operation: OpViewApplication}
	}
	return s.currentApplication(ctx, caller.ID)
}

// Stats returns the number of applications per status. Read-only.
func (s *ApplicationService) Stats(ctx context.Context, caller Identity) (map[ApplicationStatus]int, error) {
	if !s.gate.Allowed(caller, OpViewStats) {
		return nil, &ErrForbidden{Operation: OpViewStats}
	}
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}
	return counts, nil
}

// OnInterviewCreated is the event bridge from the interview scheduling
// service: when the first interview for an application appears, a non-terminal
// application moves to interview_scheduled. Anything else is a no-op.
func (s *ApplicationService) OnInterviewCreated(ctx context.Context, applicationID uuid.UUID) error {
	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return &ErrStorage{Err: err}
	}
	if app == nil || app.Status.IsTerminal() || app.Status == StatusInterviewScheduled {
		return nil
	}
	_, err = s.saveWithRetry(ctx, app, func(app *Application) error {
		if app.Status.IsTerminal() || app.Status == StatusInterviewScheduled {
			return nil
		}
		app.Status = StatusInterviewScheduled
		return nil
	})
	return err
}

func (s *ApplicationService) currentApplication(ctx context.Context, candidateID uuid.UUID) (*Application, error) {
	app, err := s.store.GetByCandidate(ctx, candidateID)
	if err != nil {
		return nil, &ErrStorage{Err: err}
	}
	if app == nil {
		return nil, &ErrNotFound{Entity: "application"}
	}
	return app, nil
}

// saveWithRetry applies mutate and writes the record, re-reading and retrying
// exactly once on a stale-version write. mutate re-runs against the fresh
// record so guards are re-evaluated.
func (s *ApplicationService) saveWithRetry(ctx context.Context, app *Application, mutate func(*Application) error) (*Application, error) {
	for attempt := 0; ; attempt++ {
		if err := mutate(app); err != nil {
			return nil, err
		}
		app.UpdatedAt = s.clock.Now()

		err := s.store.Update(ctx, app)
		if err == nil {
			return app, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, &ErrStorage{Err: err}
		}
		if attempt == 1 {
			return nil, &ErrConcurrentModification{Entity: "application", ID: app.ID}
		}

		fresh, gerr := s.store.GetByID(ctx, app.ID)
		if gerr != nil {
			return nil, &ErrStorage{Err: gerr}
		}
		if fresh == nil {
			return nil, &ErrNotFound{Entity: "application", ID: app.ID}
		}
		app = fresh
	}
}
