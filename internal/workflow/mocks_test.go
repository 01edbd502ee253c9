package workflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// memApplications is an in-memory ApplicationStore with the same
// compare-and-set contract as the SQL store.
type memApplications struct {
	mu      sync.Mutex
	records map[uuid.UUID]Application
	order   []uuid.UUID

	// beforeUpdate runs before each version check, letting tests simulate a
	// concurrent writer.
	beforeUpdate func(s *memApplications)
	err          error
}

func newMemApplications() *memApplications {
	return &memApplications{records: make(map[uuid.UUID]Application)}
}

func (s *memApplications) Create(_ context.Context, app *Application) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[app.ID] = *app
	s.order = append(s.order, app.ID)
	return nil
}

func (s *memApplications) Update(_ context.Context, app *Application) error {
	if s.err != nil {
		return s.err
	}
	if s.beforeUpdate != nil {
		s.beforeUpdate(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[app.ID]
	if !ok || stored.Version != app.Version {
		return ErrVersionConflict
	}
	app.Version++
	s.records[app.ID] = *app
	return nil
}

func (s *memApplications) GetByID(_ context.Context, id uuid.UUID) (*Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	out := app
	return &out, nil
}

func (s *memApplications) GetByCandidate(_ context.Context, candidateID uuid.UUID) (*Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		app := s.records[s.order[i]]
		if app.CandidateID == candidateID {
			out := app
			return &out, nil
		}
	}
	return nil, nil
}

func (s *memApplications) CountByStatus(_ context.Context) (map[ApplicationStatus]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[ApplicationStatus]int)
	for _, app := range s.records {
		counts[app.Status]++
	}
	return counts, nil
}

// setStatus rewrites a stored record's status and bumps its version, like a
// write from another request.
func (s *memApplications) setStatus(id uuid.UUID, status ApplicationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app := s.records[id]
	app.Status = status
	app.Version++
	s.records[id] = app
}

// memInterviews is an in-memory InterviewStore with CAS updates.
type memInterviews struct {
	mu      sync.Mutex
	records map[uuid.UUID]Interview
	order   []uuid.UUID

	beforeUpdate func(s *memInterviews)
	err          error
}

func newMemInterviews() *memInterviews {
	return &memInterviews{records: make(map[uuid.UUID]Interview)}
}

func (s *memInterviews) Create(_ context.Context, iv *Interview) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[iv.ID] = *iv
	s.order = append(s.order, iv.ID)
	return nil
}

func (s *memInterviews) Update(_ context.Context, iv *Interview) error {
	if s.err != nil {
		return s.err
	}
	if s.beforeUpdate != nil {
		s.beforeUpdate(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[iv.ID]
	if !ok || stored.Version != iv.Version {
		return ErrVersionConflict
	}
	iv.Version++
	s.records[iv.ID] = *iv
	return nil
}

func (s *memInterviews) GetByID(_ context.Context, id uuid.UUID) (*Interview, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	out := iv
	return &out, nil
}

func (s *memInterviews) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]Interview, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Interview
	for _, id := range s.order {
		if iv := s.records[id]; iv.CandidateID == candidateID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (s *memInterviews) ListByApplication(_ context.Context, applicationID uuid.UUID) ([]Interview, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Interview
	for _, id := range s.order {
		if iv := s.records[id]; iv.ApplicationID == applicationID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (s *memInterviews) bumpVersion(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv := s.records[id]
	iv.Version++
	s.records[id] = iv
}

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingEmitter) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}
