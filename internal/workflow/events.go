package workflow

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Domain event names. Events are emitted after the state transition has been
// committed; delivery is fire-and-forget and never rolls back the write.
const (
	EventApplicationSubmitted         = "application.submitted"
	EventApplicationWithdrawn         = "application.withdrawn"
	EventApplicationReviewed          = "application.reviewed"
	EventInterviewCreated             = "interview.created"
	EventInterviewConfirmed           = "interview.confirmed"
	EventInterviewRescheduleRequested = "interview.reschedule_requested"
	EventInterviewCancelled           = "interview.cancelled"
	EventInterviewCompleted           = "interview.completed"
	EventInterviewNoShow              = "interview.no_show"
)

// Event is an outward notification about a successful transition.
type Event struct {
	Name          string            `json:"name"`
	ApplicationID uuid.UUID         `json:"application_id,omitempty"`
	InterviewID   uuid.UUID         `json:"interview_id,omitempty"`
	CandidateID   uuid.UUID         `json:"candidate_id,omitempty"`
	Detail        map[string]string `json:"detail,omitempty"`
	At            time.Time         `json:"at"`
}

// Emitter consumes domain events. Implementations must not block the calling
// transition and must not return delivery failures into it.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ctx context.Context, e Event)

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, e Event) { f(ctx, e) }

// LogEmitter is the stand-in for the external notification dispatcher: it
// logs each event and drops it.
type LogEmitter struct{}

// Emit logs the event.
func (LogEmitter) Emit(_ context.Context, e Event) {
	log.Printf("[event] %s application=%s interview=%s candidate=%s",
		e.Name, e.ApplicationID, e.InterviewID, e.CandidateID)
}

// Dispatcher fans an event out to multiple sinks in order.
type Dispatcher struct {
	sinks []Emitter
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(sinks ...Emitter) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// Register appends another sink.
func (d *Dispatcher) Register(e Emitter) {
	d.sinks = append(d.sinks, e)
}

// Emit delivers the event to every sink.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	for _, sink := range d.sinks {
		sink.Emit(ctx, e)
	}
}
