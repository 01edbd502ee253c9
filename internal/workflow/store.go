package workflow

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrVersionConflict is returned by stores when a write targets a stale
// record version. Services re-read and retry once before surfacing
// ErrConcurrentModification.
var ErrVersionConflict = errors.New("record version conflict")

// ApplicationStore persists applications. GetByID and GetByCandidate return
// (nil, nil) when no record exists.
type ApplicationStore interface {
	Create(ctx context.Context, app *Application) error
	// Update writes the record if its stored version matches app.Version,
	// bumping the version on success. Returns ErrVersionConflict on a
	// stale write.
	Update(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	// GetByCandidate returns the candidate's most recent application.
	GetByCandidate(ctx context.Context, candidateID uuid.UUID) (*Application, error)
	CountByStatus(ctx context.Context) (map[ApplicationStatus]int, error)
}

// ApplicationReader is the read-only slice of ApplicationStore the interview
// service uses to check whether interview creation is permitted. It never
// writes application state.
type ApplicationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
}

// InterviewStore persists interviews. GetByID returns (nil, nil) when no
// record exists.
type InterviewStore interface {
	Create(ctx context.Context, iv *Interview) error
	// Update has the same compare-and-set contract as ApplicationStore.Update.
	Update(ctx context.Context, iv *Interview) error
	GetByID(ctx context.Context, id uuid.UUID) (*Interview, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Interview, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]Interview, error)
}
