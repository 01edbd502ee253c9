package workflow

import (
	"fmt"

	"github.com/google/uuid"
)

// Error kinds are stable machine-readable identifiers carried alongside the
// display message in API responses.
const (
	KindValidation         = "validation_error"
	KindInvalidTransition  = "invalid_transition"
	KindApplicationLocked  = "application_locked"
	KindNotFound           = "not_found"
	KindForbidden          = "forbidden"
	KindConcurrentModified = "concurrent_modification"
	KindStorageUnavailable = "storage_unavailable"
)

// Kinder is implemented by domain errors that carry a stable error kind.
type Kinder interface {
	Kind() string
}

// ErrValidation indicates malformed or missing input. The caller can recover
// by resubmitting corrected input.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Kind returns the stable error kind.
func (e *ErrValidation) Kind() string { return KindValidation }

// ErrInvalidTransition indicates the requested state change is not legal from
// the current state, including time-window failures. It carries the attempted
// status pair for client-side messaging.
type ErrInvalidTransition struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *ErrInvalidTransition) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s cannot move from %s to %s: %s", e.Entity, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// Kind returns the stable error kind.
func (e *ErrInvalidTransition) Kind() string { return KindInvalidTransition }

// ErrApplicationLocked indicates the candidate already has an application that
// is past draft and not yet withdrawn or rejected.
type ErrApplicationLocked struct {
	Status ApplicationStatus
}

func (e *ErrApplicationLocked) Error() string {
	return fmt.Sprintf("application is locked in status %s", e.Status)
}

// Kind returns the stable error kind.
func (e *ErrApplicationLocked) Kind() string { return KindApplicationLocked }

// ErrNotFound indicates the referenced record does not exist or does not
// belong to the caller.
type ErrNotFound struct {
	Entity string
	ID     uuid.UUID
}

func (e *ErrNotFound) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Kind returns the stable error kind.
func (e *ErrNotFound) Kind() string { return KindNotFound }

// ErrForbidden indicates the caller's role or ownership does not permit the
// operation.
type ErrForbidden struct {
	Operation Operation
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("operation %s is not permitted for this caller", e.Operation)
}

// Kind returns the stable error kind.
func (e *ErrForbidden) Kind() string { return KindForbidden }

// ErrConcurrentModification indicates an optimistic version conflict that
// survived the single in-service retry. The caller should re-read and retry.
type ErrConcurrentModification struct {
	Entity string
	ID     uuid.UUID
}

func (e *ErrConcurrentModification) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Entity, e.ID)
}

// Kind returns the stable error kind.
func (e *ErrConcurrentModification) Kind() string { return KindConcurrentModified }

// ErrStorage indicates an underlying record store failure. Fatal to the
// request; the core does not retry it.
type ErrStorage struct {
	Err error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("storage unavailable: %v", e.Err)
}

func (e *ErrStorage) Unwrap() error { return e.Err }

// Kind returns the stable error kind.
func (e *ErrStorage) Kind() string { return KindStorageUnavailable }
