package server

import (
	"errors"
	"net/http"

	"github.com/andrei/membership-portal/internal/workflow"
)

// HTTPStatus returns the appropriate HTTP status code for a domain error.
func HTTPStatus(err error) int {
	var (
		validation *workflow.ErrValidation
		transition *workflow.ErrInvalidTransition
		locked     *workflow.ErrApplicationLocked
		notFound   *workflow.ErrNotFound
		forbidden  *workflow.ErrForbidden
		conflict   *workflow.ErrConcurrentModification
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &transition), errors.As(err, &locked), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKind returns the stable machine-readable kind for a domain error, so
// clients can branch on it instead of parsing display strings.
func ErrorKind(err error) string {
	var kinder workflow.Kinder
	if errors.As(err, &kinder) {
		return kinder.Kind()
	}
	return workflow.KindStorageUnavailable
}
