package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrei/membership-portal/internal/workflow"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&workflow.ErrValidation{Field: "reason", Message: "too short"}, http.StatusBadRequest},
		{&workflow.ErrInvalidTransition{Entity: "application", From: "submitted", To: "submitted"}, http.StatusConflict},
		{&workflow.ErrApplicationLocked{Status: workflow.StatusSubmitted}, http.StatusConflict},
		{&workflow.ErrConcurrentModification{Entity: "interview"}, http.StatusConflict},
		{&workflow.ErrNotFound{Entity: "interview"}, http.StatusNotFound},
		{&workflow.ErrForbidden{Operation: workflow.OpReviewApplication}, http.StatusForbidden},
		{&workflow.ErrStorage{Err: errors.New("down")}, http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "wrong status for %T", tt.err)
	}
}

func TestHTTPStatus_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", &workflow.ErrForbidden{Operation: workflow.OpSubmit})
	assert.Equal(t, http.StatusForbidden, HTTPStatus(wrapped))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, workflow.KindValidation, ErrorKind(&workflow.ErrValidation{}))
	assert.Equal(t, workflow.KindInvalidTransition, ErrorKind(&workflow.ErrInvalidTransition{}))
	assert.Equal(t, workflow.KindApplicationLocked, ErrorKind(&workflow.ErrApplicationLocked{}))
	assert.Equal(t, workflow.KindNotFound, ErrorKind(&workflow.ErrNotFound{}))
	assert.Equal(t, workflow.KindForbidden, ErrorKind(&workflow.ErrForbidden{}))
	assert.Equal(t, workflow.KindConcurrentModified, ErrorKind(&workflow.ErrConcurrentModification{}))
	assert.Equal(t, workflow.KindStorageUnavailable, ErrorKind(&workflow.ErrStorage{Err: errors.New("down")}))
	assert.Equal(t, workflow.KindStorageUnavailable, ErrorKind(errors.New("unclassified")))
}
