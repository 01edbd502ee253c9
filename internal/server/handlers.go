package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/andrei/membership-portal/internal/server/middleware"
	"github.com/andrei/membership-portal/internal/workflow"
)

// caller extracts the authenticated identity placed by the auth middleware.
// A missing identity means the route was wired outside the middleware chain.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (workflow.Identity, bool) {
	id, err := middleware.GetIdentity(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return workflow.Identity{}, false
	}
	return id, true
}

// decodeBody decodes and reports a bad request on malformed JSON.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, "Invalid request body")
		return false
	}
	return true
}

// pathID parses the {id} path segment as a UUID.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// validationMessage extracts a display message from validator errors.
func validationMessage(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
