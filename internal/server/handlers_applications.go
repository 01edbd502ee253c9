package server

import (
	"net/http"

	"github.com/andrei/membership-portal/internal/types"
	"github.com/andrei/membership-portal/internal/workflow"
)

// handleSaveDraft upserts the caller's draft application.
func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req types.SaveDraftRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, validationMessage(err))
		return
	}

	app, err := s.apps.SaveDraft(r.Context(), caller, req.Sections())
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleSubmit moves the caller's draft to submitted.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	app, err := s.apps.Submit(r.Context(), caller)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleWithdraw withdraws the caller's application.
func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	app, err := s.apps.Withdraw(r.Context(), caller)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleMyApplication returns the caller's most recent application.
func (s *Server) handleMyApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	app, err := s.apps.MyApplication(r.Context(), caller)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleReview applies a staff review decision to an application.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	applicationID, ok := s.pathID(w, r, "application")
	if !ok {
		return
	}

	var req types.ReviewRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, validationMessage(err))
		return
	}

	app, err := s.apps.Review(r.Context(), caller, applicationID, workflow.ApplicationStatus(req.Status), req.Notes)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleStats returns per-status application counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	counts, err := s.apps.Stats(r.Context(), caller)
	if err != nil {
		s.domainError(w, err)
		return
	}

	resp := types.StatsResponse{ByStatus: make(map[string]int, len(counts))}
	for status, count := range counts {
		resp.ByStatus[string(status)] = count
		resp.Total += count
	}
	s.jsonResponse(w, http.StatusOK, resp)
}
