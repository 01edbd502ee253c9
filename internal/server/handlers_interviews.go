package server

import (
	"net/http"

	"github.com/andrei/membership-portal/internal/types"
	"github.com/andrei/membership-portal/internal/workflow"
)

// handleCreateInterview schedules a new interview. Staff only.
func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req types.CreateInterviewRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, validationMessage(err))
		return
	}

	iv, err := s.interviews.Create(r.Context(), caller, req.Params())
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, iv)
}

// handleConfirm confirms an upcoming interview. Owning candidate only.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	interviewID, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}

	iv, err := s.interviews.Confirm(r.Context(), caller, interviewID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

// handleRescheduleRequest records a candidate reschedule request.
func (s *Server) handleRescheduleRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	interviewID, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}

	var req types.RescheduleRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, validationMessage(err))
		return
	}

	iv, err := s.interviews.RequestReschedule(r.Context(), caller, interviewID, req.Reason)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

// handleCancel cancels an interview with an audit reason. Staff only.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	interviewID, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}

	var req types.CancelRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, validationMessage(err))
		return
	}

	iv, err := s.interviews.Cancel(r.Context(), caller, interviewID, req.Reason)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

// handleComplete marks an interview completed with optional feedback/score.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	interviewID, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}

	var req types.CompleteRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, validationMessage(err))
		return
	}

	iv, err := s.interviews.Complete(r.Context(), caller, interviewID, req.Feedback, req.Score)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

// handleNoShow records a missed interview. Staff only.
func (s *Server) handleNoShow(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	interviewID, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}

	iv, err := s.interviews.MarkNoShow(r.Context(), caller, interviewID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

// handleFeedback attaches interviewer notes without completing the interview.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	interviewID, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}

	var req types.FeedbackRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, workflow.KindValidation, validationMessage(err))
		return
	}

	iv, err := s.interviews.AttachFeedback(r.Context(), caller, interviewID, req.Feedback, req.Score)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

// handleMyInterviews lists all of the caller's interviews.
func (s *Server) handleMyInterviews(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	list, err := s.interviews.MyInterviews(r.Context(), caller)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"interviews": list, "count": len(list)})
}

// handleUpcoming lists the caller's upcoming interviews, earliest first.
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	list, err := s.interviews.Upcoming(r.Context(), caller)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"interviews": list, "count": len(list)})
}

// handlePast lists the caller's past interviews, most recent first.
func (s *Server) handlePast(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	list, err := s.interviews.Past(r.Context(), caller)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"interviews": list, "count": len(list)})
}

// handleNextInterview returns the caller's earliest upcoming interview.
func (s *Server) handleNextInterview(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	iv, err := s.interviews.NextInterview(r.Context(), caller)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, iv)
}

// handleSchedule returns an application's interviews grouped by day. Staff
// only.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	applicationID, ok := s.pathID(w, r, "application")
	if !ok {
		return
	}

	days, err := s.interviews.Schedule(r.Context(), caller, applicationID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"days": days})
}
