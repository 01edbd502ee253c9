package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/andrei/membership-portal/internal/workflow"
)

// InterviewStore is the PostgreSQL implementation of workflow.InterviewStore.
type InterviewStore struct {
	db *DB
}

// NewInterviewStore creates an interview store over the shared pool.
func NewInterviewStore(db *DB) *InterviewStore {
	return &InterviewStore{db: db}
}

const interviewColumns = `id, application_id, candidate_id, status, interview_at,
	duration_minutes, location, meeting_link, office_address, phone_number,
	interviewers, interview_type, notes, feedback, score,
	reschedule_reason, reschedule_requested_at, reschedule_requested_by,
	cancelled_reason, cancelled_at, cancelled_by, version, created_at, updated_at`

// Create inserts a new interview record.
func (s *InterviewStore) Create(ctx context.Context, iv *workflow.Interview) error {
	interviewersJSON, err := json.Marshal(iv.Interviewers)
	if err != nil {
		return fmt.Errorf("failed to marshal interviewers: %w", err)
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO interviews (id, application_id, candidate_id, status, interview_at,
		        duration_minutes, location, meeting_link, office_address, phone_number,
		        interviewers, interview_type, notes, feedback, score,
		        reschedule_reason, reschedule_requested_at, reschedule_requested_by,
		        cancelled_reason, cancelled_at, cancelled_by, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		         $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		iv.ID, iv.ApplicationID, iv.CandidateID, iv.Status, iv.InterviewAt,
		iv.Duration, iv.Location, iv.MeetingLink, iv.OfficeAddress, iv.PhoneNumber,
		interviewersJSON, iv.Type, iv.Notes, iv.Feedback, iv.Score,
		iv.RescheduleReason, iv.RescheduleRequestedAt, iv.RescheduleRequestedBy,
		iv.CancelledReason, iv.CancelledAt, iv.CancelledBy, iv.Version, iv.CreatedAt, iv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// Update writes the record if the stored version still matches iv.Version.
// It bumps iv.Version on success and returns workflow.ErrVersionConflict on a
// stale write.
func (s *InterviewStore) Update(ctx context.Context, iv *workflow.Interview) error {
	tag, err := s.db.pool.Exec(ctx,
		`UPDATE interviews
		 SET status = $1, feedback = $2, score = $3,
		     reschedule_reason = $4, reschedule_requested_at = $5, reschedule_requested_by = $6,
		     cancelled_reason = $7, cancelled_at = $8, cancelled_by = $9,
		     updated_at = $10, version = version + 1
		 WHERE id = $11 AND version = $12`,
		iv.Status, iv.Feedback, iv.Score,
		iv.RescheduleReason, iv.RescheduleRequestedAt, iv.RescheduleRequestedBy,
		iv.CancelledReason, iv.CancelledAt, iv.CancelledBy,
		iv.UpdatedAt, iv.ID, iv.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrVersionConflict
	}
	iv.Version++
	return nil
}

// GetByID retrieves an interview by ID, or (nil, nil) when absent.
func (s *InterviewStore) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Interview, error) {
	row := s.db.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id)

	iv, err := scanInterview(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return iv, nil
}

// ListByCandidate retrieves all interviews for a candidate.
func (s *InterviewStore) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]workflow.Interview, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE candidate_id = $1
		 ORDER BY interview_at`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()
	return collectInterviews(rows)
}

// ListByApplication retrieves all interviews for an application.
func (s *InterviewStore) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]workflow.Interview, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE application_id = $1
		 ORDER BY interview_at`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()
	return collectInterviews(rows)
}

func collectInterviews(rows pgx.Rows) ([]workflow.Interview, error) {
	var list []workflow.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *iv)
	}
	return list, rows.Err()
}

func scanInterview(row pgx.Row) (*workflow.Interview, error) {
	var iv workflow.Interview
	var interviewersJSON []byte

	err := row.Scan(&iv.ID, &iv.ApplicationID, &iv.CandidateID, &iv.Status, &iv.InterviewAt,
		&iv.Duration, &iv.Location, &iv.MeetingLink, &iv.OfficeAddress, &iv.PhoneNumber,
		&interviewersJSON, &iv.Type, &iv.Notes, &iv.Feedback, &iv.Score,
		&iv.RescheduleReason, &iv.RescheduleRequestedAt, &iv.RescheduleRequestedBy,
		&iv.CancelledReason, &iv.CancelledAt, &iv.CancelledBy, &iv.Version, &iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan interview: %w", err)
	}

	if len(interviewersJSON) > 0 {
		if err := json.Unmarshal(interviewersJSON, &iv.Interviewers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interviewers: %w", err)
		}
	}
	return &iv, nil
}
