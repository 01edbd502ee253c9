package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/andrei/membership-portal/internal/workflow"
)

// ApplicationStore is the PostgreSQL implementation of
// workflow.ApplicationStore.
type ApplicationStore struct {
	db *DB
}

// NewApplicationStore creates an application store over the shared pool.
func NewApplicationStore(db *DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

const applicationColumns = `id, candidate_id, sections, status, review_notes,
	reviewed_by, reviewed_at, submitted_at, version, created_at, updated_at`

// Create inserts a new application record.
func (s *ApplicationStore) Create(ctx context.Context, app *workflow.Application) error {
	sectionsJSON, err := json.Marshal(app.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO applications (id, candidate_id, sections, status, review_notes,
		        reviewed_by, reviewed_at, submitted_at, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		app.ID, app.CandidateID, sectionsJSON, app.Status, app.ReviewNotes,
		app.ReviewedBy, app.ReviewedAt, app.SubmittedAt, app.Version, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// Update writes the record if the stored version still matches app.Version.
// It bumps app.Version on success and returns workflow.ErrVersionConflict on
// a stale write.
func (s *ApplicationStore) Update(ctx context.Context, app *workflow.Application) error {
	sectionsJSON, err := json.Marshal(app.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}

	tag, err := s.db.pool.Exec(ctx,
		`UPDATE applications
		 SET sections = $1, status = $2, review_notes = $3, reviewed_by = $4,
		     reviewed_at = $5, submitted_at = $6, updated_at = $7, version = version + 1
		 WHERE id = $8 AND version = $9`,
		sectionsJSON, app.Status, app.ReviewNotes, app.ReviewedBy,
		app.ReviewedAt, app.SubmittedAt, app.UpdatedAt, app.ID, app.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrVersionConflict
	}
	app.Version++
	return nil
}

// GetByID retrieves an application by ID, or (nil, nil) when absent.
func (s *ApplicationStore) GetByID(ctx context.Context, id uuid.UUID) (*workflow.Application, error) {
	row := s.db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

// GetByCandidate retrieves the candidate's most recent application, or
// (nil, nil) when the candidate has none.
func (s *ApplicationStore) GetByCandidate(ctx context.Context, candidateID uuid.UUID) (*workflow.Application, error) {
	row := s.db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE candidate_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, candidateID)
	return scanApplication(row)
}

// CountByStatus returns the number of applications per status.
func (s *ApplicationStore) CountByStatus(ctx context.Context) (map[workflow.ApplicationStatus]int, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[workflow.ApplicationStatus]int)
	for rows.Next() {
		var status workflow.ApplicationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan application count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanApplication(row pgx.Row) (*workflow.Application, error) {
	var app workflow.Application
	var sectionsJSON []byte

	err := row.Scan(&app.ID, &app.CandidateID, &sectionsJSON, &app.Status, &app.ReviewNotes,
		&app.ReviewedBy, &app.ReviewedAt, &app.SubmittedAt, &app.Version, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if len(sectionsJSON) > 0 {
		if err := json.Unmarshal(sectionsJSON, &app.Sections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
		}
	}
	return &app, nil
}
