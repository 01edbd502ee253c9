// Package db provides PostgreSQL persistence for the membership workflow.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the workflow tables if they do not exist. The partial
// unique index backs the single-active-application invariant at the store
// level; terminal statuses are excluded from it.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS applications (
	id UUID PRIMARY KEY,
	candidate_id UUID NOT NULL,
	sections JSONB NOT NULL DEFAULT '{}',
	status TEXT NOT NULL,
	review_notes TEXT NOT NULL DEFAULT '',
	reviewed_by UUID,
	reviewed_at TIMESTAMPTZ,
	submitted_at TIMESTAMPTZ,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_candidate
	ON applications (candidate_id, created_at DESC);

CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_one_active
	ON applications (candidate_id)
	WHERE status NOT IN ('accepted', 'rejected', 'withdrawn');

CREATE TABLE IF NOT EXISTS interviews (
	id UUID PRIMARY KEY,
	application_id UUID NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
	candidate_id UUID NOT NULL,
	status TEXT NOT NULL,
	interview_at TIMESTAMPTZ NOT NULL,
	duration_minutes INT NOT NULL,
	location TEXT NOT NULL,
	meeting_link TEXT NOT NULL DEFAULT '',
	office_address TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL DEFAULT '',
	interviewers JSONB NOT NULL DEFAULT '[]',
	interview_type TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	feedback TEXT NOT NULL DEFAULT '',
	score INT,
	reschedule_reason TEXT NOT NULL DEFAULT '',
	reschedule_requested_at TIMESTAMPTZ,
	reschedule_requested_by UUID,
	cancelled_reason TEXT NOT NULL DEFAULT '',
	cancelled_at TIMESTAMPTZ,
	cancelled_by UUID,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interviews_candidate
	ON interviews (candidate_id, interview_at);

CREATE INDEX IF NOT EXISTS idx_interviews_application
	ON interviews (application_id, interview_at);
`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
