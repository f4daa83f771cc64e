package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TestingRepository wipes all data for end-to-end suites.
type TestingRepository struct {
	db *sqlx.DB
}

// NewTestingRepository creates a new instance of TestingRepository.
func NewTestingRepository(db *sqlx.DB) *TestingRepository {
	return &TestingRepository{db: db}
}

// Truncate empties every application table.
func (r *TestingRepository) Truncate(ctx context.Context) error {
	const query = `TRUNCATE TABLE likes, comments, posts, blogs, devices, recovery_codes, audit_logs, users RESTART IDENTITY CASCADE`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
