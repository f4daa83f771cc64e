package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

func TestCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AuditLog{Action: models.AuditActionLogin, Resource: "auth"}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, []byte("{}"), entry.Details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTruncate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTestingRepository(db)

	mock.ExpectExec("TRUNCATE TABLE likes, comments, posts, blogs, devices, recovery_codes, audit_logs, users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Truncate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
