package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

func TestUpsertLike(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLikeRepository(db)

	mock.ExpectExec("INSERT INTO likes .* ON CONFLICT \\(entity_id, user_id\\) DO UPDATE").
		WithArgs(testPostID, testUserID, "Dislike", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), testPostID, testUserID, models.LikeStatusDislike))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLikeRepository(db)

	mock.ExpectQuery("FROM likes WHERE entity_id = ANY\\(\\$1\\) GROUP BY entity_id").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "likes", "dislikes"}).AddRow(testPostID, 2, 1))

	counts, err := repo.Counts(context.Background(), []string{testPostID, testCommentID})
	require.NoError(t, err)
	assert.Equal(t, models.LikeCounts{EntityID: testPostID, Likes: 2, Dislikes: 1}, counts[testPostID])
	_, ok := counts[testCommentID]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeStatusesAnonymous(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLikeRepository(db)

	statuses, err := repo.Statuses(context.Background(), "", []string{testPostID})
	require.NoError(t, err)
	assert.Empty(t, statuses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeStatuses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLikeRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM likes WHERE user_id = \\$1 AND entity_id = ANY\\(\\$2\\)").
		WithArgs(testUserID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "user_id", "status", "created_at", "updated_at"}).
			AddRow(testPostID, testUserID, "Like", now, now))

	statuses, err := repo.Statuses(context.Background(), testUserID, []string{testPostID})
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusLike, statuses[testPostID])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewestLikes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLikeRepository(db)

	now := time.Now()
	mock.ExpectQuery("ROW_NUMBER\\(\\) OVER \\(PARTITION BY l.entity_id ORDER BY l.updated_at DESC\\)").
		WithArgs(sqlmock.AnyArg(), 3).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "user_id", "user_login", "status", "created_at", "updated_at"}).
			AddRow(testPostID, testUserID, "alice", "Like", now, now).
			AddRow(testPostID, testDeviceID, "bob", "Like", now, now.Add(-time.Minute)))

	newest, err := repo.NewestLikes(context.Background(), []string{testPostID}, 3)
	require.NoError(t, err)
	require.Len(t, newest[testPostID], 2)
	assert.Equal(t, "alice", newest[testPostID][0].UserLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}
