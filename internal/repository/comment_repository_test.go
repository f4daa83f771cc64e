package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

const testCommentID = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c06"

func TestListCommentsByPost(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(commentSelect + " WHERE c.post_id = $1 ORDER BY c.created_at DESC LIMIT 10 OFFSET 0")).
		WithArgs(testPostID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "content", "user_id", "user_login", "created_at"}).
			AddRow(testCommentID, testPostID, "a comment that is long enough", testUserID, "alice", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM comments WHERE post_id = $1")).
		WithArgs(testPostID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	comments, total, err := repo.ListByPost(context.Background(), models.CommentFilter{PostID: testPostID})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].UserLogin)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentWrites(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec("INSERT INTO comments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE comments SET content = $2 WHERE id = $1")).
		WithArgs(testCommentID, "edited").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM comments WHERE id = $1")).
		WithArgs(testCommentID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	comment := &models.Comment{PostID: testPostID, UserID: testUserID, Content: "x"}
	require.NoError(t, repo.Create(ctx, comment))
	assert.NotEmpty(t, comment.ID)
	require.NoError(t, repo.UpdateContent(ctx, testCommentID, "edited"))
	require.NoError(t, repo.Delete(ctx, testCommentID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
