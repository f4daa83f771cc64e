package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

const testBlogID = "3c2b1a09-8f7e-4d6c-9b5a-4f3e2d1c0b04"

func TestListBlogsWithSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBlogRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + blogColumns + " FROM blogs WHERE name ILIKE $1 ESCAPE '\\' ORDER BY name ASC LIMIT 10 OFFSET 0")).
		WithArgs(`%go\_50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "website_url", "is_membership", "created_at"}).
			AddRow(testBlogID, "Go blog", "about go", "https://go.dev", false, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM blogs WHERE name ILIKE $1 ESCAPE '\\'")).
		WithArgs(`%go\_50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	blogs, total, err := repo.List(context.Background(), models.BlogFilter{
		ListQuery:      models.ListQuery{SortBy: "name", SortDirection: "asc"},
		SearchNameTerm: " go_50% ",
	})
	require.NoError(t, err)
	require.Len(t, blogs, 1)
	assert.Equal(t, "https://go.dev", blogs[0].WebsiteURL)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogWrites(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBlogRepository(db)

	mock.ExpectExec("INSERT INTO blogs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE blogs SET name = $2, description = $3, website_url = $4 WHERE id = $1")).
		WithArgs(testBlogID, "n", "d", "https://x.io").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM blogs WHERE id = $1")).
		WithArgs(testBlogID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	blog := &models.Blog{Name: "n", Description: "d", WebsiteURL: "https://x.io"}
	require.NoError(t, repo.Create(ctx, blog))
	assert.NotEmpty(t, blog.ID)

	updated, err := repo.Update(ctx, testBlogID, models.BlogInput{Name: "n", Description: "d", WebsiteURL: "https://x.io"})
	require.NoError(t, err)
	assert.True(t, updated)

	deleted, err := repo.Delete(ctx, testBlogID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBlogMalformedID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBlogRepository(db)

	_, err := repo.FindByID(context.Background(), "42")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
