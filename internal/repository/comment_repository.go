package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

const commentSelect = `SELECT c.id, c.post_id, c.content, c.user_id, u.login AS user_login, c.created_at FROM comments c JOIN users u ON u.id = c.user_id`

var commentSortColumns = map[string]string{
	"createdAt": "c.created_at",
	"content":   "c.content",
	"id":        "c.id",
}

// CommentRepository provides database access for comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListByPost returns a page of comments of one post.
func (r *CommentRepository) ListByPost(ctx context.Context, filter models.CommentFilter) ([]models.Comment, int, error) {
	q := filter.ListQuery.Normalize()

	listQuery := fmt.Sprintf("%s WHERE c.post_id = $1 %s %s", commentSelect, orderClause(q, commentSortColumns, "c.created_at"), pageClause(q))
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, listQuery, filter.PostID); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, filter.PostID); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}
	return comments, total, nil
}

// FindByID returns a comment with its author login or sql.ErrNoRows.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	if !validUUIDs(id) {
		return nil, sql.ErrNoRows
	}
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, commentSelect+" WHERE c.id = $1 LIMIT 1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &comment, nil
}

// Create inserts a comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO comments (id, post_id, content, user_id, created_at) VALUES (:id, :post_id, :content, :user_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// UpdateContent edits the comment text.
func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE comments SET content = $2 WHERE id = $1`, id, content); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
