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

const postSelect = `SELECT p.id, p.title, p.short_description, p.content, p.blog_id, b.name AS blog_name, p.created_at FROM posts p JOIN blogs b ON b.id = p.blog_id`

var postSortColumns = map[string]string{
	"createdAt":        "p.created_at",
	"title":            "p.title",
	"shortDescription": "p.short_description",
	"content":          "p.content",
	"blogId":           "p.blog_id",
	"blogName":         "b.name",
	"id":               "p.id",
}

// PostRepository provides database access for posts.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new instance of PostRepository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns posts, optionally of a single blog, with the total count.
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error) {
	q := filter.ListQuery.Normalize()

	where := ""
	var args []interface{}
	if filter.BlogID != "" {
		args = append(args, filter.BlogID)
		where = " WHERE p.blog_id = $1"
	}

	listQuery := fmt.Sprintf("%s%s %s %s", postSelect, where, orderClause(q, postSortColumns, "p.created_at"), pageClause(q))
	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM posts p"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	return posts, total, nil
}

// FindByID returns a post with its blog name or sql.ErrNoRows.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	if !validUUIDs(id) {
		return nil, sql.ErrNoRows
	}
	var post models.Post
	if err := r.db.GetContext(ctx, &post, postSelect+" WHERE p.id = $1 LIMIT 1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

// Create inserts a post. BlogName is expected to be filled by the caller.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO posts (id, title, short_description, content, blog_id, created_at) VALUES (:id, :title, :short_description, :content, :blog_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update replaces the editable fields and reports whether the post exists.
func (r *PostRepository) Update(ctx context.Context, id string, in models.PostWithBlogInput) (bool, error) {
	if !validUUIDs(id) {
		return false, nil
	}
	const query = `UPDATE posts SET title = $2, short_description = $3, content = $4, blog_id = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, in.Title, in.ShortDescription, in.Content, in.BlogID)
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	return affected(res)
}

// Delete removes a post and, by cascade, its comments.
func (r *PostRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validUUIDs(id) {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return affected(res)
}
