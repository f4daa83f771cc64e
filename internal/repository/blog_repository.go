package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

const blogColumns = `id, name, description, website_url, is_membership, created_at`

var blogSortColumns = map[string]string{
	"createdAt":   "created_at",
	"name":        "name",
	"description": "description",
	"websiteUrl":  "website_url",
	"id":          "id",
}

// BlogRepository provides database access for blogs.
type BlogRepository struct {
	db *sqlx.DB
}

// NewBlogRepository creates a new instance of BlogRepository.
func NewBlogRepository(db *sqlx.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// List returns blogs filtered by name with the total count.
func (r *BlogRepository) List(ctx context.Context, filter models.BlogFilter) ([]models.Blog, int, error) {
	q := filter.ListQuery.Normalize()

	baseQuery := "FROM blogs"
	var args []interface{}
	if term := strings.TrimSpace(filter.SearchNameTerm); term != "" {
		args = append(args, likePattern(term))
		baseQuery += " WHERE name ILIKE $1" + likeEscape
	}

	listQuery := fmt.Sprintf("SELECT %s %s %s %s", blogColumns, baseQuery, orderClause(q, blogSortColumns, "created_at"), pageClause(q))
	var blogs []models.Blog
	if err := r.db.SelectContext(ctx, &blogs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}
	return blogs, total, nil
}

// FindByID returns a blog or sql.ErrNoRows.
func (r *BlogRepository) FindByID(ctx context.Context, id string) (*models.Blog, error) {
	if !validUUIDs(id) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s FROM blogs WHERE id = $1 LIMIT 1", blogColumns)
	var blog models.Blog
	if err := r.db.GetContext(ctx, &blog, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find blog: %w", err)
	}
	return &blog, nil
}

// Create inserts a blog.
func (r *BlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if blog.ID == "" {
		blog.ID = uuid.NewString()
	}
	if blog.CreatedAt.IsZero() {
		blog.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO blogs (id, name, description, website_url, is_membership, created_at) VALUES (:id, :name, :description, :website_url, :is_membership, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, blog); err != nil {
		return fmt.Errorf("create blog: %w", err)
	}
	return nil
}

// Update replaces the editable fields and reports whether the blog exists.
func (r *BlogRepository) Update(ctx context.Context, id string, in models.BlogInput) (bool, error) {
	if !validUUIDs(id) {
		return false, nil
	}
	const query = `UPDATE blogs SET name = $2, description = $3, website_url = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, in.Name, in.Description, in.WebsiteURL)
	if err != nil {
		return false, fmt.Errorf("update blog: %w", err)
	}
	return affected(res)
}

// Delete removes a blog and, by cascade, its posts.
func (r *BlogRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validUUIDs(id) {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete blog: %w", err)
	}
	return affected(res)
}
