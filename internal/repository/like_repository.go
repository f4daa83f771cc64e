package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

// LikeRepository stores one reaction per (entity, user) for posts and
// comments alike.
type LikeRepository struct {
	db *sqlx.DB
}

// NewLikeRepository creates a new instance of LikeRepository.
func NewLikeRepository(db *sqlx.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Upsert sets the user's reaction. Switching to None keeps the row but it
// no longer counts. updated_at only moves when the status changes so a
// repeated Like does not bump the post's newest likes.
func (r *LikeRepository) Upsert(ctx context.Context, entityID, userID string, status models.LikeStatus) error {
	now := time.Now().UTC()
	const query = `INSERT INTO likes (entity_id, user_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (entity_id, user_id) DO UPDATE SET status = EXCLUDED.status,
updated_at = CASE WHEN likes.status = EXCLUDED.status THEN likes.updated_at ELSE EXCLUDED.updated_at END`
	if _, err := r.db.ExecContext(ctx, query, entityID, userID, string(status), now); err != nil {
		return fmt.Errorf("upsert like: %w", err)
	}
	return nil
}

// Counts aggregates likes and dislikes per entity. Entities without
// reactions are absent from the map.
func (r *LikeRepository) Counts(ctx context.Context, entityIDs []string) (map[string]models.LikeCounts, error) {
	out := make(map[string]models.LikeCounts, len(entityIDs))
	if len(entityIDs) == 0 {
		return out, nil
	}
	const query = `SELECT entity_id,
COUNT(*) FILTER (WHERE status = 'Like') AS likes,
COUNT(*) FILTER (WHERE status = 'Dislike') AS dislikes
FROM likes WHERE entity_id = ANY($1) GROUP BY entity_id`
	var rows []models.LikeCounts
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(entityIDs)); err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	for _, row := range rows {
		out[row.EntityID] = row
	}
	return out, nil
}

// Statuses returns the user's reaction per entity.
func (r *LikeRepository) Statuses(ctx context.Context, userID string, entityIDs []string) (map[string]models.LikeStatus, error) {
	out := make(map[string]models.LikeStatus, len(entityIDs))
	if userID == "" || len(entityIDs) == 0 {
		return out, nil
	}
	const query = `SELECT entity_id, user_id, status, created_at, updated_at FROM likes WHERE user_id = $1 AND entity_id = ANY($2)`
	var rows []models.Like
	if err := r.db.SelectContext(ctx, &rows, query, userID, pq.Array(entityIDs)); err != nil {
		return nil, fmt.Errorf("list like statuses: %w", err)
	}
	for _, row := range rows {
		out[row.EntityID] = row.Status
	}
	return out, nil
}

// NewestLikes returns up to limit of the latest Like reactions per entity,
// newest first, with the login of each user.
func (r *LikeRepository) NewestLikes(ctx context.Context, entityIDs []string, limit int) (map[string][]models.Like, error) {
	out := make(map[string][]models.Like, len(entityIDs))
	if len(entityIDs) == 0 || limit <= 0 {
		return out, nil
	}
	const query = `SELECT entity_id, user_id, user_login, status, created_at, updated_at FROM (
SELECT l.entity_id, l.user_id, u.login AS user_login, l.status, l.created_at, l.updated_at,
ROW_NUMBER() OVER (PARTITION BY l.entity_id ORDER BY l.updated_at DESC) AS rn
FROM likes l JOIN users u ON u.id = l.user_id
WHERE l.entity_id = ANY($1) AND l.status = 'Like') ranked
WHERE rn <= $2 ORDER BY entity_id, updated_at DESC`
	var rows []models.Like
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(entityIDs), limit); err != nil {
		return nil, fmt.Errorf("newest likes: %w", err)
	}
	for _, row := range rows {
		out[row.EntityID] = append(out[row.EntityID], row)
	}
	return out, nil
}
