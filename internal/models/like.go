package models

import "time"

// LikeStatus is a user's reaction to a post or comment.
type LikeStatus string

const (
	LikeStatusNone    LikeStatus = "None"
	LikeStatusLike    LikeStatus = "Like"
	LikeStatusDislike LikeStatus = "Dislike"
)

// Like is the single reaction row of a user on an entity.
type Like struct {
	EntityID  string     `db:"entity_id"`
	UserID    string     `db:"user_id"`
	UserLogin string     `db:"user_login"`
	Status    LikeStatus `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// LikeStatusInput sets the caller's reaction.
type LikeStatusInput struct {
	LikeStatus LikeStatus `json:"likeStatus" validate:"required,likestatus"`
}

// LikeCounts is the aggregated reaction state of one entity.
type LikeCounts struct {
	EntityID string `db:"entity_id"`
	Likes    int    `db:"likes"`
	Dislikes int    `db:"dislikes"`
}
