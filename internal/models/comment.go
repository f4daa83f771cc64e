package models

import "time"

// Comment is a user's reply to a post.
type Comment struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	Content   string    `db:"content"`
	UserID    string    `db:"user_id"`
	UserLogin string    `db:"user_login"`
	CreatedAt time.Time `db:"created_at"`
}

// CommentInput is the payload for creating and editing comments.
type CommentInput struct {
	Content string `json:"content" validate:"required,min=20,max=300"`
}

// CommentatorInfo identifies the author of a comment.
type CommentatorInfo struct {
	UserID    string `json:"userId"`
	UserLogin string `json:"userLogin"`
}

// LikesInfo aggregates reactions on a comment.
type LikesInfo struct {
	LikesCount    int        `json:"likesCount"`
	DislikesCount int        `json:"dislikesCount"`
	MyStatus      LikeStatus `json:"myStatus"`
}

// CommentView is the public representation of a comment.
type CommentView struct {
	ID              string          `json:"id"`
	Content         string          `json:"content"`
	CommentatorInfo CommentatorInfo `json:"commentatorInfo"`
	CreatedAt       time.Time       `json:"createdAt"`
	LikesInfo       LikesInfo       `json:"likesInfo"`
}

// CommentFilter lists comments of one post.
type CommentFilter struct {
	ListQuery
	PostID string
}
