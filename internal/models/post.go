package models

import "time"

// Post is an article published in a blog.
type Post struct {
	ID               string    `db:"id"`
	Title            string    `db:"title"`
	ShortDescription string    `db:"short_description"`
	Content          string    `db:"content"`
	BlogID           string    `db:"blog_id"`
	BlogName         string    `db:"blog_name"`
	CreatedAt        time.Time `db:"created_at"`
}

// PostInput is the payload for posts created under a blog route.
type PostInput struct {
	Title            string `json:"title" validate:"required,max=30"`
	ShortDescription string `json:"shortDescription" validate:"required,max=100"`
	Content          string `json:"content" validate:"required,max=1000"`
}

// PostWithBlogInput is the payload of the flat posts routes.
type PostWithBlogInput struct {
	PostInput
	BlogID string `json:"blogId" validate:"required"`
}

// NewestLike is one of the latest likes shown with a post.
type NewestLike struct {
	AddedAt time.Time `json:"addedAt"`
	UserID  string    `json:"userId"`
	Login   string    `json:"login"`
}

// ExtendedLikesInfo aggregates reactions on a post.
type ExtendedLikesInfo struct {
	LikesCount    int          `json:"likesCount"`
	DislikesCount int          `json:"dislikesCount"`
	MyStatus      LikeStatus   `json:"myStatus"`
	NewestLikes   []NewestLike `json:"newestLikes"`
}

// PostView is the public representation of a post.
type PostView struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	ShortDescription  string            `json:"shortDescription"`
	Content           string            `json:"content"`
	BlogID            string            `json:"blogId"`
	BlogName          string            `json:"blogName"`
	CreatedAt         time.Time         `json:"createdAt"`
	ExtendedLikesInfo ExtendedLikesInfo `json:"extendedLikesInfo"`
}

// PostFilter narrows post listings, optionally to one blog.
type PostFilter struct {
	ListQuery
	BlogID string
}
