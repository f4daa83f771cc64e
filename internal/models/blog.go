package models

import "time"

// Blog is a named publication that owns posts.
type Blog struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	WebsiteURL   string    `db:"website_url" json:"websiteUrl"`
	IsMembership bool      `db:"is_membership" json:"isMembership"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// BlogInput is the payload for creating and updating blogs.
type BlogInput struct {
	Name        string `json:"name" validate:"required,max=15"`
	Description string `json:"description" validate:"required,max=500"`
	WebsiteURL  string `json:"websiteUrl" validate:"required,max=100,blogurl"`
}

// BlogFilter narrows blog listings.
type BlogFilter struct {
	ListQuery
	SearchNameTerm string
}
