package domain

import "time"

// UserProfile carries optional public details of a user.
type UserProfile struct {
	ID        int64
	UserID    int64
	UserEmail string
	Username  string
	Bio       string
}

// Post is a blog-style entry written by a profile.
type Post struct {
	ID              int64
	AuthorProfileID int64
	AuthorName      string
	Title           string
	Content         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
