package dto

import (
	"time"

	"github.com/spec-kit/shop-service/internal/domain"
)

// ProfileRequest payload for create and update.
type ProfileRequest struct {
	Bio string `json:"bio"`
}

// ProfileResponse renders a profile with its owner's email.
type ProfileResponse struct {
	ID     int64  `json:"id"`
	User   string `json:"user"`
	UserID int64  `json:"user_id"`
	Bio    string `json:"bio"`
}

// PostRequest payload; absent fields stay unchanged on update.
type PostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// PostResponse renders a post with its author's name.
type PostResponse struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProfileResponse(p *domain.UserProfile) ProfileResponse {
	return ProfileResponse{ID: p.ID, User: p.UserEmail, UserID: p.UserID, Bio: p.Bio}
}

func NewPostResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Author:    p.AuthorName,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
