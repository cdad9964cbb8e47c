package dto

import (
	"time"

	"github.com/spec-kit/shop-service/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff,omitempty"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse maps a user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username, Email: user.Email, IsStaff: user.IsStaff}
}
