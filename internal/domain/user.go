package domain

import "time"

// User is an identity principal. Email is the primary identifier.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
}
