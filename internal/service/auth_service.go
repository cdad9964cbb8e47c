package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	accounts   repository.AccountRepository
	tx         repository.Transactor
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	AccountRepo repository.AccountRepository
	Transactor  repository.Transactor
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		accounts:   deps.AccountRepo,
		tx:         deps.Transactor,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a user together with its zero-balance account.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username, err := requireText("username", username, 150)
	if err != nil {
		return nil, err
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError("This password is too short.", map[string]any{"field": "password"})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperrors.NewConflict("user with this email already exists.", map[string]any{"field": "email"})
			}
			return storageError(err)
		}
		return storageError(s.accounts.Create(ctx, &domain.Account{UserID: user.ID, Balance: decimal.Zero}))
	})
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError(`Must include "email" and "password".`, nil)
	}
	if normalized, err := normalizeEmail(email); err == nil {
		email = normalized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storageError(err)
	}
	if user == nil {
		return nil, apperrors.NewValidationError("Invalid credentials.", nil)
	}
	ok, err := auth.PasswordMatches(user.PasswordHash, password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, apperrors.NewValidationError("Invalid credentials.", nil)
	}
	if !user.IsActive {
		return nil, apperrors.NewValidationError("User account is disabled.", nil)
	}
	return s.issue(user)
}

// Me returns the user behind a token.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.IsStaff)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// normalizeEmail validates the address and lower-cases its domain part.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	invalid := apperrors.NewValidationError("Enter a valid email address.", map[string]any{"field": "email"})
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", invalid
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:]), nil
}
