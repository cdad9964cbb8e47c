package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shop-service/internal/domain"
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, username, password_hash, is_active, is_staff, is_superuser)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	err := conn(ctx, r.pool).QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
	).Scan(&user.ID, &user.CreatedAt)
	return mapError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, email, username, password_hash, is_active, is_staff, is_superuser, created_at
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, username, password_hash, is_active, is_staff, is_superuser, created_at
        FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := conn(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}
