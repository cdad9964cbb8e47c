package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shop-service/internal/domain"
)

// ProfileRepository manages user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	GetByID(ctx context.Context, id int64) (*domain.UserProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.UserProfile, error)
	List(ctx context.Context) ([]domain.UserProfile, error)
	Update(ctx context.Context, profile *domain.UserProfile) error
	Delete(ctx context.Context, id int64) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository constructs repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileSelect = `
        SELECT p.id, p.user_id, u.email, u.username, p.bio
        FROM user_profiles p JOIN users u ON u.id = p.user_id`

func (r *profileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO user_profiles (user_id, bio)
        VALUES ($1, $2)
        RETURNING id`
	if err := conn(ctx, r.pool).QueryRow(ctx, query, profile.UserID, profile.Bio).Scan(&profile.ID); err != nil {
		return mapError(err)
	}
	stored, err := r.GetByID(ctx, profile.ID)
	if err != nil {
		return err
	}
	*profile = *stored
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*domain.UserProfile, error) {
	return r.fetchSingle(ctx, profileSelect+` WHERE p.id=$1`, id)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	return r.fetchSingle(ctx, profileSelect+` WHERE p.user_id=$1`, userID)
}

func (r *profileRepository) fetchSingle(ctx context.Context, query string, arg int64) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := conn(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.UserEmail,
		&profile.Username,
		&profile.Bio,
	); err != nil {
		return nil, mapError(err)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, profileSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `UPDATE user_profiles SET bio=$1 WHERE id=$2`, profile.Bio, profile.ID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM user_profiles WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfiles(rows pgx.Rows) ([]domain.UserProfile, error) {
	result := []domain.UserProfile{}
	for rows.Next() {
		var profile domain.UserProfile
		if err := rows.Scan(&profile.ID, &profile.UserID, &profile.UserEmail, &profile.Username, &profile.Bio); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}
