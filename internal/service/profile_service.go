package service

import (
	"context"
	"errors"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// ProfileService manages user profiles. Mutations are limited to the owner.
type ProfileService struct {
	profiles repository.ProfileRepository
}

// ProfileDependencies bundles repositories for the profile service.
type ProfileDependencies struct {
	ProfileRepo repository.ProfileRepository
}

// NewProfileService constructs the service.
func NewProfileService(deps ProfileDependencies) *ProfileService {
	return &ProfileService{profiles: deps.ProfileRepo}
}

func (s *ProfileService) List(ctx context.Context) ([]domain.UserProfile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return profiles, nil
}

func (s *ProfileService) Get(ctx context.Context, id int64) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "profile", map[string]any{"profile_id": id})
	}
	return profile, nil
}

// Create adds the caller's profile; each user has at most one.
func (s *ProfileService) Create(ctx context.Context, userID int64, bio string) (*domain.UserProfile, error) {
	profile := &domain.UserProfile{UserID: userID, Bio: bio}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("user profile with this user already exists.", map[string]any{"user_id": userID})
		}
		return nil, storageError(err)
	}
	return profile, nil
}

// UpdateBio replaces the bio of a profile the caller owns.
func (s *ProfileService) UpdateBio(ctx context.Context, userID, id int64, bio string) (*domain.UserProfile, error) {
	profile, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	profile.Bio = bio
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, notFoundOr(err, "profile", map[string]any{"profile_id": id})
	}
	return profile, nil
}

// Delete removes a profile the caller owns, together with its posts.
func (s *ProfileService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return notFoundOr(s.profiles.Delete(ctx, id), "profile", map[string]any{"profile_id": id})
}

func (s *ProfileService) owned(ctx context.Context, userID, id int64) (*domain.UserProfile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, apperrors.NewForbidden("You do not have permission to perform this action.")
	}
	return profile, nil
}
