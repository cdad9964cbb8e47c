package service

import (
	"context"
	"errors"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// PostService manages posts written through user profiles.
type PostService struct {
	posts    repository.PostRepository
	profiles repository.ProfileRepository
}

// PostDependencies bundles repositories for the post service.
type PostDependencies struct {
	PostRepo    repository.PostRepository
	ProfileRepo repository.ProfileRepository
}

// PostPatch carries the fields of a partial update.
type PostPatch struct {
	Title   *string
	Content *string
}

const maxPostTitle = 200

// NewPostService constructs the service.
func NewPostService(deps PostDependencies) *PostService {
	return &PostService{posts: deps.PostRepo, profiles: deps.ProfileRepo}
}

func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "post", map[string]any{"post_id": id})
	}
	return post, nil
}

// Create publishes a post authored by the caller's profile.
func (s *PostService) Create(ctx context.Context, userID int64, title, content string) (*domain.Post, error) {
	title, err := requireText("title", title, maxPostTitle)
	if err != nil {
		return nil, err
	}
	content, err = requireText("content", content, 0)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundMessage("Create a profile before posting.", map[string]any{"user_id": userID})
		}
		return nil, storageError(err)
	}

	post := &domain.Post{AuthorProfileID: profile.ID, Title: title, Content: content}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, storageError(err)
	}
	post.AuthorName = profile.Username
	return post, nil
}

// Update edits a post the caller authored.
func (s *PostService) Update(ctx context.Context, userID, id int64, patch PostPatch) (*domain.Post, error) {
	post, err := s.authored(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		if post.Title, err = requireText("title", *patch.Title, maxPostTitle); err != nil {
			return nil, err
		}
	}
	if patch.Content != nil {
		if post.Content, err = requireText("content", *patch.Content, 0); err != nil {
			return nil, err
		}
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, notFoundOr(err, "post", map[string]any{"post_id": id})
	}
	return post, nil
}

// Delete removes a post the caller authored.
func (s *PostService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.authored(ctx, userID, id); err != nil {
		return err
	}
	return notFoundOr(s.posts.Delete(ctx, id), "post", map[string]any{"post_id": id})
}

func (s *PostService) authored(ctx context.Context, userID, id int64) (*domain.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByID(ctx, post.AuthorProfileID)
	if err != nil {
		return nil, notFoundOr(err, "profile", map[string]any{"profile_id": post.AuthorProfileID})
	}
	if profile.UserID != userID {
		return nil, apperrors.NewForbidden("You do not have permission to perform this action.")
	}
	return post, nil
}
