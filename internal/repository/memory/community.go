package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
)

type profileRepo struct{ s *Store }

// withUser fills the joined user columns; callers hold the lock.
func (r *profileRepo) withUser(profile domain.UserProfile) domain.UserProfile {
	if user, ok := r.s.data.users[profile.UserID]; ok {
		profile.UserEmail = user.Email
		profile.Username = user.Username
	}
	return profile
}

func (r *profileRepo) Create(ctx context.Context, profile *domain.UserProfile) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.users[profile.UserID]; !ok {
		return repository.ErrReferenced
	}
	for _, existing := range r.s.data.profiles {
		if existing.UserID == profile.UserID {
			return repository.ErrConflict
		}
	}
	profile.ID = r.s.data.nextID("user_profiles")
	r.s.data.profiles[profile.ID] = domain.UserProfile{ID: profile.ID, UserID: profile.UserID, Bio: profile.Bio}
	*profile = r.withUser(*profile)
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id int64) (*domain.UserProfile, error) {
	defer r.s.lock(ctx)()
	profile, ok := r.s.data.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	profile = r.withUser(profile)
	return &profile, nil
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	defer r.s.lock(ctx)()
	for _, profile := range r.s.data.profiles {
		if profile.UserID == userID {
			p := r.withUser(profile)
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *profileRepo) List(ctx context.Context) ([]domain.UserProfile, error) {
	defer r.s.lock(ctx)()
	result := make([]domain.UserProfile, 0, len(r.s.data.profiles))
	for _, profile := range r.s.data.profiles {
		result = append(result, r.withUser(profile))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *domain.UserProfile) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.data.profiles[profile.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Bio = profile.Bio
	r.s.data.profiles[profile.ID] = stored
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.profiles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.profiles, id)
	for postID, post := range r.s.data.posts {
		if post.AuthorProfileID == id {
			delete(r.s.data.posts, postID)
		}
	}
	return nil
}

type postRepo struct{ s *Store }

func (r *postRepo) withAuthor(post domain.Post) domain.Post {
	if profile, ok := r.s.data.profiles[post.AuthorProfileID]; ok {
		if user, ok := r.s.data.users[profile.UserID]; ok {
			post.AuthorName = user.Username
		}
	}
	return post
}

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.profiles[post.AuthorProfileID]; !ok {
		return repository.ErrReferenced
	}
	post.ID = r.s.data.nextID("posts")
	post.CreatedAt = r.s.now()
	post.UpdatedAt = post.CreatedAt
	r.s.data.posts[post.ID] = *post
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	defer r.s.lock(ctx)()
	post, ok := r.s.data.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	post = r.withAuthor(post)
	return &post, nil
}

func (r *postRepo) List(ctx context.Context) ([]domain.Post, error) {
	defer r.s.lock(ctx)()
	result := make([]domain.Post, 0, len(r.s.data.posts))
	for _, post := range r.s.data.posts {
		result = append(result, r.withAuthor(post))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *postRepo) Update(ctx context.Context, post *domain.Post) error {
	defer r.s.lock(ctx)()
	stored, ok := r.s.data.posts[post.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.UpdatedAt = r.s.now()
	r.s.data.posts[post.ID] = stored
	post.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.posts, id)
	return nil
}
