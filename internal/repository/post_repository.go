package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shop-service/internal/domain"
)

// PostRepository manages blog posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository constructs repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

const postSelect = `
        SELECT po.id, po.author_profile_id, u.username, po.title, po.content, po.created_at, po.updated_at
        FROM posts po
        JOIN user_profiles p ON p.id = po.author_profile_id
        JOIN users u ON u.id = p.user_id`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (author_profile_id, title, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, post.AuthorProfileID, post.Title, post.Content).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	return mapError(err)
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	var post domain.Post
	if err := conn(ctx, r.pool).QueryRow(ctx, postSelect+` WHERE po.id=$1`, id).Scan(
		&post.ID,
		&post.AuthorProfileID,
		&post.AuthorName,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, postSelect+` ORDER BY po.created_at DESC, po.id DESC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	const query = `
        UPDATE posts SET title=$1, content=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, post.Title, post.Content, post.ID).Scan(&post.UpdatedAt)
	return mapError(err)
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPosts(rows pgx.Rows) ([]domain.Post, error) {
	result := []domain.Post{}
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.AuthorProfileID,
			&post.AuthorName,
			&post.Title,
			&post.Content,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, rows.Err()
}
