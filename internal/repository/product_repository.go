package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shop-service/internal/domain"
)

// ProductRepository encapsulates catalog persistence.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// GetByIDForShare blocks concurrent updates of the row until the transaction ends.
	GetByIDForShare(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, type, price, quantity, image`

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.fetchSingle(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
}

func (r *productRepository) GetByIDForShare(ctx context.Context, id int64) (*domain.Product, error) {
	return r.fetchSingle(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR SHARE`, id)
}

func (r *productRepository) fetchSingle(ctx context.Context, query string, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Type,
		&product.Price,
		&product.Quantity,
		&product.Image,
	); err != nil {
		return nil, mapError(err)
	}
	return &product, nil
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, type, price, quantity, image)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		product.Name,
		product.Type,
		product.Price,
		product.Quantity,
		product.Image,
	).Scan(&product.ID)
	return mapError(err)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, type=$2, price=$3, quantity=$4, image=$5
        WHERE id=$6`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query,
		product.Name,
		product.Type,
		product.Price,
		product.Quantity,
		product.Image,
		product.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	result := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Type,
			&product.Price,
			&product.Quantity,
			&product.Image,
		); err != nil {
			return nil, err
		}
		result = append(result, product)
	}
	return result, rows.Err()
}
