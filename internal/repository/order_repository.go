package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shop-service/internal/domain"
)

// OrderRepository encapsulates order and order item persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	AddItem(ctx context.Context, item *domain.OrderItem) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	// TransitionStatus moves the order from one status to another. ErrConflict means the
	// order was no longer in the from status.
	TransitionStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (user_id, status, order_date, total_price)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		order.UserID,
		order.Status,
		order.OrderDate,
		order.TotalPrice,
	).Scan(&order.ID)
	return mapError(err)
}

func (r *orderRepository) AddItem(ctx context.Context, item *domain.OrderItem) error {
	const query = `
        INSERT INTO order_items (order_id, product_id, price, quantity)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		item.OrderID,
		item.ProductID,
		item.Price,
		item.Quantity,
	).Scan(&item.ID)
	return mapError(err)
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const query = `
        SELECT id, user_id, status, order_date, total_price
        FROM orders WHERE id=$1`
	var order domain.Order
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.OrderDate,
		&order.TotalPrice,
	); err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	const query = `
        SELECT id, user_id, status, order_date, total_price
        FROM orders WHERE user_id=$1
        ORDER BY order_date DESC, id DESC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const query = `
        SELECT id, order_id, product_id, price, quantity
        FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := conn(ctx, r.pool).Query(ctx, query, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	const query = `UPDATE orders SET status=$1 WHERE id=$2 AND status=$3`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query, to, id, from)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	result := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.OrderDate,
			&order.TotalPrice,
		); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
