package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
)

type productRepo struct{ s *Store }

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	defer r.s.lock(ctx)()
	result := make([]domain.Product, 0, len(r.s.data.products))
	for _, product := range r.s.data.products {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	defer r.s.lock(ctx)()
	product, ok := r.s.data.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &product, nil
}

func (r *productRepo) GetByIDForShare(ctx context.Context, id int64) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	defer r.s.lock(ctx)()
	product.ID = r.s.data.nextID("products")
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *productRepo) Update(ctx context.Context, product *domain.Product) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.products[id]; !ok {
		return repository.ErrNotFound
	}
	for _, item := range r.s.data.items {
		if item.ProductID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.s.data.products, id)
	return nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.users[order.UserID]; !ok {
		return repository.ErrReferenced
	}
	order.ID = r.s.data.nextID("orders")
	r.s.data.orders[order.ID] = *order
	return nil
}

func (r *orderRepo) AddItem(ctx context.Context, item *domain.OrderItem) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.orders[item.OrderID]; !ok {
		return repository.ErrReferenced
	}
	if _, ok := r.s.data.products[item.ProductID]; !ok {
		return repository.ErrReferenced
	}
	item.ID = r.s.data.nextID("order_items")
	r.s.data.items[item.ID] = *item
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	defer r.s.lock(ctx)()
	order, ok := r.s.data.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	defer r.s.lock(ctx)()
	result := []domain.Order{}
	for _, order := range r.s.data.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].OrderDate.Equal(result[j].OrderDate) {
			return result[i].OrderDate.After(result[j].OrderDate)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *orderRepo) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	defer r.s.lock(ctx)()
	result := []domain.OrderItem{}
	for _, item := range r.s.data.items {
		if item.OrderID == orderID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *orderRepo) TransitionStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	defer r.s.lock(ctx)()
	order, ok := r.s.data.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if order.Status != from {
		return repository.ErrConflict
	}
	order.Status = to
	r.s.data.orders[id] = order
	return nil
}
