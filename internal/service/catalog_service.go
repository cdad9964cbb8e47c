package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// CatalogService exposes the product catalog.
type CatalogService struct {
	products repository.ProductRepository
}

// CatalogDependencies bundles repositories for the catalog service.
type CatalogDependencies struct {
	ProductRepo repository.ProductRepository
}

// ProductInput describes a new product. Quantity defaults to 1.
type ProductInput struct {
	Name     string
	Type     domain.ProductType
	Price    decimal.Decimal
	Quantity *int
	Image    string
}

// ProductPatch carries the fields of a partial update.
type ProductPatch struct {
	Name     *string
	Type     *domain.ProductType
	Price    *decimal.Decimal
	Quantity *int
	Image    *string
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{products: deps.ProductRepo}
}

// ListProducts returns every product ordered by id.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return products, nil
}

// GetProduct returns one product.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product", map[string]any{"product_id": id})
	}
	return product, nil
}

// CreateProduct validates and stores a product.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:     input.Name,
		Type:     input.Type,
		Price:    input.Price,
		Quantity: 1,
		Image:    input.Image,
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, storageError(err)
	}
	return product, nil
}

// UpdateProduct applies a partial update. Existing order items keep their snapshot price.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Type != nil {
		product.Type = *patch.Type
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
	}
	if patch.Image != nil {
		product.Image = *patch.Image
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFoundOr(err, "product", map[string]any{"product_id": id})
	}
	return product, nil
}

// DeleteProduct removes a product that no order item references.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	err := s.products.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrReferenced):
		return apperrors.NewConflict("Product is referenced by existing orders.", map[string]any{"product_id": id})
	default:
		return notFoundOr(err, "product", map[string]any{"product_id": id})
	}
}

func validateProduct(product *domain.Product) error {
	name, err := requireText("name", product.Name, 100)
	if err != nil {
		return err
	}
	product.Name = name
	if !product.Type.Valid() {
		return apperrors.NewValidationError("Invalid product type.", map[string]any{
			"field":   "type",
			"allowed": domain.ProductTypes(),
		})
	}
	if err := validatePrice(product.Price); err != nil {
		return err
	}
	if product.Quantity < 0 {
		return apperrors.NewValidationError("Quantity must not be negative.", map[string]any{"field": "quantity"})
	}
	return nil
}
