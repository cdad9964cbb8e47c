package dto

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
)

// ProductResponse mirrors a catalog entry.
type ProductResponse struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	Type     domain.ProductType `json:"type"`
	Price    Money              `json:"price"`
	Image    string             `json:"image"`
	Quantity int                `json:"quantity"`
}

// CreateProductRequest payload.
type CreateProductRequest struct {
	Name     string              `json:"name"`
	Type     domain.ProductType  `json:"type"`
	Price    decimal.NullDecimal `json:"price"`
	Image    string              `json:"image"`
	Quantity *int                `json:"quantity"`
}

// UpdateProductRequest payload; absent fields stay unchanged.
type UpdateProductRequest struct {
	Name     *string             `json:"name"`
	Type     *domain.ProductType `json:"type"`
	Price    decimal.NullDecimal `json:"price"`
	Image    *string             `json:"image"`
	Quantity *int                `json:"quantity"`
}

// NewProductResponse maps a product.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Type:     p.Type,
		Price:    NewMoney(p.Price),
		Image:    p.Image,
		Quantity: p.Quantity,
	}
}
