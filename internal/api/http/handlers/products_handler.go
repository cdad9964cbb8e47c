package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/service"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// ProductsHandler serves the catalog.
type ProductsHandler struct {
	catalog *service.CatalogService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(catalog *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

// List GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.NewProductResponse(&products[i]))
	}
	return c.JSON(items)
}

// Get GET /products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponse(product))
}

// Create POST /products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if !req.Price.Valid {
		return apperrors.NewValidationError("price is required", map[string]any{"field": "price"})
	}
	product, err := h.catalog.CreateProduct(c.UserContext(), service.ProductInput{
		Name:     req.Name,
		Type:     req.Type,
		Price:    req.Price.Decimal,
		Quantity: req.Quantity,
		Image:    req.Image,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProductResponse(product))
}

// Update PATCH /products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	patch := service.ProductPatch{
		Name:     req.Name,
		Type:     req.Type,
		Quantity: req.Quantity,
		Image:    req.Image,
	}
	if req.Price.Valid {
		patch.Price = &req.Price.Decimal
	}
	product, err := h.catalog.UpdateProduct(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponse(product))
}

// Delete DELETE /products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
