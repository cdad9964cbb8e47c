package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/domain"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

func TestCatalogLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	products, err := env.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	chips := env.product(t, "Chips", "1.25")
	cola := env.product(t, "Cola", "0.99")
	assert.Equal(t, 1, chips.Quantity)

	products, err = env.catalog.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, chips.ID, products[0].ID)
	assert.Equal(t, cola.ID, products[1].ID)

	drinks := domain.ProductTypeDrinks
	qty := 12
	updated, err := env.catalog.UpdateProduct(ctx, cola.ID, ProductPatch{Type: &drinks, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, domain.ProductTypeDrinks, updated.Type)
	assert.Equal(t, 12, updated.Quantity)
	assert.Equal(t, "0.99", updated.Price.StringFixed(2))

	require.NoError(t, env.catalog.DeleteProduct(ctx, chips.ID))
	_, err = env.catalog.GetProduct(ctx, chips.ID)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
	assert.True(t, apperrors.Is(env.catalog.DeleteProduct(ctx, chips.ID), "NOT_FOUND"))
}

func TestCatalogValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := map[string]ProductInput{
		"blank name":     {Name: " ", Type: domain.ProductTypeFood, Price: dec("1")},
		"unknown type":   {Name: "Toy", Type: "toys", Price: dec("1")},
		"negative price": {Name: "Gum", Type: domain.ProductTypeSweets, Price: dec("-1")},
		"price too big":  {Name: "Gold", Type: domain.ProductTypeFood, Price: dec("10000")},
		"fractional":     {Name: "Gum", Type: domain.ProductTypeSweets, Price: dec("0.999")},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.catalog.CreateProduct(ctx, input)
			assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))
		})
	}
	assert.Zero(t, env.store.Stats().Products)
}

func TestDeleteProductReferencedByOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "buyer@example.com")
	a := env.product(t, "A", "1.00")

	_, err := env.orders.CreateOrder(ctx, user.ID, CreateOrderInput{Items: []OrderItemInput{{ProductID: a.ID, Quantity: 1}}})
	require.NoError(t, err)

	err = env.catalog.DeleteProduct(ctx, a.ID)
	assert.True(t, apperrors.Is(err, "CONFLICT"))
	assert.Equal(t, 1, env.store.Stats().Products)
}
