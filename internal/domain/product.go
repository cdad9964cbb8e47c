package domain

import "github.com/shopspring/decimal"

// ProductType enumerates catalog categories.
type ProductType string

const (
	ProductTypeDrinks ProductType = "drinks"
	ProductTypeChips  ProductType = "chips"
	ProductTypeSweets ProductType = "sweets"
	ProductTypeFood   ProductType = "food"
)

// Valid reports whether t is a known category.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeDrinks, ProductTypeChips, ProductTypeSweets, ProductTypeFood:
		return true
	}
	return false
}

// Product is a catalog item.
type Product struct {
	ID       int64
	Name     string
	Type     ProductType
	Price    decimal.Decimal
	Quantity int
	Image    string
}

// ProductTypes lists the known categories.
func ProductTypes() []ProductType {
	return []ProductType{ProductTypeDrinks, ProductTypeChips, ProductTypeSweets, ProductTypeFood}
}
