package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/Sting421/hkotisk-client/internal/domain/product"
)

// demoCatalog is the fixed catalog seeded into an empty local store so the
// app is usable before any staff member has added real stock.
func demoCatalog() []product.Product {
	price := decimal.RequireFromString
	return []product.Product{
		{
			ID:                "1",
			Name:              "Notebook",
			Description:       "High-quality notebook for students",
			Category:          "Stationery",
			ImageURL:          "https://images.unsplash.com/photo-1517842645767-c639042777db?q=80&w=500",
			Prices:            []decimal.Decimal{price("5.99")},
			Sizes:             []string{"Standard"},
			Quantities:        []int{120},
			LowStockThreshold: 20,
		},
		{
			ID:                "2",
			Name:              "Scientific Calculator",
			Description:       "Advanced calculator for math and science classes",
			Category:          "Electronics",
			ImageURL:          "https://images.unsplash.com/photo-1564939558297-fc396f18e5c7?q=80&w=500",
			Prices:            []decimal.Decimal{price("19.99")},
			Sizes:             []string{"Standard"},
			Quantities:        []int{45},
			LowStockThreshold: 10,
		},
		{
			ID:                "3",
			Name:              "Water Bottle",
			Description:       "Reusable BPA-free water bottle",
			Category:          "Accessories",
			ImageURL:          "https://images.unsplash.com/photo-1602143407151-7111542de6e8?q=80&w=500",
			Prices:            []decimal.Decimal{price("12.50"), price("15.00")},
			Sizes:             []string{"500ml", "750ml"},
			Quantities:        []int{5, 3},
			LowStockThreshold: 15,
		},
		{
			ID:                "4",
			Name:              "Backpack",
			Description:       "Durable backpack with multiple compartments",
			Category:          "Accessories",
			ImageURL:          "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?q=80&w=500",
			Prices:            []decimal.Decimal{price("34.99")},
			Sizes:             []string{"Standard"},
			Quantities:        []int{25},
			LowStockThreshold: 10,
		},
		{
			ID:                "5",
			Name:              "Wireless Earbuds",
			Description:       "Bluetooth earbuds with noise cancellation",
			Category:          "Electronics",
			ImageURL:          "https://images.unsplash.com/photo-1606220588913-b3aacb4d2f37?q=80&w=500",
			Prices:            []decimal.Decimal{price("49.99")},
			Sizes:             []string{"Standard"},
			Quantities:        []int{15},
			LowStockThreshold: 5,
		},
	}
}
