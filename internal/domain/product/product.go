package product

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// DefaultLowStockThreshold is applied client-side when the server does not
// report a threshold of its own.
const DefaultLowStockThreshold = 10

// Product represents a catalog item available for purchase. A product is sold
// in one or more variants; index i across Prices, Sizes and Quantities
// describes one variant (size i at price i with quantity i on hand).
type Product struct {
	ID                string            `json:"productId"`
	Name              string            `json:"productName"`
	Description       string            `json:"description"`
	Category          string            `json:"category"`
	ImageURL          string            `json:"productImage"`
	Prices            []decimal.Decimal `json:"prices"`
	Sizes             []string          `json:"sizes"`
	Quantities        []int             `json:"quantity"`
	LowStockThreshold int               `json:"lowStockThreshold"`
}

// Variant is one sellable (size, price, quantity) triple of a product.
type Variant struct {
	Size     string
	Price    decimal.Decimal
	Quantity int
}

// IntegrityError indicates a product whose variant slices disagree in length.
// Such a record must be rejected rather than truncated: any stock level or
// price derived from it would be wrong.
type IntegrityError struct {
	ProductID string
	Prices    int
	Sizes     int
	Quantity  int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("product %s has mismatched variant slices: %d prices, %d sizes, %d quantities",
		e.ProductID, e.Prices, e.Sizes, e.Quantity)
}

// Validate checks the variant-slice invariant. It returns an *IntegrityError
// when the prices, sizes and quantities slices differ in length.
func (p Product) Validate() error {
	if len(p.Prices) != len(p.Sizes) || len(p.Sizes) != len(p.Quantities) {
		return &IntegrityError{
			ProductID: p.ID,
			Prices:    len(p.Prices),
			Sizes:     len(p.Sizes),
			Quantity:  len(p.Quantities),
		}
	}
	return nil
}

// Variants pairs the parallel slices into Variant values. The product must
// have passed Validate.
func (p Product) Variants() []Variant {
	out := make([]Variant, len(p.Sizes))
	for i := range p.Sizes {
		out[i] = Variant{
			Size:     p.Sizes[i],
			Price:    p.Prices[i],
			Quantity: p.Quantities[i],
		}
	}
	return out
}

// StockLevel is the total quantity on hand across all variants. It is always
// derived, never stored.
func (p Product) StockLevel() int {
	total := 0
	for _, q := range p.Quantities {
		total += q
	}
	return total
}

// InStock reports whether any variant has stock remaining.
func (p Product) InStock() bool {
	return p.StockLevel() > 0
}

// LowStock reports whether the total stock has fallen to or below the
// product's threshold. The boundary value itself counts as low.
func (p Product) LowStock() bool {
	return p.StockLevel() <= p.LowStockThreshold
}

// MinPrice returns the cheapest variant price, or zero for a product without
// variants. Price-range filtering is evaluated against this value.
func (p Product) MinPrice() decimal.Decimal {
	if len(p.Prices) == 0 {
		return decimal.Zero
	}
	min := p.Prices[0]
	for _, price := range p.Prices[1:] {
		if price.LessThan(min) {
			min = price
		}
	}
	return min
}

// Filter describes a read-time projection over the catalog snapshot. Zero
// fields are ignored.
type Filter struct {
	// Category must match exactly when set.
	Category string
	// Search matches case-insensitively against name and description.
	Search string
	// MinPrice and MaxPrice bound the minimum variant price, inclusive.
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// InStock, when true, keeps only products with stock remaining.
	InStock bool
}

// Matches reports whether the product satisfies every set criterion.
func (f Filter) Matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := p.MinPrice()
		if f.MinPrice != nil && price.LessThan(*f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && price.GreaterThan(*f.MaxPrice) {
			return false
		}
	}
	if f.InStock && !p.InStock() {
		return false
	}
	return true
}
