package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the closed set of order states reported by the server.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// InvalidStatusError indicates a status value outside the closed set.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Value)
}

// ParseStatus validates a raw status string against the closed set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", &InvalidStatusError{Value: s}
}

// LineItem is a single line of an order. The creation timestamp lives on the
// line item, not the order: the server reports it per cart line.
type LineItem struct {
	CartLineID  int64           `json:"cartId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	OrderedAt   time.Time       `json:"dateAdded"`
}

// Order represents one customer order as reported by the server.
type Order struct {
	ID          int64      `json:"orderId"`
	RequestedBy string     `json:"orderBy"`
	Status      Status     `json:"orderStatus"`
	Items       []LineItem `json:"products"`
}

// Total is the order value: the fold of price times quantity over every line
// item, rounded to two decimal places. It is recomputed on every call and
// never cached.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		total = total.Add(item.Price.Mul(qty))
	}
	return total.Round(2)
}

// CreatedAt approximates the order's creation time as the earliest line item
// timestamp, or the zero time for an order without items.
func (o Order) CreatedAt() time.Time {
	var earliest time.Time
	for _, item := range o.Items {
		if earliest.IsZero() || item.OrderedAt.Before(earliest) {
			earliest = item.OrderedAt
		}
	}
	return earliest
}
