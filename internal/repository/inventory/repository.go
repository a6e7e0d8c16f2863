package inventory

import (
	"context"

	"shopmall/internal/domain"
)

// Reservation is a quantity of one product held for an order.
type Reservation struct {
	ProductID string
	Quantity  int
}

// Ledger performs atomic stock movements. Reserve succeeds only when enough
// stock remains, as a single conditional decrement; Release is the
// unconditional inverse. The All variants move every line inside one
// database transaction so a multi-line checkout is all-or-nothing.
type Ledger interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
	ReserveAll(ctx context.Context, items []Reservation) error
	ReleaseAll(ctx context.Context, items []Reservation) error
}

// FromLines converts an order's frozen line items into the reservations they
// originally took. Cancel and refund approval release from this snapshot,
// never from the live catalog.
func FromLines(lines []domain.LineItem) []Reservation {
	out := make([]Reservation, 0, len(lines))
	for _, l := range lines {
		out = append(out, Reservation{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}
