package address

import (
	"context"

	"shopmall/internal/domain"
)

// Resolver turns a buyer's chosen address into the immutable snapshot frozen
// onto an order. Resolution fails with domain.ErrNotFound when the address
// does not exist or does not belong to the buyer.
type Resolver interface {
	Resolve(ctx context.Context, buyerID, addressID string) (*domain.AddressSnapshot, error)
}
