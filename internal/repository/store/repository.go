package store

import "context"

// Repository resolves store ownership for the seller-side guards on ship
// and refund decisions.
type Repository interface {
	OwnerID(ctx context.Context, storeID string) (string, error)
}
