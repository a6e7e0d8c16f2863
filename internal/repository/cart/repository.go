package cart

import "context"

// Clearer removes purchased products from a buyer's cart after checkout.
// Best-effort: a failure here never rolls the order back.
type Clearer interface {
	ClearPurchased(ctx context.Context, buyerID string, productIDs []string) error
}
