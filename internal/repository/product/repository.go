package product

import (
	"context"

	"shopmall/internal/domain"
)

// Repository is the read-only catalog lookup consumed during checkout.
// Stock and sales are never mutated here; that is the inventory ledger's job.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
