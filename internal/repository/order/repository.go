package order

import (
	"context"
	"time"

	"shopmall/internal/domain"
)

// StatusUpdate carries the optional fields persisted together with a status
// transition. Nil fields are left untouched.
type StatusUpdate struct {
	PaymentMethod *string
	PaymentTime   *time.Time
	ShippingTime  *time.Time
	RefundReason  *string
}

// Repository persists orders. Status changes go through Transition or
// TransitionRestock, both conditional on the expected source status so a
// lost race or a retried request can never apply a transition twice.
type Repository interface {
	Insert(ctx context.Context, o *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListByBuyerAndStatus(ctx context.Context, buyerID string, status domain.Status) ([]domain.Order, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	CountByStatus(ctx context.Context, buyerID string) (map[domain.Status]int, error)

	// Transition moves the order from one status to another and applies set.
	// It reports false, without error, when the order was not in the
	// expected source status.
	Transition(ctx context.Context, id string, from, to domain.Status, set StatusUpdate) (bool, error)

	// TransitionRestock is Transition plus the compensating stock restore
	// for the given frozen line items, all inside one database transaction.
	// Either the status flips and every quantity returns to stock, or
	// nothing changes.
	TransitionRestock(ctx context.Context, id string, from, to domain.Status, lines []domain.LineItem) (bool, error)
}
