package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the actor does not own the order or store.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState indicates the operation is not legal from the order's
	// current status, or the product is not listed for sale.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientStock indicates a stock reservation failed.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateOrderNumber indicates an order number collided with an
	// existing one at insert time. Callers regenerate and retry.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
)
