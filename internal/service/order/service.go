package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"shopmall/internal/domain"
	"shopmall/internal/repository/inventory"
	orderrepo "shopmall/internal/repository/order"
)

// insertAttempts bounds order-number regeneration when an insert hits the
// unique constraint.
const insertAttempts = 3

type orderRepo interface {
	Insert(ctx context.Context, o *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListByBuyerAndStatus(ctx context.Context, buyerID string, status domain.Status) ([]domain.Order, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	CountByStatus(ctx context.Context, buyerID string) (map[domain.Status]int, error)
	Transition(ctx context.Context, id string, from, to domain.Status, set orderrepo.StatusUpdate) (bool, error)
	TransitionRestock(ctx context.Context, id string, from, to domain.Status, lines []domain.LineItem) (bool, error)
}

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type ledger interface {
	ReserveAll(ctx context.Context, items []inventory.Reservation) error
	ReleaseAll(ctx context.Context, items []inventory.Reservation) error
}

type addressResolver interface {
	Resolve(ctx context.Context, buyerID, addressID string) (*domain.AddressSnapshot, error)
}

type cartClearer interface {
	ClearPurchased(ctx context.Context, buyerID string, productIDs []string) error
}

type storeRepo interface {
	OwnerID(ctx context.Context, storeID string) (string, error)
}

type gateway interface {
	Charge(ctx context.Context, orderNumber, method string, amountCents int64) (string, error)
}

// Service drives the order lifecycle: checkout with inventory reservation
// and price snapshotting, then every status transition through to refund.
// All operations take the acting user's id explicitly and check ownership
// before touching state.
type Service struct {
	orders    orderRepo
	catalog   catalog
	inventory ledger
	addresses addressResolver
	carts     cartClearer
	stores    storeRepo
	payments  gateway
	logger    *log.Logger
	now       func() time.Time
}

func New(orders orderrepo.Repository, catalog catalog, inv ledger, addresses addressResolver, carts cartClearer, stores storeRepo, payments gateway, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:    orders,
		catalog:   catalog,
		inventory: inv,
		addresses: addresses,
		carts:     carts,
		stores:    stores,
		payments:  payments,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateItem struct {
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	Specification string `json:"specification,omitempty"`
}

type CreateInput struct {
	StoreID       string       `json:"storeId"`
	AddressID     string       `json:"addressId"`
	PaymentMethod string       `json:"paymentMethod"`
	Remark        string       `json:"remark,omitempty"`
	Items         []CreateItem `json:"items"`
}

// Create turns a checkout request into a persisted UNPAID order. Every line
// is validated against the catalog in list order, stock for all lines is
// reserved atomically, prices and the shipping address are frozen into the
// order, and matching cart entries are cleared best-effort. If anything
// fails after stock was reserved, the reservation is released before the
// error returns.
func (s *Service) Create(ctx context.Context, buyerID string, in CreateInput) (*domain.Order, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, errors.New("buyer id required")
	}
	if strings.TrimSpace(in.StoreID) == "" {
		return nil, errors.New("store id required")
	}
	if strings.TrimSpace(in.AddressID) == "" {
		return nil, errors.New("address id required")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, errors.New("payment method required")
	}
	if len(in.Items) == 0 {
		return nil, errors.New("order items required")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, errors.New("quantity must be positive")
		}
	}

	addr, err := s.addresses.Resolve(ctx, buyerID, in.AddressID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("address %s: %w", in.AddressID, domain.ErrNotFound)
		}
		return nil, err
	}

	lines := make([]domain.LineItem, 0, len(in.Items))
	reservations := make([]inventory.Reservation, 0, len(in.Items))
	productIDs := make([]string, 0, len(in.Items))
	var totalCents int64
	for _, item := range in.Items {
		p, err := s.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", item.ProductID, domain.ErrNotFound)
			}
			return nil, err
		}
		if !p.Listed {
			return nil, fmt.Errorf("product %s: listing removed: %w", p.ID, domain.ErrInvalidState)
		}
		lineTotal := p.PriceCents * int64(item.Quantity)
		lines = append(lines, domain.LineItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			UnitPriceCents: p.PriceCents,
			Quantity:       item.Quantity,
			Specification:  item.Specification,
			TotalCents:     lineTotal,
		})
		reservations = append(reservations, inventory.Reservation{ProductID: p.ID, Quantity: item.Quantity})
		productIDs = append(productIDs, p.ID)
		totalCents += lineTotal
	}

	if err := s.inventory.ReserveAll(ctx, reservations); err != nil {
		return nil, err
	}

	created, err := s.insertWithFreshNumber(ctx, &domain.Order{
		BuyerID:       buyerID,
		StoreID:       in.StoreID,
		Lines:         lines,
		TotalCents:    totalCents,
		Address:       *addr,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.StatusUnpaid,
		Remark:        in.Remark,
	})
	if err != nil {
		// Stock must never stay decremented without a persisted order.
		if relErr := s.inventory.ReleaseAll(ctx, reservations); relErr != nil {
			s.logger.Printf("order service: compensating release failed buyer_id=%s error=%v", buyerID, relErr)
		}
		return nil, err
	}

	if err := s.carts.ClearPurchased(ctx, buyerID, productIDs); err != nil {
		s.logger.Printf("order service: cart clear failed buyer_id=%s order=%s error=%v", buyerID, created.OrderNumber, err)
	}

	s.logger.Printf("order service: created order=%s buyer_id=%s lines=%d total_cents=%d", created.OrderNumber, buyerID, len(created.Lines), created.TotalCents)
	return created, nil
}

func (s *Service) insertWithFreshNumber(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	var lastErr error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		o.OrderNumber = newOrderNumber(s.now())
		created, err := s.orders.Insert(ctx, o)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domain.ErrDuplicateOrderNumber) {
			return nil, err
		}
		s.logger.Printf("order service: order number collision %s, retrying", o.OrderNumber)
		lastErr = err
	}
	return nil, lastErr
}

// Pay charges the buyer through the payment gateway and moves the order
// from UNPAID to PAID, recording method and time.
func (s *Service) Pay(ctx context.Context, actorID, orderID, method string) (*domain.Order, error) {
	if strings.TrimSpace(method) == "" {
		return nil, errors.New("payment method required")
	}
	o, err := s.loadForBuyer(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureTransition(o, domain.StatusPaid); err != nil {
		return nil, err
	}

	txn, err := s.payments.Charge(ctx, o.OrderNumber, method, o.TotalCents)
	if err != nil {
		return nil, fmt.Errorf("charge order %s: %w", o.OrderNumber, err)
	}

	now := s.now()
	applied, err := s.orders.Transition(ctx, o.ID, o.Status, domain.StatusPaid, orderrepo.StatusUpdate{
		PaymentMethod: &method,
		PaymentTime:   &now,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, staleState(o)
	}
	s.logger.Printf("order service: paid order=%s txn=%s", o.OrderNumber, txn)
	return s.orders.GetByID(ctx, o.ID)
}

// Ship moves a PAID order to SHIPPED. Only the owner of the order's store
// may ship.
func (s *Service) Ship(ctx context.Context, actorID, orderID string) (*domain.Order, error) {
	o, err := s.loadForSeller(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureTransition(o, domain.StatusShipped); err != nil {
		return nil, err
	}

	now := s.now()
	applied, err := s.orders.Transition(ctx, o.ID, o.Status, domain.StatusShipped, orderrepo.StatusUpdate{ShippingTime: &now})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, staleState(o)
	}
	return s.orders.GetByID(ctx, o.ID)
}

// Receive confirms delivery, moving a SHIPPED order to COMPLETED.
func (s *Service) Receive(ctx context.Context, actorID, orderID string) (*domain.Order, error) {
	o, err := s.loadForBuyer(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureTransition(o, domain.StatusCompleted); err != nil {
		return nil, err
	}

	applied, err := s.orders.Transition(ctx, o.ID, o.Status, domain.StatusCompleted, orderrepo.StatusUpdate{})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, staleState(o)
	}
	return s.orders.GetByID(ctx, o.ID)
}

// Cancel aborts an UNPAID order and returns its reserved stock.
func (s *Service) Cancel(ctx context.Context, actorID, orderID string) (*domain.Order, error) {
	o, err := s.loadForBuyer(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	return s.compensate(ctx, o, domain.StatusCancelled)
}

// RequestRefund moves a PAID or SHIPPED order to REFUND_PENDING, recording
// the buyer's reason.
func (s *Service) RequestRefund(ctx context.Context, actorID, orderID, reason string) (*domain.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errors.New("refund reason required")
	}
	o, err := s.loadForBuyer(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureTransition(o, domain.StatusRefundPending); err != nil {
		return nil, err
	}

	applied, err := s.orders.Transition(ctx, o.ID, o.Status, domain.StatusRefundPending, orderrepo.StatusUpdate{RefundReason: &reason})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, staleState(o)
	}
	return s.orders.GetByID(ctx, o.ID)
}

// DecideRefund settles a pending refund. Agreeing restores the order's
// reserved stock and moves it to REFUNDED; declining moves it to
// REFUND_REJECTED and leaves inventory alone. Only the store owner decides.
func (s *Service) DecideRefund(ctx context.Context, actorID, orderID string, agree bool) (*domain.Order, error) {
	o, err := s.loadForSeller(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if agree {
		return s.compensate(ctx, o, domain.StatusRefunded)
	}

	if err := ensureTransition(o, domain.StatusRefundRejected); err != nil {
		return nil, err
	}
	applied, err := s.orders.Transition(ctx, o.ID, o.Status, domain.StatusRefundRejected, orderrepo.StatusUpdate{})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, staleState(o)
	}
	return s.orders.GetByID(ctx, o.ID)
}

// compensate is the shared cancel/refund path: flip the status and restore
// exactly the quantities frozen in the order's line items, atomically.
func (s *Service) compensate(ctx context.Context, o *domain.Order, to domain.Status) (*domain.Order, error) {
	if err := ensureTransition(o, to); err != nil {
		return nil, err
	}
	applied, err := s.orders.TransitionRestock(ctx, o.ID, o.Status, to, o.Lines)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, staleState(o)
	}
	s.logger.Printf("order service: order=%s %s -> %s, stock restored", o.OrderNumber, o.Status, to)
	return s.orders.GetByID(ctx, o.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orders.GetByNumber(ctx, orderNumber)
}

func (s *Service) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return s.orders.ListByBuyer(ctx, buyerID)
}

func (s *Service) ListByBuyerAndStatus(ctx context.Context, buyerID string, status domain.Status) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status %d: %w", status, domain.ErrInvalidState)
	}
	return s.orders.ListByBuyerAndStatus(ctx, buyerID, status)
}

func (s *Service) ListByStore(ctx context.Context, storeID string) ([]domain.Order, error) {
	return s.orders.ListByStore(ctx, storeID)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status %d: %w", status, domain.ErrInvalidState)
	}
	return s.orders.ListByStatus(ctx, status)
}

func (s *Service) CountByStatus(ctx context.Context, buyerID string) (map[domain.Status]int, error) {
	return s.orders.CountByStatus(ctx, buyerID)
}

// loadForBuyer fetches the order and verifies the actor is its buyer. The
// ownership guard runs before any state check and has no side effects.
func (s *Service) loadForBuyer(ctx context.Context, orderID, actorID string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != actorID {
		return nil, fmt.Errorf("order %s does not belong to actor: %w", orderID, domain.ErrUnauthorized)
	}
	return o, nil
}

// loadForSeller fetches the order and verifies the actor owns its store.
func (s *Service) loadForSeller(ctx context.Context, orderID, actorID string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	ownerID, err := s.stores.OwnerID(ctx, o.StoreID)
	if err != nil {
		return nil, err
	}
	if ownerID != actorID {
		return nil, fmt.Errorf("store %s does not belong to actor: %w", o.StoreID, domain.ErrUnauthorized)
	}
	return o, nil
}

func ensureTransition(o *domain.Order, to domain.Status) error {
	if !domain.CanTransition(o.Status, to) {
		return fmt.Errorf("order %s cannot move from %s to %s: %w", o.ID, o.Status, to, domain.ErrInvalidState)
	}
	return nil
}

// staleState covers the race where the order left its source status between
// the read and the conditional update.
func staleState(o *domain.Order) error {
	return fmt.Errorf("order %s is no longer %s: %w", o.ID, o.Status, domain.ErrInvalidState)
}
