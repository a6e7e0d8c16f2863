package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopmall/internal/domain"
	ordersvc "shopmall/internal/service/order"
	"github.com/gin-gonic/gin"
)

type stubOrderService struct {
	order     *domain.Order
	orders    []domain.Order
	counts    map[domain.Status]int
	err       error
	lastActor string
	lastInput ordersvc.CreateInput
	lastAgree bool
}

func (s *stubOrderService) Create(_ context.Context, buyerID string, in ordersvc.CreateInput) (*domain.Order, error) {
	s.lastActor = buyerID
	s.lastInput = in
	return s.order, s.err
}

func (s *stubOrderService) Pay(_ context.Context, actorID, _, _ string) (*domain.Order, error) {
	s.lastActor = actorID
	return s.order, s.err
}

func (s *stubOrderService) Ship(_ context.Context, actorID, _ string) (*domain.Order, error) {
	s.lastActor = actorID
	return s.order, s.err
}

func (s *stubOrderService) Receive(_ context.Context, actorID, _ string) (*domain.Order, error) {
	s.lastActor = actorID
	return s.order, s.err
}

func (s *stubOrderService) Cancel(_ context.Context, actorID, _ string) (*domain.Order, error) {
	s.lastActor = actorID
	return s.order, s.err
}

func (s *stubOrderService) RequestRefund(_ context.Context, actorID, _, _ string) (*domain.Order, error) {
	s.lastActor = actorID
	return s.order, s.err
}

func (s *stubOrderService) DecideRefund(_ context.Context, actorID, _ string, agree bool) (*domain.Order, error) {
	s.lastActor = actorID
	s.lastAgree = agree
	return s.order, s.err
}

func (s *stubOrderService) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) GetByNumber(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListByBuyer(_ context.Context, _ string) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) ListByBuyerAndStatus(_ context.Context, _ string, _ domain.Status) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) ListByStore(_ context.Context, _ string) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) CountByStatus(_ context.Context, _ string) (map[domain.Status]int, error) {
	return s.counts, s.err
}

func testRouter(svc orderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, nil, Deps{OrderSvc: svc}, []string{"*"})
}

func TestCreateOrderHappyPath(t *testing.T) {
	svc := &stubOrderService{order: &domain.Order{ID: "o1", Status: domain.StatusUnpaid, TotalCents: 9000}}
	router := testRouter(svc)

	body := `{"storeId":"s1","addressId":"a1","paymentMethod":"wallet","items":[{"productId":"p1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actorHeader, "buyer-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.lastActor != "buyer-1" {
		t.Fatalf("expected actor from header, got %q", svc.lastActor)
	}
	if len(svc.lastInput.Items) != 1 || svc.lastInput.Items[0].Quantity != 2 {
		t.Fatalf("unexpected input %+v", svc.lastInput)
	}
}

func TestCreateOrderMissingActorHeader(t *testing.T) {
	router := testRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc := &stubOrderService{err: domain.ErrInsufficientStock}
	router := testRouter(svc)

	body := `{"storeId":"s1","addressId":"a1","paymentMethod":"wallet","items":[{"productId":"p1","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actorHeader, "buyer-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCancelWrongOwner(t *testing.T) {
	svc := &stubOrderService{err: domain.ErrUnauthorized}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders/o1/cancel", nil)
	req.Header.Set(actorHeader, "intruder")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc := &stubOrderService{err: domain.ErrNotFound}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/missing", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListOrdersRejectsBadStatus(t *testing.T) {
	router := testRouter(&stubOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/orders?status=banana", nil)
	req.Header.Set(actorHeader, "buyer-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDecideRefundPassesAgree(t *testing.T) {
	svc := &stubOrderService{order: &domain.Order{ID: "o1", Status: domain.StatusRefunded}}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders/o1/refund-decision", strings.NewReader(`{"agree":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actorHeader, "seller-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !svc.lastAgree {
		t.Fatalf("expected agree=true passed through")
	}
}

func TestPayInvalidState(t *testing.T) {
	svc := &stubOrderService{err: domain.ErrInvalidState}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/orders/o1/pay", strings.NewReader(`{"paymentMethod":"wallet"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actorHeader, "buyer-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestStatusCounts(t *testing.T) {
	svc := &stubOrderService{counts: map[domain.Status]int{
		domain.StatusUnpaid: 2,
		domain.StatusPaid:   1,
	}}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/status-counts", nil)
	req.Header.Set(actorHeader, "buyer-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"pendingPayment":2`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
