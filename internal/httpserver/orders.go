package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"shopmall/internal/domain"
	ordersvc "shopmall/internal/service/order"
	"github.com/gin-gonic/gin"
)

// orderService is the slice of the lifecycle service the handlers consume.
type orderService interface {
	Create(ctx context.Context, buyerID string, in ordersvc.CreateInput) (*domain.Order, error)
	Pay(ctx context.Context, actorID, orderID, method string) (*domain.Order, error)
	Ship(ctx context.Context, actorID, orderID string) (*domain.Order, error)
	Receive(ctx context.Context, actorID, orderID string) (*domain.Order, error)
	Cancel(ctx context.Context, actorID, orderID string) (*domain.Order, error)
	RequestRefund(ctx context.Context, actorID, orderID, reason string) (*domain.Order, error)
	DecideRefund(ctx context.Context, actorID, orderID string, agree bool) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListByBuyerAndStatus(ctx context.Context, buyerID string, status domain.Status) ([]domain.Order, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Order, error)
	CountByStatus(ctx context.Context, buyerID string) (map[domain.Status]int, error)
}

// Deps carries the services the router needs.
type Deps struct {
	OrderSvc orderService
}

type orderHandlers struct {
	svc    orderService
	logger *log.Logger
}

type createOrderRequest struct {
	StoreID       string                   `json:"storeId" binding:"required"`
	AddressID     string                   `json:"addressId" binding:"required"`
	PaymentMethod string                   `json:"paymentMethod" binding:"required"`
	Remark        string                   `json:"remark"`
	Items         []createOrderRequestItem `json:"items" binding:"required,min=1,dive"`
}

type createOrderRequestItem struct {
	ProductID     string `json:"productId" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	Specification string `json:"specification"`
}

type payRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type refundRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type refundDecisionRequest struct {
	Agree *bool `json:"agree" binding:"required"`
}

func (h *orderHandlers) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := make([]ordersvc.CreateItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ordersvc.CreateItem{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			Specification: it.Specification,
		})
	}
	order, err := h.svc.Create(c.Request.Context(), actor, ordersvc.CreateInput{
		StoreID:       req.StoreID,
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		Remark:        req.Remark,
		Items:         items,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *orderHandlers) pay(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.Pay(c.Request.Context(), actor, c.Param("id"), req.PaymentMethod)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *orderHandlers) ship(c *gin.Context) {
	h.transition(c, h.svc.Ship)
}

func (h *orderHandlers) receive(c *gin.Context) {
	h.transition(c, h.svc.Receive)
}

func (h *orderHandlers) cancel(c *gin.Context) {
	h.transition(c, h.svc.Cancel)
}

func (h *orderHandlers) transition(c *gin.Context, op func(ctx context.Context, actorID, orderID string) (*domain.Order, error)) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	order, err := op(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *orderHandlers) requestRefund(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.RequestRefund(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *orderHandlers) decideRefund(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req refundDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.svc.DecideRefund(c.Request.Context(), actor, c.Param("id"), *req.Agree)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *orderHandlers) getByID(c *gin.Context) {
	order, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *orderHandlers) getByNumber(c *gin.Context) {
	order, err := h.svc.GetByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *orderHandlers) listForBuyer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		orders, err := h.svc.ListByBuyerAndStatus(c.Request.Context(), actor, status)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
		return
	}
	orders, err := h.svc.ListByBuyer(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *orderHandlers) listForStore(c *gin.Context) {
	orders, err := h.svc.ListByStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *orderHandlers) statusCounts(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	counts, err := h.svc.CountByStatus(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pendingPayment":  counts[domain.StatusUnpaid],
		"pendingShipment": counts[domain.StatusPaid],
		"pendingReceipt":  counts[domain.StatusShipped],
		"completed":       counts[domain.StatusCompleted],
	})
}

func parseStatus(raw string) (domain.Status, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("status must be an integer")
	}
	status := domain.Status(n)
	if !status.Valid() {
		return 0, errors.New("unknown status " + raw)
	}
	return status, nil
}

func (h *orderHandlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Printf("http: internal error path=%s error=%v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
