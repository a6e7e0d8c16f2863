package payment

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Gateway charges the buyer for an order. The real marketplace would call a
// payment provider here; Pay treats any error as a failed payment and leaves
// the order unpaid.
type Gateway interface {
	Charge(ctx context.Context, orderNumber, method string, amountCents int64) (txnRef string, err error)
}

// Simulated is a gateway that always approves and hands back a generated
// transaction reference. Charges are remembered per order number so a
// retried payment returns the same reference.
type Simulated struct {
	mu     sync.Mutex
	txns   map[string]string
	logger *log.Logger
}

func NewSimulated(logger *log.Logger) *Simulated {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Simulated{txns: make(map[string]string), logger: logger}
}

func (g *Simulated) Charge(_ context.Context, orderNumber, method string, amountCents int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ref, ok := g.txns[orderNumber]; ok {
		return ref, nil
	}
	ref := uuid.NewString()
	g.txns[orderNumber] = ref
	g.logger.Printf("payment: charged order_number=%s method=%s amount_cents=%d txn=%s", orderNumber, method, amountCents, ref)
	return ref, nil
}
