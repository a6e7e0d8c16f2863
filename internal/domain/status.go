package domain

// Status is the order lifecycle state. The integer values are persisted and
// exposed externally, so they must stay stable.
type Status int

const (
	StatusUnpaid         Status = 0
	StatusPaid           Status = 1
	StatusShipped        Status = 2
	StatusCompleted      Status = 3
	StatusCancelled      Status = 4
	StatusRefunded       Status = 5
	StatusRefundPending  Status = 6
	StatusRefundRejected Status = 7
)

var statusNames = map[Status]string{
	StatusUnpaid:         "UNPAID",
	StatusPaid:           "PAID",
	StatusShipped:        "SHIPPED",
	StatusCompleted:      "COMPLETED",
	StatusCancelled:      "CANCELLED",
	StatusRefunded:       "REFUNDED",
	StatusRefundPending:  "REFUND_PENDING",
	StatusRefundRejected: "REFUND_REJECTED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether s is one of the defined lifecycle states.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// transitions lists every edge of the order state machine. States absent
// from the map (COMPLETED, CANCELLED, REFUNDED, REFUND_REJECTED) are
// terminal.
var transitions = map[Status][]Status{
	StatusUnpaid:        {StatusPaid, StatusCancelled},
	StatusPaid:          {StatusShipped, StatusRefundPending},
	StatusShipped:       {StatusCompleted, StatusRefundPending},
	StatusRefundPending: {StatusRefunded, StatusRefundRejected},
}

// CanTransition reports whether an order may move from one status to
// another. Every lifecycle operation consults this table instead of
// hard-coding status checks.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
