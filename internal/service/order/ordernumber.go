package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newOrderNumber builds a candidate order number: a second-resolution UTC
// timestamp that stays readable for operators, plus a uuid-derived suffix.
// The timestamp alone can collide under load, so uniqueness is enforced by
// the database constraint and Insert retries with a fresh candidate on
// conflict.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return now.UTC().Format("20060102150405") + suffix[:10]
}
