package cart

import (
	"context"
	"io"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresClearer struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Clearer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresClearer{pool: pool, logger: logger}
}

func (c *postgresClearer) ClearPurchased(ctx context.Context, buyerID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	const q = `
DELETE FROM cart_items
WHERE user_id = $1 AND product_id = ANY($2::uuid[])
`
	cmd, err := c.pool.Exec(ctx, q, buyerID, productIDs)
	if err != nil {
		c.logger.Printf("cart repo: clear user_id=%s error=%v", buyerID, err)
		return err
	}
	c.logger.Printf("cart repo: cleared user_id=%s items=%d", buyerID, cmd.RowsAffected())
	return nil
}
