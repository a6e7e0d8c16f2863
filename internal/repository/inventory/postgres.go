package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"shopmall/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reserveQuery decrements stock and bumps sales only when enough stock
// remains. The condition lives in the same UPDATE, so two concurrent
// reservations can never both pass on the last unit.
const reserveQuery = `
UPDATE products
SET stock = stock - $2,
    sales = sales + $2
WHERE id = $1 AND stock >= $2
`

// releaseQuery is the symmetric atomic increment. Sales is clamped at zero;
// the CTE exposes whether clamping happened so it can be reported.
const releaseQuery = `
WITH prev AS (
	SELECT sales FROM products WHERE id = $1
)
UPDATE products p
SET stock = p.stock + $2,
    sales = GREATEST(p.sales - $2, 0)
FROM prev
WHERE p.id = $1
RETURNING prev.sales < $2
`

type postgresLedger struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Ledger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresLedger{pool: pool, logger: logger}
}

func (l *postgresLedger) Reserve(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve product_id=%s: quantity must be positive", productID)
	}
	cmd, err := l.pool.Exec(ctx, reserveQuery, productID, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, domain.ErrInsufficientStock)
	}
	return nil
}

func (l *postgresLedger) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release product_id=%s: quantity must be positive", productID)
	}
	var clamped bool
	if err := l.pool.QueryRow(ctx, releaseQuery, productID, qty).Scan(&clamped); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return err
	}
	if clamped {
		// Sales dropping below zero means a release without a matching
		// reservation somewhere upstream.
		l.logger.Printf("inventory: DEFECT sales clamped at zero product_id=%s qty=%d", productID, qty)
	}
	return nil
}

func (l *postgresLedger) ReserveAll(ctx context.Context, items []Reservation) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, it := range items {
		if it.Quantity <= 0 {
			return fmt.Errorf("reserve product_id=%s: quantity must be positive", it.ProductID)
		}
		cmd, err := tx.Exec(ctx, reserveQuery, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			// Rollback via defer undoes every earlier line.
			return fmt.Errorf("product %s: %w", it.ProductID, domain.ErrInsufficientStock)
		}
	}

	return tx.Commit(ctx)
}

func (l *postgresLedger) ReleaseAll(ctx context.Context, items []Reservation) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := ReleaseInTx(ctx, tx, l.logger, items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReleaseInTx restores stock for every reservation inside the caller's
// transaction. The order store uses it to flip a status and restock as one
// atomic unit.
func ReleaseInTx(ctx context.Context, tx pgx.Tx, logger *log.Logger, items []Reservation) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	for _, it := range items {
		var clamped bool
		if err := tx.QueryRow(ctx, releaseQuery, it.ProductID, it.Quantity).Scan(&clamped); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("product %s: %w", it.ProductID, domain.ErrNotFound)
			}
			return err
		}
		if clamped {
			logger.Printf("inventory: DEFECT sales clamped at zero product_id=%s qty=%d", it.ProductID, it.Quantity)
		}
	}
	return nil
}
