package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"shopmall/internal/domain"
	"shopmall/internal/repository/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, order_number, buyer_id::text, store_id::text, line_items, total_cents,
shipping_snapshot, payment_method, payment_time, shipping_time, status, refund_reason, remark, created_at, updated_at`

const transitionQuery = `
UPDATE orders
SET status = $3,
    payment_method = COALESCE($4, payment_method),
    payment_time = COALESCE($5, payment_time),
    shipping_time = COALESCE($6, shipping_time),
    refund_reason = COALESCE($7, refund_reason),
    updated_at = now()
WHERE id = $1 AND status = $2
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Insert(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return nil, fmt.Errorf("marshal line items: %w", err)
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return nil, fmt.Errorf("marshal address snapshot: %w", err)
	}

	const q = `
INSERT INTO orders (order_number, buyer_id, store_id, line_items, total_cents, shipping_snapshot, payment_method, status, remark)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text, created_at, updated_at
`
	res := *o
	err = r.pool.QueryRow(ctx, q,
		o.OrderNumber,
		o.BuyerID,
		o.StoreID,
		lines,
		o.TotalCents,
		address,
		o.PaymentMethod,
		int(o.Status),
		o.Remark,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key" {
			return nil, fmt.Errorf("order number %s: %w", o.OrderNumber, domain.ErrDuplicateOrderNumber)
		}
		r.logger.Printf("order repo: insert order_number=%s error=%v", o.OrderNumber, err)
		return nil, err
	}
	r.logger.Printf("order repo: inserted id=%s order_number=%s total_cents=%d", res.ID, res.OrderNumber, res.TotalCents)
	return &res, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return r.fetchOne(ctx, q, id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE order_number = $1`, orderColumns)
	return r.fetchOne(ctx, q, orderNumber)
}

func (r *postgresRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`, orderColumns)
	return r.fetchMany(ctx, q, buyerID)
}

func (r *postgresRepo) ListByBuyerAndStatus(ctx context.Context, buyerID string, status domain.Status) ([]domain.Order, error) {
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE buyer_id = $1 AND status = $2 ORDER BY created_at DESC`, orderColumns)
	return r.fetchMany(ctx, q, buyerID, int(status))
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Order, error) {
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE store_id = $1 ORDER BY created_at DESC`, orderColumns)
	return r.fetchMany(ctx, q, storeID)
}

func (r *postgresRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE status = $1 ORDER BY created_at DESC`, orderColumns)
	return r.fetchMany(ctx, q, int(status))
}

func (r *postgresRepo) CountByStatus(ctx context.Context, buyerID string) (map[domain.Status]int, error) {
	const q = `
SELECT status, COUNT(*)
FROM orders
WHERE buyer_id = $1
GROUP BY status
`
	rows, err := r.pool.Query(ctx, q, buyerID)
	if err != nil {
		r.logger.Printf("order repo: count buyer_id=%s error=%v", buyerID, err)
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status, n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *postgresRepo) Transition(ctx context.Context, id string, from, to domain.Status, set StatusUpdate) (bool, error) {
	cmd, err := r.pool.Exec(ctx, transitionQuery, id, int(from), int(to), set.PaymentMethod, set.PaymentTime, set.ShippingTime, set.RefundReason)
	if err != nil {
		r.logger.Printf("order repo: transition id=%s from=%s to=%s error=%v", id, from, to, err)
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}
	r.logger.Printf("order repo: transition id=%s %s -> %s", id, from, to)
	return true, nil
}

func (r *postgresRepo) TransitionRestock(ctx context.Context, id string, from, to domain.Status, lines []domain.LineItem) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, transitionQuery, id, int(from), int(to), nil, nil, nil, nil)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		// Order already left the source status; nothing to restock.
		return false, nil
	}

	if err := inventory.ReleaseInTx(ctx, tx, r.logger, inventory.FromLines(lines)); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	r.logger.Printf("order repo: transition id=%s %s -> %s with restock of %d lines", id, from, to, len(lines))
	return true, nil
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) fetchMany(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o       domain.Order
		lines   []byte
		address []byte
		status  int
	)
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.BuyerID,
		&o.StoreID,
		&lines,
		&o.TotalCents,
		&address,
		&o.PaymentMethod,
		&o.PaymentTime,
		&o.ShippingTime,
		&status,
		&o.RefundReason,
		&o.Remark,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal line items: %w", err)
	}
	if err := json.Unmarshal(address, &o.Address); err != nil {
		return nil, fmt.Errorf("unmarshal address snapshot: %w", err)
	}
	o.Status = domain.Status(status)
	return &o, nil
}
