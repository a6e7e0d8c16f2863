package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Name       string
	PriceCents int64
	Stock      int
	Listed     bool
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON
// CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	buyerID, err := ensureUser(ctx, pool, "demo-buyer")
	if err != nil {
		return fmt.Errorf("ensure buyer: %w", err)
	}
	sellerID, err := ensureUser(ctx, pool, "demo-seller")
	if err != nil {
		return fmt.Errorf("ensure seller: %w", err)
	}

	storeID, err := ensureStore(ctx, pool, sellerID, "Demo Store")
	if err != nil {
		return fmt.Errorf("ensure store: %w", err)
	}

	if err := ensureAddress(ctx, pool, buyerID); err != nil {
		return fmt.Errorf("ensure address: %w", err)
	}

	products := []productSeed{
		{Name: "Demo Rice Cooker", PriceCents: 4500, Stock: 25, Listed: true},
		{Name: "Demo Kettle", PriceCents: 2000, Stock: 10, Listed: true},
		{Name: "Demo Lamp (delisted)", PriceCents: 900, Stock: 3, Listed: false},
	}
	for _, p := range products {
		if err := ensureProduct(ctx, pool, storeID, p); err != nil {
			return fmt.Errorf("ensure product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, username string) (string, error) {
	const q = `
INSERT INTO users (username)
VALUES ($1)
ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, username).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureStore(ctx context.Context, pool *pgxpool.Pool, ownerID, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM stores WHERE owner_user_id = $1 AND name = $2`, ownerID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	err = pool.QueryRow(ctx, `
INSERT INTO stores (owner_user_id, name)
VALUES ($1, $2)
RETURNING id::text
`, ownerID, name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAddress(ctx context.Context, pool *pgxpool.Pool, userID string) error {
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := pool.Exec(ctx, `
INSERT INTO addresses (user_id, receiver_name, receiver_phone, province, city, district, detail, is_default)
VALUES ($1, 'Demo Buyer', '555-0100', 'Demo Province', 'Demo City', 'Central', '12 Main St', true)
`, userID)
	return err
}

func ensureProduct(ctx context.Context, pool *pgxpool.Pool, storeID string, p productSeed) error {
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE store_id = $1 AND name = $2`, storeID, p.Name).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := pool.Exec(ctx, `
INSERT INTO products (store_id, name, price_cents, stock, listed)
VALUES ($1, $2, $3, $4, $5)
`, storeID, p.Name, p.PriceCents, p.Stock, p.Listed)
	return err
}
