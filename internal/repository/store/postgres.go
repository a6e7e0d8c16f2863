package store

import (
	"context"
	"errors"

	"shopmall/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) OwnerID(ctx context.Context, storeID string) (string, error) {
	const q = `SELECT owner_user_id::text FROM stores WHERE id = $1`
	var ownerID string
	if err := r.pool.QueryRow(ctx, q, storeID).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return ownerID, nil
}
