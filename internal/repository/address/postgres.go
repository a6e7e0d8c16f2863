package address

import (
	"context"
	"errors"

	"shopmall/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresResolver struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Resolver {
	return &postgresResolver{pool: pool}
}

func (r *postgresResolver) Resolve(ctx context.Context, buyerID, addressID string) (*domain.AddressSnapshot, error) {
	const q = `
SELECT id::text, receiver_name, receiver_phone, province, city, district, detail
FROM addresses
WHERE id = $1 AND user_id = $2
`
	var snap domain.AddressSnapshot
	err := r.pool.QueryRow(ctx, q, addressID, buyerID).Scan(
		&snap.ID,
		&snap.ReceiverName,
		&snap.ReceiverPhone,
		&snap.Province,
		&snap.City,
		&snap.District,
		&snap.Detail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &snap, nil
}
