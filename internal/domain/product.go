package domain

import "time"

// Product is the catalog view the order core consumes. Stock and sales are
// mutated only through the inventory ledger's conditional updates.
type Product struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"storeId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Stock      int       `json:"stock"`
	Sales      int       `json:"sales"`
	Listed     bool      `json:"listed"`
	CreatedAt  time.Time `json:"createdAt"`
}
