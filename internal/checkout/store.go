package checkout

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stitchkit/backend-workwear/internal/cart"
	"github.com/stitchkit/backend-workwear/internal/pricing"
)

// Order is the persisted record of a confirmed checkout. Totals are captured
// verbatim at confirmation time and never recomputed.
type Order struct {
	ID            string
	CustomerID    string
	CartID        string
	Subtotal      pricing.Money
	Discount      pricing.Money
	Shipping      pricing.Money
	Total         pricing.Money
	DiscountCode  string
	Status        string
	Lines         []cart.Line
	AddressJSON   []byte
	CreatedAtUnix int64
}

// Store persists orders and answers order-history questions.
type Store interface {
	InsertOrder(ctx context.Context, o Order) error
	CountOrders(ctx context.Context, customerID string) (int64, error)
}

// PGStore writes orders to Postgres inside a single transaction.
type PGStore struct {
	Pool *pgxpool.Pool
}

// InsertOrder writes the order header and its lines atomically.
func (s PGStore) InsertOrder(ctx context.Context, o Order) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, customer_id, cart_id, status,
			subtotal_pence, discount_pence, shipping_pence, total_pence,
			discount_code, shipping_address, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, to_timestamp($11))`,
		o.ID, o.CustomerID, o.CartID, o.Status,
		o.Subtotal, o.Discount, o.Shipping, o.Total,
		o.DiscountCode, o.AddressJSON, o.CreatedAtUnix,
	)
	if err != nil {
		return err
	}
	for _, line := range o.Lines {
		cust, err := json.Marshal(line.Customization)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines (
				id, order_id, product_id, name, category,
				unit_price_pence, qty, customization
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			line.ID, o.ID, line.ProductID, line.Name, line.Category,
			line.UnitPrice, line.Qty, cust,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// CountOrders reports how many orders a customer has placed.
func (s PGStore) CountOrders(ctx context.Context, customerID string) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE customer_id = $1`, customerID,
	).Scan(&n)
	return n, err
}
