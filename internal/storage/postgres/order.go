package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/checkout"
)

const createOrderSQL = `INSERT INTO orders (id, customer_name, contact_number, address,
	landmark, notes, payment_method, items, subtotal, delivery_fee, discount, total,
	distance_km, promo_code, messenger_link)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

var _ checkout.OrderRepository = (*OrderRepository)(nil)

// OrderRepository implements checkout.OrderRepository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Order items are serialized to JSON for storage
// in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *checkout.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.CustomerName, o.ContactNumber, o.Address,
		o.Landmark, o.Notes, o.PaymentMethod, itemsJSON,
		o.Subtotal, o.DeliveryFee, o.Discount, o.Total,
		o.DistanceKm, o.PromoCode, o.MessengerLink,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}
