// Package checkout composes geocoding, routing, fee calculation, the
// delivery-area gate, and promo validation into delivery quotes and placed
// orders.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/promo"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/route"
)

// Sentinel errors for order placement.
var (
	ErrEmptyItems      = errors.New("items required")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrMissingCustomer = errors.New("customer name, contact number and address are required")
	ErrOutsideArea     = errors.New("address is outside the delivery area")
)

// RouteResolver resolves a driving distance between two coordinates.
type RouteResolver interface {
	Route(ctx context.Context, origin, dest geo.Coordinate) route.Result
}

// PromoValidator validates a promo code without side effects.
type PromoValidator interface {
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal, clientIP string) (*promo.Promo, error)
}

// OrderAddOn is an extra attached to an ordered item.
type OrderAddOn struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderItem is one line of a placed order. UnitPrice already includes the
// selected variation and add-ons.
type OrderItem struct {
	RestaurantName string          `json:"restaurant_name"`
	Name           string          `json:"name"`
	Variation      string          `json:"variation,omitempty"`
	AddOns         []OrderAddOn    `json:"add_ons,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// Order is a completed order handed off to the operator.
type Order struct {
	ID            string
	CustomerName  string
	ContactNumber string
	Address       string
	Landmark      string
	Notes         string
	PaymentMethod string
	Items         []OrderItem
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	DistanceKm    float64
	PromoCode     string
	MessengerLink string
	CreatedAt     time.Time
}

// OrderRepository persists placed orders.
type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
}
