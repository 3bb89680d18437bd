// Package catalog holds the browsable storefront data: restaurants and their
// menu items.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a restaurant or menu item does not exist.
var ErrNotFound = errors.New("not found")

// Restaurant is a partner store customers browse and order from.
type Restaurant struct {
	ID           string
	Name         string
	Type         string
	Image        string
	Logo         string
	Rating       float64
	ReviewCount  int
	DeliveryTime string
	Description  string
	Active       bool
	SortOrder    int
}

// Variation is a selectable size or flavor option with its own price.
type Variation struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// AddOn is an optional extra attached to a menu item.
type AddOn struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// MenuItem is a single orderable item on a restaurant's menu.
type MenuItem struct {
	ID           string
	RestaurantID string
	Name         string
	Description  string
	BasePrice    decimal.Decimal
	Category     string
	Image        string
	Popular      bool
	Available    bool
	Variations   []Variation
	AddOns       []AddOn

	// Time-limited discount pricing, managed by the store admin.
	DiscountPrice  decimal.Decimal
	DiscountStart  *time.Time
	DiscountEnd    *time.Time
	DiscountActive bool
}

// OnDiscount reports whether the item's discount price applies at the given
// time.
func (m *MenuItem) OnDiscount(now time.Time) bool {
	if !m.DiscountActive || !m.DiscountPrice.IsPositive() {
		return false
	}
	if m.DiscountStart != nil && now.Before(*m.DiscountStart) {
		return false
	}
	if m.DiscountEnd != nil && now.After(*m.DiscountEnd) {
		return false
	}
	return true
}

// EffectivePrice returns the price a customer pays at the given time.
func (m *MenuItem) EffectivePrice(now time.Time) decimal.Decimal {
	if m.OnDiscount(now) {
		return m.DiscountPrice
	}
	return m.BasePrice
}

// Repository provides read access to the storefront catalog.
type Repository interface {
	// ListRestaurants returns active restaurants ordered for display.
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
	// GetRestaurant returns one restaurant by ID, or ErrNotFound.
	GetRestaurant(ctx context.Context, id string) (*Restaurant, error)
	// ListMenu returns the available menu items for a restaurant.
	ListMenu(ctx context.Context, restaurantID string) ([]MenuItem, error)
}
