// Package promo validates promo codes and computes order discounts.
package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promo discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the base amount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a flat peso discount.
	DiscountFixed DiscountType = "fixed_amount"
)

// ApplicableTo selects the monetary base a promo discounts.
type ApplicableTo string

const (
	// ApplyTotal discounts the combined subtotal plus delivery fee.
	ApplyTotal ApplicableTo = "total"
	// ApplyFoodItems discounts the food subtotal only.
	ApplyFoodItems ApplicableTo = "food_items"
	// ApplyDeliveryFee discounts the delivery fee only, never below zero.
	ApplyDeliveryFee ApplicableTo = "delivery_fee"
)

// Validation failures. All surface to the customer as an "apply failed" state
// with a specific message; none of them is a transport error.
var (
	// ErrNotFound is returned when no active promo matches the code.
	ErrNotFound = errors.New("invalid promo code")
	// ErrExpired is returned when now is outside the promo's date window.
	ErrExpired = errors.New("promo code is expired or not yet active")
	// ErrUsageLimitReached is returned when the usage limit is exhausted.
	ErrUsageLimitReached = errors.New("promo code usage limit reached")
	// ErrMinimumNotMet is returned when the order is below the minimum amount.
	ErrMinimumNotMet = errors.New("minimum order amount not met")
	// ErrIPMissing is returned for new-user-only codes when no client IP is
	// available. Eligibility cannot be verified, so validation fails closed.
	ErrIPMissing = errors.New("cannot verify new user status")
	// ErrAlreadyUsed is returned for new-user-only codes when the client IP
	// has redeemed any promo before.
	ErrAlreadyUsed = errors.New("this promo code is for new users only")
)

// Promo is a stored promo-code record. Codes are unique and stored uppercase.
type Promo struct {
	ID           string
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	ApplicableTo ApplicableTo
	// MinOrder is the minimum order amount required to redeem. Zero means no
	// minimum.
	MinOrder decimal.Decimal
	// MaxDiscount caps the computed discount regardless of type. Zero means
	// no cap.
	MaxDiscount decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	// UsageLimit is the total number of redemptions allowed. Zero means
	// unlimited.
	UsageLimit  int
	UsageCount  int
	Active      bool
	NewUserOnly bool
	Description string
}

// Repository provides lookup and redemption of promo records.
type Repository interface {
	// FindActiveByCode returns the active promo matching the code
	// (case-insensitive), or ErrNotFound.
	FindActiveByCode(ctx context.Context, code string) (*Promo, error)
	// CountUsageByIP returns how many usage-log rows exist for the IP, across
	// every promo code.
	CountUsageByIP(ctx context.Context, ip string) (int, error)
	// Redeem increments the promo's usage count by one and appends a
	// usage-log row for the IP. Called once per placed order, never during
	// validation.
	Redeem(ctx context.Context, promoID, ip string) error
}
