// Package fee maps a delivery distance to a peso delivery fee using a
// stacking surcharge table.
package fee

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tier adds Surcharge to the fee when the distance strictly exceeds OverKm.
type Tier struct {
	OverKm    float64
	Surcharge decimal.Decimal
}

// Calculator computes delivery fees. Surcharges stack: a 12 km delivery pays
// the base fee plus every tier it exceeds, not just the highest one.
type Calculator struct {
	base  decimal.Decimal
	tiers []Tier
}

// NewCalculator returns a Calculator with the current fee table:
// ₱65 base, then +15 over 2 km, +25 over 3 km, +35 over 5 km, +50 over 10 km,
// +60 over 25 km, +100 over 30 km, +200 over 45 km.
func NewCalculator() *Calculator {
	return &Calculator{
		base: decimal.NewFromInt(65),
		tiers: []Tier{
			{OverKm: 2, Surcharge: decimal.NewFromInt(15)},
			{OverKm: 3, Surcharge: decimal.NewFromInt(25)},
			{OverKm: 5, Surcharge: decimal.NewFromInt(35)},
			{OverKm: 10, Surcharge: decimal.NewFromInt(50)},
			{OverKm: 25, Surcharge: decimal.NewFromInt(60)},
			{OverKm: 30, Surcharge: decimal.NewFromInt(100)},
			{OverKm: 45, Surcharge: decimal.NewFromInt(200)},
		},
	}
}

// Base returns the base fee charged when the distance is unknown.
func (c *Calculator) Base() decimal.Decimal {
	return c.base
}

// Fee returns the delivery fee for the given distance. Pass NaN when the
// distance could not be calculated; the base fee applies.
func (c *Calculator) Fee(distanceKm float64) decimal.Decimal {
	if math.IsNaN(distanceKm) {
		return c.base
	}

	total := c.base
	for _, t := range c.tiers {
		if distanceKm > t.OverKm {
			total = total.Add(t.Surcharge)
		}
	}
	return total
}
