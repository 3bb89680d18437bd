package promo

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeDiscount returns the discount a validated promo grants for the given
// food subtotal and delivery fee. The base depends on ApplicableTo:
// the subtotal, the delivery fee, or their sum.
//
// Percentage discounts take Value% of the base. Fixed discounts take Value
// flat, capped at the base itself when applied to the delivery fee (the fee
// cannot go negative). MaxDiscount, when set, caps either type.
func ComputeDiscount(p *Promo, subtotal, deliveryFee decimal.Decimal) decimal.Decimal {
	var base decimal.Decimal
	switch p.ApplicableTo {
	case ApplyDeliveryFee:
		base = deliveryFee
	case ApplyFoodItems:
		base = subtotal
	default:
		base = subtotal.Add(deliveryFee)
	}

	var amount decimal.Decimal
	switch p.DiscountType {
	case DiscountFixed:
		amount = p.Value
		if p.ApplicableTo == ApplyDeliveryFee {
			amount = decimal.Min(amount, deliveryFee)
		}
	default:
		amount = base.Mul(p.Value).Div(hundred)
	}

	if p.MaxDiscount.IsPositive() {
		amount = decimal.Min(amount, p.MaxDiscount)
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}
