package promo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeDiscount(t *testing.T) {
	subtotal := decimal.NewFromInt(500)
	deliveryFee := decimal.NewFromInt(140)

	tests := []struct {
		name  string
		promo Promo
		want  string
	}{
		{
			name: "percentage of food subtotal",
			promo: Promo{
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				ApplicableTo: ApplyFoodItems,
			},
			want: "50",
		},
		{
			name: "percentage of delivery fee",
			promo: Promo{
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(50),
				ApplicableTo: ApplyDeliveryFee,
			},
			want: "70",
		},
		{
			name: "percentage of combined total",
			promo: Promo{
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				ApplicableTo: ApplyTotal,
			},
			want: "64",
		},
		{
			name: "fixed amount on subtotal",
			promo: Promo{
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(75),
				ApplicableTo: ApplyFoodItems,
			},
			want: "75",
		},
		{
			name: "fixed amount capped at delivery fee",
			promo: Promo{
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(200),
				ApplicableTo: ApplyDeliveryFee,
			},
			want: "140",
		},
		{
			name: "max discount caps percentage",
			promo: Promo{
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(50),
				ApplicableTo: ApplyFoodItems,
				MaxDiscount:  decimal.NewFromInt(100),
			},
			want: "100",
		},
		{
			name: "max discount caps fixed",
			promo: Promo{
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(150),
				ApplicableTo: ApplyTotal,
				MaxDiscount:  decimal.NewFromInt(120),
			},
			want: "120",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDiscount(&tt.promo, subtotal, deliveryFee)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"got %s, want %s", got, tt.want)
		})
	}
}
