package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMenuItem_EffectivePrice(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	base := decimal.NewFromInt(150)
	discounted := decimal.NewFromInt(99)

	tests := []struct {
		name string
		item MenuItem
		want decimal.Decimal
	}{
		{
			name: "no discount",
			item: MenuItem{BasePrice: base},
			want: base,
		},
		{
			name: "active discount within window",
			item: MenuItem{
				BasePrice:      base,
				DiscountPrice:  discounted,
				DiscountActive: true,
				DiscountStart:  &before,
				DiscountEnd:    &after,
			},
			want: discounted,
		},
		{
			name: "discount flag off",
			item: MenuItem{
				BasePrice:     base,
				DiscountPrice: discounted,
				DiscountStart: &before,
				DiscountEnd:   &after,
			},
			want: base,
		},
		{
			name: "discount window ended",
			item: MenuItem{
				BasePrice:      base,
				DiscountPrice:  discounted,
				DiscountActive: true,
				DiscountEnd:    &before,
			},
			want: base,
		},
		{
			name: "discount window not started",
			item: MenuItem{
				BasePrice:      base,
				DiscountPrice:  discounted,
				DiscountActive: true,
				DiscountStart:  &after,
			},
			want: base,
		},
		{
			name: "open-ended active discount",
			item: MenuItem{
				BasePrice:      base,
				DiscountPrice:  discounted,
				DiscountActive: true,
			},
			want: discounted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(tt.item.EffectivePrice(now)))
		})
	}
}
