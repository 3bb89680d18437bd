package promo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPromoRepo struct {
	promo      *Promo
	findErr    error
	ipUsage    int
	ipErr      error
	findCalls  int
	redeemed   []string
	redeemedIP []string
}

func (m *mockPromoRepo) FindActiveByCode(_ context.Context, _ string) (*Promo, error) {
	m.findCalls++
	return m.promo, m.findErr
}

func (m *mockPromoRepo) CountUsageByIP(_ context.Context, _ string) (int, error) {
	return m.ipUsage, m.ipErr
}

func (m *mockPromoRepo) Redeem(_ context.Context, promoID, ip string) error {
	m.redeemed = append(m.redeemed, promoID)
	m.redeemedIP = append(m.redeemedIP, ip)
	return nil
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
}

func validPromo() *Promo {
	now := fixedClock()()
	return &Promo{
		ID:           "p1",
		Code:         "SAVE10",
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		ApplicableTo: ApplyFoodItems,
		StartDate:    now.Add(-24 * time.Hour),
		EndDate:      now.Add(24 * time.Hour),
		Active:       true,
	}
}

func TestValidator_Validate(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(500)

	tests := []struct {
		name    string
		mutate  func(*Promo)
		repo    func(*mockPromoRepo)
		ip      string
		amount  decimal.Decimal
		wantErr error
	}{
		{
			name:   "valid code",
			amount: amount,
		},
		{
			name:    "unknown code",
			repo:    func(m *mockPromoRepo) { m.promo = nil; m.findErr = ErrNotFound },
			amount:  amount,
			wantErr: ErrNotFound,
		},
		{
			name:    "not yet active",
			mutate:  func(p *Promo) { p.StartDate = fixedClock()().Add(time.Hour) },
			amount:  amount,
			wantErr: ErrExpired,
		},
		{
			name:    "expired",
			mutate:  func(p *Promo) { p.EndDate = fixedClock()().Add(-time.Hour) },
			amount:  amount,
			wantErr: ErrExpired,
		},
		{
			name: "usage count at limit",
			mutate: func(p *Promo) {
				p.UsageLimit = 100
				p.UsageCount = 100
			},
			amount:  amount,
			wantErr: ErrUsageLimitReached,
		},
		{
			name:   "usage count below limit",
			mutate: func(p *Promo) { p.UsageLimit = 100; p.UsageCount = 99 },
			amount: amount,
		},
		{
			name:    "below minimum order",
			mutate:  func(p *Promo) { p.MinOrder = decimal.NewFromInt(1000) },
			amount:  amount,
			wantErr: ErrMinimumNotMet,
		},
		{
			name:    "new user only without IP fails closed",
			mutate:  func(p *Promo) { p.NewUserOnly = true },
			amount:  amount,
			wantErr: ErrIPMissing,
		},
		{
			name:    "new user only with used IP",
			mutate:  func(p *Promo) { p.NewUserOnly = true },
			repo:    func(m *mockPromoRepo) { m.ipUsage = 3 },
			ip:      "203.0.113.7",
			amount:  amount,
			wantErr: ErrAlreadyUsed,
		},
		{
			name:   "new user only with fresh IP",
			mutate: func(p *Promo) { p.NewUserOnly = true },
			ip:     "203.0.113.7",
			amount: amount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockPromoRepo{promo: validPromo()}
			if tt.mutate != nil {
				tt.mutate(repo.promo)
			}
			if tt.repo != nil {
				tt.repo(repo)
			}

			v := NewValidator(repo)
			v.now = fixedClock()

			p, err := v.Validate(ctx, "save10", tt.amount, tt.ip)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SAVE10", p.Code)
		})
	}
}

func TestValidator_Validate_SideEffectFree(t *testing.T) {
	repo := &mockPromoRepo{promo: validPromo()}
	v := NewValidator(repo)
	v.now = fixedClock()

	for range 2 {
		_, err := v.Validate(context.Background(), "SAVE10", decimal.NewFromInt(500), "")
		require.NoError(t, err)
	}

	assert.Empty(t, repo.redeemed, "validation must never redeem")
	assert.Zero(t, repo.promo.UsageCount)
}
