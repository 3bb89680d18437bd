package promo

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator checks promo codes against their stored rules. Validation is
// side-effect-free: it may run on every keystroke of the promo field without
// consuming usage. Redemption happens separately via Repository.Redeem.
type Validator struct {
	repo Repository
	now  func() time.Time
}

// NewValidator creates a Validator backed by the given Repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Validate checks the code against the order amount and client IP and returns
// the promo record on success. Discount computation is left to
// ComputeDiscount so the caller can supply the correct base amounts.
//
// clientIP may be empty; new-user-only codes then fail closed with
// ErrIPMissing. Keying new-user eligibility off an IP address is trivially
// spoofable, but it is the behavior the business runs on.
func (v *Validator) Validate(ctx context.Context, code string, orderAmount decimal.Decimal, clientIP string) (*Promo, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	p, err := v.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup promo")
	}

	now := v.now()
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return nil, ErrExpired
	}

	if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
		return nil, ErrUsageLimitReached
	}

	if p.MinOrder.IsPositive() && orderAmount.LessThan(p.MinOrder) {
		return nil, ErrMinimumNotMet
	}

	if p.NewUserOnly {
		if clientIP == "" {
			return nil, ErrIPMissing
		}
		used, err := v.repo.CountUsageByIP(ctx, clientIP)
		if err != nil {
			return nil, errors.Wrap(err, "check usage log")
		}
		if used > 0 {
			return nil, ErrAlreadyUsed
		}
	}

	return p, nil
}
