package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/promo"
)

const (
	getPromoByCodeSQL = `SELECT id, code, discount_type, value, applicable_to,
		min_order, max_discount, start_date, end_date,
		usage_limit, usage_count, active, new_user_only, description
		FROM promo_codes WHERE UPPER(code) = UPPER($1) AND active = TRUE`

	countUsageByIPSQL = `SELECT COUNT(*) FROM promo_usage_logs WHERE client_ip = $1`

	incrementPromoUsageSQL = `UPDATE promo_codes SET usage_count = usage_count + 1 WHERE id = $1`

	insertUsageLogSQL = `INSERT INTO promo_usage_logs (promo_id, client_ip) VALUES ($1, $2)`
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindActiveByCode looks up an active promo by its code (case-insensitive).
// Returns promo.ErrNotFound when no matching active promo exists.
func (r *PromoRepository) FindActiveByCode(ctx context.Context, code string) (*promo.Promo, error) {
	rows, err := r.pool.Query(ctx, getPromoByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promo by code %q: %w", code, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrNotFound
		}
		return nil, fmt.Errorf("finding promo by code %q: %w", code, err)
	}
	return &p, nil
}

// CountUsageByIP counts usage-log rows for the IP across all promo codes.
func (r *PromoRepository) CountUsageByIP(ctx context.Context, ip string) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, countUsageByIPSQL, ip).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting promo usage for ip %q: %w", ip, err)
	}
	return count, nil
}

// Redeem increments the promo usage counter and records a usage-log row for
// the IP in one transaction.
func (r *PromoRepository) Redeem(ctx context.Context, promoID, ip string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning redeem transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, incrementPromoUsageSQL, promoID); err != nil {
		return fmt.Errorf("incrementing usage for promo %q: %w", promoID, err)
	}
	if _, err := tx.Exec(ctx, insertUsageLogSQL, promoID, ip); err != nil {
		return fmt.Errorf("logging usage for promo %q: %w", promoID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing redeem for promo %q: %w", promoID, err)
	}
	return nil
}

func scanPromo(row pgx.CollectableRow) (promo.Promo, error) {
	var (
		p            promo.Promo
		discountType string
		applicableTo string
		value        decimal.Decimal
		minOrder     decimal.Decimal
		maxDiscount  decimal.Decimal
		startDate    time.Time
		endDate      time.Time
		usageLimit   int32
		usageCount   int32
	)
	err := row.Scan(
		&p.ID, &p.Code, &discountType, &value, &applicableTo,
		&minOrder, &maxDiscount, &startDate, &endDate,
		&usageLimit, &usageCount, &p.Active, &p.NewUserOnly, &p.Description,
	)
	p.DiscountType = promo.DiscountType(discountType)
	p.ApplicableTo = promo.ApplicableTo(applicableTo)
	p.Value = value
	p.MinOrder = minOrder
	p.MaxDiscount = maxDiscount
	p.StartDate = startDate
	p.EndDate = endDate
	p.UsageLimit = int(usageLimit)
	p.UsageCount = int(usageCount)
	return p, err
}
