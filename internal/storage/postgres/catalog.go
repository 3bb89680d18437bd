package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/catalog"
)

const (
	listRestaurantsSQL = `SELECT id, name, type, image, logo, rating, review_count,
		delivery_time, description, active, sort_order
		FROM restaurants WHERE active = TRUE ORDER BY sort_order, name`

	getRestaurantSQL = `SELECT id, name, type, image, logo, rating, review_count,
		delivery_time, description, active, sort_order
		FROM restaurants WHERE id = $1`

	listMenuSQL = `SELECT id, restaurant_id, name, description, base_price, category,
		image, popular, available, variations, add_ons,
		discount_price, discount_start, discount_end, discount_active
		FROM menu_items WHERE restaurant_id = $1 AND available = TRUE
		ORDER BY category, name`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
// Variations and add-ons are stored as JSONB on the menu item row.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListRestaurants returns active restaurants in display order.
func (r *CatalogRepository) ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	rows, err := r.pool.Query(ctx, listRestaurantsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}

	restaurants, err := pgx.CollectRows(rows, scanRestaurant)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}
	return restaurants, nil
}

// GetRestaurant returns one restaurant by ID.
// Returns catalog.ErrNotFound when the restaurant does not exist.
func (r *CatalogRepository) GetRestaurant(ctx context.Context, id string) (*catalog.Restaurant, error) {
	rows, err := r.pool.Query(ctx, getRestaurantSQL, id)
	if err != nil {
		return nil, fmt.Errorf("finding restaurant %q: %w", id, err)
	}

	restaurant, err := pgx.CollectExactlyOneRow(rows, scanRestaurant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("finding restaurant %q: %w", id, err)
	}
	return &restaurant, nil
}

// ListMenu returns the available menu items of a restaurant.
func (r *CatalogRepository) ListMenu(ctx context.Context, restaurantID string) ([]catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, listMenuSQL, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing menu for restaurant %q: %w", restaurantID, err)
	}

	items, err := pgx.CollectRows(rows, scanMenuItem)
	if err != nil {
		return nil, fmt.Errorf("listing menu for restaurant %q: %w", restaurantID, err)
	}
	return items, nil
}

func scanRestaurant(row pgx.CollectableRow) (catalog.Restaurant, error) {
	var (
		r           catalog.Restaurant
		reviewCount int32
		sortOrder   int32
	)
	err := row.Scan(
		&r.ID, &r.Name, &r.Type, &r.Image, &r.Logo, &r.Rating, &reviewCount,
		&r.DeliveryTime, &r.Description, &r.Active, &sortOrder,
	)
	r.ReviewCount = int(reviewCount)
	r.SortOrder = int(sortOrder)
	return r, err
}

func scanMenuItem(row pgx.CollectableRow) (catalog.MenuItem, error) {
	var (
		m              catalog.MenuItem
		basePrice      decimal.Decimal
		variationsJSON []byte
		addOnsJSON     []byte
		discountPrice  decimal.Decimal
		discountStart  *time.Time
		discountEnd    *time.Time
	)
	err := row.Scan(
		&m.ID, &m.RestaurantID, &m.Name, &m.Description, &basePrice, &m.Category,
		&m.Image, &m.Popular, &m.Available, &variationsJSON, &addOnsJSON,
		&discountPrice, &discountStart, &discountEnd, &m.DiscountActive,
	)
	if err != nil {
		return m, err
	}

	m.BasePrice = basePrice
	m.DiscountPrice = discountPrice
	m.DiscountStart = discountStart
	m.DiscountEnd = discountEnd

	if len(variationsJSON) > 0 {
		if err := json.Unmarshal(variationsJSON, &m.Variations); err != nil {
			return m, fmt.Errorf("decoding variations for item %q: %w", m.ID, err)
		}
	}
	if len(addOnsJSON) > 0 {
		if err := json.Unmarshal(addOnsJSON, &m.AddOns); err != nil {
			return m, fmt.Errorf("decoding add-ons for item %q: %w", m.ID, err)
		}
	}
	return m, nil
}
