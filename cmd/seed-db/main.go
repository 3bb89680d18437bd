// Command seed-db creates the schema and loads the storefront catalog and
// launch promo codes into PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/storage/postgres"
)

type menuItemJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Popular     bool            `json:"popular"`
	Variations  json.RawMessage `json:"variations"`
	AddOns      json.RawMessage `json:"add_ons"`
}

type restaurantJSON struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	Image        string         `json:"image"`
	Logo         string         `json:"logo"`
	Rating       float64        `json:"rating"`
	ReviewCount  int            `json:"review_count"`
	DeliveryTime string         `json:"delivery_time"`
	Description  string         `json:"description"`
	SortOrder    int            `json:"sort_order"`
	Menu         []menuItemJSON `json:"menu"`
}

type promoJSON struct {
	Code         string
	DiscountType string
	Value        decimal.Decimal
	ApplicableTo string
	MinOrder     decimal.Decimal
	MaxDiscount  decimal.Decimal
	Months       int
	UsageLimit   int
	NewUserOnly  bool
	Description  string
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedPromos(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promos")
	}

	return nil
}

const upsertRestaurantSQL = `INSERT INTO restaurants
	(id, name, type, image, logo, rating, review_count, delivery_time, description, sort_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, type = EXCLUDED.type, image = EXCLUDED.image,
		logo = EXCLUDED.logo, rating = EXCLUDED.rating,
		review_count = EXCLUDED.review_count, delivery_time = EXCLUDED.delivery_time,
		description = EXCLUDED.description, sort_order = EXCLUDED.sort_order`

const upsertMenuItemSQL = `INSERT INTO menu_items
	(id, restaurant_id, name, description, base_price, category, image, popular, variations, add_ons)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		restaurant_id = EXCLUDED.restaurant_id, name = EXCLUDED.name,
		description = EXCLUDED.description, base_price = EXCLUDED.base_price,
		category = EXCLUDED.category, image = EXCLUDED.image,
		popular = EXCLUDED.popular, variations = EXCLUDED.variations,
		add_ons = EXCLUDED.add_ons`

const upsertPromoSQL = `INSERT INTO promo_codes
	(code, discount_type, value, applicable_to, min_order, max_discount,
	start_date, end_date, usage_limit, new_user_only, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (code) DO UPDATE SET
		discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
		applicable_to = EXCLUDED.applicable_to, min_order = EXCLUDED.min_order,
		max_discount = EXCLUDED.max_discount, start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date, usage_limit = EXCLUDED.usage_limit,
		new_user_only = EXCLUDED.new_user_only, description = EXCLUDED.description`

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var restaurants []restaurantJSON
	if err := json.Unmarshal(data, &restaurants); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting restaurants", slog.Int("count", len(restaurants)))

	for _, r := range restaurants {
		if _, err := pool.Exec(ctx, upsertRestaurantSQL,
			r.ID, r.Name, r.Type, r.Image, r.Logo, r.Rating,
			r.ReviewCount, r.DeliveryTime, r.Description, r.SortOrder,
		); err != nil {
			return errors.Wrapf(err, "upsert restaurant %s", r.ID)
		}

		for _, m := range r.Menu {
			variations := m.Variations
			if len(variations) == 0 {
				variations = json.RawMessage("[]")
			}
			addOns := m.AddOns
			if len(addOns) == 0 {
				addOns = json.RawMessage("[]")
			}
			if _, err := pool.Exec(ctx, upsertMenuItemSQL,
				m.ID, r.ID, m.Name, m.Description, m.BasePrice,
				m.Category, m.Image, m.Popular, variations, addOns,
			); err != nil {
				return errors.Wrapf(err, "upsert menu item %s", m.ID)
			}
		}

		slog.Info("upserted restaurant",
			slog.String("id", r.ID),
			slog.String("name", r.Name),
			slog.Int("menu_items", len(r.Menu)))
	}

	return nil
}

func seedPromos(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding launch promo codes")

	now := time.Now()
	promos := []promoJSON{
		{
			Code:         "WELCOME50",
			DiscountType: "fixed_amount",
			Value:        decimal.NewFromInt(50),
			ApplicableTo: "delivery_fee",
			Months:       3,
			UsageLimit:   500,
			NewUserOnly:  true,
			Description:  "₱50 off delivery for first-time customers",
		},
		{
			Code:         "SAVE10",
			DiscountType: "percentage",
			Value:        decimal.NewFromInt(10),
			ApplicableTo: "food_items",
			MinOrder:     decimal.NewFromInt(300),
			MaxDiscount:  decimal.NewFromInt(100),
			Months:       1,
			Description:  "10% off food items, up to ₱100, min ₱300 order",
		},
	}

	for _, p := range promos {
		if _, err := pool.Exec(ctx, upsertPromoSQL,
			p.Code, p.DiscountType, p.Value, p.ApplicableTo,
			p.MinOrder, p.MaxDiscount,
			now, now.AddDate(0, p.Months, 0),
			p.UsageLimit, p.NewUserOnly, p.Description,
		); err != nil {
			return errors.Wrapf(err, "upsert promo %s", p.Code)
		}

		slog.Info("upserted promo", slog.String("code", p.Code), slog.String("description", p.Description))
	}

	return nil
}
