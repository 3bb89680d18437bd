package geocode

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

// ChainConfig holds the place names and constants driving the fallback chain.
// All values are fixed per deployment and injected at construction.
type ChainConfig struct {
	// LocalPlace is the primary local place name ("Calinan"). Queries that
	// omit it get it appended in the retry stages.
	LocalPlace string
	// City is the wider city name ("Davao City").
	City string
	// Country is the country name appended to structured retries ("Philippines").
	Country string
	// DistrictQuery is the query used to resolve the district center when the
	// raw query mentions LocalPlace ("Calinan District, Davao City").
	DistrictQuery string
	// CityCenter is the coordinate returned by the last-resort stage.
	CityCenter geo.Coordinate
	// Blocklist lists well-known distant cities. A query mentioning any of
	// them must never fall back to the local city center.
	Blocklist []string
	// ShortQueryLen is the length below which a query is considered too vague
	// to have failed legitimately, making it eligible for the last resort.
	ShortQueryLen int
}

// Chain resolves addresses by trying progressively more generic queries
// against a fuzzy provider (Photon) and a structured provider (Nominatim).
//
// Stages run strictly in order: each broadens the query, so a later stage
// must only run once the previous one has produced nothing. Provider errors
// are logged and treated as "no result".
type Chain struct {
	fuzzy      Provider
	structured Provider
	cfg        ChainConfig
	lg         *zap.Logger
}

var _ AddressResolver = (*Chain)(nil)

// NewChain creates the resolver chain from its two providers.
func NewChain(fuzzy, structured Provider, cfg ChainConfig, lg *zap.Logger) *Chain {
	if cfg.ShortQueryLen <= 0 {
		cfg.ShortQueryLen = 25
	}
	return &Chain{fuzzy: fuzzy, structured: structured, cfg: cfg, lg: lg}
}

// Resolve walks the fallback chain and returns the first coordinate found.
// It returns ErrNotFound only when every stage is exhausted.
func (c *Chain) Resolve(ctx context.Context, query string) (geo.Coordinate, error) {
	query = strings.TrimSpace(query)
	lower := strings.ToLower(query)

	// Stage 1: fuzzy provider with the raw query.
	if coord, ok := c.try(ctx, c.fuzzy, query, "photon raw"); ok {
		return coord, nil
	}

	// Stage 2: fuzzy provider with the local place appended.
	if !strings.Contains(lower, strings.ToLower(c.cfg.LocalPlace)) {
		if coord, ok := c.try(ctx, c.fuzzy, query+", "+c.cfg.LocalPlace, "photon local"); ok {
			return coord, nil
		}
	}

	// Stage 3: structured provider with the raw query.
	if coord, ok := c.try(ctx, c.structured, query, "nominatim raw"); ok {
		return coord, nil
	}

	// Stage 4: structured provider with city and country appended.
	if !strings.Contains(query, c.cfg.City) && !strings.Contains(query, c.cfg.Country) {
		full := query + ", " + c.cfg.City + ", " + c.cfg.Country
		if coord, ok := c.try(ctx, c.structured, full, "nominatim full"); ok {
			return coord, nil
		}
	}

	// Stage 5: the query names the local place; resolve the district center.
	if strings.Contains(lower, strings.ToLower(c.cfg.LocalPlace)) {
		if coord, ok := c.try(ctx, c.structured, c.cfg.DistrictQuery, "nominatim district"); ok {
			return coord, nil
		}
	}

	// Stage 6: last resort. Short or explicitly local queries resolve to the
	// city center, unless they mention a known distant city.
	if c.lastResortEligible(lower) {
		c.lg.Debug("geocode last resort", zap.String("query", query))
		return c.cfg.CityCenter, nil
	}

	return geo.Coordinate{}, ErrNotFound
}

func (c *Chain) lastResortEligible(lower string) bool {
	for _, blocked := range c.cfg.Blocklist {
		if strings.Contains(lower, strings.ToLower(blocked)) {
			return false
		}
	}
	return len(lower) < c.cfg.ShortQueryLen ||
		strings.Contains(lower, strings.ToLower(c.cfg.LocalPlace)) ||
		strings.Contains(lower, strings.ToLower(c.cfg.City))
}

// try runs one provider query and normalizes failures to a miss.
func (c *Chain) try(ctx context.Context, p Provider, query, stage string) (geo.Coordinate, bool) {
	coord, ok, err := p.Resolve(ctx, query)
	if err != nil {
		c.lg.Debug("geocode stage failed",
			zap.String("stage", stage),
			zap.String("query", query),
			zap.Error(err),
		)
		return geo.Coordinate{}, false
	}
	return coord, ok
}
