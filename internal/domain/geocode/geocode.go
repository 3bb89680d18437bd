// Package geocode resolves free-text delivery addresses to coordinates using
// an ordered chain of external providers.
//
// Customer-typed addresses are noisy: typos, missing city names, local
// landmark names. No single provider has an acceptable hit rate, so
// resolution walks a fallback chain where each stage is strictly more
// permissive than the last. Provider failures are treated the same as "no
// result" and never abort the chain.
package geocode

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

// ErrNotFound is returned when every stage of the fallback chain is exhausted
// without producing a coordinate.
var ErrNotFound = errors.New("address not found")

// Provider resolves a free-text query to a coordinate. The boolean result
// reports whether a match was found; an error indicates a transport or
// decoding failure, which callers treat as "no match".
type Provider interface {
	Resolve(ctx context.Context, query string) (geo.Coordinate, bool, error)
}

// AddressResolver is the full-chain contract consumed by the delivery-area
// gate and the checkout orchestrator.
type AddressResolver interface {
	Resolve(ctx context.Context, query string) (geo.Coordinate, error)
}
