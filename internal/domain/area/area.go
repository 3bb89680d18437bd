// Package area decides whether a delivery address falls inside the service
// radius around the delivery center.
package area

import (
	"context"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geocode"
)

// Result is the outcome of an area check. A geocoding failure is reported
// through Message with Within=false; it is a business outcome, not an error.
type Result struct {
	Within     bool
	DistanceKm float64
	Message    string
}

// Gate checks addresses against a fixed center and maximum radius.
type Gate struct {
	resolver    geocode.AddressResolver
	center      geo.Coordinate
	maxRadiusKm float64
}

// NewGate creates a Gate. The center and radius are deployment configuration,
// injected rather than read from package state.
func NewGate(resolver geocode.AddressResolver, center geo.Coordinate, maxRadiusKm float64) *Gate {
	return &Gate{resolver: resolver, center: center, maxRadiusKm: maxRadiusKm}
}

// Check geocodes the address and reports whether it lies within the service
// radius. An unresolvable address is conservatively outside the area.
func (g *Gate) Check(ctx context.Context, address string) Result {
	coord, err := g.resolver.Resolve(ctx, address)
	if err != nil {
		return Result{Within: false, Message: "Could not find the address location."}
	}
	return g.CheckCoordinate(coord)
}

// CheckCoordinate reports whether an already-resolved coordinate lies within
// the service radius. The distance is the buffered road estimate, matching
// what the fee calculation would use.
func (g *Gate) CheckCoordinate(coord geo.Coordinate) Result {
	dist := geo.RoadDistance(g.center, coord)
	return Result{
		Within:     dist <= g.maxRadiusKm,
		DistanceKm: geo.Round1(dist),
	}
}

// MaxRadiusKm returns the configured service radius.
func (g *Gate) MaxRadiusKm() float64 {
	return g.maxRadiusKm
}

// Center returns the configured delivery-center coordinate.
func (g *Gate) Center() geo.Coordinate {
	return g.center
}
