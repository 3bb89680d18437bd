// Package route computes driving distance between two coordinates using an
// OSRM-compatible routing service, falling back to a buffered straight-line
// estimate when routing is unavailable.
package route

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

// Result holds the outcome of a single distance resolution.
type Result struct {
	// DistanceKm is rounded to one decimal place.
	DistanceKm float64
	// DurationMin is the travel time in whole minutes. Zero when Estimated.
	DurationMin int
	// Polyline is the route geometry in lat/lng order, ready for map
	// consumers. Nil when Estimated.
	Polyline []geo.Coordinate
	// Estimated reports that routing was unavailable and DistanceKm is a
	// buffered haversine estimate.
	Estimated bool
}

// Resolver requests driving routes from an OSRM service.
type Resolver struct {
	baseURL string
	client  *http.Client
	lg      *zap.Logger
}

// NewResolver creates a Resolver against the given OSRM base URL, e.g.
// "https://router.project-osrm.org".
func NewResolver(baseURL string, client *http.Client, lg *zap.Logger) *Resolver {
	return &Resolver{baseURL: baseURL, client: client, lg: lg}
}

type osrmResponse struct {
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
	} `json:"geometry"`
}

// Route resolves the driving route from origin to destination. OSRM is asked
// for alternatives and the fastest one (lowest duration) wins, even when a
// slower alternative is shorter. Any failure degrades to the haversine
// estimate; Route never returns an error for routing unavailability.
func (r *Resolver) Route(ctx context.Context, origin, dest geo.Coordinate) Result {
	res, err := r.query(ctx, origin, dest)
	if err != nil {
		r.lg.Debug("routing unavailable, using haversine estimate", zap.Error(err))
		return Estimate(origin, dest)
	}
	return res
}

func (r *Resolver) query(ctx context.Context, origin, dest geo.Coordinate) (Result, error) {
	url := fmt.Sprintf(
		"%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson&alternatives=true&steps=true",
		r.baseURL, origin.Lng, origin.Lat, dest.Lng, dest.Lat,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, errors.Wrap(err, "build osrm request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, errors.Wrap(err, "osrm request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Result{}, errors.Errorf("osrm status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, errors.Wrap(err, "decode osrm response")
	}
	if len(body.Routes) == 0 {
		return Result{}, errors.New("osrm returned no routes")
	}

	best := body.Routes[0]
	for _, alt := range body.Routes[1:] {
		if alt.Duration < best.Duration {
			best = alt
		}
	}

	// OSRM geometry is [lng, lat]; map consumers want [lat, lng].
	polyline := make([]geo.Coordinate, 0, len(best.Geometry.Coordinates))
	for _, c := range best.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		polyline = append(polyline, geo.Coordinate{Lat: c[1], Lng: c[0]})
	}

	return Result{
		DistanceKm:  geo.Round1(best.Distance / 1000),
		DurationMin: int(math.Round(best.Duration / 60)),
		Polyline:    polyline,
	}, nil
}

// Estimate returns the buffered haversine distance as a Result with no
// duration or polyline.
func Estimate(origin, dest geo.Coordinate) Result {
	return Result{
		DistanceKm: geo.Round1(geo.RoadDistance(origin, dest)),
		Estimated:  true,
	}
}
