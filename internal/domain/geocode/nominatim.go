package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

// NominatimConfig configures a Nominatim (OpenStreetMap) geocoding client.
type NominatimConfig struct {
	// BaseURL is the API root, e.g. "https://nominatim.openstreetmap.org".
	BaseURL string
	// CountryCodes restricts search to the given comma-separated codes ("ph").
	CountryCodes string
	// Viewbox is the bounding box results are restricted to, in Nominatim's
	// "min_lon,min_lat,max_lon,max_lat" format.
	Viewbox string
	// UserAgent is sent with every request, as required by the Nominatim
	// usage policy.
	UserAgent string
}

// Nominatim is a structured-address geocoding provider. It handles complete
// addresses better than Photon but is strict about spelling, so it runs
// later in the fallback chain.
type Nominatim struct {
	cfg    NominatimConfig
	client *http.Client
}

var _ Provider = (*Nominatim)(nil)

// NewNominatim creates a Nominatim client using the given HTTP client.
func NewNominatim(cfg NominatimConfig, client *http.Client) *Nominatim {
	return &Nominatim{cfg: cfg, client: client}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve searches Nominatim restricted to the configured country and
// bounding box and returns the top match.
func (n *Nominatim) Resolve(ctx context.Context, query string) (geo.Coordinate, bool, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", "1")
	q.Set("countrycodes", n.cfg.CountryCodes)
	if n.cfg.Viewbox != "" {
		q.Set("viewbox", n.cfg.Viewbox)
		q.Set("bounded", "1")
	}

	var results []nominatimResult
	if err := n.get(ctx, "/search?"+q.Encode(), &results); err != nil {
		return geo.Coordinate{}, false, err
	}
	if len(results) == 0 {
		return geo.Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Coordinate{}, false, errors.Wrap(err, "parse nominatim lat")
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Coordinate{}, false, errors.Wrap(err, "parse nominatim lon")
	}

	return geo.Coordinate{Lat: lat, Lng: lng}, true, nil
}

// Reverse resolves a coordinate back to a display address. Used when the
// customer drags the map pin and the address field must follow.
func (n *Nominatim) Reverse(ctx context.Context, coord geo.Coordinate) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%f", coord.Lat))
	q.Set("lon", fmt.Sprintf("%f", coord.Lng))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	var result nominatimResult
	if err := n.get(ctx, "/reverse?"+q.Encode(), &result); err != nil {
		return "", err
	}
	if result.DisplayName == "" {
		return "", ErrNotFound
	}
	return result.DisplayName, nil
}

func (n *Nominatim) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.cfg.BaseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "build nominatim request")
	}
	if n.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", n.cfg.UserAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "nominatim request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("nominatim status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode nominatim response")
	}
	return nil
}
