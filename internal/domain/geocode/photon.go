package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

// PhotonConfig configures a Photon (komoot) geocoding client.
type PhotonConfig struct {
	// BaseURL is the API root, e.g. "https://photon.komoot.io".
	BaseURL string
	// Bias is the coordinate search results are biased towards.
	Bias geo.Coordinate
	// CountryCode is the ISO country code a result must belong to ("PH").
	CountryCode string
	// Country is the full country name matched against result properties.
	Country string
	// City and Region are local place names accepted even when the provider
	// omits country tags (Photon often misses them for local streets).
	City   string
	Region string
	// Limit is the number of candidates requested per query.
	Limit int
}

// Photon is a fuzzy, typo-tolerant geocoding provider. It is the first stage
// of the fallback chain because it copes best with misspelled barangay and
// street names.
type Photon struct {
	cfg    PhotonConfig
	client *http.Client
}

var _ Provider = (*Photon)(nil)

// NewPhoton creates a Photon client using the given HTTP client.
func NewPhoton(cfg PhotonConfig, client *http.Client) *Photon {
	if cfg.Limit <= 0 {
		cfg.Limit = 3
	}
	return &Photon{cfg: cfg, client: client}
}

type photonResponse struct {
	Features []photonFeature `json:"features"`
}

type photonFeature struct {
	Geometry struct {
		// GeoJSON ordering: [lng, lat].
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Country     string `json:"country"`
		CountryCode string `json:"countrycode"`
		City        string `json:"city"`
		State       string `json:"state"`
	} `json:"properties"`
}

// Resolve queries Photon biased towards the configured coordinate. A
// candidate is accepted when its country matches the configured country, or
// when its city/state matches the configured local place names.
func (p *Photon) Resolve(ctx context.Context, query string) (geo.Coordinate, bool, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("lat", fmt.Sprintf("%.3f", p.cfg.Bias.Lat))
	q.Set("lon", fmt.Sprintf("%.3f", p.cfg.Bias.Lng))
	q.Set("limit", fmt.Sprintf("%d", p.cfg.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/api/?"+q.Encode(), nil)
	if err != nil {
		return geo.Coordinate{}, false, errors.Wrap(err, "build photon request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return geo.Coordinate{}, false, errors.Wrap(err, "photon request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, false, errors.Errorf("photon status %d", resp.StatusCode)
	}

	var body photonResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geo.Coordinate{}, false, errors.Wrap(err, "decode photon response")
	}

	if len(body.Features) == 0 {
		return geo.Coordinate{}, false, nil
	}

	// Prefer an in-country match.
	for _, f := range body.Features {
		if strings.EqualFold(f.Properties.CountryCode, p.cfg.CountryCode) ||
			strings.EqualFold(f.Properties.Country, p.cfg.Country) {
			return featureCoordinate(f)
		}
	}

	// No country tag, but the top candidate looks local.
	first := body.Features[0]
	if strings.EqualFold(first.Properties.City, p.cfg.City) ||
		strings.EqualFold(first.Properties.State, p.cfg.Region) {
		return featureCoordinate(first)
	}

	return geo.Coordinate{}, false, nil
}

func featureCoordinate(f photonFeature) (geo.Coordinate, bool, error) {
	if len(f.Geometry.Coordinates) < 2 {
		return geo.Coordinate{}, false, errors.New("photon feature missing coordinates")
	}
	return geo.Coordinate{Lat: f.Geometry.Coordinates[1], Lng: f.Geometry.Coordinates[0]}, true, nil
}
