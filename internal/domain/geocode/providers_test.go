package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

func TestPhoton_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		want     geo.Coordinate
		wantOK   bool
		wantErr  bool
		wantQ    string
	}{
		{
			name: "accepts PH country code",
			body: `{"features":[
				{"geometry":{"coordinates":[125.46,7.19]},"properties":{"countrycode":"PH"}}
			]}`,
			status: http.StatusOK,
			want:   geo.Coordinate{Lat: 7.19, Lng: 125.46},
			wantOK: true,
		},
		{
			name: "skips foreign match, picks later PH match",
			body: `{"features":[
				{"geometry":{"coordinates":[100.5,13.7]},"properties":{"country":"Thailand","countrycode":"TH"}},
				{"geometry":{"coordinates":[125.5,7.2]},"properties":{"country":"Philippines"}}
			]}`,
			status: http.StatusOK,
			want:   geo.Coordinate{Lat: 7.2, Lng: 125.5},
			wantOK: true,
		},
		{
			name: "accepts untagged local city match",
			body: `{"features":[
				{"geometry":{"coordinates":[125.47,7.21]},"properties":{"city":"Davao City"}}
			]}`,
			status: http.StatusOK,
			want:   geo.Coordinate{Lat: 7.21, Lng: 125.47},
			wantOK: true,
		},
		{
			name: "rejects untagged foreign match",
			body: `{"features":[
				{"geometry":{"coordinates":[100.5,13.7]},"properties":{"city":"Bangkok"}}
			]}`,
			status: http.StatusOK,
			wantOK: false,
		},
		{
			name:   "empty feature list",
			body:   `{"features":[]}`,
			status: http.StatusOK,
			wantOK: false,
		},
		{
			name:    "server error",
			body:    `whoops`,
			status:  http.StatusBadGateway,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Wangan Road", r.URL.Query().Get("q"))
				assert.NotEmpty(t, r.URL.Query().Get("lat"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewPhoton(PhotonConfig{
				BaseURL:     srv.URL,
				Bias:        geo.Coordinate{Lat: 7.201, Lng: 125.458},
				CountryCode: "PH",
				Country:     "Philippines",
				City:        "Davao City",
				Region:      "Davao Region",
			}, srv.Client())

			got, ok, err := p.Resolve(context.Background(), "Wangan Road")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNominatim_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "ph", q.Get("countrycodes"))
		assert.Equal(t, "125.30,7.00,125.70,7.60", q.Get("viewbox"))
		assert.Equal(t, "1", q.Get("bounded"))
		assert.Equal(t, "erun-calinan-delivery", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"7.2016","lon":"125.4584","display_name":"Calinan, Davao City"}]`))
	}))
	defer srv.Close()

	n := NewNominatim(NominatimConfig{
		BaseURL:      srv.URL,
		CountryCodes: "ph",
		Viewbox:      "125.30,7.00,125.70,7.60",
		UserAgent:    "erun-calinan-delivery",
	}, srv.Client())

	got, ok, err := n.Resolve(context.Background(), "Calinan Public Market")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 7.2016, got.Lat, 1e-9)
	assert.InDelta(t, 125.4584, got.Lng, 1e-9)
}

func TestNominatim_Reverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "18", r.URL.Query().Get("zoom"))
		_, _ = w.Write([]byte(`{"lat":"7.2","lon":"125.45","display_name":"Wangan, Calinan, Davao City"}`))
	}))
	defer srv.Close()

	n := NewNominatim(NominatimConfig{BaseURL: srv.URL, CountryCodes: "ph"}, srv.Client())

	addr, err := n.Reverse(context.Background(), geo.Coordinate{Lat: 7.2, Lng: 125.45})
	require.NoError(t, err)
	assert.Equal(t, "Wangan, Calinan, Davao City", addr)
}
