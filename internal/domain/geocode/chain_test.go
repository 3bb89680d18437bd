package geocode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RedDev17/E-Run-Calinan-Delivery/internal/domain/geo"
)

// stubProvider resolves from a fixed query -> coordinate table and records
// the queries it was asked.
type stubProvider struct {
	matches map[string]geo.Coordinate
	err     error
	queries []string
}

func (s *stubProvider) Resolve(_ context.Context, query string) (geo.Coordinate, bool, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return geo.Coordinate{}, false, s.err
	}
	coord, ok := s.matches[query]
	return coord, ok, nil
}

func testChainConfig() ChainConfig {
	return ChainConfig{
		LocalPlace:    "Calinan",
		City:          "Davao City",
		Country:       "Philippines",
		DistrictQuery: "Calinan District, Davao City",
		CityCenter:    geo.Coordinate{Lat: 7.2016, Lng: 125.4584},
		Blocklist:     []string{"Manila", "Quezon City", "Cebu", "Cagayan de Oro", "Zamboanga", "General Santos", "Tagum"},
		ShortQueryLen: 25,
	}
}

func TestChain_Resolve(t *testing.T) {
	ctx := context.Background()
	lg := zap.NewNop()
	want := geo.Coordinate{Lat: 7.19, Lng: 125.46}

	t.Run("fuzzy hit short-circuits", func(t *testing.T) {
		fuzzy := &stubProvider{matches: map[string]geo.Coordinate{"Wangan Road": want}}
		structured := &stubProvider{}
		chain := NewChain(fuzzy, structured, testChainConfig(), lg)

		got, err := chain.Resolve(ctx, "Wangan Road")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Empty(t, structured.queries, "later stages must not run after a hit")
	})

	t.Run("local place appended on fuzzy retry", func(t *testing.T) {
		fuzzy := &stubProvider{matches: map[string]geo.Coordinate{"Wangan Road, Calinan": want}}
		chain := NewChain(fuzzy, &stubProvider{}, testChainConfig(), lg)

		got, err := chain.Resolve(ctx, "Wangan Road")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, []string{"Wangan Road", "Wangan Road, Calinan"}, fuzzy.queries)
	})

	t.Run("no local retry when query already mentions place", func(t *testing.T) {
		fuzzy := &stubProvider{}
		structured := &stubProvider{matches: map[string]geo.Coordinate{"Sitio Wangan, calinan": want}}
		chain := NewChain(fuzzy, structured, testChainConfig(), lg)

		got, err := chain.Resolve(ctx, "Sitio Wangan, calinan")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, []string{"Sitio Wangan, calinan"}, fuzzy.queries)
	})

	t.Run("city and country appended on structured retry", func(t *testing.T) {
		structured := &stubProvider{matches: map[string]geo.Coordinate{
			"Bago Oshiro, Davao City, Philippines": want,
		}}
		chain := NewChain(&stubProvider{}, structured, testChainConfig(), lg)

		got, err := chain.Resolve(ctx, "Bago Oshiro")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("district center when query mentions local place", func(t *testing.T) {
		district := geo.Coordinate{Lat: 7.2, Lng: 125.45}
		structured := &stubProvider{matches: map[string]geo.Coordinate{
			"Calinan District, Davao City": district,
		}}
		chain := NewChain(&stubProvider{}, structured, testChainConfig(), lg)

		got, err := chain.Resolve(ctx, "somewhere near calinan proper that is long enough")
		require.NoError(t, err)
		assert.Equal(t, district, got)
	})

	t.Run("short query falls back to city center", func(t *testing.T) {
		chain := NewChain(&stubProvider{}, &stubProvider{}, testChainConfig(), lg)

		got, err := chain.Resolve(ctx, "purok 5 wangan")
		require.NoError(t, err)
		assert.Equal(t, testChainConfig().CityCenter, got)
	})

	t.Run("blocklisted city never falls back", func(t *testing.T) {
		chain := NewChain(&stubProvider{}, &stubProvider{}, testChainConfig(), lg)

		_, err := chain.Resolve(ctx, "Manila Street")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("long unknown query is not found", func(t *testing.T) {
		chain := NewChain(&stubProvider{}, &stubProvider{}, testChainConfig(), lg)

		_, err := chain.Resolve(ctx, "a very long address nowhere near anything recognizable at all")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("provider errors are treated as misses", func(t *testing.T) {
		fuzzy := &stubProvider{err: assert.AnError}
		structured := &stubProvider{err: assert.AnError}
		chain := NewChain(fuzzy, structured, testChainConfig(), lg)

		// Short query: chain still succeeds via the last resort.
		got, err := chain.Resolve(ctx, "wangan proper")
		require.NoError(t, err)
		assert.Equal(t, testChainConfig().CityCenter, got)
	})
}
