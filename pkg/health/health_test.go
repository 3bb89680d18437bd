package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeThresholds(t *testing.T) {
	p := &probeState{name: "db", healthy: true}
	fail := errors.New("down")

	// Two failures are tolerated.
	p.observe(fail)
	p.observe(fail)
	assert.True(t, p.healthy)

	// The third marks the probe unhealthy.
	p.observe(fail)
	assert.False(t, p.healthy)
	assert.Equal(t, fail, p.lastErr)

	// One success recovers.
	p.observe(nil)
	assert.True(t, p.healthy)
	assert.Zero(t, p.failures)
}

func TestServiceReadiness(t *testing.T) {
	s := New()
	assert.False(t, s.IsReady(), "fresh service must not be ready")

	s.SetReady(true)
	assert.True(t, s.IsReady())

	s.SetReady(false)
	assert.False(t, s.IsReady())
}

func TestServiceReadinessProbeFailure(t *testing.T) {
	s := New()
	s.AddReadiness("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	s.SetReady(true)

	// Probe starts healthy; run it past the failure threshold.
	for range failureThreshold {
		s.runAll(context.Background())
	}
	assert.False(t, s.IsReady())
}

func TestEndpoints(t *testing.T) {
	t.Run("live ok", func(t *testing.T) {
		s := New()
		s.AddLiveness("noop", time.Second, func(context.Context) error { return nil })
		s.runAll(context.Background())

		rec := httptest.NewRecorder()
		s.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp statusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
	})

	t.Run("live unhealthy", func(t *testing.T) {
		s := New()
		s.AddLiveness("leak", time.Second, func(context.Context) error {
			return errors.New("too many goroutines")
		})
		for range failureThreshold {
			s.runAll(context.Background())
		}

		rec := httptest.NewRecorder()
		s.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp statusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Contains(t, resp.Checks, "leak")
	})

	t.Run("ready before SetReady", func(t *testing.T) {
		s := New()

		rec := httptest.NewRecorder()
		s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("ready after SetReady", func(t *testing.T) {
		s := New()
		s.SetReady(true)

		rec := httptest.NewRecorder()
		s.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestStartStop(t *testing.T) {
	s := New()

	ran := make(chan struct{}, 8)
	s.AddReadiness("probe", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start(context.Background(), 10*time.Millisecond)
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("probe never ran")
	}

	s.Stop()
	s.Stop() // idempotent
}

func TestGoroutineCountProbe(t *testing.T) {
	require.NoError(t, GoroutineCountProbe(1_000_000)(context.Background()))
	require.Error(t, GoroutineCountProbe(0)(context.Background()))
}
