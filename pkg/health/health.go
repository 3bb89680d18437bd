// Package health provides Kubernetes-style liveness and readiness probes.
//
// Probes run periodically on a single background goroutine. A probe must fail
// three times in a row before it is reported unhealthy, and recovers after a
// single success, so transient blips do not flap the endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Probe reports nil when the checked component is healthy.
type Probe func(ctx context.Context) error

const failureThreshold = 3

// probeState tracks the latest outcome of one registered probe. All fields
// are guarded by Service.mu.
type probeState struct {
	name    string
	timeout time.Duration
	probe   Probe

	healthy  bool
	failures int
	lastErr  error
}

func (p *probeState) observe(err error) {
	p.lastErr = err
	if err != nil {
		p.failures++
		if p.failures >= failureThreshold {
			p.healthy = false
		}
		return
	}
	p.failures = 0
	p.healthy = true
}

// Service runs registered probes and serves the /livez and /readyz endpoints.
type Service struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*probeState
	readiness []*probeState
	cancel    context.CancelFunc
}

// New creates a Service. It starts not ready; call SetReady(true) once
// initialization completes.
func New() *Service {
	return &Service{}
}

// AddLiveness registers a liveness probe, checked to decide whether the
// process itself is functioning.
func (s *Service) AddLiveness(name string, timeout time.Duration, probe Probe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, &probeState{name: name, timeout: timeout, probe: probe, healthy: true})
}

// AddReadiness registers a readiness probe, checked to decide whether the
// service should receive traffic.
func (s *Service) AddReadiness(name string, timeout time.Duration, probe Probe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, &probeState{name: name, timeout: timeout, probe: probe, healthy: true})
}

// Start launches the background goroutine that runs every registered probe at
// the given interval. Register all probes before calling Start.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.loop(ctx, interval)
}

func (s *Service) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(ctx context.Context) {
	s.mu.Lock()
	probes := make([]*probeState, 0, len(s.liveness)+len(s.readiness))
	probes = append(probes, s.liveness...)
	probes = append(probes, s.readiness...)
	s.mu.Unlock()

	for _, p := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.probe(probeCtx)
		cancel()

		s.mu.Lock()
		p.observe(err)
		s.mu.Unlock()
	}
}

// SetReady flips the manual readiness flag. Called with true after startup
// and with false at the beginning of graceful shutdown.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the service is marked ready and every readiness
// probe is passing.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.readiness {
		if !p.healthy {
			return false
		}
	}
	return true
}

// Stop cancels the background probe goroutine. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 when all liveness probes pass, 503 with
// per-probe failure details otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := collectFailures(s.liveness)
	s.mu.Unlock()

	writeStatus(w, failures)
}

// ReadyEndpoint serves /readyz: 200 when the service is marked ready and all
// readiness probes pass, 503 with details otherwise.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := collectFailures(s.readiness)
	s.mu.Unlock()

	if !s.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// collectFailures must be called with Service.mu held.
func collectFailures(probes []*probeState) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		if p.healthy {
			continue
		}
		if p.lastErr != nil {
			failures[p.name] = p.lastErr.Error()
		} else {
			failures[p.name] = "probe is unhealthy"
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	status := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
