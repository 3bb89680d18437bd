package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Quoter produces a quote for a request. Satisfied by *Service.
type Quoter interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

// Recalculator debounces quote recomputation while the customer is still
// typing an address. Each Trigger resets the timer; only the quote for the
// latest request is ever delivered, stale in-flight computations are
// canceled and dropped.
type Recalculator struct {
	quoter   Quoter
	debounce time.Duration
	deliver  func(*Quote)
	lg       *zap.Logger

	mu       sync.Mutex
	timer    *time.Timer
	cancel   context.CancelFunc
	gen      uint64
	skipNext bool
	stopped  bool
}

// NewRecalculator builds a recalculator delivering results through the given
// callback. A non-positive debounce falls back to one second.
func NewRecalculator(quoter Quoter, debounce time.Duration, deliver func(*Quote), lg *zap.Logger) *Recalculator {
	if debounce <= 0 {
		debounce = time.Second
	}
	return &Recalculator{
		quoter:   quoter,
		debounce: debounce,
		deliver:  deliver,
		lg:       lg,
	}
}

// Trigger schedules a recomputation for req after the debounce window. A
// subsequent Trigger within the window replaces the pending request.
func (r *Recalculator) Trigger(ctx context.Context, req QuoteRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	if r.skipNext {
		r.skipNext = false
		return
	}

	r.gen++
	gen := r.gen

	// Abort the previous cycle, its result would be stale anyway.
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.timer != nil {
		r.timer.Stop()
	}

	r.timer = time.AfterFunc(r.debounce, func() {
		r.run(ctx, gen, req)
	})
}

// SkipNext suppresses the next Trigger call. Used when the address field is
// rewritten programmatically and the quote is already known.
func (r *Recalculator) SkipNext() {
	r.mu.Lock()
	r.skipNext = true
	r.mu.Unlock()
}

// Stop cancels any pending or in-flight recomputation. The recalculator must
// not be reused after Stop.
func (r *Recalculator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Recalculator) run(parent context.Context, gen uint64, req QuoteRequest) {
	r.mu.Lock()
	if r.stopped || gen != r.gen {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.mu.Unlock()

	quote, err := r.quoter.Quote(ctx, req)

	r.mu.Lock()
	current := !r.stopped && gen == r.gen
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	if !current {
		return
	}
	if err != nil {
		r.lg.Warn("quote recalculation failed", zap.Error(err))
		return
	}
	r.deliver(quote)
}
