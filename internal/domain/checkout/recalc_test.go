package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoQuoter struct{}

func (echoQuoter) Quote(_ context.Context, req QuoteRequest) (*Quote, error) {
	return &Quote{Within: true, Subtotal: req.Subtotal}, nil
}

func TestRecalculatorDebounce(t *testing.T) {
	ctx := context.Background()
	results := make(chan *Quote, 4)

	r := NewRecalculator(echoQuoter{}, 30*time.Millisecond, func(q *Quote) {
		results <- q
	}, zap.NewNop())
	defer r.Stop()

	// Rapid retriggers within the window; only the last request survives.
	r.Trigger(ctx, QuoteRequest{Address: "a", Subtotal: decimal.NewFromInt(1)})
	r.Trigger(ctx, QuoteRequest{Address: "ab", Subtotal: decimal.NewFromInt(2)})
	r.Trigger(ctx, QuoteRequest{Address: "abc", Subtotal: decimal.NewFromInt(3)})

	select {
	case q := <-results:
		assert.Equal(t, "3", q.Subtotal.String())
	case <-time.After(time.Second):
		t.Fatal("no quote delivered")
	}

	select {
	case q := <-results:
		t.Fatalf("unexpected extra quote for subtotal %s", q.Subtotal)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRecalculatorSkipNext(t *testing.T) {
	ctx := context.Background()
	results := make(chan *Quote, 2)

	r := NewRecalculator(echoQuoter{}, 10*time.Millisecond, func(q *Quote) {
		results <- q
	}, zap.NewNop())
	defer r.Stop()

	r.SkipNext()
	r.Trigger(ctx, QuoteRequest{Address: "programmatic rewrite"})

	select {
	case <-results:
		t.Fatal("suppressed trigger still delivered a quote")
	case <-time.After(100 * time.Millisecond):
	}

	// The guard is one-shot; the next trigger runs normally.
	r.Trigger(ctx, QuoteRequest{Address: "typed", Subtotal: decimal.NewFromInt(7)})
	select {
	case q := <-results:
		assert.Equal(t, "7", q.Subtotal.String())
	case <-time.After(time.Second):
		t.Fatal("no quote delivered after guard consumed")
	}
}

func TestRecalculatorStop(t *testing.T) {
	ctx := context.Background()
	results := make(chan *Quote, 1)

	r := NewRecalculator(echoQuoter{}, 10*time.Millisecond, func(q *Quote) {
		results <- q
	}, zap.NewNop())

	r.Trigger(ctx, QuoteRequest{Address: "a"})
	r.Stop()

	select {
	case <-results:
		t.Fatal("stopped recalculator delivered a quote")
	case <-time.After(100 * time.Millisecond):
	}

	// Triggers after Stop are ignored.
	r.Trigger(ctx, QuoteRequest{Address: "b"})
	select {
	case <-results:
		t.Fatal("trigger after stop delivered a quote")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRecalculatorDefaultDebounce(t *testing.T) {
	r := NewRecalculator(echoQuoter{}, 0, func(*Quote) {}, zap.NewNop())
	require.Equal(t, time.Second, r.debounce)
	r.Stop()
}
