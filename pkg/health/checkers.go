package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountProbe reports unhealthy when the goroutine count exceeds the
// threshold. Useful as a liveness probe to catch goroutine leaks.
func GoroutineCountProbe(threshold int) Probe {
	return func(_ context.Context) error {
		count := runtime.NumGoroutine()
		if count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}
