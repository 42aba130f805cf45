package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Throttle bounds the rate at which a PlanWorker dispatches solves, using a
// token-bucket limiter the way the toolbox throttles outbound API calls. It
// limits dispatches per second (with a burst); it does not count solves that
// are still running.
type Throttle struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewThrottle creates a Throttle allowing ratePerSecond dispatches per
// second, with a burst of burst.
func NewThrottle(ratePerSecond float64, burst int) *Throttle {
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until a dispatch slot is available or ctx is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	limiter := t.limiter
	t.mu.Unlock()
	return limiter.Wait(ctx)
}
