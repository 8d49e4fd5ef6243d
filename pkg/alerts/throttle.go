package alerts

import (
	"context"

	"golang.org/x/time/rate"
)

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLimiter spaces channel calls according to limiter. The wait happens on
// the dispatch context before an attempt's timeout starts, so it never eats
// into the time allowed for the call itself.
func WithLimiter(limiter *rate.Limiter) DispatcherOption {
	return func(d *Dispatcher) { d.limiter = limiter }
}

// pace blocks until the next call is allowed or ctx ends.
func (d *Dispatcher) pace(ctx context.Context) error {
	if d.limiter == nil {
		return ctx.Err()
	}
	return d.limiter.Wait(ctx)
}
