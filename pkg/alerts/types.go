package alerts

import (
	"context"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Channel delivers a formatted report to an external endpoint.
type Channel interface {
	// Name returns the channel identifier.
	Name() string

	// Send makes exactly one delivery call and returns the endpoint's status
	// code and body. A non-nil error means the call did not complete.
	// Implementations must honour ctx and be safe for concurrent use.
	Send(ctx context.Context, message, credential string) (status int, body string, err error)
}

// AttemptObserver is told about every attempt a dispatcher makes.
type AttemptObserver interface {
	ObserveAttempt(channel string, attempt int, err error)
	ObserveOutcome(channel string, outcome model.Outcome)
}
