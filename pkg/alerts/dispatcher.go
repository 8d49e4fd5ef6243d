package alerts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Dispatcher delivers a message with bounded, immediate retries.
type Dispatcher struct {
	logger   *slog.Logger
	observer AttemptObserver
	limiter  *rate.Limiter
}

// NewDispatcher creates a dispatcher. observer may be nil.
func NewDispatcher(logger *slog.Logger, observer AttemptObserver, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{logger: logger, observer: observer}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends message over channel, making at most policy.MaxAttempts
// calls. Failures are returned in the outcome, never as an error.
//
// A missing or malformed credential fails before any call is made. A
// rejected credential (401/403) ends the dispatch without further attempts.
// Cancellation of ctx is honoured before every attempt, including the first.
func (d *Dispatcher) Dispatch(ctx context.Context, message string, channel Channel, policy model.DispatchPolicy) model.Outcome {
	if !model.WellFormedCredential(policy.Credential) {
		d.logger.Error("dispatch refused",
			"channel", channel.Name(),
			"error", &model.AuthenticationError{},
		)
		return d.finish(channel, model.Outcome{
			Status: model.StatusExhaustedRetries,
			Reason: model.ReasonUnauthenticated,
		})
	}

	maxAttempts := max(policy.MaxAttempts, 1)
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := d.pace(ctx); err != nil {
			return d.finish(channel, model.Outcome{
				Status:   model.StatusExhaustedRetries,
				Reason:   model.ReasonCanceled,
				Attempts: attempt - 1,
			})
		}

		err := d.attempt(ctx, message, channel, policy, attempt)
		if d.observer != nil {
			d.observer.ObserveAttempt(channel.Name(), attempt, err)
		}
		if err == nil {
			d.logger.Info("alert delivered", "channel", channel.Name(), "attempt", attempt)
			return d.finish(channel, model.Outcome{Status: model.StatusDelivered, Attempts: attempt})
		}

		d.logger.Warn("delivery attempt failed",
			"channel", channel.Name(),
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)

		var authErr *model.AuthenticationError
		if errors.As(err, &authErr) {
			return d.finish(channel, model.Outcome{
				Status:   model.StatusExhaustedRetries,
				Reason:   model.ReasonUnauthenticated,
				Attempts: attempt,
			})
		}
		lastErr = err
	}

	return d.finish(channel, model.Outcome{
		Status:   model.StatusExhaustedRetries,
		Reason:   lastErr.Error(),
		Attempts: maxAttempts,
	})
}

// attempt performs one bounded call and classifies the result.
func (d *Dispatcher) attempt(ctx context.Context, message string, channel Channel, policy model.DispatchPolicy, n int) error {
	attemptCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
	defer cancel()

	status, body, err := channel.Send(attemptCtx, message, policy.Credential)
	if err != nil {
		return &model.TransientDeliveryError{Attempt: n, Err: err}
	}
	if attemptCtx.Err() != nil {
		return &model.TransientDeliveryError{Attempt: n, Err: attemptCtx.Err()}
	}

	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &model.AuthenticationError{Attempt: n, StatusCode: status}
	default:
		d.logger.Debug("channel rejected message", "channel", channel.Name(), "status", status, "body", body)
		return &model.TransientDeliveryError{Attempt: n, StatusCode: status}
	}
}

func (d *Dispatcher) finish(channel Channel, outcome model.Outcome) model.Outcome {
	if outcome.Failed() {
		d.logger.Error("alert not delivered",
			"channel", channel.Name(),
			"reason", outcome.Reason,
			"attempts", outcome.Attempts,
		)
	}
	if d.observer != nil {
		d.observer.ObserveOutcome(channel.Name(), outcome)
	}
	return outcome
}
