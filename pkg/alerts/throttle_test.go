package alerts_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ogulcanaydogan/disk-guardian/pkg/alerts"
	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

func TestWithLimiter_SpacesAttempts(t *testing.T) {
	ch := &scriptedChannel{results: []result{{status: http.StatusInternalServerError}}}
	d := alerts.NewDispatcher(quietLogger(), nil, alerts.WithLimiter(rate.NewLimiter(rate.Every(20*time.Millisecond), 1)))

	start := time.Now()
	out := d.Dispatch(context.Background(), "msg", ch, policy(3))

	assert.Equal(t, 3, ch.Calls())
	assert.Equal(t, model.StatusExhaustedRetries, out.Status)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestWithLimiter_IntervalLongerThanTimeout(t *testing.T) {
	ch := &scriptedChannel{results: []result{
		{status: http.StatusServiceUnavailable},
		{status: http.StatusOK},
	}}
	d := alerts.NewDispatcher(quietLogger(), nil, alerts.WithLimiter(rate.NewLimiter(rate.Every(200*time.Millisecond), 1)))

	p := policy(3)
	p.Timeout = 50 * time.Millisecond
	out := d.Dispatch(context.Background(), "msg", ch, p)

	assert.Equal(t, model.StatusDelivered, out.Status)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 2, ch.Calls(), "every counted attempt reaches the channel")
}

func TestWithLimiter_ContextEndsWhileWaiting(t *testing.T) {
	ch := &scriptedChannel{results: []result{{status: http.StatusOK}}}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, limiter.Allow())
	d := alerts.NewDispatcher(quietLogger(), nil, alerts.WithLimiter(limiter))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out := d.Dispatch(ctx, "msg", ch, policy(3))
	assert.Equal(t, model.StatusExhaustedRetries, out.Status)
	assert.Equal(t, model.ReasonCanceled, out.Reason)
	assert.Equal(t, 0, out.Attempts)
	assert.Equal(t, 0, ch.Calls())
}
