package telemetry

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Metrics holds the Prometheus instruments for evaluation cycles and dispatch.
type Metrics struct {
	registry *prometheus.Registry

	UsedPercent *prometheus.GaugeVec
	FreeBytes   *prometheus.GaugeVec
	Tier        *prometheus.GaugeVec
	Cycles      *prometheus.CounterVec
	CycleErrors *prometheus.CounterVec
	Attempts    *prometheus.CounterVec
	Outcomes    *prometheus.CounterVec
}

// NewMetrics creates and registers all instruments on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UsedPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dguard",
			Name:      "disk_used_percent",
			Help:      "Used capacity of the monitored path in percent.",
		}, []string{"path"}),
		FreeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dguard",
			Name:      "disk_free_bytes",
			Help:      "Free capacity of the monitored path in bytes.",
		}, []string{"path"}),
		Tier: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dguard",
			Name:      "severity_tier",
			Help:      "Current severity tier (0 normal .. 3 critical).",
		}, []string{"path"}),
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dguard",
			Name:      "cycles_total",
			Help:      "Completed evaluation cycles by tier.",
		}, []string{"path", "tier"}),
		CycleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dguard",
			Name:      "cycle_errors_total",
			Help:      "Aborted evaluation cycles by error kind.",
		}, []string{"path", "kind"}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dguard",
			Name:      "dispatch_attempts_total",
			Help:      "Delivery attempts by channel and result.",
		}, []string{"channel", "result"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dguard",
			Name:      "dispatch_outcomes_total",
			Help:      "Final dispatch outcomes by channel and status.",
		}, []string{"channel", "status"}),
	}

	m.registry.MustRegister(
		m.UsedPercent, m.FreeBytes, m.Tier,
		m.Cycles, m.CycleErrors, m.Attempts, m.Outcomes,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSample records the latest reading and tier for a path.
func (m *Metrics) ObserveSample(sample model.MetricSample, tier model.Tier) {
	m.UsedPercent.WithLabelValues(sample.Path).Set(sample.PercentUsed())
	m.FreeBytes.WithLabelValues(sample.Path).Set(float64(sample.FreeBytes))
	m.Tier.WithLabelValues(sample.Path).Set(float64(tier))
	m.Cycles.WithLabelValues(sample.Path, tier.String()).Inc()
}

// ObserveCycleError counts a cycle that aborted before producing a report.
func (m *Metrics) ObserveCycleError(path string, err error) {
	m.CycleErrors.WithLabelValues(path, errorKind(err)).Inc()
}

// ObserveAttempt implements alerts.AttemptObserver.
func (m *Metrics) ObserveAttempt(channel string, _ int, err error) {
	m.Attempts.WithLabelValues(channel, attemptResult(err)).Inc()
}

// ObserveOutcome implements alerts.AttemptObserver.
func (m *Metrics) ObserveOutcome(channel string, outcome model.Outcome) {
	m.Outcomes.WithLabelValues(channel, string(outcome.Status)).Inc()
}

func attemptResult(err error) string {
	var authErr *model.AuthenticationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &authErr):
		return "unauthenticated"
	default:
		return "transient"
	}
}

func errorKind(err error) string {
	switch {
	case model.IsConfigurationError(err):
		return "configuration"
	case model.IsSamplingError(err):
		return "sampling"
	case errors.Is(err, model.ErrCycleInFlight):
		return "in_flight"
	default:
		return "other"
	}
}
