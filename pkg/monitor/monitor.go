package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ogulcanaydogan/disk-guardian/pkg/alerts"
	"github.com/ogulcanaydogan/disk-guardian/pkg/diagnosis"
	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
	"github.com/ogulcanaydogan/disk-guardian/pkg/report"
	"github.com/ogulcanaydogan/disk-guardian/pkg/sampler"
	"github.com/ogulcanaydogan/disk-guardian/pkg/severity"
	"github.com/ogulcanaydogan/disk-guardian/pkg/storage"
)

// DefaultConcurrency is the number of paths RunAll evaluates at once.
const DefaultConcurrency = 4

// Settings are the injected parameters of every cycle.
type Settings struct {
	Thresholds model.Thresholds
	Policy     model.DispatchPolicy
}

// Validate checks thresholds and dispatch bounds.
func (s Settings) Validate() error {
	if err := s.Thresholds.Validate(); err != nil {
		return err
	}
	return s.Policy.Validate()
}

// CycleObserver receives per-cycle measurements.
type CycleObserver interface {
	ObserveSample(sample model.MetricSample, tier model.Tier)
	ObserveCycleError(path string, err error)
}

// CycleResult is the output of one evaluation cycle.
type CycleResult struct {
	Sample    model.MetricSample    `json:"sample"`
	Percent   float64               `json:"percent_used"`
	Tier      model.Tier            `json:"tier"`
	Diagnosis model.DiagnosisReport `json:"diagnosis"`
	Report    string                `json:"report"`
	Alerted   bool                  `json:"alerted"`
	Outcome   model.Outcome         `json:"outcome"`
	CheckedAt time.Time             `json:"checked_at"`
}

// Monitor runs sample → classify → diagnose → format → dispatch cycles.
type Monitor struct {
	sampler    sampler.Sampler
	engine     *diagnosis.Engine
	channel    alerts.Channel
	dispatcher *alerts.Dispatcher
	settings   Settings
	journal    storage.Journal
	observer   CycleObserver
	logger     *slog.Logger
	now        func() time.Time
	limit      int

	mu       sync.Mutex
	inflight map[string]struct{}
	last     map[string]CycleResult
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithJournal records every dispatch outcome.
func WithJournal(j storage.Journal) Option {
	return func(m *Monitor) { m.journal = j }
}

// WithObserver reports samples and cycle errors.
func WithObserver(o CycleObserver) Option {
	return func(m *Monitor) { m.observer = o }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithConcurrency caps how many cycles RunAll evaluates at once. Values below
// one remove the cap.
func WithConcurrency(n int) Option {
	return func(m *Monitor) { m.limit = n }
}

// NewMonitor creates a monitor with the given dependencies.
func NewMonitor(s sampler.Sampler, engine *diagnosis.Engine, channel alerts.Channel, dispatcher *alerts.Dispatcher, settings Settings, logger *slog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		sampler:    s,
		engine:     engine,
		channel:    channel,
		dispatcher: dispatcher,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
		limit:      DefaultConcurrency,
		inflight:   make(map[string]struct{}),
		last:       make(map[string]CycleResult),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunCycle evaluates one path. Configuration and sampling problems abort the
// cycle with an error; delivery problems are reported in the result's Outcome.
func (m *Monitor) RunCycle(ctx context.Context, path string) (*CycleResult, error) {
	result, err := m.runCycle(ctx, path)
	if err != nil {
		m.logger.Error("cycle aborted", "path", path, "error", err)
		if m.observer != nil {
			m.observer.ObserveCycleError(path, err)
		}
		return nil, err
	}
	return result, nil
}

func (m *Monitor) runCycle(ctx context.Context, path string) (*CycleResult, error) {
	if err := m.settings.Validate(); err != nil {
		return nil, err
	}
	if m.channel == nil {
		return nil, &model.ConfigurationError{Field: "alerts.channel", Reason: "no channel configured"}
	}

	if !m.acquire(path) {
		return nil, fmt.Errorf("%s: %w", path, model.ErrCycleInFlight)
	}
	defer m.release(path)

	sample, err := m.sampler.Sample(ctx, path)
	if err != nil {
		return nil, err
	}

	th := m.settings.Thresholds
	pct := sample.PercentUsed()
	tier := severity.Classify(pct, severity.FromThresholds(th))
	diag := m.engine.Diagnose(tier, sample, th.LowSpaceFloorGB)
	checkedAt := m.now().UTC()

	result := &CycleResult{
		Sample:    sample,
		Percent:   pct,
		Tier:      tier,
		Diagnosis: diag,
		Report:    report.Format(sample, tier, diag, checkedAt),
		Outcome:   model.Outcome{Status: model.StatusSkipped},
		CheckedAt: checkedAt,
	}

	if m.observer != nil {
		m.observer.ObserveSample(sample, tier)
	}

	m.logger.Info("disk sampled",
		"path", path,
		"pct", pct,
		"tier", tier.String(),
		"free_bytes", sample.FreeBytes,
		"low_space", diag.LowSpaceWarning != "",
	)

	if pct >= th.AlertPercent || diag.LowSpaceWarning != "" {
		result.Alerted = true
		m.logger.Warn("disk threshold crossed", "path", path, "tier", tier.String(), "pct", pct)
		result.Outcome = m.dispatcher.Dispatch(ctx, result.Report, m.channel, m.settings.Policy)
		m.record(ctx, result)
	}

	m.mu.Lock()
	m.last[path] = *result
	m.mu.Unlock()

	return result, nil
}

// RunAll evaluates paths concurrently. Repeated paths are evaluated once and
// share a result. Results are returned in path order; a nil entry means that
// path's cycle aborted, and its error is joined into the returned error.
func (m *Monitor) RunAll(ctx context.Context, paths []string) ([]*CycleResult, error) {
	index := make(map[string]int, len(paths))
	var distinct []string
	for _, path := range paths {
		if _, ok := index[path]; !ok {
			index[path] = len(distinct)
			distinct = append(distinct, path)
		}
	}

	cycles := make([]*CycleResult, len(distinct))
	errs := make([]error, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	if m.limit > 0 {
		g.SetLimit(m.limit)
	}
	for i, path := range distinct {
		g.Go(func() error {
			cycles[i], errs[i] = m.RunCycle(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]*CycleResult, len(paths))
	for i, path := range paths {
		results[i] = cycles[index[path]]
	}
	return results, errors.Join(errs...)
}

// Last returns the most recent completed cycle per path.
func (m *Monitor) Last() map[string]CycleResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]CycleResult, len(m.last))
	for k, v := range m.last {
		out[k] = v
	}
	return out
}

// Channel returns the name of the delivery channel.
func (m *Monitor) Channel() string {
	if m.channel == nil {
		return ""
	}
	return m.channel.Name()
}

func (m *Monitor) acquire(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[path]; busy {
		return false
	}
	m.inflight[path] = struct{}{}
	return true
}

func (m *Monitor) release(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, path)
}

func (m *Monitor) record(ctx context.Context, result *CycleResult) {
	if m.journal == nil {
		return
	}
	entry := &model.JournalEntry{
		Path:      result.Sample.Path,
		Tier:      result.Tier,
		Channel:   m.channel.Name(),
		Status:    result.Outcome.Status,
		Reason:    result.Outcome.Reason,
		Attempts:  result.Outcome.Attempts,
		CreatedAt: result.CheckedAt,
	}
	// A canceled cycle still gets its audit entry.
	if err := m.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		m.logger.Error("journal outcome", "path", entry.Path, "error", err)
	}
}
