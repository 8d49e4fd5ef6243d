package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ogulcanaydogan/disk-guardian/internal/config"
	"github.com/ogulcanaydogan/disk-guardian/internal/telemetry"
	"github.com/ogulcanaydogan/disk-guardian/pkg/alerts"
	"github.com/ogulcanaydogan/disk-guardian/pkg/diagnosis"
	"github.com/ogulcanaydogan/disk-guardian/pkg/monitor"
	"github.com/ogulcanaydogan/disk-guardian/pkg/sampler"
	"github.com/ogulcanaydogan/disk-guardian/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dguard",
	Short: "Disk Guardian - disk capacity monitoring with graded alerts",
	Long: `Disk Guardian samples filesystem usage, grades it into severity tiers,
attaches remediation advice, and delivers an alert with bounded retries
whenever a path crosses the configured threshold.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.dguard/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initEngine builds the diagnosis engine, applying the table override if set.
func initEngine(cfg *config.Config) (*diagnosis.Engine, error) {
	if cfg.Diagnosis.Table == "" {
		return diagnosis.NewDefaultEngine(), nil
	}
	table, err := diagnosis.LoadTable(cfg.Diagnosis.Table)
	if err != nil {
		return nil, err
	}
	return diagnosis.NewEngine(table)
}

// initChannel creates the configured delivery channel.
func initChannel(cfg *config.Config) alerts.Channel {
	switch cfg.Alerts.Channel {
	case config.ChannelSlack:
		return alerts.NewSlackChannel(cfg.Alerts.Slack.APIURL, cfg.Alerts.Slack.Channel)
	default:
		return alerts.NewWebhookChannel(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret)
	}
}

// dispatcherOptions spaces channel calls when dispatch.min_interval is set.
func dispatcherOptions(cfg *config.Config) []alerts.DispatcherOption {
	if cfg.Dispatch.MinInterval <= 0 {
		return nil
	}
	return []alerts.DispatcherOption{
		alerts.WithLimiter(rate.NewLimiter(rate.Every(cfg.Dispatch.MinInterval), 1)),
	}
}

// initJournal opens the delivery journal, or returns nil when disabled.
func initJournal(cfg *config.Config) (storage.Journal, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// wiring holds everything a monitoring command needs.
type wiring struct {
	monitor *monitor.Monitor
	journal storage.Journal
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

func (w *wiring) Close() error {
	if w.journal == nil {
		return nil
	}
	return w.journal.Close()
}

// initMonitor validates the configuration and creates a fully wired monitor.
func initMonitor(cfg *config.Config) (*wiring, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	engine, err := initEngine(cfg)
	if err != nil {
		return nil, err
	}

	journal, err := initJournal(cfg)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewMetrics()
	opts := []monitor.Option{
		monitor.WithObserver(metrics),
		monitor.WithConcurrency(cfg.Monitor.Concurrency),
	}
	if journal != nil {
		opts = append(opts, monitor.WithJournal(journal))
	}

	m := monitor.NewMonitor(
		sampler.NewDiskSampler(),
		engine,
		initChannel(cfg),
		alerts.NewDispatcher(logger, metrics, dispatcherOptions(cfg)...),
		monitor.Settings{Thresholds: cfg.Thresholds, Policy: cfg.Policy()},
		logger,
		opts...,
	)

	return &wiring{monitor: m, journal: journal, metrics: metrics, logger: logger}, nil
}
