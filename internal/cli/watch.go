package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/disk-guardian/internal/server"
	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run evaluation cycles on an interval and serve status and metrics",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
	watchCmd.Flags().DurationP("interval", "i", 0, "Cycle interval (default from config)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		cfg.Monitor.Interval = interval
	}
	if cfg.Monitor.Interval <= 0 {
		return &model.ConfigurationError{Field: "monitor.interval", Reason: "must be positive"}
	}

	w, err := initMonitor(cfg)
	if err != nil {
		return err
	}
	defer w.Close()
	logger := w.logger

	apiServer := server.NewServer(w.monitor, w.journal, w.metrics.Handler(), logger)
	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("status server started", "listen", cfg.Server.Listen)
		fmt.Fprintf(os.Stderr, "Disk Guardian watching %v every %s, serving on %s\n",
			cfg.Monitor.Paths, cfg.Monitor.Interval, cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	loopErr := watchLoop(ctx, w, cfg.Monitor.Paths, cfg.Monitor.Interval, cfg.Storage.Keep, errCh)

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("watch stopped")
	return loopErr
}

// watchLoop runs a cycle immediately and then on every tick until ctx ends.
// Sampling and delivery failures are logged by the monitor and retried on the
// next tick.
func watchLoop(ctx context.Context, w *wiring, paths []string, interval time.Duration, keep int, errCh <-chan error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.monitor.RunAll(ctx, paths); err != nil && model.IsConfigurationError(err) {
			return err
		}
		prune(ctx, w, keep)

		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case <-ticker.C:
		}
	}
}

func prune(ctx context.Context, w *wiring, keep int) {
	if w.journal == nil || keep <= 0 {
		return
	}
	deleted, err := w.journal.Prune(ctx, keep)
	if err != nil {
		w.logger.Error("prune journal", "error", err)
		return
	}
	if deleted > 0 {
		w.logger.Debug("journal pruned", "deleted", deleted)
	}
}
