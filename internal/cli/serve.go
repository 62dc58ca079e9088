package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ptgboard/internal/capture"
	"ptgboard/internal/config"
	appLog "ptgboard/internal/log"
	"ptgboard/internal/refresh"
	"ptgboard/internal/web"
)

type serveOptions struct {
	listen  string
	preview bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh the schedule periodically and serve the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts.Config, opts)
		},
	}
	cmd.Flags().StringVar(&opts.listen, "listen", "", "HTTP listen address (overrides config if set)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "capture /preview.png after every refresh")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config, opts *serveOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	if opts.listen != "" {
		cfg.Listen = opts.listen
	}

	appLog.Info("effective config",
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"refresh", cfg.RefreshCron,
		"grid_mode", cfg.GridMode,
		"day_grace", cfg.DayGrace,
		"event_start", cfg.EventStart,
		"preview", opts.preview,
	)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	var onUpdate func(*refresh.Snapshot)
	if opts.preview {
		onUpdate = previewCapturer(ctx, cfg)
	}
	refresher, err := newRefresher(cfg, onUpdate)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           web.NewServer(cfg, refresher).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// The board answers 503 until the first refresh succeeds.
	if _, err := refresher.RefreshOnce(ctx); err != nil {
		appLog.Warn("initial refresh failed; retrying on schedule", "err", err)
	}
	if err := refresher.Start(ctx, cfg.RefreshCron); err != nil {
		cancel()
		_ = srv.Close()
		return err
	}

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			refresher.Stop(context.Background())
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	refresher.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server forced to shutdown", err)
		return err
	}
	appLog.Info("ptgboard exiting")
	return nil
}

// previewCapturer returns a snapshot hook that screenshots the board in the
// background. Captures do not overlap; a refresh landing while one is in
// flight is skipped.
func previewCapturer(ctx context.Context, cfg *config.Config) func(*refresh.Snapshot) {
	var busy atomic.Bool
	return func(*refresh.Snapshot) {
		if !busy.CompareAndSwap(false, true) {
			appLog.Debug("preview capture already running; skipped")
			return
		}
		go func() {
			defer busy.Store(false)
			err := capture.CapturePage(ctx, capture.Options{
				URL:        localURL(cfg.Listen),
				OutputPath: cfg.Capture.Output,
				Width:      cfg.Capture.Width,
				Height:     cfg.Capture.Height,
			})
			if err != nil {
				appLog.Error("preview capture failed", err, "output", cfg.Capture.Output)
				return
			}
			appLog.Info("preview captured", "output", cfg.Capture.Output)
		}()
	}
}
