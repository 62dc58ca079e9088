package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"ptgboard/internal/capture"
	appLog "ptgboard/internal/log"
)

type snapshotOptions struct {
	url     string
	out     string
	timeout time.Duration
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the board page of a running server to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg := rootOpts.Config
			o := capture.Options{
				URL:        opts.url,
				OutputPath: opts.out,
				Width:      cfg.Capture.Width,
				Height:     cfg.Capture.Height,
				Timeout:    opts.timeout,
			}
			if o.URL == "" {
				o.URL = localURL(cfg.Listen)
			}
			if o.OutputPath == "" {
				o.OutputPath = cfg.Capture.Output
			}
			if err := capture.CapturePage(ctx, o); err != nil {
				return err
			}
			appLog.Info("snapshot written", "url", o.URL, "out", o.OutputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "", "page to capture (default: the configured listen address)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "PNG output path (default: capture.output)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", capture.DefaultTimeout, "capture timeout")
	return cmd
}
