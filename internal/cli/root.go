package cli

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"ptgboard/internal/config"
	"ptgboard/internal/fetch"
	appLog "ptgboard/internal/log"
	"ptgboard/internal/refresh"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool

	// Config is loaded before any subcommand runs.
	Config *config.Config
	// Now is the clock used by one-shot commands.
	Now func() time.Time
}

// NewRootCommand creates the root command of the ptgboard CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Now: time.Now}

	cmd := &cobra.Command{
		Use:   "ptgboard",
		Short: "Schedule board for multi-track events",
		Long: `ptgboard renders the room/slot schedule of a multi-track event from the
JSON document published by the check-in bot, with live check-in rosters.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main logs the error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "./ptgboard.yaml", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with PTGBOARD_* overrides")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewICSCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))

	return cmd
}

func (o *RootOptions) load() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		if cfg == nil {
			return fmt.Errorf("load config %s: %w", o.ConfigPath, err)
		}
		// Defaults are usable even when they could not be written.
		appLog.Warn("config not saved; using defaults", "config_path", o.ConfigPath, "err", err)
	}
	cfg.ApplyEnv(o.EnvFile)

	level := appLog.ParseLevel(cfg.LogLevel)
	if o.Verbose {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)

	o.Config = cfg
	return nil
}

// newRefresher wires the fetcher and refresh cycle from cfg.
func newRefresher(cfg *config.Config, onUpdate func(*refresh.Snapshot)) (*refresh.Refresher, error) {
	if cfg.DocumentURL == "" {
		return nil, fmt.Errorf("document_url is not configured (set it in the config file or PTGBOARD_DOCUMENT_URL)")
	}
	opts := refresh.Options{
		Source:   fetch.Source{ID: "ptg", URL: cfg.DocumentURL},
		Location: cfg.Location(),
		OnUpdate: onUpdate,
	}
	if start, ok := cfg.EventStartDate(); ok {
		opts.EventStart = start
	}
	return refresh.New(fetch.NewFetcher(cfg.CacheDir), opts), nil
}

// localURL is the board URL reachable on this host for a listen address.
func localURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
