package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ptgboard/internal/ics"
	appLog "ptgboard/internal/log"
	"ptgboard/internal/model"
)

type icsOptions struct {
	tracks []string
	out    string
	read   string
}

// NewICSCommand creates the ics command.
func NewICSCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &icsOptions{}
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Fetch the schedule once and write an iCalendar export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runICS(cmd.Context(), rootOpts, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceVar(&opts.tracks, "track", nil, "only export these tracks (repeatable)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&opts.read, "read", "", "list the bookings of an exported calendar file instead of exporting")
	return cmd
}

func runICS(ctx context.Context, rootOpts *RootOptions, opts *icsOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := rootOpts.Config
	if opts.read != "" {
		return listBookings(opts.read, cfg.ICSPrefix, cfg.Location(), stdout)
	}
	refresher, err := newRefresher(cfg, nil)
	if err != nil {
		return err
	}
	snap, err := refresher.RefreshOnce(ctx)
	if err != nil {
		return err
	}

	tracks := make([]model.TrackCode, 0, len(opts.tracks))
	for _, t := range opts.tracks {
		tracks = append(tracks, model.TrackCode(t))
	}
	body := ics.Serialize(snap.Document, ics.ExportOptions{
		Domain:       cfg.ICSDomain,
		Prefix:       cfg.ICSPrefix,
		EtherpadBase: cfg.EtherpadBase,
		Tracks:       tracks,
		Stamp:        rootOpts.Now(),
	})

	if opts.out == "" || opts.out == "-" {
		_, err := io.WriteString(stdout, body)
		return err
	}
	if err := os.WriteFile(opts.out, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	appLog.Info("ics written", "out", opts.out, "bytes", len(body))
	return nil
}

func listBookings(path, prefix string, loc *time.Location, w io.Writer) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	bookings, err := ics.ParseBookings(body, prefix)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range bookings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			b.Start.In(loc).Format("Mon 15:04"), b.End.In(loc).Format("15:04"), b.Room, b.Track, b.Etherpad())
	}
	return tw.Flush()
}
