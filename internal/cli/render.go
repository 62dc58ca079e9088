package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ptgboard/internal/config"
	"ptgboard/internal/model"
	"ptgboard/internal/schedule"
)

type renderOptions struct {
	day  string
	mode string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch the schedule once and print a day's grid",
		Long: `Fetch the schedule document once and print the grid of the selected day
(or --day) as a text table. Active slots are marked with '*'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), rootOpts, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.day, "day", "", "day section to print (default: today, with fallback)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "summary|detail (default: grid_mode)")
	return cmd
}

func runRender(ctx context.Context, rootOpts *RootOptions, opts *renderOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := rootOpts.Config
	refresher, err := newRefresher(cfg, nil)
	if err != nil {
		return err
	}
	snap, err := refresher.RefreshOnce(ctx)
	if err != nil {
		return err
	}

	now := rootOpts.Now()
	doc := snap.Document
	day := model.DayName(opts.day)
	if day == "" {
		sel := schedule.DaySelector{Location: cfg.Location(), Grace: cfg.Grace()}
		var ok bool
		if day, ok = sel.Select(now, doc.DayNames()); !ok {
			return fmt.Errorf("no weekday section in document (have %v)", doc.DayNames())
		}
	}
	if _, ok := doc.Day(day); !ok {
		return fmt.Errorf("unknown day %q (have %v)", day, doc.DayNames())
	}

	mode, err := parseMode(opts.mode, cfg.GridMode)
	if err != nil {
		return err
	}
	grid := snap.Resolver().WithCheckinHint(cfg.CheckinHint).Grid(day, mode, now)
	return writeGrid(w, grid, cfg.Location())
}

func parseMode(flag, fallback string) (schedule.DisplayMode, error) {
	if flag == "" {
		flag = fallback
	}
	switch flag {
	case config.GridModeSummary:
		return schedule.ModeMarker, nil
	case config.GridModeDetail:
		return schedule.ModeIdentifier, nil
	default:
		return 0, fmt.Errorf("invalid mode %q: must be %s or %s", flag, config.GridModeSummary, config.GridModeDetail)
	}
}

// writeGrid prints grid as a tab-aligned table.
func writeGrid(w io.Writer, grid schedule.Grid, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", grid.Day)
	header := []string{"room"}
	for _, c := range grid.Columns {
		h := c.Slot.Desc
		if h == "" {
			h = string(c.Slot.Name)
		}
		if c.Slot.Realtime != nil {
			h += " (" + c.Slot.Realtime.In(loc).Format("15:04") + ")"
		}
		if c.Active {
			h = "*" + h
		}
		header = append(header, h)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range grid.Rows {
		line := []string{string(row.Room)}
		for _, cell := range row.Cells {
			line = append(line, cellText(cell))
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	return tw.Flush()
}

func cellText(c schedule.CellResolution) string {
	switch c.State {
	case schedule.CellOccupied, schedule.CellAvailable:
		return c.Label
	default:
		return "-"
	}
}
