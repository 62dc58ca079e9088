package web

import (
	"bytes"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	appLog "ptgboard/internal/log"
	"ptgboard/internal/schedule"
)

// checkinChart plots the number of attendees per check-in location.
func checkinChart(roster schedule.Roster, title string) *charts.Bar {
	locations := roster.Locations()
	data := make([]opts.BarData, 0, len(locations))
	for _, loc := range locations {
		data = append(data, opts.BarData{Name: loc, Value: len(roster.At(loc))})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1000px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "attendees currently checked in",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(locations).AddSeries("Checked in", data,
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "top",
		}),
	)
	return bar
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	title := "Check-ins"
	if id := snap.Document.EventID; id != "" {
		title = id + " check-ins"
	}

	var buf bytes.Buffer
	if err := checkinChart(snap.Roster, title).Render(&buf); err != nil {
		appLog.Error("stats render failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
