package web

import (
	"net/http"

	"ptgboard/internal/ics"
	appLog "ptgboard/internal/log"
	"ptgboard/internal/model"
)

// handleICS exports bookings as iCalendar.
//
// GET /ptg.ics?track=nova&track=swift
//   - track: restricts the export (repeatable); absent means every track
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	var tracks []model.TrackCode
	for _, t := range r.URL.Query()["track"] {
		if t != "" {
			tracks = append(tracks, model.TrackCode(t))
		}
	}

	body := ics.Serialize(snap.Document, ics.ExportOptions{
		Domain:       s.cfg.ICSDomain,
		Prefix:       s.cfg.ICSPrefix,
		EtherpadBase: s.cfg.EtherpadBase,
		Tracks:       tracks,
		Stamp:        snap.FetchedAt,
	})
	appLog.Debug("ics export", "tracks", len(tracks), "bytes", len(body))

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="ptg.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
