package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ptgboard/internal/config"
	appLog "ptgboard/internal/log"
	"ptgboard/internal/refresh"
	"ptgboard/internal/schedule"
)

//go:embed templates/*.html
var templateFS embed.FS

// Snapshots is the read side of the refresh cycle.
type Snapshots interface {
	Current() (*refresh.Snapshot, error)
}

// Server provides the board page and the HTTP APIs over the current
// snapshot.
type Server struct {
	cfg    *config.Config
	snaps  Snapshots
	router *mux.Router
	page   *template.Template
	loc    *time.Location
	now    func() time.Time
}

// NewServer constructs a Server with all routes registered.
func NewServer(cfg *config.Config, snaps Snapshots) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:    cfg,
		snaps:  snaps,
		router: mux.NewRouter(),
		loc:    cfg.Location(),
		now:    time.Now,
	}
	s.page = template.Must(template.New("board.html").Funcs(s.funcMap()).ParseFS(templateFS, "templates/board.html"))
	s.RegisterRoutes()
	return s
}

// WithClock replaces the wall clock used for day and slot selection.
func (s *Server) WithClock(now func() time.Time) *Server {
	if now != nil {
		s.now = now
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// RegisterRoutes wires every route onto the router.
func (s *Server) RegisterRoutes() {
	r := s.router
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleBoard).Methods(http.MethodGet)
	r.HandleFunc("/ptg.json", s.handleRaw).Methods(http.MethodGet)
	r.HandleFunc("/ptg.ics", s.handleICS).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/preview.png", s.handlePreview).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/grid", s.handleGrid).Methods(http.MethodGet)
	api.HandleFunc("/roster", s.handleRoster).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{track}", s.handleTrack).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePreview serves the last captured screenshot from disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	// ServeFile answers 404 for a missing file.
	http.ServeFile(w, r, s.cfg.Capture.Output)
}

// snapshot loads the current snapshot or answers 503.
func (s *Server) snapshot(w http.ResponseWriter) (*refresh.Snapshot, bool) {
	if s.snaps == nil {
		writeError(w, http.StatusServiceUnavailable, refresh.ErrNoSnapshot.Error())
		return nil, false
	}
	snap, err := s.snaps.Current()
	if err != nil {
		if !errors.Is(err, refresh.ErrNoSnapshot) {
			appLog.Error("snapshot unavailable", err)
		}
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return snap, true
}

func (s *Server) resolver(snap *refresh.Snapshot) *schedule.Resolver {
	return snap.Resolver().WithCheckinHint(s.cfg.CheckinHint)
}

func (s *Server) selector() schedule.DaySelector {
	return schedule.DaySelector{Location: s.loc, Grace: s.cfg.Grace()}
}

// displayMode maps a query value ("summary"/"detail" or "1"/"2") to a
// mode. Empty or unknown values use the configured grid mode.
func (s *Server) displayMode(q string) schedule.DisplayMode {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case config.GridModeSummary, "1":
		return schedule.ModeMarker
	case config.GridModeDetail, "2":
		return schedule.ModeIdentifier
	}
	if s.cfg.GridMode == config.GridModeDetail {
		return schedule.ModeIdentifier
	}
	return schedule.ModeMarker
}

func (s *Server) handleRaw(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", snap.FetchedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snap.Raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
