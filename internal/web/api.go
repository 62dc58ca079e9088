package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ptgboard/internal/model"
	"ptgboard/internal/schedule"
)

// slotDTO is a JSON-friendly view of a grid column.
type slotDTO struct {
	Name     model.Timecode `json:"name"`
	Desc     string         `json:"desc"`
	Realtime *time.Time     `json:"realtime,omitempty"`
	Minutes  int            `json:"duration_minutes"`
	Active   bool           `json:"active"`
}

type rowDTO struct {
	Room    model.Room                `json:"room"`
	CapIcon string                    `json:"cap_icon,omitempty"`
	CapDesc string                    `json:"cap_desc,omitempty"`
	Cells   []schedule.CellResolution `json:"cells"`
}

// gridResponse is the JSON response shape for /api/grid.
type gridResponse struct {
	Day      model.DayName   `json:"day"`
	Days     []model.DayName `json:"days"`
	Selected model.DayName   `json:"selected"`
	Columns  []slotDTO       `json:"columns"`
	Rows     []rowDTO        `json:"rows"`
}

func toGridResponse(g schedule.Grid) gridResponse {
	resp := gridResponse{
		Day:     g.Day,
		Columns: make([]slotDTO, 0, len(g.Columns)),
		Rows:    make([]rowDTO, 0, len(g.Rows)),
	}
	for _, c := range g.Columns {
		resp.Columns = append(resp.Columns, slotDTO{
			Name:     c.Slot.Name,
			Desc:     c.Slot.Desc,
			Realtime: c.Slot.Realtime,
			Minutes:  int(c.Slot.Length() / time.Minute),
			Active:   c.Active,
		})
	}
	for _, r := range g.Rows {
		resp.Rows = append(resp.Rows, rowDTO{
			Room:    r.Room,
			CapIcon: r.CapIcon,
			CapDesc: r.CapDesc,
			Cells:   r.Cells,
		})
	}
	return resp
}

// handleGrid returns the resolved grid of one day.
//
// GET /api/grid?day=Monday&mode=detail
//   - day:  day section name (default: the selected day)
//   - mode: summary|detail (default: grid_mode)
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	now := s.now()
	doc := snap.Document
	q := r.URL.Query()

	selected, _ := s.selector().Select(now, doc.DayNames())
	day := model.DayName(q.Get("day"))
	if day == "" {
		day = selected
	}
	if _, found := doc.Day(day); !found {
		writeError(w, http.StatusNotFound, "unknown day")
		return
	}

	resp := toGridResponse(s.resolver(snap).Grid(day, s.displayMode(q.Get("mode")), now))
	resp.Days = doc.DayNames()
	resp.Selected = selected
	writeJSON(w, http.StatusOK, resp)
}

// rosterResponse is the JSON response shape for /api/roster.
type rosterResponse struct {
	Roster    schedule.Roster `json:"roster"`
	Total     int             `json:"total"`
	FetchedAt time.Time       `json:"fetched_at"`
}

func (s *Server) handleRoster(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rosterResponse{
		Roster:    snap.Roster,
		Total:     snap.Roster.Total(),
		FetchedAt: snap.FetchedAt,
	})
}

// handleTrack returns the board entry of one published track. The path
// value is folded like a check-in location ("#Nova" -> "nova").
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	track := model.NormalizeTrack(mux.Vars(r)["track"])
	if !hasTrack(snap.Document, track) {
		writeError(w, http.StatusNotFound, "unknown track")
		return
	}
	writeJSON(w, http.StatusOK, s.resolver(snap).TrackEntry(track, s.cfg.EtherpadBase))
}

func hasTrack(doc *model.Document, track model.TrackCode) bool {
	for _, t := range doc.Tracks {
		if t == track {
			return true
		}
	}
	return false
}
