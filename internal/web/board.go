package web

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	appLog "ptgboard/internal/log"
	"ptgboard/internal/model"
	"ptgboard/internal/refresh"
	"ptgboard/internal/schedule"
)

// fragmentView is an annotated fragment with tags resolved to badges.
type fragmentView struct {
	schedule.Fragment
	Badge *schedule.Badge
}

type dayView struct {
	Name     model.DayName
	Selected bool
	Grid     schedule.Grid
}

type trackView struct {
	schedule.TrackEntry
	Now  []fragmentView
	Next [][]fragmentView
}

type motdView struct {
	Level     string
	Fragments []fragmentView
}

type pageView struct {
	EventID   string
	Timestamp string
	FetchedAt time.Time
	Selected  model.DayName
	Days      []dayView
	Tracks    []trackView
	Motd      motdView
	Links     []model.Link
	Roster    int
}

func (s *Server) buildPage(snap *refresh.Snapshot, now time.Time) pageView {
	doc := snap.Document
	res := s.resolver(snap)
	mode := s.displayMode("")

	selected, _ := s.selector().Select(now, doc.DayNames())
	page := pageView{
		EventID:   doc.EventID,
		Timestamp: doc.Timestamp,
		FetchedAt: snap.FetchedAt,
		Selected:  selected,
		Links:     doc.Links,
		Roster:    snap.Roster.Total(),
	}
	for _, d := range doc.Days {
		page.Days = append(page.Days, dayView{
			Name:     d.Name,
			Selected: d.Name == selected,
			Grid:     res.Grid(d.Name, mode, now),
		})
	}
	for _, e := range res.Board(s.cfg.EtherpadBase) {
		tv := trackView{TrackEntry: e, Now: resolveTags(res, e.Now)}
		for _, line := range e.Next {
			tv.Next = append(tv.Next, resolveTags(res, line))
		}
		page.Tracks = append(page.Tracks, tv)
	}
	if m := schedule.ResolveMotd(doc.Motd); !m.Empty() {
		page.Motd = motdView{Level: m.Level, Fragments: resolveTags(res, m.Fragments)}
	}
	return page
}

// resolveTags attaches a badge to every tag fragment.
func resolveTags(res *schedule.Resolver, frags []schedule.Fragment) []fragmentView {
	out := make([]fragmentView, 0, len(frags))
	for _, f := range frags {
		fv := fragmentView{Fragment: f}
		if f.Kind == schedule.FragmentTag {
			b := res.Badge(model.NormalizeTrack(f.Text))
			fv.Badge = &b
		}
		out = append(out, fv)
	}
	return out
}

func (s *Server) funcMap() template.FuncMap {
	return template.FuncMap{
		"kind": func(k schedule.FragmentKind) string { return k.String() },
		"state": func(c schedule.CellState) string { return c.String() },
		"clock": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.In(s.loc).Format("15:04")
		},
		"stamp": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(s.loc).Format("2006-01-02 15:04 MST")
		},
	}
}

func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, s.buildPage(snap, s.now())); err != nil {
		appLog.Error("board render failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render board")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
