package schedule

import (
	"fmt"
	"strings"

	"ptgboard/internal/model"
)

// DefaultCheckinHint is the check-in command shown in the tooltip of a track
// nobody is checked into. %s is the track code.
const DefaultCheckinHint = "in #%s"

// Badge is the display unit of a track. Clickable badges carry a URL;
// informational ones render as an inert label.
type Badge struct {
	Track     model.TrackCode `json:"track"`
	Tooltip   string          `json:"tooltip"`
	URL       string          `json:"url,omitempty"`
	Clickable bool            `json:"clickable"`
	Color     string          `json:"color,omitempty"`
}

// Resolver resolves badges and cells against one document and the roster
// built from it.
type Resolver struct {
	doc    *model.Document
	roster Roster
	hint   string
}

// NewResolver returns a Resolver for doc. A nil doc behaves as an empty
// document.
func NewResolver(doc *model.Document, roster Roster) *Resolver {
	if doc == nil {
		doc = model.NewDocument()
	}
	if roster == nil {
		roster = Roster{}
	}
	return &Resolver{doc: doc, roster: roster, hint: DefaultCheckinHint}
}

// WithCheckinHint overrides the check-in command shown in empty tooltips.
func (r *Resolver) WithCheckinHint(hint string) *Resolver {
	if hint != "" {
		r.hint = hint
	}
	return r
}

// Roster returns the roster the resolver was built with.
func (r *Resolver) Roster() Roster {
	return r.roster
}

// Tooltip describes who is checked into track, or how to check in.
func (r *Resolver) Tooltip(track model.TrackCode) string {
	nicks := r.roster.Track(track)
	if len(nicks) > 0 {
		return "Checked in here: " + strings.Join(nicks, ", ")
	}
	hint := r.hint
	if strings.Contains(hint, "%s") {
		hint = fmt.Sprintf(hint, track)
	}
	return fmt.Sprintf("Nobody checked in here. Use %q to check into %s.", hint, track)
}

// URL resolves the link of track. Precedence: the explicit per-track URL,
// then the URL of the room the track is normally located in, then the URL
// of cellRoom (pass "" outside a cell).
func (r *Resolver) URL(track model.TrackCode, cellRoom model.Room) (string, bool) {
	if u, ok := r.doc.TrackURL(track); ok {
		return u, true
	}
	if room, ok := r.doc.TrackRoom(track); ok {
		if u, ok := r.doc.RoomURL(room); ok {
			return u, true
		}
	}
	if cellRoom != "" {
		if u, ok := r.doc.RoomURL(cellRoom); ok {
			return u, true
		}
	}
	return "", false
}

// Badge resolves a bare track lookup.
func (r *Resolver) Badge(track model.TrackCode) Badge {
	return r.badge(track, "")
}

// BadgeIn resolves track in the context of a cell in room.
func (r *Resolver) BadgeIn(track model.TrackCode, room model.Room) Badge {
	return r.badge(track, room)
}

func (r *Resolver) badge(track model.TrackCode, room model.Room) Badge {
	b := Badge{
		Track:   track,
		Tooltip: r.Tooltip(track),
		Color:   r.doc.Colors[track],
	}
	if u, ok := r.URL(track, room); ok {
		b.URL = u
		b.Clickable = true
	}
	return b
}
