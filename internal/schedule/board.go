package schedule

import (
	"sort"

	"ptgboard/internal/model"
)

// DefaultEtherpadBase prefixes generated etherpad names.
const DefaultEtherpadBase = "https://etherpad.opendev.org/p/"

// EtherpadURL returns the etherpad of track: the published one if any,
// otherwise base + "{eventid}-{track}".
func EtherpadURL(doc *model.Document, track model.TrackCode, base string) string {
	if doc != nil {
		if u := doc.Etherpads[track]; u != "" {
			return u
		}
	}
	if base == "" {
		base = DefaultEtherpadBase
	}
	eventID := ""
	if doc != nil {
		eventID = doc.EventID
	}
	return base + eventID + "-" + string(track)
}

// TrackEntry is one line of the track board.
type TrackEntry struct {
	Badge    Badge        `json:"badge"`
	Etherpad string       `json:"etherpad"`
	Now      []Fragment   `json:"now,omitempty"`
	Next     [][]Fragment `json:"next,omitempty"`
	Checkins []string     `json:"checkins,omitempty"`
}

// TrackEntry resolves the board entry of track. The badge URL is resolved
// without cell context.
func (r *Resolver) TrackEntry(track model.TrackCode, etherpadBase string) TrackEntry {
	e := TrackEntry{
		Badge:    r.Badge(track),
		Etherpad: EtherpadURL(r.doc, track, etherpadBase),
		Checkins: r.roster.Track(track),
	}
	if line := r.doc.Now[track]; line != "" {
		e.Now = AnnotateLine(line)
	}
	for _, line := range r.doc.Next[track] {
		e.Next = append(e.Next, AnnotateLine(line))
	}
	return e
}

// Board returns an entry per published track, sorted by track code.
func (r *Resolver) Board(etherpadBase string) []TrackEntry {
	tracks := make([]model.TrackCode, 0, len(r.doc.Tracks))
	seen := make(map[model.TrackCode]bool, len(r.doc.Tracks))
	for _, t := range r.doc.Tracks {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tracks = append(tracks, t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i] < tracks[j] })

	out := make([]TrackEntry, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, r.TrackEntry(t, etherpadBase))
	}
	return out
}

// MOTD levels.
const (
	MotdInfo    = "info"
	MotdSuccess = "success"
	MotdWarning = "warning"
	MotdDanger  = "danger"
)

// MotdView is the linkified message of the day.
type MotdView struct {
	Level     string     `json:"level"`
	Fragments []Fragment `json:"fragments"`
}

// Empty reports whether there is nothing to show.
func (m MotdView) Empty() bool {
	return len(m.Fragments) == 0
}

// ResolveMotd linkifies the message and clamps the level to a known one.
func ResolveMotd(m model.Motd) MotdView {
	level := m.Level
	switch level {
	case MotdInfo, MotdSuccess, MotdWarning, MotdDanger:
	default:
		level = MotdInfo
	}
	return MotdView{Level: level, Fragments: Linkify(m.Message)}
}
