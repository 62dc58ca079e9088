package schedule

import (
	"sort"

	"ptgboard/internal/model"
)

// TrackPrefix marks a check-in location as a track rather than a free-form
// place.
const TrackPrefix = "#"

// TrackKey returns the roster key of a track.
func TrackKey(track model.TrackCode) string {
	return TrackPrefix + string(track)
}

// Roster maps a check-in location to the sorted nicknames checked in there.
// It is built once per refresh and never mutated afterwards.
type Roster map[string][]string

// Aggregate reduces the check-in log to a roster. A record contributes only
// when it has a location, is checked in and not checked out. An empty or nil
// log yields an empty roster.
func Aggregate(records map[string]model.CheckinRecord) Roster {
	roster := make(Roster)
	for key, rec := range records {
		if !rec.Active() {
			continue
		}
		nick := rec.Nick
		if nick == "" {
			nick = key
		}
		roster[rec.Location] = append(roster[rec.Location], nick)
	}
	for loc := range roster {
		sort.Strings(roster[loc])
	}
	return roster
}

// At returns the nicknames checked into location. The slice must not be
// modified.
func (r Roster) At(location string) []string {
	return r[location]
}

// Track returns the nicknames checked into a track.
func (r Roster) Track(track model.TrackCode) []string {
	return r.At(TrackKey(track))
}

// Locations returns the roster keys in lexicographic order.
func (r Roster) Locations() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total counts every active check-in.
func (r Roster) Total() int {
	n := 0
	for _, nicks := range r {
		n += len(nicks)
	}
	return n
}
