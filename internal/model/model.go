package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Room names a physical or virtual location hosting a sequence of slots.
type Room string

// TrackCode is the short code of a themed session stream.
type TrackCode string

// Timecode identifies a time slot within a day's grid (e.g. "MonA1").
type Timecode string

// DayName is the English weekday name used as a day section key.
type DayName string

// TimeSlot is one column of a day's grid.
type TimeSlot struct {
	Name Timecode
	Desc string
	// Realtime anchors the slot to an absolute instant. nil means the slot
	// is purely nominal.
	Realtime *time.Time
	// Duration in minutes; 0 means unspecified.
	Duration int
}

// Length returns the slot duration, defaulting to one hour.
func (s TimeSlot) Length() time.Duration {
	if s.Duration <= 0 {
		return time.Hour
	}
	return time.Duration(s.Duration) * time.Minute
}

// Day is a day section with its ordered slots.
type Day struct {
	Name  DayName
	Slots []TimeSlot
}

// RoomSchedule is the booking row of one room.
type RoomSchedule struct {
	// URL is the default meeting link of the room.
	URL     string
	CapIcon string
	CapDesc string
	// Slots maps every timecode that exists for this room to its booking.
	// An empty TrackCode means available for booking.
	Slots map[Timecode]TrackCode
}

// Stamp is the in/out marker of a check-in. The published document stores
// a timestamp or null; a bare boolean is accepted as well.
type Stamp struct {
	Set bool
	At  string
}

// CheckinRecord is the latest check-in state of one attendee.
type CheckinRecord struct {
	Nick string
	// Location is either "#"+track or a free-form location.
	Location string
	In       Stamp
	Out      Stamp
}

// Active reports whether the record contributes to a roster.
func (r CheckinRecord) Active() bool {
	return r.Location != "" && r.In.Set && !r.Out.Set
}

// Motd is the message of the day.
type Motd struct {
	Message string
	Level   string
}

// Link is one entry of the extra links list.
type Link struct {
	Label string
	URL   string
}

// Document is the schedule document published by the check-in bot.
type Document struct {
	EventID   string
	Timestamp string
	Tracks    []TrackCode

	// Days in document order.
	Days []Day

	// Rooms lists the schedule rows in document order.
	Rooms    []Room
	Schedule map[Room]*RoomSchedule

	// Locations maps a track to the room it normally runs in.
	Locations map[TrackCode]string
	// URLs are explicit per-track overrides.
	URLs map[TrackCode]string

	LastCheckIn map[string]CheckinRecord

	Now       map[TrackCode]string
	Next      map[TrackCode][]string
	Etherpads map[TrackCode]string
	Colors    map[TrackCode]string
	Motd      Motd
	Links     []Link
}

// NewDocument returns an empty document with all maps allocated.
func NewDocument() *Document {
	return &Document{
		Schedule:    make(map[Room]*RoomSchedule),
		Locations:   make(map[TrackCode]string),
		URLs:        make(map[TrackCode]string),
		LastCheckIn: make(map[string]CheckinRecord),
		Now:         make(map[TrackCode]string),
		Next:        make(map[TrackCode][]string),
		Etherpads:   make(map[TrackCode]string),
		Colors:      make(map[TrackCode]string),
	}
}

// Booking looks up schedule[room][timecode]. ok is false when the room has
// no such slot.
func (d *Document) Booking(room Room, tc Timecode) (track TrackCode, ok bool) {
	rs, found := d.Schedule[room]
	if !found || rs == nil {
		return "", false
	}
	track, ok = rs.Slots[tc]
	return track, ok
}

// RoomURL returns the default meeting link of room.
func (d *Document) RoomURL(room Room) (string, bool) {
	rs, found := d.Schedule[room]
	if !found || rs == nil || rs.URL == "" {
		return "", false
	}
	return rs.URL, true
}

// TrackRoom returns the room a track is normally scheduled in.
func (d *Document) TrackRoom(track TrackCode) (Room, bool) {
	room, ok := d.Locations[track]
	if !ok || room == "" {
		return "", false
	}
	return Room(room), true
}

// TrackURL returns the explicit URL override of a track.
func (d *Document) TrackURL(track TrackCode) (string, bool) {
	u, ok := d.URLs[track]
	if !ok || u == "" {
		return "", false
	}
	return u, true
}

// Day returns the day section with the given name.
func (d *Document) Day(name DayName) (Day, bool) {
	for _, day := range d.Days {
		if day.Name == name {
			return day, true
		}
	}
	return Day{}, false
}

// DayNames returns the day section names in document order.
func (d *Document) DayNames() []DayName {
	out := make([]DayName, 0, len(d.Days))
	for _, day := range d.Days {
		out = append(out, day.Name)
	}
	return out
}

// Slot finds a time slot by name across all days.
func (d *Document) Slot(tc Timecode) (TimeSlot, bool) {
	for _, day := range d.Days {
		for _, s := range day.Slots {
			if s.Name == tc {
				return s, true
			}
		}
	}
	return TimeSlot{}, false
}

// NormalizeTrack folds a track code the way the check-in bot does.
func NormalizeTrack(s string) TrackCode {
	// A Caser is stateful; one per call.
	return TrackCode(cases.Lower(language.Und).String(strings.TrimSpace(strings.TrimPrefix(s, "#"))))
}
