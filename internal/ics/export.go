package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"ptgboard/internal/model"
	"ptgboard/internal/schedule"
)

const (
	defaultDomain = "ptg.opendev.org"
	defaultPrefix = "[PTG]"
)

// Booking is one booked (room, slot) of a track.
type Booking struct {
	Track model.TrackCode
	Room  model.Room
	Slot  model.TimeSlot
}

// Bookings lists the bookings of doc in room order, then day and slot
// order. Available slots and room metadata are not bookings.
func Bookings(doc *model.Document) []Booking {
	if doc == nil {
		return nil
	}
	var out []Booking
	for _, room := range doc.Rooms {
		for _, day := range doc.Days {
			for _, slot := range day.Slots {
				track, ok := doc.Booking(room, slot.Name)
				if !ok || track == "" {
					continue
				}
				out = append(out, Booking{Track: track, Room: room, Slot: slot})
			}
		}
	}
	return out
}

// ExportOptions controls Export.
type ExportOptions struct {
	// Domain is the right-hand side of event UIDs.
	Domain string
	// Prefix is prepended to the track code in event summaries.
	Prefix       string
	EtherpadBase string
	// Tracks restricts the export. Empty means every track.
	Tracks []model.TrackCode
	// Stamp is written as DTSTAMP; zero means now.
	Stamp time.Time
}

func (o *ExportOptions) normalize() {
	if o.Domain == "" {
		o.Domain = defaultDomain
	}
	if o.Prefix == "" {
		o.Prefix = defaultPrefix
	}
	if o.Stamp.IsZero() {
		o.Stamp = time.Now()
	}
}

func (o ExportOptions) includes(track model.TrackCode) bool {
	if len(o.Tracks) == 0 {
		return true
	}
	want := model.NormalizeTrack(string(track))
	for _, t := range o.Tracks {
		if model.NormalizeTrack(string(t)) == want {
			return true
		}
	}
	return false
}

// EventUID identifies the booking starting at start in room.
func EventUID(start time.Time, room model.Room, domain string) string {
	return start.UTC().Format("200601021504") + "/" + string(room) + "@" + domain
}

// Export builds a calendar with one event per booking whose slot has a
// realtime anchor.
func Export(doc *model.Document, opts ExportOptions) *ical.Calendar {
	opts.normalize()

	cal := ical.NewCalendar()
	cal.SetProductId("-//ptgboard//" + opts.Domain + "//")
	cal.SetMethod(ical.MethodPublish)
	if doc != nil && doc.EventID != "" {
		cal.SetName(doc.EventID)
	}

	for _, b := range Bookings(doc) {
		if b.Slot.Realtime == nil || !opts.includes(b.Track) {
			continue
		}
		start := *b.Slot.Realtime
		end := start.Add(b.Slot.Length())

		ev := cal.AddEvent(EventUID(start, b.Room, opts.Domain))
		ev.SetDtStampTime(opts.Stamp)
		ev.SetSummary(strings.TrimSpace(opts.Prefix + " " + string(b.Track)))
		ev.SetDescription("Etherpad: " + schedule.EtherpadURL(doc, b.Track, opts.EtherpadBase) + "\n")
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetPriority(0)
		if loc := location(doc, b); loc != "" {
			ev.SetLocation(loc)
		}
	}
	return cal
}

// location is the explicit track URL, else the URL of the booked room.
func location(doc *model.Document, b Booking) string {
	if u, ok := doc.TrackURL(b.Track); ok {
		return u
	}
	u, _ := doc.RoomURL(b.Room)
	return u
}

// Serialize renders Export(doc, opts) as iCalendar text.
func Serialize(doc *model.Document, opts ExportOptions) string {
	return Export(doc, opts).Serialize()
}
