package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "ptgboard/internal/log"
	"ptgboard/internal/model"
)

// ParsedBooking is a VEVENT read back from an exported calendar.
type ParsedBooking struct {
	UID string

	Track model.TrackCode
	Room  model.Room

	Summary     string
	Description string
	Location    string

	Start time.Time
	End   time.Time
}

// Etherpad returns the etherpad URL carried in the description.
func (p ParsedBooking) Etherpad() string {
	return strings.TrimSpace(strings.TrimPrefix(p.Description, "Etherpad:"))
}

// ParseBookings parses an exported calendar. prefix is the summary prefix
// used on export; the track code is what follows it. Events without a UID
// are skipped.
func ParseBookings(body []byte, prefix string) ([]ParsedBooking, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if prefix == "" {
		prefix = defaultPrefix
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	out := make([]ParsedBooking, 0)
	for _, ve := range cal.Events() {
		pb, perr := parseVEvent(ve, prefix)
		if perr != nil {
			appLog.Warn("ics vevent skipped", "err", perr)
			continue
		}
		out = append(out, pb)
	}
	appLog.Debug("ics parse completed", "event_count", len(out))
	return out, nil
}

func parseVEvent(ve *ical.VEvent, prefix string) (ParsedBooking, error) {
	var out ParsedBooking

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value
	out.Room = roomFromUID(out.UID)

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
		out.Track = model.TrackCode(strings.TrimSpace(strings.TrimPrefix(p.Value, prefix)))
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	out.Start = start
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	}
	return out, nil
}

// roomFromUID extracts the room of a "{stamp}/{room}@{domain}" UID.
func roomFromUID(uid string) model.Room {
	slash := strings.IndexByte(uid, '/')
	at := strings.LastIndexByte(uid, '@')
	if slash < 0 || at <= slash {
		return ""
	}
	return model.Room(uid[slash+1 : at])
}
