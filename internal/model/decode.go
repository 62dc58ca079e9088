package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Keys of a room entry that are not time slots.
const (
	roomKeyURL     = "url"
	roomKeyCapIcon = "cap_icon"
	roomKeyCapDesc = "cap_desc"
)

// ErrNotObject is returned when the document root is not a JSON object.
var ErrNotObject = errors.New("schedule document is not a JSON object")

// realtimeLayouts are tried in order. The publishing script writes minutes
// precision ("2023-06-10T13:00Z").
var realtimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseRealtime parses a slot realtime anchor. Values without a zone are
// read as UTC.
func ParseRealtime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range realtimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Decode parses a schedule document. Only a root that is not a JSON object
// is an error; malformed optional fields are treated as absent.
func Decode(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	doc := NewDocument()
	if err := json.Unmarshal(trimmed, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	fresh := NewDocument()
	*d = *fresh

	lenient(fields["eventid"], &d.EventID)
	lenient(fields["timestamp"], &d.Timestamp)
	lenient(fields["tracks"], &d.Tracks)
	d.URLs = decodeStringMap(fields["urls"])
	d.Now = decodeStringMap(fields["now"])
	d.Next = decodeListMap(fields["next"])
	d.Etherpads = decodeStringMap(fields["etherpads"])
	d.Colors = decodeStringMap(fields["colors"])

	// The bot publishes "location"; "locations" is accepted too.
	d.Locations = decodeStringMap(fields["locations"])
	for k, v := range decodeStringMap(fields["location"]) {
		d.Locations[k] = v
	}

	d.Days = decodeDays(fields["slots"])
	d.Rooms, d.Schedule = decodeSchedule(fields["schedule"])
	d.LastCheckIn = decodeCheckins(fields["last_check_in"])
	d.Motd = decodeMotd(fields["motd"])
	d.Links = decodeLinks(fields["links"])
	return nil
}

// lenient unmarshals raw into v and reports success. Absent or mistyped
// values leave v at its zero value.
func lenient(raw json.RawMessage, v any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		// Reset partially-filled destinations.
		switch dst := v.(type) {
		case *string:
			*dst = ""
		case *[]TrackCode:
			*dst = nil
		}
		return false
	}
	return true
}

// decodeStringMap decodes a track-keyed object entry by entry. Entries whose
// value is not a string are dropped.
func decodeStringMap(raw json.RawMessage) map[TrackCode]string {
	out := make(map[TrackCode]string)
	var entries map[string]json.RawMessage
	if !lenientRaw(raw, &entries) {
		return out
	}
	for key, value := range entries {
		var s string
		if string(value) == "null" || json.Unmarshal(value, &s) != nil {
			continue
		}
		out[TrackCode(key)] = s
	}
	return out
}

// decodeListMap is decodeStringMap for track -> list of lines. Non-string
// items of a list are dropped.
func decodeListMap(raw json.RawMessage) map[TrackCode][]string {
	out := make(map[TrackCode][]string)
	var entries map[string]json.RawMessage
	if !lenientRaw(raw, &entries) {
		return out
	}
	for key, value := range entries {
		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil {
			continue
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			var line string
			if string(item) == "null" || json.Unmarshal(item, &line) != nil {
				continue
			}
			lines = append(lines, line)
		}
		out[TrackCode(key)] = lines
	}
	return out
}

type member struct {
	key   string
	value json.RawMessage
}

// orderedObject returns the members of a JSON object in document order.
func orderedObject(raw json.RawMessage) ([]member, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}
	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		out = append(out, member{key: key, value: value})
	}
	return out, true
}

type rawSlot struct {
	Name     string          `json:"name"`
	Desc     string          `json:"desc"`
	Realtime string          `json:"realtime"`
	Duration json.RawMessage `json:"duration"`
}

func decodeDays(raw json.RawMessage) []Day {
	members, ok := orderedObject(raw)
	if !ok {
		return nil
	}
	days := make([]Day, 0, len(members))
	for _, m := range members {
		var slots []json.RawMessage
		if err := json.Unmarshal(m.value, &slots); err != nil {
			continue
		}
		day := Day{Name: DayName(m.key)}
		for _, rs := range slots {
			var s rawSlot
			if err := json.Unmarshal(rs, &s); err != nil || s.Name == "" {
				continue
			}
			slot := TimeSlot{Name: Timecode(s.Name), Desc: s.Desc}
			if t, ok := ParseRealtime(s.Realtime); ok {
				slot.Realtime = &t
			}
			var minutes float64
			if len(s.Duration) > 0 && json.Unmarshal(s.Duration, &minutes) == nil && minutes > 0 {
				slot.Duration = int(minutes)
			}
			day.Slots = append(day.Slots, slot)
		}
		days = append(days, day)
	}
	return days
}

func decodeSchedule(raw json.RawMessage) ([]Room, map[Room]*RoomSchedule) {
	schedule := make(map[Room]*RoomSchedule)
	members, ok := orderedObject(raw)
	if !ok {
		return nil, schedule
	}
	rooms := make([]Room, 0, len(members))
	for _, m := range members {
		entries, ok := orderedObject(m.value)
		if !ok {
			continue
		}
		rs := &RoomSchedule{Slots: make(map[Timecode]TrackCode)}
		for _, e := range entries {
			var value string
			if err := json.Unmarshal(e.value, &value); err != nil {
				// Non-string bookings are not slots.
				continue
			}
			switch e.key {
			case roomKeyURL:
				rs.URL = value
			case roomKeyCapIcon:
				rs.CapIcon = value
			case roomKeyCapDesc:
				rs.CapDesc = value
			default:
				rs.Slots[Timecode(e.key)] = TrackCode(value)
			}
		}
		room := Room(m.key)
		if _, dup := schedule[room]; !dup {
			rooms = append(rooms, room)
		}
		schedule[room] = rs
	}
	return rooms, schedule
}

// UnmarshalJSON accepts null, a boolean or a timestamp string.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	*s = Stamp{}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch val := v.(type) {
	case bool:
		s.Set = val
	case string:
		s.Set = val != ""
		s.At = val
	}
	return nil
}

type rawCheckin struct {
	Nick     string `json:"nick"`
	Location any    `json:"location"`
	In       Stamp  `json:"in"`
	Out      Stamp  `json:"out"`
}

func decodeCheckins(raw json.RawMessage) map[string]CheckinRecord {
	out := make(map[string]CheckinRecord)
	var entries map[string]json.RawMessage
	if !lenientRaw(raw, &entries) {
		return out
	}
	for key, value := range entries {
		var rc rawCheckin
		if err := json.Unmarshal(value, &rc); err != nil {
			continue
		}
		// Location is opaque; anything but a non-empty string is absent.
		loc, _ := rc.Location.(string)
		out[key] = CheckinRecord{
			Nick:     rc.Nick,
			Location: loc,
			In:       rc.In,
			Out:      rc.Out,
		}
	}
	return out
}

func decodeMotd(raw json.RawMessage) Motd {
	var m struct {
		Message string `json:"message"`
		Level   string `json:"level"`
	}
	if !lenientRaw(raw, &m) {
		return Motd{}
	}
	return Motd{Message: m.Message, Level: m.Level}
}

func decodeLinks(raw json.RawMessage) []Link {
	members, ok := orderedObject(raw)
	if !ok {
		return nil
	}
	links := make([]Link, 0, len(members))
	for _, m := range members {
		var url string
		if err := json.Unmarshal(m.value, &url); err != nil || url == "" {
			continue
		}
		links = append(links, Link{Label: m.key, URL: url})
	}
	return links
}

func lenientRaw(raw json.RawMessage, v any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
