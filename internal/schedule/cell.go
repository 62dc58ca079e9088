package schedule

import (
	"fmt"

	"ptgboard/internal/model"
)

// CellState tags a CellResolution.
type CellState int

const (
	// CellEmpty: the room has no such slot; nothing is rendered.
	CellEmpty CellState = iota
	// CellAvailable: the slot exists and is free for booking.
	CellAvailable
	// CellOccupied: the slot is booked by a track.
	CellOccupied
)

func (s CellState) String() string {
	switch s {
	case CellEmpty:
		return "empty"
	case CellAvailable:
		return "available"
	case CellOccupied:
		return "occupied"
	default:
		return fmt.Sprintf("CellState(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s CellState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CellState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*s = CellEmpty
	case "available":
		*s = CellAvailable
	case "occupied":
		*s = CellOccupied
	default:
		return fmt.Errorf("unknown cell state %q", b)
	}
	return nil
}

// DisplayMode selects the label of available cells.
type DisplayMode int

const (
	// ModeMarker labels available cells with AvailableMarker.
	ModeMarker DisplayMode = 1
	// ModeIdentifier labels available cells with "{room}-{timecode}".
	ModeIdentifier DisplayMode = 2
)

// AvailableMarker is the label of an available cell in ModeMarker.
const AvailableMarker = "Available for booking"

// CellResolution is the resolved content of one (room, timecode) cell.
// Track and Badge are set only when State is CellOccupied.
type CellResolution struct {
	State CellState       `json:"state"`
	Track model.TrackCode `json:"track,omitempty"`
	Label string          `json:"label,omitempty"`
	Badge *Badge          `json:"badge,omitempty"`
}

// Cell resolves schedule[room][tc]. Any mode other than ModeMarker labels
// available cells with the room-timecode identifier.
func (r *Resolver) Cell(room model.Room, tc model.Timecode, mode DisplayMode) CellResolution {
	track, ok := r.doc.Booking(room, tc)
	if !ok {
		return CellResolution{State: CellEmpty}
	}
	if track == "" {
		label := fmt.Sprintf("%s-%s", room, tc)
		if mode == ModeMarker {
			label = AvailableMarker
		}
		return CellResolution{State: CellAvailable, Label: label}
	}
	badge := r.BadgeIn(track, room)
	return CellResolution{
		State: CellOccupied,
		Track: track,
		Label: string(track),
		Badge: &badge,
	}
}

// ResolveCell is the functional form of Resolver.Cell.
func ResolveCell(doc *model.Document, roster Roster, room model.Room, tc model.Timecode, mode DisplayMode) CellResolution {
	return NewResolver(doc, roster).Cell(room, tc, mode)
}
