package schedule

import (
	"time"

	"ptgboard/internal/model"
)

// Week is the canonical day order used by the fallback scan.
var Week = []time.Weekday{
	time.Sunday,
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
}

// DefaultGrace keeps a day current until 01:00 the following day.
const DefaultGrace = time.Hour

// DaySelector picks the day section shown as current.
type DaySelector struct {
	// Location is the reference zone of the event. nil means UTC.
	Location *time.Location
	// Grace shifts the clock backwards before the day is taken.
	Grace time.Duration
}

// Today returns the day name of now in the selector's zone, after the grace
// shift.
func (s DaySelector) Today(now time.Time) model.DayName {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return model.DayName(now.In(loc).Add(-s.Grace).Weekday().String())
}

// Select returns today's section if it exists, otherwise the first section
// found scanning Week from Sunday. ok is false when no section matches.
func (s DaySelector) Select(now time.Time, available []model.DayName) (model.DayName, bool) {
	present := make(map[model.DayName]bool, len(available))
	for _, d := range available {
		present[d] = true
	}
	if today := s.Today(now); present[today] {
		return today, true
	}
	for _, wd := range Week {
		name := model.DayName(wd.String())
		if present[name] {
			return name, true
		}
	}
	return "", false
}

// ActiveWindow is how long after its realtime anchor a slot stays active.
const ActiveWindow = time.Hour

// SlotActive reports whether now falls strictly within the hour after the
// slot's realtime anchor. Slots without an anchor are never active.
func SlotActive(now time.Time, slot model.TimeSlot) bool {
	if slot.Realtime == nil {
		return false
	}
	elapsed := now.Sub(*slot.Realtime)
	return elapsed > 0 && elapsed < ActiveWindow
}
