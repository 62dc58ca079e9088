package ics

import (
	"regexp"
	"strconv"
	"time"

	"github.com/teambition/rrule-go"

	appLog "ptgboard/internal/log"
	"ptgboard/internal/model"
)

var descStart = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})`)

// AnchorSlots dates the n-th day section of doc at eventStart + n days and
// gives every slot lacking a realtime anchor the wall time its description
// starts with ("09:00-10:00"), in loc. It returns the number of slots
// anchored. Slots that already carry realtime are left alone.
func AnchorSlots(doc *model.Document, eventStart time.Time, loc *time.Location) (int, error) {
	if doc == nil || len(doc.Days) == 0 {
		return 0, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(eventStart.Year(), eventStart.Month(), eventStart.Day(), 0, 0, 0, 0, loc)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Count:   len(doc.Days),
		Dtstart: first,
	})
	if err != nil {
		return 0, err
	}
	dates := rule.All()

	anchored := 0
	for i := range doc.Days {
		if i >= len(dates) {
			break
		}
		date := dates[i].In(loc)
		slots := doc.Days[i].Slots
		for j := range slots {
			if slots[j].Realtime != nil {
				continue
			}
			h, m, ok := wallTime(slots[j].Desc)
			if !ok {
				appLog.Debug("slot not anchored", "slot", slots[j].Name, "desc", slots[j].Desc)
				continue
			}
			rt := time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc).UTC()
			slots[j].Realtime = &rt
			anchored++
		}
	}
	return anchored, nil
}

func wallTime(desc string) (hour, minute int, ok bool) {
	m := descStart.FindStringSubmatch(desc)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
