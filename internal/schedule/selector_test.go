package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ptgboard/internal/model"
)

func TestDaySelector_Today(t *testing.T) {
	// 2023-06-13 is a Tuesday.
	justAfterMidnight := time.Date(2023, 6, 13, 0, 30, 0, 0, time.UTC)

	assert.Equal(t, model.DayName("Monday"), DaySelector{Grace: time.Hour}.Today(justAfterMidnight))
	assert.Equal(t, model.DayName("Tuesday"), DaySelector{}.Today(justAfterMidnight))
	assert.Equal(t, model.DayName("Tuesday"), DaySelector{Grace: time.Hour}.Today(justAfterMidnight.Add(time.Hour)))

	cest := time.FixedZone("CEST", 2*60*60)
	// 23:30 UTC Monday is 01:30 Tuesday at UTC+2.
	late := time.Date(2023, 6, 12, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, model.DayName("Tuesday"), DaySelector{Location: cest, Grace: time.Hour}.Today(late))
	assert.Equal(t, model.DayName("Monday"), DaySelector{Grace: time.Hour}.Today(late))
}

func TestDaySelector_Select(t *testing.T) {
	monday := time.Date(2023, 6, 12, 12, 0, 0, 0, time.UTC)
	sel := DaySelector{Grace: DefaultGrace}

	tests := []struct {
		name      string
		available []model.DayName
		want      model.DayName
		ok        bool
	}{
		{"today present", []model.DayName{"Thursday", "Monday"}, "Monday", true},
		{"fallback is first in sunday-first order", []model.DayName{"Thursday", "Tuesday"}, "Tuesday", true},
		{"fallback picks sunday over later days", []model.DayName{"Saturday", "Sunday"}, "Sunday", true},
		{"non weekday sections are never picked", []model.DayName{"Day 1"}, "", false},
		{"nothing available", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sel.Select(monday, tt.available)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaySelector_SelectIsStable(t *testing.T) {
	sel := DaySelector{}
	avail := []model.DayName{"Friday", "Wednesday"}
	for h := 0; h < 24; h++ {
		// 2023-06-12 is a Monday: neither day is today.
		now := time.Date(2023, 6, 12, h, 0, 0, 0, time.UTC)
		got, ok := sel.Select(now, avail)
		assert.True(t, ok)
		assert.Equal(t, model.DayName("Wednesday"), got)
	}
}

func TestSlotActive(t *testing.T) {
	now := time.Date(2023, 6, 12, 10, 0, 0, 0, time.UTC)
	anchor := func(d time.Duration) model.TimeSlot {
		rt := now.Add(d)
		return model.TimeSlot{Name: "MonA1", Realtime: &rt}
	}

	assert.True(t, SlotActive(now, anchor(-30*time.Minute)))
	assert.False(t, SlotActive(now, anchor(-90*time.Minute)))
	assert.False(t, SlotActive(now, anchor(5*time.Minute)))
	assert.False(t, SlotActive(now, anchor(0)), "exactly at the anchor is not yet active")
	assert.False(t, SlotActive(now, anchor(-time.Hour)), "an hour after the anchor is over")
	assert.False(t, SlotActive(now, model.TimeSlot{Name: "MonA1"}))
}
