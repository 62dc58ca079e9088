package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ptgboard/internal/model"
)

func TestAggregate_MembershipRule(t *testing.T) {
	records := map[string]model.CheckinRecord{
		"in":        {Nick: "in", Location: "#nova", In: model.Stamp{Set: true}},
		"out":       {Nick: "out", Location: "#nova", In: model.Stamp{Set: true}, Out: model.Stamp{Set: true}},
		"never":     {Nick: "never", Location: "#nova"},
		"nowhere":   {Nick: "nowhere", In: model.Stamp{Set: true}},
		"outonly":   {Nick: "outonly", Location: "#nova", Out: model.Stamp{Set: true}},
		"freeform":  {Nick: "freeform", Location: "hallway", In: model.Stamp{Set: true}},
		"anonymous": {Location: "#nova", In: model.Stamp{Set: true}},
	}

	roster := Aggregate(records)

	assert.Equal(t, []string{"anonymous", "in"}, roster.Track("nova"))
	assert.Equal(t, []string{"freeform"}, roster.At("hallway"))
	assert.Equal(t, 3, roster.Total())
	assert.Equal(t, []string{"#nova", "hallway"}, roster.Locations())
}

func TestAggregate_SortsRegardlessOfInputOrder(t *testing.T) {
	nicks := []string{"mallory", "Alice", "bob", "alice", "Zoe", "carol"}
	records := make(map[string]model.CheckinRecord)
	for _, n := range nicks {
		records[n] = model.CheckinRecord{Nick: n, Location: "#swift", In: model.Stamp{Set: true}}
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t,
			[]string{"Alice", "Zoe", "alice", "bob", "carol", "mallory"},
			Aggregate(records).Track("swift"))
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate(map[string]model.CheckinRecord{}))
	assert.Nil(t, Aggregate(nil).Track("nova"))
}

func TestTrackKey(t *testing.T) {
	assert.Equal(t, "#nova", TrackKey("nova"))
}
