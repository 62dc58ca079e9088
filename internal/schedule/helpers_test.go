package schedule

import (
	"time"

	"ptgboard/internal/model"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// fixture builds a two-room, two-day document.
func fixture() *model.Document {
	doc := model.NewDocument()
	doc.EventID = "ptg2023"
	doc.Tracks = []model.TrackCode{"keystone", "nova", "swift"}
	doc.Days = []model.Day{
		{Name: "Monday", Slots: []model.TimeSlot{
			{Name: "MonA1", Desc: "09:00-10:00", Realtime: at("2023-06-12T09:00:00Z")},
			{Name: "MonA2", Desc: "10:00-11:00", Realtime: at("2023-06-12T10:00:00Z")},
		}},
		{Name: "Tuesday", Slots: []model.TimeSlot{
			{Name: "TueA1", Desc: "09:00-10:00"},
		}},
	}
	doc.Rooms = []model.Room{"room-a", "room-b", "room-c"}
	doc.Schedule = map[model.Room]*model.RoomSchedule{
		"room-a": {URL: "http://example.com/a", CapIcon: "video", Slots: map[model.Timecode]model.TrackCode{
			"MonA1": "keystone",
			"MonA2": "",
		}},
		"room-b": {URL: "http://example.com/b", Slots: map[model.Timecode]model.TrackCode{
			"MonA1": "nova",
			"TueA1": "swift",
		}},
		"room-c": {Slots: map[model.Timecode]model.TrackCode{
			"TueA1": "",
		}},
	}
	doc.Locations = map[model.TrackCode]string{"keystone": "room-a"}
	doc.URLs = map[model.TrackCode]string{"keystone": "http://example.com/k"}
	doc.Colors = map[model.TrackCode]string{"nova": "#596468"}
	doc.LastCheckIn = map[string]model.CheckinRecord{
		"zed":  {Nick: "Zed", Location: "#keystone", In: model.Stamp{Set: true}},
		"amy":  {Nick: "amy", Location: "#keystone", In: model.Stamp{Set: true}},
		"bob":  {Nick: "Bob", Location: "#keystone", In: model.Stamp{Set: true}, Out: model.Stamp{Set: true}},
		"cafe": {Nick: "Cafe", Location: "cafeteria", In: model.Stamp{Set: true}},
	}
	return doc
}

func modelRoom(s string) model.Room { return model.Room(s) }

func modelTimecode(s string) model.Timecode { return model.Timecode(s) }
