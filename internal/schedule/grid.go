package schedule

import (
	"time"

	"ptgboard/internal/model"
)

// Column is one time slot of a grid.
type Column struct {
	Slot   model.TimeSlot
	Active bool
}

// Row is one room of a grid. Cells line up with Grid.Columns.
type Row struct {
	Room    model.Room
	CapIcon string
	CapDesc string
	Cells   []CellResolution
}

// Grid is the resolved schedule of one day.
type Grid struct {
	Day     model.DayName
	Columns []Column
	Rows    []Row
}

// Grid resolves every cell of day. Rooms whose cells are all empty that day
// are left out. An unknown day gives a grid with no columns and no rows.
func (r *Resolver) Grid(day model.DayName, mode DisplayMode, now time.Time) Grid {
	g := Grid{Day: day}
	d, ok := r.doc.Day(day)
	if !ok {
		return g
	}
	for _, slot := range d.Slots {
		g.Columns = append(g.Columns, Column{Slot: slot, Active: SlotActive(now, slot)})
	}
	for _, room := range r.doc.Rooms {
		row := Row{Room: room}
		if rs := r.doc.Schedule[room]; rs != nil {
			row.CapIcon = rs.CapIcon
			row.CapDesc = rs.CapDesc
		}
		used := false
		for _, slot := range d.Slots {
			cell := r.Cell(room, slot.Name, mode)
			if cell.State != CellEmpty {
				used = true
			}
			row.Cells = append(row.Cells, cell)
		}
		if used {
			g.Rows = append(g.Rows, row)
		}
	}
	return g
}

// ActiveSlot returns the first active column of the grid.
func (g Grid) ActiveSlot() (model.TimeSlot, bool) {
	for _, c := range g.Columns {
		if c.Active {
			return c.Slot, true
		}
	}
	return model.TimeSlot{}, false
}
