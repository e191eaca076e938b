// Package monthgrid builds the fixed 6×7 grid of a BS month.
//
// A grid always has exactly [Size] cells ordered row-major with columns
// Sunday..Saturday. Leading blank cells align day 1 with its AD weekday,
// numbered day cells with an exact AD date carry the events dated on that
// day, and trailing blank cells pad the grid to 42:
//
//	g := monthgrid.Build(10, 2080, events, time.Now(), nil)
//	for _, row := range g.Rows() {
//	    ...
//	}
package monthgrid

import (
	"time"

	"github.com/tsawler/patro/bsdate"
	"github.com/tsawler/patro/content"
)

const (
	// Columns is the number of weekday columns (Sunday..Saturday).
	Columns = 7
	// RowCount is the number of week rows.
	RowCount = 6
	// Size is the total number of cells in a grid.
	Size = Columns * RowCount

	// SaturdayColumn is the column index of Saturday.
	SaturdayColumn = int(time.Saturday)
)

// Kind distinguishes blank padding cells from day cells.
type Kind int

const (
	Blank Kind = iota
	Day
)

func (k Kind) String() string {
	if k == Day {
		return "day"
	}
	return "blank"
}

// Cell is one position in the grid.
type Cell struct {
	Kind  Kind
	BSDay int
	AD    time.Time

	IsToday    bool
	IsSelected bool
	IsSaturday bool

	// Approximate is set when the AD date came from an inexact conversion.
	Approximate bool

	Events []content.Event
}

// Grid is a BS month laid out as 42 cells.
type Grid struct {
	Year  int
	Month int
	Cells [Size]Cell

	// LeadingBlanks is the number of blank cells before day 1.
	LeadingBlanks int

	// Unparsed lists events whose date could not be parsed. They are never
	// bound to a cell.
	Unparsed []content.Event

	// Unplaced lists events whose AD day converts into this month but which
	// no exact day cell shows. Each such event is unplaced in exactly one
	// grid.
	Unplaced []content.Event
}

// Build lays out a BS month. today is compared by calendar day only;
// selected may be nil.
func Build(month, year int, events []content.Event, today time.Time, selected *bsdate.Date) Grid {
	g := Grid{Year: year, Month: month}

	type dated struct {
		event content.Event
		day   time.Time
	}
	parsed := make([]dated, 0, len(events))
	for _, e := range events {
		d, err := e.ADDate()
		if err != nil {
			g.Unparsed = append(g.Unparsed, e)
			continue
		}
		parsed = append(parsed, dated{event: e, day: d})
	}

	bound := make([]bool, len(parsed))
	numDays := bsdate.MonthLength(month, year)
	first := bsdate.ToAD(1, month, year)
	g.LeadingBlanks = int(first.Time.Weekday())

	idx := 0
	for ; idx < g.LeadingBlanks; idx++ {
		g.Cells[idx] = Cell{Kind: Blank, IsSaturday: idx%Columns == SaturdayColumn}
	}

	for day := 1; day <= numDays && idx < Size; day, idx = day+1, idx+1 {
		conv := bsdate.ToAD(day, month, year)
		cell := Cell{
			Kind:        Day,
			BSDay:       day,
			AD:          conv.Time,
			IsToday:     content.SameDay(conv.Time, today),
			IsSaturday:  idx%Columns == SaturdayColumn,
			Approximate: !conv.Exact,
		}
		if selected != nil {
			cell.IsSelected = selected.Year == year && selected.Month == month && selected.Day == day
		}
		// An inexact cell shows an AD day that belongs to another BS date.
		if conv.Exact {
			for i, p := range parsed {
				if content.SameDay(p.day, conv.Time) {
					cell.Events = append(cell.Events, p.event)
					bound[i] = true
				}
			}
		}
		g.Cells[idx] = cell
	}

	for i, p := range parsed {
		if bound[i] {
			continue
		}
		if bs := bsdate.ToBS(p.day); bs.Year == year && bs.Month == month {
			g.Unplaced = append(g.Unplaced, p.event)
		}
	}

	for ; idx < Size; idx++ {
		g.Cells[idx] = Cell{Kind: Blank, IsSaturday: idx%Columns == SaturdayColumn}
	}

	return g
}

// Rows returns the grid as six rows of seven cells.
func (g Grid) Rows() [][]Cell {
	rows := make([][]Cell, RowCount)
	for r := 0; r < RowCount; r++ {
		rows[r] = g.Cells[r*Columns : (r+1)*Columns]
	}
	return rows
}

// DayCells returns the numbered day cells in order.
func (g Grid) DayCells() []Cell {
	var out []Cell
	for _, c := range g.Cells {
		if c.Kind == Day {
			out = append(out, c)
		}
	}
	return out
}

// EventCount returns the number of events bound to any cell.
func (g Grid) EventCount() int {
	n := 0
	for _, c := range g.Cells {
		n += len(c.Events)
	}
	return n
}

// Approximate reports whether any day cell has an inexact AD date.
func (g Grid) Approximate() bool {
	for _, c := range g.Cells {
		if c.Approximate {
			return true
		}
	}
	return false
}

// Span returns the AD dates of the first and last day cells.
func (g Grid) Span() (first, last time.Time) {
	days := g.DayCells()
	if len(days) == 0 {
		return time.Time{}, time.Time{}
	}
	return days[0].AD, days[len(days)-1].AD
}
