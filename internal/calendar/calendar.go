// Package calendar provides month-grid and cursor arithmetic for the calendar view.
package calendar

import "calpersonal/internal/model"

// GridWeeks is the number of week rows always materialized by MonthGrid.
const GridWeeks = 6

// Cell is one day of the month grid.
type Cell struct {
	Date model.Date
	// InMonth is false for leading/trailing days from adjacent months.
	InMonth bool
	IsToday bool
}

// Grid is a Sunday-first month grid. Weeks always holds GridWeeks rows;
// only the first Rows of them are needed to show every day of the month.
type Grid struct {
	Weeks [GridWeeks][7]Cell
	Rows  int
}

// MonthGrid builds the grid for the month containing viewport.
func MonthGrid(viewport, today model.Date) Grid {
	first := viewport.FirstOfMonth()
	start := first.AddDays(-int(first.Weekday()))

	var g Grid
	for w := 0; w < GridWeeks; w++ {
		for d := 0; d < 7; d++ {
			date := start.AddDays(w*7 + d)
			g.Weeks[w][d] = Cell{
				Date:    date,
				InMonth: date.Year == first.Year && date.Month == first.Month,
				IsToday: date == today,
			}
		}
	}
	g.Rows = rowCount(viewport.LastOfMonth().DaysSince(start))
	return g
}

// rowCount maps the span (in days) from the grid start to the last day of the
// month onto the number of displayed weeks.
func rowCount(span int) int {
	switch {
	case span > 34:
		return 6
	case span < 28:
		return 4
	default:
		return 5
	}
}

// Visible returns the week rows meant for display.
func (g Grid) Visible() [][7]Cell {
	return g.Weeks[:g.Rows]
}
