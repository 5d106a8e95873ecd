package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"calpersonal/internal/calendar"
	"calpersonal/internal/model"
)

const (
	tasksPanePercent = 30
	minCellHeight    = 2
	overlayMaxWidth  = 56
)

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (m appModel) View() string {
	w, h := m.width, m.height
	if w < 20 {
		w = 20
	}
	if h < 8 {
		h = 8
	}

	calW := w
	if m.focus.kind == focusTasks {
		calW = w - w*tasksPanePercent/100
	}
	// title + weekday header above, input + status + help below.
	bodyH := h - 5

	cal := m.renderGrid(calW, bodyH)
	if m.focus.kind == focusEvents {
		box := m.renderEventsOverlay(calW)
		boxW := lipgloss.Width(box)
		cal = overlay(cal, box, max(0, (calW-boxW)/2), 1)
	}

	main := lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(calW), m.renderWeekdays(calW), cal)
	if m.focus.kind == focusTasks {
		pane := m.renderTasksPane(w-calW, bodyH+2)
		main = lipgloss.JoinHorizontal(lipgloss.Top, normalizePane(main, calW, bodyH+2), pane)
	}

	input := ""
	if m.edit != nil {
		input = renderInputLine(w, m.editPrompt(), m.edit.editor)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		normalizePane(main, w, bodyH+2),
		fitWidth(input, w),
		fitWidth(m.renderStatusLine(), w),
		fitWidth(m.renderHelp(), w),
	)
}

func (m appModel) renderTitle(width int) string {
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d %s", m.current.Year, m.current.Month))
	auth := m.status.auth.style().Render(m.status.auth.String())
	gap := width - lipgloss.Width(title) - lipgloss.Width(auth) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + title + strings.Repeat(" ", gap) + auth + " "
}

// cellWidths splits width into seven columns, giving the remainder to the
// last column.
func cellWidths(width int) [7]int {
	var ws [7]int
	base := width / 7
	for i := range ws {
		ws[i] = base
	}
	ws[6] += width - base*7
	return ws
}

func (m appModel) renderWeekdays(width int) string {
	ws := cellWidths(width)
	var b strings.Builder
	for i, name := range weekdayNames {
		st := mutedStyle()
		switch i {
		case 0:
			st = lipgloss.NewStyle().Foreground(colorSunday)
		case 6:
			st = lipgloss.NewStyle().Foreground(colorSaturday)
		}
		b.WriteString(st.Render(fitWidth(" "+name, ws[i])))
	}
	return b.String()
}

func (m appModel) renderGrid(width, height int) string {
	grid := calendar.MonthGrid(m.current, m.today)
	rows := grid.Visible()
	rowH := height / len(rows)
	if rowH < minCellHeight {
		rowH = minCellHeight
	}
	ws := cellWidths(width)
	cache := m.engine.Cache()

	lines := make([]string, 0, height)
	for _, week := range rows {
		cells := make([]string, 7)
		for i, c := range week {
			cells[i] = m.renderCell(c, cache.EventsOn(c.Date), ws[i], rowH)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

func (m appModel) renderCell(c calendar.Cell, events []model.EventEntry, width, height int) string {
	dayStyle := lipgloss.NewStyle()
	switch {
	case c.Date == m.current && m.focus.kind == focusCalendar:
		dayStyle = selectedStyle()
	case c.Date == m.current:
		dayStyle = dayStyle.Underline(true)
	case c.IsToday:
		dayStyle = dayStyle.Foreground(colorToday).Bold(true)
	case !c.InMonth:
		dayStyle = mutedStyle()
	}
	lines := []string{" " + dayStyle.Render(fmt.Sprintf("%2d", c.Date.Day))}

	inner := width - 2
	for _, e := range events {
		if len(lines) >= height {
			break
		}
		text := m.eventLabel(e.Event)
		if inner > 0 && xansi.StringWidth(text) > inner {
			text = xansi.Truncate(text, inner, "…")
		}
		st := lipgloss.NewStyle().Foreground(colorSurfaceFg)
		if !c.InMonth {
			st = mutedStyle()
		}
		lines = append(lines, " "+st.Render(text))
	}
	if len(events) > height-1 {
		lines[height-1] = " " + mutedStyle().Render(fmt.Sprintf("+%d more", len(events)-(height-2)))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

// eventLabel is "HH:MM title" for timed events and the bare title otherwise.
func (m appModel) eventLabel(ev model.Event) string {
	if ev.Start.DateTime != nil {
		return ev.Start.DateTime.In(m.loc).Format("15:04") + " " + ev.DisplayTitle()
	}
	return ev.DisplayTitle()
}

func (m appModel) eventSpan(ev model.Event) string {
	if ev.Start.DateTime == nil {
		return "all day"
	}
	span := ev.Start.DateTime.In(m.loc).Format("15:04")
	if ev.End.DateTime != nil {
		span += "-" + ev.End.DateTime.In(m.loc).Format("15:04")
	}
	return span
}

func (m appModel) renderEventsOverlay(calW int) string {
	boxW := min(calW-4, overlayMaxWidth)
	inner := boxW - 4
	if inner < 10 {
		inner = 10
	}
	header := lipgloss.NewStyle().Bold(true).Render(m.current.In(m.loc).Format("Mon Jan 2"))
	lines := []string{header, ""}

	evs := m.dayEvents()
	if len(evs) == 0 {
		lines = append(lines, mutedStyle().Render("No events"))
	}
	for i, e := range evs {
		ln := fitWidth(fmt.Sprintf("%-11s %s", m.eventSpan(e.Event), e.Event.DisplayTitle()), inner)
		if i == m.cursor {
			ln = selectedStyle().Render(ln)
		}
		lines = append(lines, ln)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(inner + 2).
		Render(strings.Join(lines, "\n"))
}

func (m appModel) renderTasksPane(width, height int) string {
	inner := width - 2
	listH := height
	if m.focus.notes {
		listH = height / 2
	}

	lines := []string{" " + lipgloss.NewStyle().Bold(true).Render("Tasks")}
	ts := m.tasks()
	if len(ts) == 0 {
		lines = append(lines, " "+mutedStyle().Render("No tasks"))
	}
	for i, t := range ts {
		ln := fitWidth(taskLabel(t.Task), inner)
		switch {
		case i == m.cursor:
			ln = selectedStyle().Render(ln)
		case t.Task.Done():
			ln = mutedStyle().Render(ln)
		}
		lines = append(lines, " "+ln)
	}
	list := normalizePane(strings.Join(lines, "\n"), width, listH)
	if !m.focus.notes {
		return list
	}

	notes := []string{" " + lipgloss.NewStyle().Bold(true).Render("Notes")}
	if t, ok := m.selectedTask(); ok {
		if body := renderNotes(t.Task.Notes, inner); body != "" {
			notes = append(notes, body)
		} else {
			notes = append(notes, " "+mutedStyle().Render("No notes"))
		}
	}
	return list + "\n" + normalizePane(strings.Join(notes, "\n"), width, height-listH)
}

func taskLabel(t model.Task) string {
	box := "[ ]"
	if t.Done() {
		box = "[x]"
	}
	label := box + " " + t.Title
	if d, ok := t.DueDate(); ok {
		label += " (" + d.In(time.UTC).Format("Jan 2") + ")"
	}
	return label
}

func (m appModel) editPrompt() string {
	verb := "New"
	if m.edit.isUpdate {
		verb = "Edit"
	}
	noun := "event"
	if m.edit.kind == focusTasks {
		noun = "task"
	}
	return " " + mutedStyle().Render(verb+" "+noun+":") + " "
}

func (m appModel) renderStatusLine() string {
	var parts []string
	if m.refreshing() {
		parts = append(parts, m.spinner.View()+" "+lipgloss.NewStyle().Foreground(colorSuccess).Render("Refreshing"))
	}
	if s := m.status.view(); s != "" {
		parts = append(parts, s)
	}
	return " " + strings.Join(parts, "  ")
}

func (m appModel) renderHelp() string {
	if m.edit != nil {
		return " " + m.help.ShortHelpView(m.editKeys.help())
	}
	return " " + m.help.ShortHelpView(m.keys.helpFor(m.focus))
}
