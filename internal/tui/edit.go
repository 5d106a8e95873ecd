package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"calpersonal/internal/model"
	"calpersonal/internal/parse"
	"calpersonal/internal/remote"
	"calpersonal/internal/syncer"
)

// startEdit opens the line editor. With prefill set and an item selected in
// the focused overlay, the edit updates that item; otherwise it creates one.
// The calendar and the events overlay create events; the tasks overlay
// creates tasks.
func (m *appModel) startEdit(prefill bool) {
	st := &editState{kind: focusEvents, date: m.current}
	if m.focus.kind == focusTasks {
		st.kind = focusTasks
	}
	if prefill {
		switch st.kind {
		case focusEvents:
			if ev, ok := m.selectedEvent(); ok {
				st.isUpdate = true
				st.event = ev
				st.editor = newLineEditor(ev.Event.Title)
			}
		case focusTasks:
			if t, ok := m.selectedTask(); ok {
				st.isUpdate = true
				st.task = t
				st.editor = newLineEditor(t.Task.Title)
			}
		}
	}
	m.edit = st
}

func (m appModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.editKeys
	ed := &m.edit.editor
	switch {
	case key.Matches(msg, k.Cancel):
		m.edit = nil
	case key.Matches(msg, k.Submit):
		m.submit()
	case key.Matches(msg, k.Left):
		ed.left()
	case key.Matches(msg, k.Right):
		ed.right()
	case key.Matches(msg, k.Home):
		ed.home()
	case key.Matches(msg, k.End):
		ed.end()
	case key.Matches(msg, k.Backspace):
		ed.backspace()
	case key.Matches(msg, k.Delete):
		ed.deleteForward()
	case key.Matches(msg, k.KillToStart):
		ed.killToStart()
	case key.Matches(msg, k.KillToEnd):
		ed.killToEnd()
	case msg.Type == tea.KeySpace:
		ed.insert(' ')
	case msg.Type == tea.KeyRunes:
		ed.insert(msg.Runes...)
	}
	return m, nil
}

// submit dispatches the edit and closes the editor. A blank buffer cancels.
func (m *appModel) submit() {
	st := m.edit
	m.edit = nil
	text := strings.TrimSpace(st.editor.String())
	if text == "" {
		return
	}

	var (
		op  syncer.Op
		err error
	)
	if st.kind == focusTasks {
		op, err = m.submitTask(st, text)
	} else {
		op, err = m.submitEvent(st, text)
	}
	m.report(op, err)
}

func (m *appModel) submitEvent(st *editState, text string) (syncer.Op, error) {
	ev := m.eventFromInput(text, st.date, st.isUpdate)
	if st.isUpdate {
		return syncer.OpPatchEvent, m.engine.PatchEvent(st.event.CalendarID, st.event.Event.ID, ev)
	}
	return syncer.OpInsertEvent, m.engine.InsertEvent(ev)
}

// eventFromInput builds the event payload. Unparsed input becomes an all-day
// event on day when creating, and a title-only change when updating.
func (m appModel) eventFromInput(text string, day model.Date, update bool) model.Event {
	r := parse.ParseTimeRange(text, day)
	ev := model.Event{Title: r.Title}
	switch {
	case r.Timed():
		ev.Start = model.At(r.Start.In(m.loc))
		ev.End = model.At(r.End.In(m.loc))
	case r.AllDay():
		ev.Start = model.On(*r.AllDayStart)
		ev.End = model.On(*r.AllDayEnd)
	case !update:
		ev.Start = model.On(day)
		ev.End = model.On(day.AddDays(1))
	}
	return ev
}

func (m *appModel) submitTask(st *editState, text string) (syncer.Op, error) {
	in := parse.ParseDateAndNote(text, st.date.Year)
	t := model.Task{Title: in.Title, Due: in.Due, Notes: in.Notes}
	if st.isUpdate {
		return syncer.OpPatchTask, m.engine.PatchTask(st.task.ListID, st.task.Task.ID, t)
	}
	t.Status = model.TaskNeedsAction
	return syncer.OpInsertTask, m.engine.InsertTask(t)
}

func (m *appModel) deleteSelected() {
	switch m.focus.kind {
	case focusEvents:
		if ev, ok := m.selectedEvent(); ok {
			m.report(syncer.OpDeleteEvent, m.engine.DeleteEvent(ev.CalendarID, ev.Event.ID))
		}
	case focusTasks:
		if t, ok := m.selectedTask(); ok {
			m.report(syncer.OpDeleteTask, m.engine.DeleteTask(t.ListID, t.Task.ID))
		}
	}
}

func (m *appModel) toggleSelected() {
	t, ok := m.selectedTask()
	if !ok {
		return
	}
	err := m.engine.ToggleCompleted(t)
	if errors.Is(err, syncer.ErrNoStatus) {
		return
	}
	m.report(syncer.OpToggleTask, err)
}

func (m *appModel) clearCompleted() {
	t, ok := m.selectedTask()
	if !ok {
		return
	}
	m.report(syncer.OpClearCompleted, m.engine.ClearCompleted(t.ListID))
}

// report shows the outcome of dispatching op. Completion arrives later as
// feedback from the engine.
func (m *appModel) report(op syncer.Op, err error) {
	now := m.now()
	switch {
	case err == nil:
		m.log.WithField("op", op).Debug("dispatched")
		m.status.pending(op.Pending(), now)
	case errors.Is(err, remote.ErrNotConnected):
		m.status.offline(now)
	default:
		m.status.fail("Failed: "+err.Error(), now)
	}
}
