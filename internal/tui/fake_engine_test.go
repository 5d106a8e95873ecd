package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"calpersonal/internal/model"
	"calpersonal/internal/store"
	"calpersonal/internal/syncer"
)

type patchCall struct {
	coll, id string
	event    model.Event
	task     model.Task
}

type fakeEngine struct {
	cache      store.Cache
	batches    [][]syncer.Message
	refreshing map[syncer.Kind]bool

	// err is returned by every mutation; refreshErr by Refresh.
	err        error
	refreshErr error

	refreshes      int
	insertedEvents []model.Event
	patchedEvents  []patchCall
	deletedEvents  []patchCall
	insertedTasks  []model.Task
	patchedTasks   []patchCall
	deletedTasks   []patchCall
	toggled        []model.TaskEntry
	cleared        []string
}

func (f *fakeEngine) Cache() store.Cache { return f.cache }

func (f *fakeEngine) Drain() []syncer.Message {
	if len(f.batches) == 0 {
		return nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b
}

func (f *fakeEngine) Refreshing(kind syncer.Kind) bool { return f.refreshing[kind] }

func (f *fakeEngine) Refresh() error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakeEngine) InsertEvent(ev model.Event) error {
	if f.err != nil {
		return f.err
	}
	f.insertedEvents = append(f.insertedEvents, ev)
	return nil
}

func (f *fakeEngine) PatchEvent(calendarID, id string, ev model.Event) error {
	if f.err != nil {
		return f.err
	}
	f.patchedEvents = append(f.patchedEvents, patchCall{coll: calendarID, id: id, event: ev})
	return nil
}

func (f *fakeEngine) DeleteEvent(calendarID, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deletedEvents = append(f.deletedEvents, patchCall{coll: calendarID, id: id})
	return nil
}

func (f *fakeEngine) InsertTask(t model.Task) error {
	if f.err != nil {
		return f.err
	}
	f.insertedTasks = append(f.insertedTasks, t)
	return nil
}

func (f *fakeEngine) PatchTask(listID, id string, t model.Task) error {
	if f.err != nil {
		return f.err
	}
	f.patchedTasks = append(f.patchedTasks, patchCall{coll: listID, id: id, task: t})
	return nil
}

func (f *fakeEngine) DeleteTask(listID, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deletedTasks = append(f.deletedTasks, patchCall{coll: listID, id: id})
	return nil
}

func (f *fakeEngine) ToggleCompleted(entry model.TaskEntry) error {
	if f.err != nil {
		return f.err
	}
	if entry.Task.Status == "" {
		return syncer.ErrNoStatus
	}
	f.toggled = append(f.toggled, entry)
	return nil
}

func (f *fakeEngine) ClearCompleted(listID string) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, listID)
	return nil
}

var (
	testNow   = time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	testToday = model.Date{Year: 2025, Month: time.March, Day: 5}
)

func standup() model.EventEntry {
	return model.EventEntry{
		CalendarID: "primary",
		Event: model.Event{
			ID:    "e1",
			Title: "Standup",
			Start: model.At(time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)),
			End:   model.At(time.Date(2025, time.March, 5, 11, 0, 0, 0, time.UTC)),
		},
	}
}

func sampleTasks() []model.TaskEntry {
	return []model.TaskEntry{
		{ListID: "L1", Task: model.Task{ID: "t1", Title: "Pay rent", Status: model.TaskNeedsAction, Notes: "call landlord"}},
		{ListID: "L1", Task: model.Task{ID: "t2", Title: "Buy milk", Status: model.TaskCompleted}},
	}
}

func newTestModel(t *testing.T, f *fakeEngine) appModel {
	t.Helper()
	if f.cache.Events == nil {
		f.cache.Events = store.EventIndex{}
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	m := newAppModel(Options{
		Engine:   f,
		Location: time.UTC,
		Log:      log,
		Now:      func() time.Time { return testNow },
	})
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return mm.(appModel)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func keyOf(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

// press feeds msgs through Update in order and returns the model and the
// last command.
func press(m appModel, msgs ...tea.Msg) (appModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var mm tea.Model
		mm, cmd = m.Update(msg)
		m = mm.(appModel)
	}
	return m, cmd
}

// typeText sends one key per rune, the way a terminal delivers typing.
func typeText(m appModel, s string) appModel {
	for _, r := range s {
		if r == ' ' {
			m, _ = press(m, keyOf(tea.KeySpace))
			continue
		}
		m, _ = press(m, runes(string(r)))
	}
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}
