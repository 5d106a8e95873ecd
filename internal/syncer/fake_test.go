package syncer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"calpersonal/internal/model"
	"calpersonal/internal/remote"
	"calpersonal/internal/store"
)

var errBoom = errors.New("boom")

type call struct {
	Coll string
	ID   string
	Ev   model.Event
	Task model.Task
}

type fakeCalendar struct {
	mu        sync.Mutex
	calendars []remote.Collection
	events    map[string][]model.Event
	listErr   error
	eventsErr map[string]error
	mutErr    error
	// gates are consumed one per ListCalendars call; a nil gate does not block.
	gates    []chan struct{}
	entered  chan struct{}
	finished int

	inserted []call
	patched  []call
	deleted  []call
}

func (f *fakeCalendar) ListCalendars(ctx context.Context) ([]remote.Collection, error) {
	f.mu.Lock()
	var gate chan struct{}
	if len(f.gates) > 0 {
		gate, f.gates = f.gates[0], f.gates[1:]
	}
	cals := append([]remote.Collection(nil), f.calendars...)
	err := f.listErr
	entered := f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return cals, err
}

func (f *fakeCalendar) ListEvents(ctx context.Context, calendarID string, _ remote.EventFilter) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.finished++ }()
	if err := f.eventsErr[calendarID]; err != nil {
		return nil, err
	}
	return append([]model.Event(nil), f.events[calendarID]...), nil
}

func (f *fakeCalendar) InsertEvent(ctx context.Context, calendarID string, ev model.Event) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return model.Event{}, f.mutErr
	}
	f.inserted = append(f.inserted, call{Coll: calendarID, Ev: ev})
	ev.ID = "new"
	return ev, nil
}

func (f *fakeCalendar) PatchEvent(ctx context.Context, calendarID, id string, ev model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.patched = append(f.patched, call{Coll: calendarID, ID: id, Ev: ev})
	return nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, calendarID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.deleted = append(f.deleted, call{Coll: calendarID, ID: id})
	return nil
}

func (f *fakeCalendar) finishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finished
}

type fakeTasks struct {
	mu      sync.Mutex
	lists   []remote.Collection
	tasks   map[string][]model.Task
	listErr error
	mutErr  error

	inserted []call
	patched  []call
	deleted  []call
	cleared  []string
}

func (f *fakeTasks) ListTaskLists(ctx context.Context) ([]remote.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remote.Collection(nil), f.lists...), f.listErr
}

func (f *fakeTasks) ListTasks(ctx context.Context, listID string) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Task(nil), f.tasks[listID]...), nil
}

func (f *fakeTasks) InsertTask(ctx context.Context, listID string, t model.Task) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return model.Task{}, f.mutErr
	}
	f.inserted = append(f.inserted, call{Coll: listID, Task: t})
	return t, nil
}

func (f *fakeTasks) PatchTask(ctx context.Context, listID, id string, t model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.patched = append(f.patched, call{Coll: listID, ID: id, Task: t})
	return nil
}

func (f *fakeTasks) DeleteTask(ctx context.Context, listID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.deleted = append(f.deleted, call{Coll: listID, ID: id})
	return nil
}

func (f *fakeTasks) ClearCompleted(ctx context.Context, listID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutErr != nil {
		return f.mutErr
	}
	f.cleared = append(f.cleared, listID)
	return nil
}

type fakeAuth struct {
	cal   remote.Handle[remote.CalendarService]
	tasks remote.Handle[remote.TaskService]
}

func (a fakeAuth) CalendarHandle(context.Context) remote.Handle[remote.CalendarService] {
	return a.cal
}

func (a fakeAuth) TaskHandle(context.Context) remote.Handle[remote.TaskService] {
	return a.tasks
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEngine(t *testing.T, s store.Store) *Engine {
	t.Helper()
	if s == nil {
		s = store.NewFileStore(t.TempDir())
	}
	e, err := New(context.Background(), Options{Store: s, Location: time.UTC, Log: quietLogger()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// drainUntil ticks the engine until pred accepts a message, returning every
// message seen along the way.
func drainUntil(t *testing.T, e *Engine, pred func(Message) bool) []Message {
	t.Helper()
	var seen []Message
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, m := range e.Drain() {
			seen = append(seen, m)
			if pred(m) {
				return seen
			}
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out; saw %#v", seen)
	return nil
}

func isEventsRefreshed(m Message) bool {
	_, ok := m.(EventsRefreshed)
	return ok
}

func isTasksRefreshed(m Message) bool {
	_, ok := m.(TasksRefreshed)
	return ok
}

func isFeedback(m Message) bool {
	_, ok := m.(Feedback)
	return ok
}

func isRefreshFailed(m Message) bool {
	_, ok := m.(RefreshFailed)
	return ok
}
