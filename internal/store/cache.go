// Package store persists the local mirror of remote calendars and task lists.
//
// The cache is an offline aid, not a source of truth: loading never fails
// (missing or corrupt documents read as empty) and save errors are returned
// only so callers can log them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"calpersonal/internal/model"
)

// Document names shared by every backend.
const (
	EventsDoc = "events"
	TasksDoc  = "tasks"
)

// EventIndex maps a local calendar date to the events starting on it, in the
// order the remote listing returned them.
type EventIndex map[model.Date][]model.EventEntry

// Cache is the whole mirrored state. It is replaced wholesale, never patched.
type Cache struct {
	Events EventIndex
	Tasks  []model.TaskEntry
}

// EventsOn returns the events starting on d.
func (c Cache) EventsOn(d model.Date) []model.EventEntry {
	return c.Events[d]
}

// IndexEvents groups entries by the local date of their start under loc.
// Entries without a start are dropped.
func IndexEvents(entries []model.EventEntry, loc *time.Location) EventIndex {
	idx := EventIndex{}
	for _, e := range entries {
		d, ok := e.Event.Start.LocalDate(loc)
		if !ok {
			continue
		}
		idx[d] = append(idx[d], e)
	}
	return idx
}

// Reindex regroups idx under loc. Documents written under another display
// zone may key timed events by a different local date. Order within a day
// follows the original key order, then listing order.
func (idx EventIndex) Reindex(loc *time.Location) EventIndex {
	days := make([]model.Date, 0, len(idx))
	for d := range idx {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var entries []model.EventEntry
	for _, d := range days {
		entries = append(entries, idx[d]...)
	}
	return IndexEvents(entries, loc)
}

// Store is a cache backend.
type Store interface {
	// Load reads both documents. It never fails; unreadable parts are empty.
	Load(ctx context.Context) Cache
	SaveEvents(ctx context.Context, events EventIndex) error
	SaveTasks(ctx context.Context, tasks []model.TaskEntry) error
	Close() error
}

// Save writes both documents, attempting each even if the other fails.
func Save(ctx context.Context, s Store, c Cache) error {
	return errors.Join(s.SaveEvents(ctx, c.Events), s.SaveTasks(ctx, c.Tasks))
}

func encodeEvents(events EventIndex) ([]byte, error) {
	if events == nil {
		events = EventIndex{}
	}
	return json.Marshal(events)
}

func encodeTasks(tasks []model.TaskEntry) ([]byte, error) {
	if tasks == nil {
		tasks = []model.TaskEntry{}
	}
	return json.Marshal(tasks)
}

func decodeEvents(b []byte) EventIndex {
	var idx EventIndex
	if len(b) == 0 {
		return EventIndex{}
	}
	if err := json.Unmarshal(b, &idx); err != nil || idx == nil {
		return EventIndex{}
	}
	return idx
}

func decodeTasks(b []byte) []model.TaskEntry {
	var tasks []model.TaskEntry
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil
	}
	return tasks
}
