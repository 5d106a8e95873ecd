package syncer

import (
	"calpersonal/internal/model"
	"calpersonal/internal/store"
)

// Kind is a collection kind; events and tasks refresh independently.
type Kind string

const (
	KindEvents Kind = "events"
	KindTasks  Kind = "tasks"
)

// Message is one completion observed by Drain.
type Message interface{ message() }

// EventsRefreshed reports that a new events snapshot was installed.
type EventsRefreshed struct {
	Events store.EventIndex
}

// TasksRefreshed reports that a new task snapshot was installed.
type TasksRefreshed struct {
	Tasks []model.TaskEntry
}

// RefreshFailed reports a refresh whose collection enumeration failed. The
// cache is left as it was.
type RefreshFailed struct {
	Kind Kind
	Err  error
}

// Feedback is the single completion status of a mutation.
type Feedback struct {
	Op   Op
	Text string
	OK   bool
}

// HandleResolved reports that acquiring a remote handle finished.
type HandleResolved struct {
	Kind      Kind
	Available bool
}

func (EventsRefreshed) message() {}
func (TasksRefreshed) message()  {}
func (RefreshFailed) message()   {}
func (Feedback) message()        {}
func (HandleResolved) message()  {}

// Op names a mutation.
type Op string

const (
	OpInsertEvent    Op = "insert_event"
	OpPatchEvent     Op = "patch_event"
	OpDeleteEvent    Op = "delete_event"
	OpInsertTask     Op = "insert_task"
	OpPatchTask      Op = "patch_task"
	OpDeleteTask     Op = "delete_task"
	OpToggleTask     Op = "toggle_task"
	OpClearCompleted Op = "clear_completed"
)

type opInfo struct {
	kind    Kind
	pending string
	done    string
}

var ops = map[Op]opInfo{
	OpInsertEvent:    {KindEvents, "Creating event", "Event created!"},
	OpPatchEvent:     {KindEvents, "Updating event", "Event updated!"},
	OpDeleteEvent:    {KindEvents, "Deleting", "Event deleted!"},
	OpInsertTask:     {KindTasks, "Creating task", "Task created!"},
	OpPatchTask:      {KindTasks, "Updating task", "Task updated!"},
	OpDeleteTask:     {KindTasks, "Deleting", "Task deleted!"},
	OpToggleTask:     {KindTasks, "Toggling", "Completed"},
	OpClearCompleted: {KindTasks, "Clearing", "Cleared"},
}

// Pending is the status text shown while op is in flight.
func (o Op) Pending() string { return ops[o].pending }

// Kind is the collection refreshed after op succeeds.
func (o Op) Kind() Kind { return ops[o].kind }
