// Package remote declares the collaborators the sync engine talks to: an
// auth provider handing out optional service handles, and the calendar and
// task services reachable through them.
package remote

import (
	"context"
	"errors"
	"time"

	"calpersonal/internal/model"
)

// ErrNotConnected is returned when an operation needs a handle that is absent.
var ErrNotConnected = errors.New("not connected")

// Handle is an optional capability. The zero value is Unavailable.
type Handle[T any] struct {
	svc T
	ok  bool
}

func Available[T any](svc T) Handle[T] { return Handle[T]{svc: svc, ok: true} }

func Unavailable[T any]() Handle[T] { return Handle[T]{} }

// Get returns the service and whether it is present.
func (h Handle[T]) Get() (T, bool) { return h.svc, h.ok }

func (h Handle[T]) Available() bool { return h.ok }

// Collection is a remote calendar or task list.
type Collection struct {
	ID    string
	Title string
}

// EventFilter narrows ListEvents. Zero times mean unbounded.
type EventFilter struct {
	SingleEvents bool
	OrderBy      string
	TimeMin      time.Time
	TimeMax      time.Time
}

type CalendarService interface {
	ListCalendars(ctx context.Context) ([]Collection, error)
	ListEvents(ctx context.Context, calendarID string, f EventFilter) ([]model.Event, error)
	InsertEvent(ctx context.Context, calendarID string, ev model.Event) (model.Event, error)
	// PatchEvent updates only the non-empty fields of ev.
	PatchEvent(ctx context.Context, calendarID, id string, ev model.Event) error
	DeleteEvent(ctx context.Context, calendarID, id string) error
}

type TaskService interface {
	ListTaskLists(ctx context.Context) ([]Collection, error)
	ListTasks(ctx context.Context, listID string) ([]model.Task, error)
	InsertTask(ctx context.Context, listID string, t model.Task) (model.Task, error)
	// PatchTask updates only the non-empty fields of t.
	PatchTask(ctx context.Context, listID, id string, t model.Task) error
	DeleteTask(ctx context.Context, listID, id string) error
	ClearCompleted(ctx context.Context, listID string) error
}

// AuthProvider acquires handles. Each call may block on an interactive
// consent flow and returns Unavailable on any failure.
type AuthProvider interface {
	CalendarHandle(ctx context.Context) Handle[CalendarService]
	TaskHandle(ctx context.Context) Handle[TaskService]
}
