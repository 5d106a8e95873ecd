package syncer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"calpersonal/internal/model"
	"calpersonal/internal/remote"
)

// dispatch runs fn in the background and reports exactly one Feedback for it.
func (e *Engine) dispatch(op Op, fields logrus.Fields, fn func(ctx context.Context) error) {
	log := e.log.WithFields(fields).WithFields(logrus.Fields{
		"kind":  op.Kind(),
		"op":    op,
		"op_id": uuid.NewString(),
	})
	log.Debug("mutation started")
	go func() {
		err := fn(e.ctx)
		fb := Feedback{Op: op, OK: err == nil}
		if err != nil {
			log.WithError(err).Warn("mutation failed")
			fb.Text = fmt.Sprintf("Failed: %v", err)
		} else {
			log.Info("mutation finished")
			fb.Text = ops[op].done
		}
		e.feedback <- fb
	}()
}

func (e *Engine) calendarService() (remote.CalendarService, error) {
	svc, ok := e.calendars.Get()
	if !ok {
		return nil, remote.ErrNotConnected
	}
	return svc, nil
}

func (e *Engine) taskService() (remote.TaskService, error) {
	svc, ok := e.tasks.Get()
	if !ok {
		return nil, remote.ErrNotConnected
	}
	return svc, nil
}

// InsertEvent creates ev on the default calendar.
func (e *Engine) InsertEvent(ev model.Event) error {
	svc, err := e.calendarService()
	if err != nil {
		return err
	}
	calID := e.defaultCalendar
	e.dispatch(OpInsertEvent, logrus.Fields{"calendar": calID}, func(ctx context.Context) error {
		_, err := svc.InsertEvent(ctx, calID, ev)
		return err
	})
	return nil
}

// PatchEvent updates the non-empty fields of ev on an existing event.
func (e *Engine) PatchEvent(calendarID, id string, ev model.Event) error {
	svc, err := e.calendarService()
	if err != nil {
		return err
	}
	e.dispatch(OpPatchEvent, logrus.Fields{"calendar": calendarID, "id": id}, func(ctx context.Context) error {
		return svc.PatchEvent(ctx, calendarID, id, ev)
	})
	return nil
}

func (e *Engine) DeleteEvent(calendarID, id string) error {
	svc, err := e.calendarService()
	if err != nil {
		return err
	}
	e.dispatch(OpDeleteEvent, logrus.Fields{"calendar": calendarID, "id": id}, func(ctx context.Context) error {
		return svc.DeleteEvent(ctx, calendarID, id)
	})
	return nil
}

// InsertTask creates t on the first task list the remote returns.
func (e *Engine) InsertTask(t model.Task) error {
	svc, err := e.taskService()
	if err != nil {
		return err
	}
	e.dispatch(OpInsertTask, nil, func(ctx context.Context) error {
		lists, err := svc.ListTaskLists(ctx)
		if err != nil {
			return err
		}
		if len(lists) == 0 {
			return ErrNoTaskList
		}
		_, err = svc.InsertTask(ctx, lists[0].ID, t)
		return err
	})
	return nil
}

// PatchTask updates the non-empty fields of t on an existing task.
func (e *Engine) PatchTask(listID, id string, t model.Task) error {
	svc, err := e.taskService()
	if err != nil {
		return err
	}
	e.dispatch(OpPatchTask, logrus.Fields{"list": listID, "id": id}, func(ctx context.Context) error {
		return svc.PatchTask(ctx, listID, id, t)
	})
	return nil
}

func (e *Engine) DeleteTask(listID, id string) error {
	svc, err := e.taskService()
	if err != nil {
		return err
	}
	e.dispatch(OpDeleteTask, logrus.Fields{"list": listID, "id": id}, func(ctx context.Context) error {
		return svc.DeleteTask(ctx, listID, id)
	})
	return nil
}

// ToggleCompleted flips a task between needsAction and completed.
func (e *Engine) ToggleCompleted(entry model.TaskEntry) error {
	var next string
	switch entry.Task.Status {
	case model.TaskNeedsAction:
		next = model.TaskCompleted
	case model.TaskCompleted:
		next = model.TaskNeedsAction
	default:
		return ErrNoStatus
	}
	svc, err := e.taskService()
	if err != nil {
		return err
	}
	listID, id := entry.ListID, entry.Task.ID
	e.dispatch(OpToggleTask, logrus.Fields{"list": listID, "id": id, "status": next}, func(ctx context.Context) error {
		return svc.PatchTask(ctx, listID, id, model.Task{Status: next})
	})
	return nil
}

// ClearCompleted hides every completed task in listID.
func (e *Engine) ClearCompleted(listID string) error {
	svc, err := e.taskService()
	if err != nil {
		return err
	}
	e.dispatch(OpClearCompleted, logrus.Fields{"list": listID}, func(ctx context.Context) error {
		return svc.ClearCompleted(ctx, listID)
	})
	return nil
}
