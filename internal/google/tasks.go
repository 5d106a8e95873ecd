package google

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"calpersonal/internal/model"
	"calpersonal/internal/remote"
)

// TaskClient implements remote.TaskService on Google Tasks.
type TaskClient struct {
	svc *tasks.Service
}

var _ remote.TaskService = (*TaskClient)(nil)

func NewTaskClient(ctx context.Context, opts ...option.ClientOption) (*TaskClient, error) {
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create tasks service: %w", err)
	}
	return &TaskClient{svc: svc}, nil
}

func (c *TaskClient) ListTaskLists(ctx context.Context) ([]remote.Collection, error) {
	var out []remote.Collection
	err := c.svc.Tasklists.List().Pages(ctx, func(page *tasks.TaskLists) error {
		for _, item := range page.Items {
			out = append(out, remote.Collection{ID: item.Id, Title: item.Title})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list task lists: %w", err)
	}
	return out, nil
}

func (c *TaskClient) ListTasks(ctx context.Context, listID string) ([]model.Task, error) {
	var out []model.Task
	err := c.svc.Tasks.List(listID).ShowCompleted(true).ShowHidden(true).Pages(ctx, func(page *tasks.Tasks) error {
		for _, item := range page.Items {
			out = append(out, fromAPITask(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks %s: %w", listID, err)
	}
	return out, nil
}

func (c *TaskClient) InsertTask(ctx context.Context, listID string, t model.Task) (model.Task, error) {
	created, err := c.svc.Tasks.Insert(listID, toAPITask(t)).Context(ctx).Do()
	if err != nil {
		return model.Task{}, err
	}
	return fromAPITask(created), nil
}

func (c *TaskClient) PatchTask(ctx context.Context, listID, id string, t model.Task) error {
	_, err := c.svc.Tasks.Patch(listID, id, toAPITask(t)).Context(ctx).Do()
	return err
}

func (c *TaskClient) DeleteTask(ctx context.Context, listID, id string) error {
	return c.svc.Tasks.Delete(listID, id).Context(ctx).Do()
}

func (c *TaskClient) ClearCompleted(ctx context.Context, listID string) error {
	return c.svc.Tasks.Clear(listID).Context(ctx).Do()
}

func fromAPITask(t *tasks.Task) model.Task {
	if t == nil {
		return model.Task{}
	}
	return model.Task{
		ID:     t.Id,
		Title:  t.Title,
		Due:    t.Due,
		Notes:  t.Notes,
		Status: t.Status,
	}
}

func toAPITask(t model.Task) *tasks.Task {
	return &tasks.Task{
		Id:     t.ID,
		Title:  t.Title,
		Due:    t.Due,
		Notes:  t.Notes,
		Status: t.Status,
	}
}
