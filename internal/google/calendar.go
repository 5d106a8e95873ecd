package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"calpersonal/internal/model"
	"calpersonal/internal/remote"
)

// CalendarClient implements remote.CalendarService on Google Calendar.
type CalendarClient struct {
	svc *calendar.Service
}

var _ remote.CalendarService = (*CalendarClient)(nil)

func NewCalendarClient(ctx context.Context, opts ...option.ClientOption) (*CalendarClient, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &CalendarClient{svc: svc}, nil
}

func (c *CalendarClient) ListCalendars(ctx context.Context) ([]remote.Collection, error) {
	var out []remote.Collection
	err := c.svc.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			out = append(out, remote.Collection{ID: item.Id, Title: item.Summary})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return out, nil
}

func (c *CalendarClient) ListEvents(ctx context.Context, calendarID string, f remote.EventFilter) ([]model.Event, error) {
	call := c.svc.Events.List(calendarID).SingleEvents(f.SingleEvents)
	if f.OrderBy != "" {
		call = call.OrderBy(f.OrderBy)
	}
	if !f.TimeMin.IsZero() {
		call = call.TimeMin(f.TimeMin.Format(time.RFC3339))
	}
	if !f.TimeMax.IsZero() {
		call = call.TimeMax(f.TimeMax.Format(time.RFC3339))
	}
	var out []model.Event
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			out = append(out, fromAPIEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events %s: %w", calendarID, err)
	}
	return out, nil
}

func (c *CalendarClient) InsertEvent(ctx context.Context, calendarID string, ev model.Event) (model.Event, error) {
	created, err := c.svc.Events.Insert(calendarID, toAPIEvent(ev)).Context(ctx).Do()
	if err != nil {
		return model.Event{}, err
	}
	return fromAPIEvent(created), nil
}

func (c *CalendarClient) PatchEvent(ctx context.Context, calendarID, id string, ev model.Event) error {
	_, err := c.svc.Events.Patch(calendarID, id, toAPIEvent(ev)).Context(ctx).Do()
	return err
}

func (c *CalendarClient) DeleteEvent(ctx context.Context, calendarID, id string) error {
	return c.svc.Events.Delete(calendarID, id).Context(ctx).Do()
}

func fromAPIEvent(e *calendar.Event) model.Event {
	if e == nil {
		return model.Event{}
	}
	return model.Event{
		ID:    e.Id,
		Title: e.Summary,
		Start: fromAPITime(e.Start),
		End:   fromAPITime(e.End),
	}
}

func fromAPITime(t *calendar.EventDateTime) model.EventTime {
	if t == nil {
		return model.EventTime{}
	}
	if t.DateTime != "" {
		if ts, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return model.At(ts)
		}
	}
	if t.Date != "" {
		if d, err := model.ParseDate(t.Date); err == nil {
			return model.On(d)
		}
	}
	return model.EventTime{}
}

// toAPIEvent leaves unset fields empty so the same value serves inserts and
// partial patches.
func toAPIEvent(ev model.Event) *calendar.Event {
	return &calendar.Event{
		Id:      ev.ID,
		Summary: ev.Title,
		Start:   toAPITime(ev.Start),
		End:     toAPITime(ev.End),
	}
}

func toAPITime(t model.EventTime) *calendar.EventDateTime {
	switch {
	case t.DateTime != nil:
		return &calendar.EventDateTime{DateTime: t.DateTime.Format(time.RFC3339)}
	case t.Date != nil:
		return &calendar.EventDateTime{Date: t.Date.String()}
	default:
		return nil
	}
}
