package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"calpersonal/internal/format"
	"calpersonal/internal/model"
	"calpersonal/internal/store"
)

type agendaDay struct {
	Date   model.Date         `json:"date"`
	Events []model.EventEntry `json:"events"`
}

type agenda struct {
	From  model.Date        `json:"from"`
	To    model.Date        `json:"to"`
	Days  []agendaDay       `json:"days"`
	Tasks []model.TaskEntry `json:"tasks"`
}

func newAgendaCmd(app *App) *cobra.Command {
	var (
		date      string
		days      int
		completed bool
		outFormat string
		pretty    bool
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print cached events and tasks",
		Long:  "Print events and tasks from the local cache. No network access is made; run the TUI to refresh.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return errors.New("--days must be at least 1")
			}
			from := model.DateOf(time.Now().In(app.loc))
			if date != "" {
				d, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				from = d
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cache, err := loadCache(ctx, app)
			if err != nil {
				return err
			}

			a := buildAgenda(cache, from, days, completed)
			return writeOut(cmd, outFormat, pretty, a, a.eventRows(app.loc), a.taskRows())
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "First day (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&days, "days", 1, "Number of days")
	cmd.Flags().BoolVar(&completed, "completed", false, "Include completed tasks")
	cmd.Flags().StringVar(&outFormat, "format", envOr("CALPERSONAL_FORMAT", format.Table), "Output format (table|json)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func buildAgenda(cache store.Cache, from model.Date, days int, completed bool) agenda {
	a := agenda{
		From:  from,
		To:    from.AddDays(days - 1),
		Days:  make([]agendaDay, 0, days),
		Tasks: []model.TaskEntry{},
	}
	for i := 0; i < days; i++ {
		d := from.AddDays(i)
		events := cache.EventsOn(d)
		if events == nil {
			events = []model.EventEntry{}
		}
		a.Days = append(a.Days, agendaDay{Date: d, Events: events})
	}
	for _, t := range cache.Tasks {
		if t.Task.Done() && !completed {
			continue
		}
		a.Tasks = append(a.Tasks, t)
	}
	return a
}

func (a agenda) eventRows(loc *time.Location) format.Rows {
	r := format.Rows{
		Title:  fmt.Sprintf("Events %s", a.From),
		Header: []string{"DATE", "TIME", "TITLE", "CALENDAR"},
	}
	if a.To != a.From {
		r.Title = fmt.Sprintf("Events %s to %s", a.From, a.To)
	}
	for _, day := range a.Days {
		for _, e := range day.Events {
			r.Rows = append(r.Rows, []string{
				day.Date.String(),
				timeSpan(e.Event, loc),
				e.Event.DisplayTitle(),
				e.CalendarID,
			})
		}
	}
	if len(r.Rows) == 0 {
		r.Header = nil
		r.Rows = [][]string{{"No events"}}
	}
	return r
}

func (a agenda) taskRows() format.Rows {
	r := format.Rows{
		Title:  "Tasks",
		Header: []string{"", "DUE", "TITLE"},
	}
	for _, t := range a.Tasks {
		box := "[ ]"
		if t.Task.Done() {
			box = "[x]"
		}
		due := ""
		if d, ok := t.Task.DueDate(); ok {
			due = d.String()
		}
		r.Rows = append(r.Rows, []string{box, due, t.Task.Title})
	}
	if len(r.Rows) == 0 {
		r.Header = nil
		r.Rows = [][]string{{"No tasks"}}
	}
	return r
}

func timeSpan(ev model.Event, loc *time.Location) string {
	if ev.Start.DateTime == nil {
		return "all day"
	}
	s := ev.Start.DateTime.In(loc).Format("15:04")
	if ev.End.DateTime != nil {
		s += "-" + ev.End.DateTime.In(loc).Format("15:04")
	}
	return s
}
