// Package ics writes cached events as an iCalendar document.
package ics

import (
	"fmt"
	"io"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"

	"calpersonal/internal/model"
	"calpersonal/internal/store"
)

const productID = "-//calpersonal//calpersonal//EN"

// Options narrows an export. Zero From/To mean unbounded.
type Options struct {
	From model.Date
	To   model.Date
	// Stamp is written as DTSTAMP on every event.
	Stamp time.Time
	Name  string
}

// Build converts the events index into a calendar. Days are emitted in date
// order and events within a day in cache order. Events without an id get a
// uid derived from their owner calendar and position.
func Build(events store.EventIndex, opts Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	days := make([]model.Date, 0, len(events))
	for d := range events {
		if !opts.From.IsZero() && d.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && d.After(opts.To) {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for _, d := range days {
		for i, e := range events[d] {
			uid := e.Event.ID
			if uid == "" {
				uid = fmt.Sprintf("%s-%s-%d", e.CalendarID, d, i)
			}
			ve := cal.AddEvent(uid + "@calpersonal")
			ve.SetDtStampTime(stamp)
			ve.SetSummary(e.Event.DisplayTitle())
			setTime(ve.SetStartAt, ve.SetAllDayStartAt, e.Event.Start)
			setTime(ve.SetEndAt, ve.SetAllDayEndAt, e.Event.End)
		}
	}
	return cal
}

func setTime(timed, allDay func(time.Time, ...ical.PropertyParameter), t model.EventTime) {
	switch {
	case t.DateTime != nil:
		timed(*t.DateTime)
	case t.Date != nil:
		allDay(t.Date.In(time.UTC))
	}
}

// Write serializes the events index to w.
func Write(w io.Writer, events store.EventIndex, opts Options) error {
	return Build(events, opts).SerializeTo(w)
}
