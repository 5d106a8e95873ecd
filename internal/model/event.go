package model

import "time"

// EventTime is either a zoned instant (DateTime) or an all-day date (Date).
// Exactly one is set on a well-formed start/end; both nil means "unset" and is
// used by partial patches that only touch the title.
type EventTime struct {
	DateTime *time.Time `json:"dateTime,omitempty"`
	Date     *Date      `json:"date,omitempty"`
}

// At returns a timed EventTime. The instant is stored in UTC; the display zone
// is applied at render time.
func At(t time.Time) EventTime {
	u := t.UTC()
	return EventTime{DateTime: &u}
}

// On returns an all-day EventTime.
func On(d Date) EventTime {
	return EventTime{Date: &d}
}

func (t EventTime) IsZero() bool { return t.DateTime == nil && t.Date == nil }

func (t EventTime) AllDay() bool { return t.DateTime == nil && t.Date != nil }

// LocalDate resolves the calendar date of t under loc. Timed values are
// converted to loc; all-day values use the literal date.
func (t EventTime) LocalDate(loc *time.Location) (Date, bool) {
	switch {
	case t.DateTime != nil:
		if loc == nil {
			loc = time.UTC
		}
		return DateOf(t.DateTime.In(loc)), true
	case t.Date != nil:
		return *t.Date, true
	default:
		return Date{}, false
	}
}

type Event struct {
	// ID is empty until the remote store has assigned one.
	ID    string    `json:"id,omitempty"`
	Title string    `json:"summary,omitempty"`
	Start EventTime `json:"start"`
	End   EventTime `json:"end"`
}

// EventEntry pairs an event with the remote calendar that owns it.
type EventEntry struct {
	Event      Event  `json:"event"`
	CalendarID string `json:"calendarId"`
}

func (e Event) DisplayTitle() string {
	if e.Title == "" {
		return "Untitled"
	}
	return e.Title
}
