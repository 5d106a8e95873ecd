package model

import (
	"strings"
	"time"
)

const (
	TaskNeedsAction = "needsAction"
	TaskCompleted   = "completed"
)

// DueLayout is the wire shape of a task due date: midnight UTC, millisecond precision.
const DueLayout = "2006-01-02T00:00:00.000Z"

type Task struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	// Due is either empty or a DueLayout string.
	Due    string `json:"due,omitempty"`
	Notes  string `json:"notes,omitempty"`
	Status string `json:"status,omitempty"`
}

// TaskEntry pairs a task with the remote task list that owns it.
type TaskEntry struct {
	Task   Task   `json:"task"`
	ListID string `json:"listId"`
}

func FormatDue(d Date) string {
	return d.In(time.UTC).Format(DueLayout)
}

// DueDate parses the due field. Remote services sometimes return RFC 3339 with
// a different fractional part, so only the date prefix is trusted.
func (t Task) DueDate() (Date, bool) {
	due := strings.TrimSpace(t.Due)
	if len(due) < len(dateLayout) {
		return Date{}, false
	}
	d, err := ParseDate(due[:len(dateLayout)])
	if err != nil {
		return Date{}, false
	}
	return d, true
}

func (t Task) Done() bool { return t.Status == TaskCompleted }
