package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"calpersonal/internal/syncer"
)

// statusAutoClearAfter controls how long a finished change status stays visible.
const statusAutoClearAfter = 4 * time.Second

type severity int

const (
	severityInfo severity = iota
	severityPending
	severitySuccess
	severityError
)

func (s severity) style() lipgloss.Style {
	switch s {
	case severityPending:
		return lipgloss.NewStyle().Foreground(colorPending)
	case severitySuccess:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case severityError:
		return lipgloss.NewStyle().Foreground(colorError)
	default:
		return lipgloss.NewStyle().Foreground(colorSurfaceFg)
	}
}

type authState int

const (
	authAuthenticating authState = iota
	authOnline
	authOffline
)

func (a authState) String() string {
	switch a {
	case authOnline:
		return "Online"
	case authOffline:
		return "Offline"
	default:
		return "Authenticating"
	}
}

func (a authState) style() lipgloss.Style {
	switch a {
	case authOnline:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case authOffline:
		return mutedStyle()
	default:
		return lipgloss.NewStyle().Foreground(colorPending)
	}
}

// statusReporter holds the change line and the auth label. The refreshing
// line is derived from the engine on every render.
type statusReporter struct {
	text  string
	sev   severity
	setAt time.Time

	auth         authState
	eventsOnline bool
	tasksOnline  bool
}

func (s *statusReporter) set(text string, sev severity, now time.Time) {
	s.text = text
	s.sev = sev
	s.setAt = now
}

func (s *statusReporter) pending(text string, now time.Time) { s.set(text, severityPending, now) }

func (s *statusReporter) fail(text string, now time.Time) { s.set(text, severityError, now) }

func (s *statusReporter) offline(now time.Time) { s.set("Offline", severityInfo, now) }

// expire clears a finished status once it has been visible long enough.
// Pending statuses stay until their feedback arrives.
func (s *statusReporter) expire(now time.Time) {
	if s.text == "" || s.sev == severityPending {
		return
	}
	if now.Sub(s.setAt) >= statusAutoClearAfter {
		s.text = ""
		s.sev = severityInfo
	}
}

// resolve records one handle acquisition. Each acquisition recomputes the
// label from the handles seen so far.
func (s *statusReporter) resolve(kind syncer.Kind, available bool) {
	if kind == syncer.KindTasks {
		s.tasksOnline = available
	} else {
		s.eventsOnline = available
	}
	if s.eventsOnline || s.tasksOnline {
		s.auth = authOnline
	} else {
		s.auth = authOffline
	}
}

func (s statusReporter) view() string {
	if s.text == "" {
		return ""
	}
	return s.sev.style().Render(s.text)
}
