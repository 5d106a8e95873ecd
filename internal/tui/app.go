package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"calpersonal/internal/calendar"
	"calpersonal/internal/model"
	"calpersonal/internal/store"
	"calpersonal/internal/syncer"
)

// Engine is the part of the sync engine the UI drives. All calls happen on the
// bubbletea goroutine.
type Engine interface {
	Cache() store.Cache
	Drain() []syncer.Message
	Refreshing(kind syncer.Kind) bool
	Refresh() error

	InsertEvent(ev model.Event) error
	PatchEvent(calendarID, id string, ev model.Event) error
	DeleteEvent(calendarID, id string) error
	InsertTask(t model.Task) error
	PatchTask(listID, id string, t model.Task) error
	DeleteTask(listID, id string) error
	ToggleCompleted(entry model.TaskEntry) error
	ClearCompleted(listID string) error
}

type focusKind int

const (
	focusCalendar focusKind = iota
	focusEvents
	focusTasks
)

// focus is the active view. notes only applies to focusTasks.
type focus struct {
	kind  focusKind
	notes bool
}

var (
	calendarFocus = focus{kind: focusCalendar}
	eventsFocus   = focus{kind: focusEvents}
	tasksFocus    = focus{kind: focusTasks}
	notesFocus    = focus{kind: focusTasks, notes: true}
)

// editState is an open edit. The target entry is captured when editing
// starts so later refreshes cannot retarget the submit.
type editState struct {
	editor   lineEditor
	kind     focusKind
	isUpdate bool
	date     model.Date
	event    model.EventEntry
	task     model.TaskEntry
}

type tickMsg struct{}

type appModel struct {
	engine Engine
	loc    *time.Location
	log    logrus.FieldLogger
	tick   time.Duration
	now    func() time.Time

	today   model.Date
	current model.Date
	focus   focus
	cursor  int
	edit    *editState

	needsRefresh bool
	status       statusReporter

	keys     keyMap
	editKeys editKeyMap
	help     help.Model
	spinner  spinner.Model

	width  int
	height int
}

// Options configures the TUI.
type Options struct {
	Engine   Engine
	Location *time.Location
	Log      logrus.FieldLogger
	// Tick is the drain interval.
	Tick time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func newAppModel(opts Options) appModel {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Tick <= 0 {
		opts.Tick = store.DefaultTick
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	today := model.DateOf(opts.Now().In(opts.Location))

	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(colorSurfaceFg)
	h.Styles.ShortDesc = mutedStyle()
	h.Styles.ShortSeparator = mutedStyle()

	return appModel{
		engine:   opts.Engine,
		loc:      opts.Location,
		log:      opts.Log,
		tick:     opts.Tick,
		now:      opts.Now,
		today:    today,
		current:  today,
		focus:    calendarFocus,
		keys:     defaultKeyMap(),
		editKeys: defaultEditKeyMap(),
		help:     h,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(colorSuccess)),
		),
		width:  80,
		height: 24,
	}
}

func (m appModel) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m appModel) Init() tea.Cmd { return m.tickCmd() }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.onTick()
		return m, m.tickCmd()

	case tea.KeyMsg:
		if m.edit != nil {
			return m.updateEdit(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

// onTick applies background completions and housekeeping for one tick.
func (m *appModel) onTick() {
	now := m.now()
	for _, msg := range m.engine.Drain() {
		m.apply(msg, now)
	}
	m.clampCursor()

	if m.needsRefresh {
		m.needsRefresh = false
		if err := m.engine.Refresh(); err != nil {
			m.status.offline(now)
		}
	}
	m.status.expire(now)

	if m.refreshing() {
		m.spinner, _ = m.spinner.Update(m.spinner.Tick())
	}
}

func (m *appModel) apply(msg syncer.Message, now time.Time) {
	switch msg := msg.(type) {
	case syncer.HandleResolved:
		m.status.resolve(msg.Kind, msg.Available)
	case syncer.Feedback:
		if msg.OK {
			m.status.set(msg.Text, severitySuccess, now)
		} else {
			m.status.fail(msg.Text, now)
		}
	case syncer.RefreshFailed:
		m.status.fail("Failed: "+msg.Err.Error(), now)
	case syncer.EventsRefreshed, syncer.TasksRefreshed:
		// The engine already installed the snapshot; the next render reads it.
	}
}

func (m appModel) refreshing() bool {
	return m.engine.Refreshing(syncer.KindEvents) || m.engine.Refreshing(syncer.KindTasks)
}

func (m appModel) dayEvents() []model.EventEntry {
	return m.engine.Cache().EventsOn(m.current)
}

func (m appModel) tasks() []model.TaskEntry {
	return m.engine.Cache().Tasks
}

// listLen is the length of the focused list, or 0 on the calendar.
func (m appModel) listLen() int {
	switch m.focus.kind {
	case focusEvents:
		return len(m.dayEvents())
	case focusTasks:
		return len(m.tasks())
	default:
		return 0
	}
}

func (m *appModel) clampCursor() {
	m.cursor = calendar.ClampCursor(m.cursor, m.listLen())
}

func (m appModel) selectedEvent() (model.EventEntry, bool) {
	evs := m.dayEvents()
	if m.focus.kind != focusEvents || m.cursor < 0 || m.cursor >= len(evs) {
		return model.EventEntry{}, false
	}
	return evs[m.cursor], true
}

func (m appModel) selectedTask() (model.TaskEntry, bool) {
	ts := m.tasks()
	if m.focus.kind != focusTasks || m.cursor < 0 || m.cursor >= len(ts) {
		return model.TaskEntry{}, false
	}
	return ts[m.cursor], true
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Back):
		switch {
		case m.focus == notesFocus:
			m.focus = tasksFocus
		case m.focus.kind == focusCalendar:
			return m, tea.Quit
		default:
			m.focus = calendarFocus
		}

	case key.Matches(msg, k.Events):
		m.toggleOverlay(eventsFocus)
	case key.Matches(msg, k.Tasks):
		m.toggleOverlay(tasksFocus)

	case key.Matches(msg, k.Open):
		if m.focus == tasksFocus {
			m.focus = notesFocus
		}

	case key.Matches(msg, k.Up):
		m.move(calendar.MotionUp, -1)
	case key.Matches(msg, k.Down):
		m.move(calendar.MotionDown, 1)
	case key.Matches(msg, k.Left):
		m.move(calendar.MotionLeft, 0)
	case key.Matches(msg, k.Right):
		m.move(calendar.MotionRight, 0)
	case key.Matches(msg, k.NextMonth):
		m.move(calendar.MotionNextMonth, 0)
	case key.Matches(msg, k.PrevMonth):
		m.move(calendar.MotionPrevMonth, 0)
	case key.Matches(msg, k.NextYear):
		m.move(calendar.MotionNextYear, 0)
	case key.Matches(msg, k.PrevYear):
		m.move(calendar.MotionPrevYear, 0)
	case key.Matches(msg, k.Today):
		m.move(calendar.MotionToday, 0)

	case key.Matches(msg, k.Edit):
		m.startEdit(true)
	case key.Matches(msg, k.Create):
		m.startEdit(false)
	case key.Matches(msg, k.Delete):
		m.deleteSelected()
	case key.Matches(msg, k.Toggle):
		m.toggleSelected()
	case key.Matches(msg, k.Clear):
		m.clearCompleted()
	case key.Matches(msg, k.Refresh):
		m.needsRefresh = true
	}
	return m, nil
}

// toggleOverlay opens f with the cursor at the top, or returns to the
// calendar if f is already open.
func (m *appModel) toggleOverlay(f focus) {
	if m.focus.kind == f.kind {
		m.focus = calendarFocus
		return
	}
	m.focus = f
	m.cursor = 0
}

// move applies a date motion on the calendar, or steps the list cursor by
// delta in an overlay. Left and right are no-ops in overlays.
func (m *appModel) move(motion calendar.Motion, delta int) {
	if m.focus.kind == focusCalendar {
		m.current = calendar.Move(m.current, m.today, motion)
		return
	}
	if delta != 0 {
		m.cursor = calendar.StepCursor(m.cursor, delta, m.listLen())
	}
}
