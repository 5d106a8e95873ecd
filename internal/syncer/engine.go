// Package syncer runs remote fetches and mutations off the UI thread and
// reconciles their results into the local cache.
//
// Every method on Engine except Close must be called from the UI goroutine.
// Background work only ever talks back through channels, which Drain reads
// once per tick; the cache is therefore never shared across goroutines.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"calpersonal/internal/model"
	"calpersonal/internal/remote"
	"calpersonal/internal/store"
)

// ErrNoTaskList is reported when a task is created but the account has no
// task list to put it in.
var ErrNoTaskList = errors.New("no task list")

// ErrNoStatus is returned by ToggleCompleted for a task without a status.
var ErrNoStatus = errors.New("task has no status")

const feedbackBuffer = 64

type Options struct {
	Store    store.Store
	Location *time.Location
	Log      logrus.FieldLogger
	// DefaultCalendar receives new events.
	DefaultCalendar string
	// RefreshCron, if set, schedules background refreshes.
	RefreshCron string
}

type eventsResult struct {
	events store.EventIndex
	err    error
}

type tasksResult struct {
	tasks []model.TaskEntry
	err   error
}

type Engine struct {
	ctx    context.Context
	cancel context.CancelFunc

	store           store.Store
	loc             *time.Location
	log             logrus.FieldLogger
	defaultCalendar string

	cache     store.Cache
	calendars remote.Handle[remote.CalendarService]
	tasks     remote.Handle[remote.TaskService]

	// Per-kind result channels, replaced by every refresh. A nil channel
	// means no refresh is in flight.
	eventsCh  chan eventsResult
	tasksCh   chan tasksResult
	eventsGen atomic.Uint64
	tasksGen  atomic.Uint64

	feedback     chan Feedback
	calHandleCh  chan remote.Handle[remote.CalendarService]
	taskHandleCh chan remote.Handle[remote.TaskService]
	requests     chan struct{}

	persist *persister
	cron    *cron.Cron
}

// New loads the cache and prepares the engine. No remote work starts until
// Start is called.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("syncer: nil store")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.DefaultCalendar == "" {
		opts.DefaultCalendar = store.DefaultCalendar
	}

	cache := opts.Store.Load(ctx)
	cache.Events = cache.Events.Reindex(opts.Location)

	bg, cancel := context.WithCancel(context.Background())
	e := &Engine{
		ctx:             bg,
		cancel:          cancel,
		store:           opts.Store,
		loc:             opts.Location,
		log:             opts.Log,
		defaultCalendar: opts.DefaultCalendar,
		cache:           cache,
		feedback:        make(chan Feedback, feedbackBuffer),
		calHandleCh:     make(chan remote.Handle[remote.CalendarService], 1),
		taskHandleCh:    make(chan remote.Handle[remote.TaskService], 1),
		requests:        make(chan struct{}, 1),
	}
	e.persist = newPersister(bg, opts.Store, opts.Log)

	if opts.RefreshCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(opts.RefreshCron, e.requestRefresh); err != nil {
			e.Close()
			return nil, fmt.Errorf("refresh_cron %q: %w", opts.RefreshCron, err)
		}
		e.cron = c
	}
	return e, nil
}

// Start acquires both remote handles in the background and starts the
// refresh schedule.
func (e *Engine) Start(auth remote.AuthProvider) {
	go func() {
		e.calHandleCh <- auth.CalendarHandle(e.ctx)
	}()
	go func() {
		e.taskHandleCh <- auth.TaskHandle(e.ctx)
	}()
	if e.cron != nil {
		e.cron.Start()
	}
}

// Close stops scheduling, cancels in-flight remote calls and waits for
// pending cache writes.
func (e *Engine) Close() {
	if e.cron != nil {
		<-e.cron.Stop().Done()
	}
	e.cancel()
	e.persist.close()
}

// Cache is the currently installed snapshot.
func (e *Engine) Cache() store.Cache { return e.cache }

func (e *Engine) Location() *time.Location { return e.loc }

// Refreshing reports whether a refresh of kind is in flight.
func (e *Engine) Refreshing(kind Kind) bool {
	if kind == KindTasks {
		return e.tasksCh != nil
	}
	return e.eventsCh != nil
}

// Online reports which handles are present.
func (e *Engine) Online() (events, tasks bool) {
	return e.calendars.Available(), e.tasks.Available()
}

func (e *Engine) requestRefresh() {
	select {
	case e.requests <- struct{}{}:
	default:
	}
}

// Drain performs one non-blocking receive on each channel, in order: events,
// tasks, feedback, calendar handle, task handle, scheduled refresh requests.
// Further messages queued on a channel wait for the next tick.
func (e *Engine) Drain() []Message {
	var out []Message

	if e.eventsCh != nil {
		select {
		case r := <-e.eventsCh:
			e.eventsCh = nil
			if r.err != nil {
				out = append(out, RefreshFailed{Kind: KindEvents, Err: r.err})
				break
			}
			e.cache.Events = r.events
			e.persist.events(r.events)
			out = append(out, EventsRefreshed{Events: r.events})
		default:
		}
	}

	if e.tasksCh != nil {
		select {
		case r := <-e.tasksCh:
			e.tasksCh = nil
			if r.err != nil {
				out = append(out, RefreshFailed{Kind: KindTasks, Err: r.err})
				break
			}
			e.cache.Tasks = r.tasks
			e.persist.tasks(r.tasks)
			out = append(out, TasksRefreshed{Tasks: r.tasks})
		default:
		}
	}

	select {
	case fb := <-e.feedback:
		out = append(out, fb)
		if fb.OK {
			_ = e.refresh(fb.Op.Kind())
		}
	default:
	}

	select {
	case h := <-e.calHandleCh:
		e.calendars = h
		out = append(out, HandleResolved{Kind: KindEvents, Available: h.Available()})
		if h.Available() {
			_ = e.RefreshEvents()
		}
	default:
	}

	select {
	case h := <-e.taskHandleCh:
		e.tasks = h
		out = append(out, HandleResolved{Kind: KindTasks, Available: h.Available()})
		if h.Available() {
			_ = e.RefreshTasks()
		}
	default:
	}

	select {
	case <-e.requests:
		if err := e.Refresh(); err != nil {
			e.log.WithError(err).Debug("scheduled refresh skipped")
		}
	default:
	}

	return out
}

func (e *Engine) refresh(kind Kind) error {
	if kind == KindTasks {
		return e.RefreshTasks()
	}
	return e.RefreshEvents()
}

// Refresh starts a refresh of every kind that has a handle. It returns
// remote.ErrNotConnected only if neither does.
func (e *Engine) Refresh() error {
	errEvents := e.RefreshEvents()
	errTasks := e.RefreshTasks()
	if errEvents != nil && errTasks != nil {
		return remote.ErrNotConnected
	}
	return nil
}

// RefreshEvents re-fetches every calendar. A refresh still running from an
// earlier call is abandoned: its result is never installed.
func (e *Engine) RefreshEvents() error {
	svc, ok := e.calendars.Get()
	if !ok {
		return remote.ErrNotConnected
	}
	gen := e.eventsGen.Add(1)
	ch := make(chan eventsResult, 1)
	e.eventsCh = ch
	log := e.log.WithFields(logrus.Fields{"kind": KindEvents, "op": "refresh", "op_id": uuid.NewString()})
	log.Debug("refresh started")

	go func() {
		events, err := fetchEvents(e.ctx, svc, e.loc, log)
		if e.eventsGen.Load() != gen {
			log.Debug("refresh superseded")
			return
		}
		if err != nil {
			log.WithError(err).Warn("refresh failed")
		} else {
			log.WithField("days", len(events)).Info("refresh finished")
		}
		ch <- eventsResult{events: events, err: err}
	}()
	return nil
}

// RefreshTasks re-fetches every task list, with the same supersede rule as
// RefreshEvents.
func (e *Engine) RefreshTasks() error {
	svc, ok := e.tasks.Get()
	if !ok {
		return remote.ErrNotConnected
	}
	gen := e.tasksGen.Add(1)
	ch := make(chan tasksResult, 1)
	e.tasksCh = ch
	log := e.log.WithFields(logrus.Fields{"kind": KindTasks, "op": "refresh", "op_id": uuid.NewString()})
	log.Debug("refresh started")

	go func() {
		tasks, err := fetchTasks(e.ctx, svc, log)
		if e.tasksGen.Load() != gen {
			log.Debug("refresh superseded")
			return
		}
		if err != nil {
			log.WithError(err).Warn("refresh failed")
		} else {
			log.WithField("tasks", len(tasks)).Info("refresh finished")
		}
		ch <- tasksResult{tasks: tasks, err: err}
	}()
	return nil
}

// fetchEvents lists every calendar and its events. Failing to enumerate the
// calendars fails the refresh; a single calendar failing is logged and skipped.
func fetchEvents(ctx context.Context, svc remote.CalendarService, loc *time.Location, log logrus.FieldLogger) (store.EventIndex, error) {
	cals, err := svc.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}
	var entries []model.EventEntry
	filter := remote.EventFilter{SingleEvents: true, OrderBy: "startTime"}
	for _, cal := range cals {
		evs, err := svc.ListEvents(ctx, cal.ID, filter)
		if err != nil {
			log.WithError(err).WithField("calendar", cal.ID).Warn("list events failed")
			continue
		}
		for _, ev := range evs {
			entries = append(entries, model.EventEntry{Event: ev, CalendarID: cal.ID})
		}
	}
	return store.IndexEvents(entries, loc), nil
}

func fetchTasks(ctx context.Context, svc remote.TaskService, log logrus.FieldLogger) ([]model.TaskEntry, error) {
	lists, err := svc.ListTaskLists(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.TaskEntry
	for _, l := range lists {
		ts, err := svc.ListTasks(ctx, l.ID)
		if err != nil {
			log.WithError(err).WithField("list", l.ID).Warn("list tasks failed")
			continue
		}
		for _, t := range ts {
			out = append(out, model.TaskEntry{Task: t, ListID: l.ID})
		}
	}
	return out, nil
}
