package syncer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"calpersonal/internal/model"
	"calpersonal/internal/store"
)

// persister writes installed snapshots off the UI goroutine. Only the latest
// pending snapshot of each kind is kept; an older one that was never written
// is superseded.
type persister struct {
	ctx   context.Context
	store store.Store
	log   logrus.FieldLogger

	mu          sync.Mutex
	pendEvents  store.EventIndex
	hasEvents   bool
	pendTasks   []model.TaskEntry
	hasTasks    bool
	wake        chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	stopWaiting chan struct{}
}

func newPersister(ctx context.Context, s store.Store, log logrus.FieldLogger) *persister {
	p := &persister{
		ctx:         context.WithoutCancel(ctx),
		store:       s,
		log:         log,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopWaiting: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) events(idx store.EventIndex) {
	p.mu.Lock()
	p.pendEvents, p.hasEvents = idx, true
	p.mu.Unlock()
	p.signal()
}

func (p *persister) tasks(ts []model.TaskEntry) {
	p.mu.Lock()
	p.pendTasks, p.hasTasks = ts, true
	p.mu.Unlock()
	p.signal()
}

func (p *persister) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.stopWaiting:
			p.flush()
			return
		}
	}
}

func (p *persister) flush() {
	p.mu.Lock()
	events, hasEvents := p.pendEvents, p.hasEvents
	tasks, hasTasks := p.pendTasks, p.hasTasks
	p.pendEvents, p.hasEvents = nil, false
	p.pendTasks, p.hasTasks = nil, false
	p.mu.Unlock()

	if hasEvents {
		if err := p.store.SaveEvents(p.ctx, events); err != nil {
			p.log.WithError(err).WithField("doc", store.EventsDoc).Warn("cache save failed")
		}
	}
	if hasTasks {
		if err := p.store.SaveTasks(p.ctx, tasks); err != nil {
			p.log.WithError(err).WithField("doc", store.TasksDoc).Warn("cache save failed")
		}
	}
}

// close flushes whatever is pending and stops the writer.
func (p *persister) close() {
	p.closeOnce.Do(func() { close(p.stopWaiting) })
	<-p.done
}
