// Package worker defines the dispatch workers that deliver queued
// announcements to the configured broadcast sink.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/leviathan-hq/larry/internal/domain/model"
	"github.com/leviathan-hq/larry/pkg/logger"
	"github.com/leviathan-hq/larry/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
)

// Announcement is what dispatch workers read off the queue.
type Announcement = model.Announcement

// Notifier delivers an announcement to the outside world. Delivery is
// best-effort: errors are counted and logged, never retried.
type Notifier interface {
	Deliver(ctx context.Context, a Announcement) error
}

// Queue defines how workers receive announcements.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Announcement
}

// Dispatcher processes queued announcements using the provided Notifier.
type Dispatcher struct {
	queue    Queue
	notifier Notifier
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewDispatcher creates a new dispatch worker with configuration options.
func NewDispatcher(queue Queue, notifier Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:    queue,
		notifier: notifier,
		name:     "dispatch",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named(d.name)
	}
	return d
}

// Run starts the dispatch loop until ctx is canceled or the queue closes.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	announcements := d.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		case a, ok := <-announcements:
			if !ok {
				return
			}
			if err := d.notifier.Deliver(ctx, a); err != nil {
				metrics.RecordAnnounceFailure()
				d.logger.Error(ctx, "announcement delivery failed",
					logger.String("interaction", a.ID),
					logger.String("kind", a.Kind),
					logger.Error(err),
				)
				continue
			}
			metrics.RecordAnnounceDelivered()
		}
	}
}

// Shutdown gracefully stops the dispatcher.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	close(d.shutdown)
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple dispatch workers reading from one queue.
type Pool struct {
	dispatchers []*Dispatcher
}

// NewPool creates a new dispatch pool.
func NewPool(workerCount int, queue Queue, notifier Notifier) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{dispatchers: make([]*Dispatcher, workerCount)}
	for i := 0; i < workerCount; i++ {
		p.dispatchers[i] = NewDispatcher(queue, notifier,
			WithName("dispatch-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateDispatchWorkers(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, d := range p.dispatchers {
		go d.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	for _, d := range p.dispatchers {
		close(d.shutdown)
	}
	for _, d := range p.dispatchers {
		select {
		case <-d.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateDispatchWorkers(0)
}

// LogNotifier delivers announcements to the structured log. It is the
// default sink when no gateway webhook is wired in.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Get().Named("broadcast")
	}
	return &LogNotifier{logger: log}
}

// Deliver implements Notifier.
func (n *LogNotifier) Deliver(ctx context.Context, a Announcement) error {
	n.logger.Info(ctx, "broadcast",
		logger.String("kind", a.Kind),
		logger.String("user", a.UserID),
		logger.String("text", a.Text),
	)
	return nil
}
