// Package queue defines the contract for enqueuing and consuming
// announcements awaiting broadcast dispatch.
package queue

import (
	"context"
	"sync"

	"github.com/leviathan-hq/larry/internal/domain/model"
	"github.com/leviathan-hq/larry/pkg/metrics"
)

// defaultCapacity bounds the in-memory announcement backlog.
const defaultCapacity = 1024

// Announcement is the payload type flowing through the queue.
type Announcement = model.Announcement

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an announcement to the queue.
	// Returns false if the queue is full and the announcement was dropped.
	Enqueue(ctx context.Context, a Announcement) bool

	// Dequeue returns a channel that receives announcements as they
	// become available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Announcement

	// Len returns the current number of queued announcements.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, enqueues are rejected
	// and the dequeue channel drains then closes.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	announcements chan Announcement
	capacity      int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.announcements = make(chan Announcement, q.capacity)

	metrics.UpdateAnnounceQueueCapacity(q.capacity)
	metrics.UpdateAnnounceQueueSize(0)
	return q
}

// Enqueue adds an announcement to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a Announcement) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordAnnounceDropped()
		return false
	}

	select {
	case q.announcements <- a:
		metrics.RecordAnnounceEnqueued()
		metrics.UpdateAnnounceQueueSize(len(q.announcements))
		return true
	case <-ctx.Done():
		metrics.RecordAnnounceDropped()
		return false
	default:
		metrics.RecordAnnounceDropped()
		return false
	}
}

// Dequeue returns a channel that receives announcements as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Announcement {
	out := make(chan Announcement)
	go func() {
		defer close(out)
		for a := range q.announcements {
			select {
			case out <- a:
				metrics.UpdateAnnounceQueueSize(len(q.announcements))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued announcements.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.announcements)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.announcements)
	q.closed = true
	return nil
}
