package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/leviathan-hq/larry/internal/adapters/mq/queue"
	worker "github.com/leviathan-hq/larry/internal/adapters/mq/worker"
	model "github.com/leviathan-hq/larry/internal/domain/model"
	logging "github.com/leviathan-hq/larry/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	announceChan chan worker.Announcement
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		announceChan: make(chan worker.Announcement, 10),
	}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan worker.Announcement {
	return mq.announceChan
}

func (mq *mockQueue) add(a worker.Announcement) {
	mq.announceChan <- a
}

func (mq *mockQueue) close() {
	close(mq.announceChan)
}

type mockNotifier struct {
	mu        sync.Mutex
	delivered []worker.Announcement
	failIDs   map[string]error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{failIDs: make(map[string]error)}
}

func (mn *mockNotifier) Deliver(_ context.Context, a worker.Announcement) error {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	if err, ok := mn.failIDs[a.ID]; ok {
		return err
	}
	mn.delivered = append(mn.delivered, a)
	return nil
}

func (mn *mockNotifier) deliveredCount() int {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	return len(mn.delivered)
}

func waitFor(check func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestDispatcher(t *testing.T) {
	convey.Convey("Given a dispatcher with a mock queue and notifier", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		mq := newMockQueue()
		mn := newMockNotifier()
		d := worker.NewDispatcher(mq, mn, worker.WithName("dispatch-test"))

		convey.Convey("When announcements are queued", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go d.Run(ctx)

			mq.add(model.Announcement{ID: "i1", Kind: "samples", UserID: "alice", Text: "alice logged samples"})
			mq.add(model.Announcement{ID: "i2", Kind: "awards", UserID: "bob", Text: "bob got a ribbon"})

			convey.Convey("Then each one is delivered to the notifier", func() {
				ok := waitFor(func() bool { return mn.deliveredCount() == 2 })
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a delivery fails", func() {
			mn.failIDs["bad"] = errors.New("webhook down")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go d.Run(ctx)

			mq.add(model.Announcement{ID: "bad", Kind: "samples", UserID: "alice"})
			mq.add(model.Announcement{ID: "good", Kind: "samples", UserID: "bob"})

			convey.Convey("Then the worker keeps going", func() {
				ok := waitFor(func() bool { return mn.deliveredCount() == 1 })
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the dispatcher is shut down", func() {
			ctx := context.Background()
			go d.Run(ctx)

			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			convey.Convey("Then shutdown returns before the deadline", func() {
				err := d.Shutdown(shutdownCtx)
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue closes", func() {
			ctx := context.Background()
			done := make(chan struct{})
			go func() {
				d.Run(ctx)
				close(done)
			}()

			mq.close()

			convey.Convey("Then the run loop exits on its own", func() {
				select {
				case <-done:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(2 * time.Second):
					convey.So(false, convey.ShouldBeTrue)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a dispatch pool over a real queue", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		mn := newMockNotifier()
		pool := worker.NewPool(3, q, mn)

		convey.Convey("When the pool is started and announcements flow", func() {
			ctx := context.Background()
			pool.Start(ctx)

			for i := 0; i < 20; i++ {
				q.Enqueue(ctx, model.Announcement{ID: string(rune('a' + i)), Kind: "samples"})
			}

			convey.Convey("Then all announcements are delivered", func() {
				ok := waitFor(func() bool { return mn.deliveredCount() == 20 })
				convey.So(ok, convey.ShouldBeTrue)

				pool.Stop()
			})
		})

		convey.Convey("When created with a non-positive worker count", func() {
			p := worker.NewPool(0, q, mn)

			convey.Convey("Then it falls back to the default", func() {
				convey.So(p, convey.ShouldNotBeNil)
			})
		})
	})
}
