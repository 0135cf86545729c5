package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/leviathan-hq/larry/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	// Test enqueue
	a1 := model.Announcement{ID: "i1", Kind: "samples", UserID: "alice", Text: "alice leveled up"}
	if !q.Enqueue(ctx, a1) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	// Test dequeue
	announceChan := q.Dequeue(ctx)
	a := <-announceChan
	if a.ID != "i1" {
		t.Errorf("expected i1, got %v", a.ID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Fill the queue
	a1 := model.Announcement{ID: "i1", Kind: "samples", UserID: "alice"}
	a2 := model.Announcement{ID: "i2", Kind: "awards", UserID: "bob"}
	a3 := model.Announcement{ID: "i3", Kind: "samples", UserID: "carol"}

	if !q.Enqueue(ctx, a1) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, a2) {
		t.Error("expected enqueue to succeed")
	}

	// Try to enqueue when full
	if q.Enqueue(ctx, a3) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	q.Enqueue(ctx, model.Announcement{ID: "i1"})
	q.Enqueue(ctx, model.Announcement{ID: "i2"})

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Enqueues after close are rejected
	if q.Enqueue(ctx, model.Announcement{ID: "i3"}) {
		t.Error("expected enqueue to fail after close")
	}

	// The dequeue channel drains then closes
	announceChan := q.Dequeue(ctx)
	count := 0
	for range announceChan {
		count++
	}
	if count != 2 {
		t.Errorf("expected to drain 2 announcements, got %d", count)
	}

	// Closing twice is safe
	if err := q.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	numGoroutines := 10
	numAnnouncements := 100
	q := NewInMemoryQueue(WithCapacity(numGoroutines * numAnnouncements))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numAnnouncements; j++ {
				a := model.Announcement{
					ID:     fmt.Sprintf("g%d-i%d", id, j),
					Kind:   "samples",
					UserID: fmt.Sprintf("user-%d", id),
				}
				if !q.Enqueue(ctx, a) {
					t.Errorf("enqueue failed for %s", a.ID)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if l := q.Len(ctx); l != numGoroutines*numAnnouncements {
		t.Errorf("expected length %d, got %d", numGoroutines*numAnnouncements, l)
	}
}

func TestInMemoryQueue_DequeueClosesWithQueue(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	announceChan := q.Dequeue(ctx)
	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	select {
	case _, ok := <-announceChan:
		if ok {
			t.Error("expected no announcement before close")
		}
	case <-time.After(time.Second):
		t.Error("expected dequeue channel to close with the queue")
	}
}
