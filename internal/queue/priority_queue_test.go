package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWaitingQueueOrdering(t *testing.T) {
	q := newWaitingQueue()
	low := uuid.New()
	high := uuid.New()
	mid := uuid.New()
	q.push(low, 9)
	q.push(high, 1)
	q.push(mid, 5)

	now := time.Now()
	for _, want := range []uuid.UUID{high, mid, low} {
		got := q.popReady(now)
		if got == nil || got.jobID != want {
			t.Fatalf("popped %v, want %v", got, want)
		}
	}
	if q.popReady(now) != nil {
		t.Fatalf("expected empty queue")
	}
}

func TestWaitingQueueFIFOWithinPriority(t *testing.T) {
	q := newWaitingQueue()
	first := uuid.New()
	second := uuid.New()
	q.push(first, 5)
	q.push(second, 5)

	now := time.Now()
	if got := q.popReady(now); got.jobID != first {
		t.Fatalf("equal priorities must dispatch in admission order")
	}
	if got := q.popReady(now); got.jobID != second {
		t.Fatalf("equal priorities must dispatch in admission order")
	}
}

func TestWaitingQueueDeduplicates(t *testing.T) {
	q := newWaitingQueue()
	id := uuid.New()
	if q.push(id, 5) == nil {
		t.Fatalf("first push should admit")
	}
	if q.push(id, 1) != nil {
		t.Fatalf("second push of the same id should be a no-op")
	}
	if q.len() != 1 {
		t.Fatalf("queue length %d, want 1", q.len())
	}
}

func TestWaitingQueueHonorsBackoffDeadline(t *testing.T) {
	q := newWaitingQueue()
	ready := uuid.New()
	delayed := uuid.New()

	q.push(ready, 5)
	q.push(delayed, 1)

	// Simulate a retry: pop both, requeue the high-priority one with a
	// future deadline.
	now := time.Now()
	dt := q.popReady(now)
	if dt == nil || dt.jobID != delayed {
		t.Fatalf("priority 1 should pop first")
	}
	q.popReady(now)
	dt.notBefore = now.Add(time.Hour)
	q.requeue(dt)
	q.push(ready, 5)

	got := q.popReady(now)
	if got == nil || got.jobID != ready {
		t.Fatalf("task inside its backoff window must not dispatch")
	}
	if q.popReady(now) != nil {
		t.Fatalf("delayed task dispatched before its deadline")
	}
	if got := q.popReady(now.Add(2 * time.Hour)); got == nil || got.jobID != delayed {
		t.Fatalf("delayed task must dispatch after its deadline")
	}
}
