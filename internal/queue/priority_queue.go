package queue

import (
	"container/heap"
	"time"

	"github.com/google/uuid"
)

/*
task is the queue-side execution state of one admitted job: priority,
FIFO sequence for tie-breaks, attempt count, and the earliest time the
next attempt may run. This state is owned here, not by the job row, so
backoff timing is observable and testable on its own.
*/
type task struct {
	jobID     uuid.UUID
	priority  int
	seq       uint64
	attempts  int
	notBefore time.Time
	index     int
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority == h[j].priority {
		return h[i].seq < h[j].seq
	}
	return h[i].priority < h[j].priority
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// waitingQueue is the priority-ordered set of admitted-but-not-running
// tasks for one job type. Not goroutine safe; the owning pool locks.
type waitingQueue struct {
	heap taskHeap
	byID map[uuid.UUID]*task
	seq  uint64
}

func newWaitingQueue() *waitingQueue {
	return &waitingQueue{byID: make(map[uuid.UUID]*task)}
}

// push admits a new job. Returns nil when the id is already waiting.
func (q *waitingQueue) push(jobID uuid.UUID, priority int) *task {
	if _, ok := q.byID[jobID]; ok {
		return nil
	}
	q.seq++
	t := &task{jobID: jobID, priority: priority, seq: q.seq}
	heap.Push(&q.heap, t)
	q.byID[jobID] = t
	return t
}

// requeue puts a previously dispatched task back, keeping its attempt
// count and backoff deadline.
func (q *waitingQueue) requeue(t *task) {
	if _, ok := q.byID[t.jobID]; ok {
		return
	}
	heap.Push(&q.heap, t)
	q.byID[t.jobID] = t
}

/*
popReady removes and returns the best dispatchable task: lowest
priority value, FIFO among equals, skipping tasks still inside their
backoff window. Returns nil when nothing is ready.
*/
func (q *waitingQueue) popReady(now time.Time) *task {
	var best *task
	for _, t := range q.heap {
		if t.notBefore.After(now) {
			continue
		}
		if best == nil || q.heap.Less(t.index, best.index) {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	heap.Remove(&q.heap, best.index)
	delete(q.byID, best.jobID)
	return best
}

func (q *waitingQueue) contains(jobID uuid.UUID) bool {
	_, ok := q.byID[jobID]
	return ok
}

func (q *waitingQueue) len() int { return len(q.heap) }
