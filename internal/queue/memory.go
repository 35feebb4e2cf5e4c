package queue

import (
	"context"
	"sync"
	"time"

	"github.com/bioassoc/memberhub/internal/jobs"
)

// MemoryQueue is the in-process Queue used by tests and redis-less dev
// runs. Delayed jobs are checked lazily on Dequeue.
type MemoryQueue struct {
	mu      sync.Mutex
	ready   []jobs.Job
	delayed []jobs.Job
	now     func() time.Time
	wake    chan struct{}
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		now:  time.Now,
		wake: make(chan struct{}, 1),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, j jobs.Job) error {
	q.mu.Lock()
	if j.RunAt.After(q.now()) {
		q.delayed = append(q.delayed, j)
	} else {
		q.ready = append(q.ready, j)
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context, block time.Duration) (jobs.Job, bool, error) {
	deadline := time.NewTimer(block)
	defer deadline.Stop()

	for {
		if j, ok := q.pop(); ok {
			return j, true, nil
		}

		select {
		case <-ctx.Done():
			return jobs.Job{}, false, ctx.Err()
		case <-deadline.C:
			return jobs.Job{}, false, nil
		case <-q.wake:
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (q *MemoryQueue) pop() (jobs.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	remaining := q.delayed[:0]
	for _, j := range q.delayed {
		if !j.RunAt.After(now) {
			q.ready = append(q.ready, j)
		} else {
			remaining = append(remaining, j)
		}
	}
	q.delayed = remaining

	if len(q.ready) == 0 {
		return jobs.Job{}, false
	}

	j := q.ready[0]
	q.ready = q.ready[1:]
	return j, true
}
