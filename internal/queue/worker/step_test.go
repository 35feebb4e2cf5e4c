package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bioassoc/memberhub/internal/jobs"
	"github.com/bioassoc/memberhub/internal/queue"
)

func testJob(t *testing.T) jobs.Job {
	t.Helper()

	raw, err := jobs.EncodePayload(jobs.JobSubmissionReceipt, jobs.SubmissionReceiptPayload{
		SubmissionID: "sub-1",
		Kind:         "contact",
		Name:         "Ada",
		Email:        "ada@example.org",
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	j, err := jobs.NewJob(jobs.JobSubmissionReceipt, raw, time.Time{})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	return j
}

func TestProcessOneDispatchesByType(t *testing.T) {
	q := queue.NewMemoryQueue()
	j := testJob(t)
	if err := q.Enqueue(context.Background(), j); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var handled []string
	w := New(Config{PollInterval: 100 * time.Millisecond}, q, map[jobs.JobType]HandlerFunc{
		jobs.JobSubmissionReceipt: func(_ context.Context, j jobs.Job) error {
			handled = append(handled, j.ID)
			return nil
		},
	}, nil, nil)

	ok, err := w.ProcessOne(context.Background())
	if err != nil || !ok {
		t.Fatalf("ProcessOne ok=%v err=%v", ok, err)
	}

	if len(handled) != 1 || handled[0] != j.ID {
		t.Errorf("handled = %v", handled)
	}
}

func TestFailedJobIsRetriedWithBackoff(t *testing.T) {
	q := queue.NewMemoryQueue()
	j := testJob(t)
	_ = q.Enqueue(context.Background(), j)

	w := New(Config{PollInterval: 100 * time.Millisecond}, q, map[jobs.JobType]HandlerFunc{
		jobs.JobSubmissionReceipt: func(context.Context, jobs.Job) error {
			return errors.New("provider down")
		},
	}, nil, nil)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}

	// The retry is scheduled in the future, so an immediate dequeue
	// must come back empty.
	if _, ok, _ := q.Dequeue(context.Background(), 20*time.Millisecond); ok {
		t.Fatal("retry was not delayed")
	}
}

func TestJobDeadLettersAtMaxTries(t *testing.T) {
	q := queue.NewMemoryQueue()
	j := testJob(t)
	j.Attempts = j.MaxTries - 1
	_ = q.Enqueue(context.Background(), j)

	calls := 0
	w := New(Config{PollInterval: 100 * time.Millisecond}, q, map[jobs.JobType]HandlerFunc{
		jobs.JobSubmissionReceipt: func(context.Context, jobs.Job) error {
			calls++
			return errors.New("still down")
		},
	}, nil, nil)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}

	if calls != 1 {
		t.Fatalf("handler calls = %d", calls)
	}

	// Dead-lettered: nothing requeued, even after the backoff window.
	if _, ok, _ := q.Dequeue(context.Background(), 20*time.Millisecond); ok {
		t.Error("dead-lettered job was requeued")
	}
}

func TestUnknownJobTypeIsNotRetriedForever(t *testing.T) {
	q := queue.NewMemoryQueue()
	j := testJob(t)
	_ = q.Enqueue(context.Background(), j)

	// No handler registered for the type.
	w := New(Config{PollInterval: 100 * time.Millisecond}, q, map[jobs.JobType]HandlerFunc{}, nil, nil)

	ok, err := w.ProcessOne(context.Background())
	if err != nil || !ok {
		t.Fatalf("ProcessOne ok=%v err=%v", ok, err)
	}
}

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 1; attempt <= 12; attempt++ {
		d := ExponentialBackoff(attempt)
		if d < prev {
			// Jitter allows small wobble; the cap bounds everything.
			if d < 5*time.Minute-time.Second {
				t.Errorf("backoff shrank at attempt %d: %v < %v", attempt, d, prev)
			}
		}
		if d > 5*time.Minute+time.Second {
			t.Errorf("backoff above cap at attempt %d: %v", attempt, d)
		}
		prev = d
	}
}
