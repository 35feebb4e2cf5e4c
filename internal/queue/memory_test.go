package queue

import (
	"context"
	"testing"
	"time"

	"github.com/bioassoc/memberhub/internal/jobs"
)

func queuedJob(t *testing.T, runAt time.Time) jobs.Job {
	t.Helper()

	j, err := jobs.NewJob(jobs.JobSubmissionReceipt, []byte(`{"submissionId":"sub-1","kind":"contact","email":"a@b.co"}`), runAt)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	return j
}

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	first := queuedJob(t, time.Time{})
	second := queuedJob(t, time.Time{})
	_ = q.Enqueue(ctx, first)
	_ = q.Enqueue(ctx, second)

	j, ok, err := q.Dequeue(ctx, 50*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("dequeue ok=%v err=%v", ok, err)
	}
	if j.ID != first.ID {
		t.Errorf("got %q, want the first job", j.ID)
	}
}

func TestMemoryQueueBlocksUntilTimeout(t *testing.T) {
	q := NewMemoryQueue()

	start := time.Now()
	_, ok, err := q.Dequeue(context.Background(), 30*time.Millisecond)
	if err != nil || ok {
		t.Fatalf("dequeue ok=%v err=%v", ok, err)
	}
	if time.Since(start) < 25*time.Millisecond {
		t.Error("dequeue returned before the block window elapsed")
	}
}

func TestMemoryQueuePromotesDelayedJobs(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	j := queuedJob(t, time.Now().Add(30*time.Millisecond))
	_ = q.Enqueue(ctx, j)

	if _, ok, _ := q.Dequeue(ctx, 5*time.Millisecond); ok {
		t.Fatal("delayed job served early")
	}

	got, ok, err := q.Dequeue(ctx, 200*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("dequeue ok=%v err=%v", ok, err)
	}
	if got.ID != j.ID {
		t.Errorf("got %q", got.ID)
	}
}

func TestMemoryQueueDequeueHonorsContext(t *testing.T) {
	q := NewMemoryQueue()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := q.Dequeue(ctx, time.Second); err == nil {
		t.Fatal("expected context error")
	}
}
