package worker

import (
	"context"
	"time"

	"github.com/bioassoc/memberhub/internal/jobs"
)

// ProcessOne waits up to PollInterval for one job and executes it.
// Returns whether a job was handled; queue errors propagate to the loop.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	j, ok, err := w.q.Dequeue(ctx, w.cfg.PollInterval)

	if err != nil {
		return false, err
	}

	if !ok {
		return false, nil
	}

	w.execute(ctx, j)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) {
	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()

	h, ok := w.handlers[j.Type]

	var err error
	if !ok {
		err = jobs.ErrInvalidJobType
	} else {
		err = h(ctx, j)
	}

	result := "done"

	if err != nil {
		result = w.retryOrFail(ctx, j, err)
	}

	if w.prom != nil {
		w.prom.JobDuration.WithLabelValues(string(j.Type), result).Observe(time.Since(start).Seconds())
		w.prom.JobResults.WithLabelValues(string(j.Type), result).Inc()
	}
}

// retryOrFail requeues the job with backoff until MaxTries is reached.
func (w *Worker) retryOrFail(ctx context.Context, j jobs.Job, cause error) string {
	j.Attempts++
	msg := cause.Error()
	j.LastError = &msg

	if j.Attempts >= j.MaxTries {
		w.log.Error("job dead-lettered",
			"job_id", j.ID, "job_type", j.Type, "attempts", j.Attempts, "err", cause)
		return "failed"
	}

	j.RunAt = time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.q.Enqueue(ctx, j); err != nil {
		w.log.Error("requeue failed, job lost",
			"job_id", j.ID, "job_type", j.Type, "err", err)
		return "failed"
	}

	w.log.Warn("job scheduled for retry",
		"job_id", j.ID, "job_type", j.Type, "attempt", j.Attempts, "run_at", j.RunAt, "err", cause)
	return "retry"
}
