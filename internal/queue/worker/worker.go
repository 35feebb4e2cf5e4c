// Package worker runs the receipt delivery loop: dequeue a job, dispatch
// it to the handler for its type, requeue with backoff on failure.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/bioassoc/memberhub/internal/jobs"
	"github.com/bioassoc/memberhub/internal/observability"
	"github.com/bioassoc/memberhub/internal/queue"
)

type HandlerFunc func(ctx context.Context, j jobs.Job) error

type Config struct {
	// PollInterval bounds each blocking dequeue.
	PollInterval time.Duration
	WorkerID     string
}

type Worker struct {
	cfg      Config
	q        queue.Queue
	handlers map[jobs.JobType]HandlerFunc
	prom     *observability.Prom
	log      *slog.Logger
}

func New(cfg Config, q queue.Queue, handlers map[jobs.JobType]HandlerFunc, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:      cfg,
		q:        q,
		handlers: handlers,
		prom:     prom,
		log:      log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker started", "worker_id", w.cfg.WorkerID)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal", "worker_id", w.cfg.WorkerID)
			return nil
		default:
		}

		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error("dequeue failed", "err", err)
			// back off briefly so a dead redis doesn't spin the loop
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.cfg.PollInterval):
			}
		}
	}
}
