package notifications

import (
	"context"
	"fmt"

	"github.com/bioassoc/memberhub/internal/jobs"
	"github.com/bioassoc/memberhub/internal/queue/worker"
)

// JobHandlers maps each job type to the notifier call that delivers it.
// The worker retries whatever errors out here.
func JobHandlers(n Notifier) map[jobs.JobType]worker.HandlerFunc {
	return map[jobs.JobType]worker.HandlerFunc{
		jobs.JobSubmissionReceipt:   submissionReceiptHandler(n),
		jobs.JobApplicationReceived: applicationReceivedHandler(n),
	}
}

func submissionReceiptHandler(n Notifier) worker.HandlerFunc {
	return func(ctx context.Context, j jobs.Job) error {
		decoded, err := jobs.DecodePayload(j)
		if err != nil {
			return err
		}

		p, ok := decoded.(jobs.SubmissionReceiptPayload)
		if !ok {
			return fmt.Errorf("job %s: %w", j.ID, jobs.ErrPayloadTypeMismatch)
		}

		return n.SendSubmissionReceipt(ctx, SubmissionReceiptInput{
			SubmissionID: p.SubmissionID,
			Kind:         p.Kind,
			Name:         p.Name,
			Email:        p.Email,
			Summary:      p.Summary,
		})
	}
}

func applicationReceivedHandler(n Notifier) worker.HandlerFunc {
	return func(ctx context.Context, j jobs.Job) error {
		decoded, err := jobs.DecodePayload(j)
		if err != nil {
			return err
		}

		p, ok := decoded.(jobs.ApplicationReceivedPayload)
		if !ok {
			return fmt.Errorf("job %s: %w", j.ID, jobs.ErrPayloadTypeMismatch)
		}

		return n.SendApplicationAck(ctx, ApplicationAckInput{
			UserID:             p.UserID,
			Name:               p.Name,
			Email:              p.Email,
			SpecializationArea: p.SpecializationArea,
		})
	}
}
