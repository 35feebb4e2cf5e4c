package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// LogNotifier writes receipts to the log. It is the default delivery
// channel when no SMTP host is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendSubmissionReceipt(ctx context.Context, in SubmissionReceiptInput) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	n.log.InfoContext(ctx, "notification.submission_receipt",
		"submission_id", in.SubmissionID,
		"kind", in.Kind,
		"email", in.Email,
		"name", in.Name,
	)
	return nil
}

func (n *LogNotifier) SendApplicationAck(ctx context.Context, in ApplicationAckInput) error {
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	n.log.InfoContext(ctx, "notification.application_ack",
		"user_id", in.UserID,
		"email", in.Email,
		"specialization", in.SpecializationArea,
	)
	return nil
}
