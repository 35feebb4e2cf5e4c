// Package notifications delivers acknowledgement messages for form
// submissions and membership applications.
package notifications

import "context"

// SubmissionReceiptInput carries what a receipt notification needs. The
// submission itself is not persisted anywhere; this payload is all the
// delivery channel ever sees.
type SubmissionReceiptInput struct {
	SubmissionID string
	Kind         string
	Name         string
	Email        string
	Summary      string
}

// ApplicationAckInput acknowledges a membership application and alerts
// staff that one is waiting for review.
type ApplicationAckInput struct {
	UserID             string
	Name               string
	Email              string
	SpecializationArea string
}

type Notifier interface {
	SendSubmissionReceipt(ctx context.Context, input SubmissionReceiptInput) error
	SendApplicationAck(ctx context.Context, input ApplicationAckInput) error
}
