// Package jobs defines the asynchronous work the receipt worker executes.
// Jobs travel through the Redis queue as JSON envelopes; nothing here is
// stored durably beyond the queue itself.
package jobs

import (
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobSubmissionReceipt   JobType = "submission_receipt"
	JobApplicationReceived JobType = "application_received"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobSubmissionReceipt, JobApplicationReceived:
		return true
	default:
		return false
	}
}

// Job is one unit of asynchronous work.
type Job struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	Payload   []byte    `json:"payload"` // raw json
	Attempts  int       `json:"attempts"`
	MaxTries  int       `json:"maxTries"`
	RunAt     time.Time `json:"runAt"`
	LastError *string   `json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewJob builds a pending job with defaults.
func NewJob(t JobType, payloadJSON []byte, runAt time.Time) (Job, error) {
	if !t.IsValid() {
		return Job{}, ErrInvalidJobType
	}

	now := time.Now().UTC()

	if runAt.IsZero() {
		runAt = now
	}

	return Job{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payloadJSON,
		MaxTries:  10,
		RunAt:     runAt,
		CreatedAt: now,
	}, nil
}
