package jobs

import "time"

// SubmissionReceiptPayload acknowledges one public form submission.
// Keep the payload self-contained: the submission is not stored anywhere
// the worker could load it back from.
type SubmissionReceiptPayload struct {
	SubmissionID string    `json:"submissionId"`
	Kind         string    `json:"kind"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Summary      string    `json:"summary,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
	RequestID    string    `json:"requestId,omitempty"` // optional: correlation
}

// ApplicationReceivedPayload notifies staff that a membership application
// arrived through the authenticated apply flow.
type ApplicationReceivedPayload struct {
	UserID             string    `json:"userId"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	SpecializationArea string    `json:"specializationArea"`
	RequestedAt        time.Time `json:"requestedAt"`
	RequestID          string    `json:"requestId,omitempty"`
}
