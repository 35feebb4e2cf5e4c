package jobs

import "strings"

// ValidatePayload performs minimal shape validation on decoded payloads
// before a job is enqueued.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	trim := func(s string) string { return strings.TrimSpace(s) }

	switch t {
	case JobSubmissionReceipt:
		var p SubmissionReceiptPayload
		switch v := payload.(type) {
		case SubmissionReceiptPayload:
			p = v
		case *SubmissionReceiptPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.SubmissionID) == "" || trim(p.Kind) == "" || trim(p.Email) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobApplicationReceived:
		var p ApplicationReceivedPayload
		switch v := payload.(type) {
		case ApplicationReceivedPayload:
			p = v
		case *ApplicationReceivedPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.UserID) == "" || trim(p.Email) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
