package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeSubmissionReceipt(t *testing.T) {
	in := SubmissionReceiptPayload{
		SubmissionID: "sub-1",
		Kind:         "testimonial",
		Name:         "Ada",
		Email:        "ada@example.org",
		SubmittedAt:  time.Now().UTC().Truncate(time.Second),
	}

	raw, err := EncodePayload(JobSubmissionReceipt, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	j, err := NewJob(JobSubmissionReceipt, raw, time.Time{})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if j.ID == "" || j.MaxTries != 10 {
		t.Errorf("job defaults: %+v", j)
	}

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	out, ok := decoded.(SubmissionReceiptPayload)
	if !ok {
		t.Fatalf("decoded type %T", decoded)
	}
	if out != in {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestEncodeRejectsMismatchedPayload(t *testing.T) {
	_, err := EncodePayload(JobSubmissionReceipt, ApplicationReceivedPayload{UserID: "u-1"})
	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("err = %v, want ErrPayloadTypeMismatch", err)
	}
}

func TestNewJobRejectsUnknownType(t *testing.T) {
	_, err := NewJob(JobType("mystery"), nil, time.Time{})
	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("err = %v, want ErrInvalidJobType", err)
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	_, err := DecodePayload(Job{Type: JobSubmissionReceipt})
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("err = %v, want ErrInvalidJobPayload", err)
	}
}

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		t       JobType
		payload any
		wantErr error
	}{
		{
			name: "valid receipt",
			t:    JobSubmissionReceipt,
			payload: SubmissionReceiptPayload{
				SubmissionID: "sub-1", Kind: "contact", Email: "ada@example.org",
			},
		},
		{
			name:    "blank email",
			t:       JobSubmissionReceipt,
			payload: SubmissionReceiptPayload{SubmissionID: "sub-1", Kind: "contact", Email: "  "},
			wantErr: ErrInvalidJobPayload,
		},
		{
			name:    "wrong type",
			t:       JobApplicationReceived,
			payload: SubmissionReceiptPayload{},
			wantErr: ErrPayloadTypeMismatch,
		},
		{
			name:    "valid application",
			t:       JobApplicationReceived,
			payload: &ApplicationReceivedPayload{UserID: "u-1", Email: "ada@example.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.t, tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
