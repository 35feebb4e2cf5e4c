package notifications

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyNotifier struct {
	err   error
	calls int
}

func (f *flakyNotifier) SendSubmissionReceipt(context.Context, SubmissionReceiptInput) error {
	f.calls++
	return f.err
}

func (f *flakyNotifier) SendApplicationAck(context.Context, ApplicationAckInput) error {
	f.calls++
	return f.err
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("smtp down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 3,
		Cooldown:         time.Hour,
	})

	for i := 0; i < 3; i++ {
		if err := n.SendSubmissionReceipt(context.Background(), SubmissionReceiptInput{}); err == nil {
			t.Fatal("expected failure")
		}
	}

	err := n.SendSubmissionReceipt(context.Background(), SubmissionReceiptInput{})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}

	if inner.calls != 3 {
		t.Errorf("inner calls = %d, open circuit must not reach the provider", inner.calls)
	}
}

func TestCircuitClosesAfterSuccessfulTrial(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("smtp down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
	})

	_ = n.SendSubmissionReceipt(context.Background(), SubmissionReceiptInput{})

	if err := n.SendSubmissionReceipt(context.Background(), SubmissionReceiptInput{}); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}

	time.Sleep(20 * time.Millisecond)
	inner.err = nil

	// Half-open trial call succeeds and closes the circuit.
	if err := n.SendApplicationAck(context.Background(), ApplicationAckInput{}); err != nil {
		t.Fatalf("trial call: %v", err)
	}

	if err := n.SendSubmissionReceipt(context.Background(), SubmissionReceiptInput{}); err != nil {
		t.Fatalf("closed circuit call: %v", err)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("smtp down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
	})

	_ = n.SendSubmissionReceipt(context.Background(), SubmissionReceiptInput{})
	time.Sleep(20 * time.Millisecond)

	// Trial call fails, so the circuit reopens immediately.
	if err := n.SendSubmissionReceipt(context.Background(), SubmissionReceiptInput{}); err == nil {
		t.Fatal("expected trial failure")
	}

	if err := n.SendSubmissionReceipt(context.Background(), SubmissionReceiptInput{}); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen after failed trial", err)
	}
}
