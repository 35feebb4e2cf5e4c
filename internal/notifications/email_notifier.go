package notifications

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
	// StaffInbox receives a copy of every receipt for follow-up.
	StaffInbox string
}

// EmailNotifier acknowledges a submission over SMTP: one mail to the
// submitter, one to the staff inbox when configured.
type EmailNotifier struct {
	cfg    EmailConfig
	dialer *gomail.Dialer
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
	}
}

func (n *EmailNotifier) SendSubmissionReceipt(ctx context.Context, in SubmissionReceiptInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := []*gomail.Message{n.receiptMessage(in)}

	if n.cfg.StaffInbox != "" {
		msgs = append(msgs, n.staffMessage(in))
	}

	if err := n.dialer.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("send receipt %s: %w", in.SubmissionID, err)
	}

	return nil
}

func (n *EmailNotifier) SendApplicationAck(ctx context.Context, in ApplicationAckInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", in.Email)
	m.SetHeader("Subject", "Your membership application was received")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour application (specialization: %s) is in review. You will hear from us soon.\n",
		in.Name, in.SpecializationArea,
	))

	msgs := []*gomail.Message{m}

	if n.cfg.StaffInbox != "" {
		s := gomail.NewMessage()
		s.SetHeader("From", n.cfg.From)
		s.SetHeader("To", n.cfg.StaffInbox)
		s.SetHeader("Subject", fmt.Sprintf("New membership application from %s", in.Name))
		s.SetBody("text/plain", fmt.Sprintf(
			"User: %s <%s>\nSpecialization: %s\n",
			in.UserID, in.Email, in.SpecializationArea,
		))
		msgs = append(msgs, s)
	}

	if err := n.dialer.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("send application ack for %s: %w", in.UserID, err)
	}

	return nil
}

func (n *EmailNotifier) receiptMessage(in SubmissionReceiptInput) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", in.Email)
	m.SetHeader("Subject", fmt.Sprintf("We received your %s submission", in.Kind))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nThanks for reaching out. Your reference number is %s.\n\nThe team will get back to you shortly.\n",
		in.Name, in.SubmissionID,
	))
	return m
}

func (n *EmailNotifier) staffMessage(in SubmissionReceiptInput) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.StaffInbox)
	m.SetHeader("Subject", fmt.Sprintf("[%s] new submission %s", in.Kind, in.SubmissionID))
	m.SetBody("text/plain", fmt.Sprintf(
		"Kind: %s\nFrom: %s <%s>\n\n%s\n",
		in.Kind, in.Name, in.Email, in.Summary,
	))
	return m
}
