package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bioassoc/memberhub/internal/botcheck"
	"github.com/bioassoc/memberhub/internal/domain/submission"
	"github.com/bioassoc/memberhub/internal/http/middlewares"
	"github.com/bioassoc/memberhub/internal/jobs"
	"github.com/bioassoc/memberhub/internal/queue"
)

// SubmissionRecorder matches observability.Prom's submission counter.
type SubmissionRecorder interface {
	ObserveSubmission(kind, outcome string)
}

// FormsHandler accepts the public form submissions: contact messages,
// testimonials, event sign-ups, and service bookings. Every submission
// carries a bot-check token that must verify before anything else runs.
type FormsHandler struct {
	verifier botcheck.Verifier
	q        queue.Queue
	rec      SubmissionRecorder
	log      *slog.Logger
}

func NewFormsHandler(verifier botcheck.Verifier, q queue.Queue, rec SubmissionRecorder, log *slog.Logger) *FormsHandler {
	if log == nil {
		log = slog.Default()
	}

	return &FormsHandler{verifier: verifier, q: q, rec: rec, log: log}
}

func (h *FormsHandler) Contact(ctx *gin.Context) {
	var req submission.ContactMessage
	if !BindJSON(ctx, &req) {
		h.count(submission.KindContact, "rejected")
		return
	}

	h.accept(ctx, submission.KindContact, req.BotCheckToken, req.Name, req.Email,
		fmt.Sprintf("Subject: %s\n\n%s", req.Subject, req.Message))
}

func (h *FormsHandler) Testimonial(ctx *gin.Context) {
	var req submission.Testimonial
	if !BindJSON(ctx, &req) {
		h.count(submission.KindTestimonial, "rejected")
		return
	}

	h.accept(ctx, submission.KindTestimonial, req.BotCheckToken, req.Name, req.Email,
		fmt.Sprintf("Organization: %s\n\n%s", req.Organization, req.Quote))
}

func (h *FormsHandler) EventSignup(ctx *gin.Context) {
	var req submission.EventSignup
	if !BindJSON(ctx, &req) {
		h.count(submission.KindEventSignup, "rejected")
		return
	}

	h.accept(ctx, submission.KindEventSignup, req.BotCheckToken, req.Name, req.Email,
		fmt.Sprintf("Event: %s\nOrganization: %s", req.EventID, req.Organization))
}

func (h *FormsHandler) ServiceBooking(ctx *gin.Context) {
	var req submission.ServiceBooking
	if !BindJSON(ctx, &req) {
		h.count(submission.KindServiceBooking, "rejected")
		return
	}

	h.accept(ctx, submission.KindServiceBooking, req.BotCheckToken, req.Name, req.Email,
		fmt.Sprintf("Service: %s\nPreferred date: %s\n\n%s", req.ServiceID, req.PreferredDate, req.Notes))
}

// accept runs the shared tail of every form route: bot check, receipt id,
// queue the acknowledgement, answer 202.
func (h *FormsHandler) accept(ctx *gin.Context, kind submission.Kind, token, name, email, summary string) {
	vctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.verifier.Verify(vctx, token, ctx.ClientIP()); err != nil {
		h.count(kind, "bot")
		h.log.Warn("bot check rejected submission", "kind", kind, "err", err)
		RespondError(ctx, http.StatusBadRequest, "bot_check_failed", "Could not verify the submission. Please try again.", nil)
		return
	}

	payload := jobs.SubmissionReceiptPayload{
		Kind:        string(kind),
		Name:        name,
		Email:       email,
		Summary:     summary,
		SubmittedAt: time.Now().UTC(),
		RequestID:   middlewares.RequestIDFrom(ctx),
	}

	id := h.enqueueReceipt(ctx.Request.Context(), payload)

	h.count(kind, "accepted")

	ctx.JSON(http.StatusAccepted, gin.H{"id": id, "status": "received"})
}

// enqueueReceipt queues the acknowledgement and returns the submission id.
// The submission is accepted even when the queue is down; the receipt mail
// is the only thing lost.
func (h *FormsHandler) enqueueReceipt(ctx context.Context, payload jobs.SubmissionReceiptPayload) string {
	payload.SubmissionID = uuid.NewString()

	if err := jobs.ValidatePayload(jobs.JobSubmissionReceipt, &payload); err != nil {
		h.log.Error("receipt payload invalid", "kind", payload.Kind, "err", err)
		return payload.SubmissionID
	}

	raw, err := jobs.EncodePayload(jobs.JobSubmissionReceipt, &payload)
	if err != nil {
		h.log.Error("receipt payload encode failed", "kind", payload.Kind, "err", err)
		return payload.SubmissionID
	}

	job, err := jobs.NewJob(jobs.JobSubmissionReceipt, raw, time.Time{})
	if err != nil {
		return payload.SubmissionID
	}

	// The job id doubles as the reference number on the receipt.
	job.ID = payload.SubmissionID

	if err := h.q.Enqueue(ctx, job); err != nil {
		h.log.Error("receipt enqueue failed", "kind", payload.Kind, "job_id", job.ID, "err", err)
	}

	return job.ID
}

func (h *FormsHandler) count(kind submission.Kind, outcome string) {
	if h.rec != nil {
		h.rec.ObserveSubmission(string(kind), outcome)
	}
}
