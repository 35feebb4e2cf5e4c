package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bioassoc/memberhub/internal/domain/member"
	"github.com/bioassoc/memberhub/internal/http/middlewares"
	"github.com/bioassoc/memberhub/internal/jobs"
	"github.com/bioassoc/memberhub/internal/queue"
	"github.com/bioassoc/memberhub/internal/utils"
)

// TokenCookie holds the bearer token issued by the members API. HttpOnly,
// same-site strict, and it expires with the token itself.
const TokenCookie = "mh_token"

const notAuthenticatedMsg = "Not authenticated."

// PasswordReset is the slice of the members API client used outside the
// session store.
type PasswordReset interface {
	ForgotPassword(ctx context.Context, email string) error
}

type AuthHandler struct {
	cookies middlewares.CookieSettings
	reset   PasswordReset
	q       queue.Queue
}

func NewAuthHandler(cookies middlewares.CookieSettings, reset PasswordReset, q queue.Queue) *AuthHandler {
	return &AuthHandler{cookies: cookies, reset: reset, q: q}
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"firstName" binding:"required,min=1,max=80"`
	LastName  string `json:"lastName" binding:"required,min=1,max=80"`
	UserType  string `json:"userType" binding:"required,oneof=admin member applicant client"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req SignInRequest
	if !BindJSON(ctx, &req) {
		return
	}

	store, ok := middlewares.SessionFrom(ctx)
	if !ok {
		RespondInternal(ctx, "session unavailable")
		return
	}

	if !store.SignIn(ctx.Request.Context(), req.Email, req.Password) {
		RespondUnAuthorized(ctx, store.State().Err)
		return
	}

	h.setTokenCookie(ctx, store.Token(), store.TokenExpiry())

	ctx.JSON(http.StatusOK, store.State())
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest
	if !BindJSON(ctx, &req) {
		return
	}

	store, ok := middlewares.SessionFrom(ctx)
	if !ok {
		RespondInternal(ctx, "session unavailable")
		return
	}

	if !store.SignUp(ctx.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName, req.UserType) {
		RespondBadRequest(ctx, store.State().Err, nil)
		return
	}

	h.setTokenCookie(ctx, store.Token(), store.TokenExpiry())

	ctx.JSON(http.StatusCreated, store.State())
}

// SignOut always succeeds. The auth cookie is cleared even when the
// snapshot delete fails; the visitor is signed out either way.
func (h *AuthHandler) SignOut(ctx *gin.Context) {
	if store, ok := middlewares.SessionFrom(ctx); ok {
		store.SignOut(ctx.Request.Context())
	}

	h.clearTokenCookie(ctx)

	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	// Always answer 202: whether the address exists is not disclosed.
	_ = h.reset.ForgotPassword(ctx.Request.Context(), req.Email)

	ctx.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// Session returns the hydrated session state for the visitor.
func (h *AuthHandler) Session(ctx *gin.Context) {
	store, ok := middlewares.SessionFrom(ctx)
	if !ok {
		RespondInternal(ctx, "session unavailable")
		return
	}

	ctx.JSON(http.StatusOK, store.State())
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	store, ok := middlewares.SessionFrom(ctx)
	if !ok {
		RespondInternal(ctx, "session unavailable")
		return
	}

	store.MemberProfile(ctx.Request.Context())

	st := store.State()

	if st.Err != "" {
		h.respondActionErr(ctx, st.Err)
		return
	}

	ctx.JSON(http.StatusOK, st.Profile)
}

func (h *AuthHandler) CreateProfile(ctx *gin.Context) {
	var in member.ProfileInput
	if !BindJSON(ctx, &in) {
		return
	}

	store, ok := middlewares.SessionFrom(ctx)
	if !ok {
		RespondInternal(ctx, "session unavailable")
		return
	}

	if !store.CreateProfile(ctx.Request.Context(), in) {
		h.respondActionErr(ctx, store.State().Err)
		return
	}

	// The created profile is not echoed back; callers refresh it with a
	// GET when they need it.
	ctx.JSON(http.StatusCreated, gin.H{"status": "created"})
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	memberID := ctx.Param("memberId")
	if !utils.IsUUID(memberID) {
		RespondBadRequest(ctx, "memberId must be a UUID", nil)
		return
	}

	var in member.ProfileInput
	if !BindJSON(ctx, &in) {
		return
	}

	store, ok := middlewares.SessionFrom(ctx)
	if !ok {
		RespondInternal(ctx, "session unavailable")
		return
	}

	if !store.UpdateProfile(ctx.Request.Context(), memberID, in) {
		h.respondActionErr(ctx, store.State().Err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *AuthHandler) Apply(ctx *gin.Context) {
	var in member.ApplicationInput
	if !BindJSON(ctx, &in) {
		return
	}

	store, ok := middlewares.SessionFrom(ctx)
	if !ok {
		RespondInternal(ctx, "session unavailable")
		return
	}

	if !store.Apply(ctx.Request.Context(), in) {
		h.respondActionErr(ctx, store.State().Err)
		return
	}

	h.enqueueApplicationReceived(ctx, store.State().User, in)

	ctx.JSON(http.StatusAccepted, gin.H{"status": "submitted"})
}

// enqueueApplicationReceived queues the acknowledgement mail. Best effort:
// the application itself already landed upstream.
func (h *AuthHandler) enqueueApplicationReceived(ctx *gin.Context, u *member.User, in member.ApplicationInput) {
	if h.q == nil || u == nil {
		return
	}

	payload := jobs.ApplicationReceivedPayload{
		UserID:             u.ID,
		Email:              u.Email,
		Name:               u.FirstName + " " + u.LastName,
		SpecializationArea: in.SpecializationArea,
		RequestedAt:        time.Now().UTC(),
		RequestID:          middlewares.RequestIDFrom(ctx),
	}

	if err := jobs.ValidatePayload(jobs.JobApplicationReceived, payload); err != nil {
		return
	}

	raw, err := jobs.EncodePayload(jobs.JobApplicationReceived, payload)
	if err != nil {
		return
	}

	job, err := jobs.NewJob(jobs.JobApplicationReceived, raw, time.Time{})
	if err != nil {
		return
	}

	_ = h.q.Enqueue(ctx.Request.Context(), job)
}

func (h *AuthHandler) respondActionErr(ctx *gin.Context, msg string) {
	if msg == notAuthenticatedMsg {
		RespondUnAuthorized(ctx, msg)
		return
	}

	RespondBadRequest(ctx, msg, nil)
}

func (h *AuthHandler) setTokenCookie(ctx *gin.Context, token string, expiry time.Time) {
	maxAge := int(time.Until(expiry).Seconds())
	if maxAge <= 0 {
		maxAge = int((7 * 24 * time.Hour).Seconds())
	}

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(TokenCookie, token, maxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *AuthHandler) clearTokenCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(TokenCookie, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}
