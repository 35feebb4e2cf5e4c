// Package http wires the public HTTP surface: session routes, public
// form submissions, the content catalog, and operational endpoints.
package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/bioassoc/memberhub/internal/botcheck"
	"github.com/bioassoc/memberhub/internal/config"
	"github.com/bioassoc/memberhub/internal/content"
	"github.com/bioassoc/memberhub/internal/http/handlers"
	"github.com/bioassoc/memberhub/internal/http/middlewares"
	"github.com/bioassoc/memberhub/internal/observability"
	"github.com/bioassoc/memberhub/internal/queue"
	"github.com/bioassoc/memberhub/internal/session"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Deps carries everything the router needs; main builds it once.
type Deps struct {
	Prom     *observability.Prom
	Registry *prometheus.Registry

	// NewStore builds the per-visitor session store.
	NewStore func(id string) *session.Store

	Catalog  content.Source
	Verifier botcheck.Verifier
	Queue    queue.Queue
	Reset    handlers.PasswordReset

	// Ping checks the snapshot/queue backend for readiness.
	Ping func(ctx context.Context) error
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("memberhub"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// operational endpoints
	health := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/swagger", handlers.SwaggerUI)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	cookies := middlewares.CookieSettings{
		Domain: cfg.CookieDomain,
		Secure: cfg.Env != "dev",
		MaxAge: cfg.SessionTTL(),
	}

	sessions := middlewares.NewSessions(deps.NewStore, cookies, log)

	authRL := middlewares.NewRateLimiter(20, time.Minute)
	formsRL := middlewares.NewRateLimiter(10, time.Minute)

	// session surface
	authHandler := handlers.NewAuthHandler(cookies, deps.Reset, deps.Queue)

	auth := r.Group("/auth")
	auth.Use(sessions.Middleware())
	auth.Use(authRL.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		auth.POST("/sign-in", authHandler.SignIn)
		auth.POST("/sign-up", authHandler.SignUp)
		auth.POST("/sign-out", authHandler.SignOut)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.GET("/session", authHandler.Session)

		member := auth.Group("")
		member.Use(middlewares.RequireAuth())
		{
			member.GET("/profile", authHandler.Profile)
			member.POST("/profile", authHandler.CreateProfile)
			member.PUT("/profile/:memberId", authHandler.UpdateProfile)
			member.POST("/apply", authHandler.Apply)
		}
	}

	// public form submissions
	var rec handlers.SubmissionRecorder
	if deps.Prom != nil {
		rec = deps.Prom
	}

	formsHandler := handlers.NewFormsHandler(deps.Verifier, deps.Queue, rec, log)

	forms := r.Group("/forms")
	forms.Use(formsRL.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		forms.POST("/contact", formsHandler.Contact)
		forms.POST("/testimonials", formsHandler.Testimonial)
		forms.POST("/event-signups", formsHandler.EventSignup)
		forms.POST("/service-bookings", formsHandler.ServiceBooking)
	}

	// public content catalog
	contentHandler := handlers.NewContentHandler(deps.Catalog)

	cat := r.Group("/content")
	{
		cat.GET("/projects", contentHandler.Projects)
		cat.GET("/projects/:id", contentHandler.Project)
		cat.GET("/events", contentHandler.Events)
		cat.GET("/events/:id", contentHandler.Event)
		cat.GET("/services", contentHandler.Services)
		cat.GET("/services/:id", contentHandler.Service)
		cat.GET("/posts", contentHandler.Posts)
		cat.GET("/posts/:slug", contentHandler.Post)
		cat.GET("/whitepapers", contentHandler.Whitepapers)
	}

	return r
}
