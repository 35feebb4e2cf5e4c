package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bioassoc/memberhub/internal/session"
	"github.com/bioassoc/memberhub/internal/utils"
)

const (
	// SessionCookie identifies the visitor across requests. It carries an
	// opaque id, never the bearer token itself.
	SessionCookie = "mh_session"

	ctxSessionStore = "session_store"
)

// CookieSettings applies to every cookie the service sets.
type CookieSettings struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// Sessions builds one session.Store per request, keyed by the visitor's
// session cookie, hydrates it from the snapshot store, and parks it in
// the gin context for the handlers.
type Sessions struct {
	newStore func(id string) *session.Store
	cookies  CookieSettings
	log      *slog.Logger
}

func NewSessions(newStore func(id string) *session.Store, cookies CookieSettings, log *slog.Logger) *Sessions {
	if cookies.MaxAge <= 0 {
		cookies.MaxAge = 7 * 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}

	return &Sessions{newStore: newStore, cookies: cookies, log: log}
}

func (s *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)

		if err != nil || !utils.IsUUID(id) {
			id = uuid.NewString()
			s.setSessionCookie(c, id)
		}

		store := s.newStore(id)

		if err := store.Hydrate(c.Request.Context()); err != nil {
			// Hydration failure degrades to an anonymous session.
			s.log.Warn("session hydrate failed", "session_id", id, "err", err)
		}

		c.Set(ctxSessionStore, store)

		c.Next()
	}
}

// RequireAuth aborts with 401 unless the hydrated session is authenticated.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := SessionFrom(c)

		if !ok || !store.State().Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthenticated",
					"message": "Sign in to access this resource.",
				},
			})
			return
		}

		c.Next()
	}
}

func SessionFrom(c *gin.Context) (*session.Store, bool) {
	v, ok := c.Get(ctxSessionStore)
	if !ok {
		return nil, false
	}

	store, ok := v.(*session.Store)
	return store, ok
}

// Cookies exposes the shared cookie settings to the handlers that set
// the auth cookie.
func (s *Sessions) Cookies() CookieSettings { return s.cookies }

func (s *Sessions) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookie, id, int(s.cookies.MaxAge.Seconds()), "/", s.cookies.Domain, s.cookies.Secure, true)
}
