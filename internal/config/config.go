package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env  string `env:"APP_ENV, default=dev"`
	Port int    `env:"PORT, default=8080"`

	// Upstream collaborators. All authoritative data lives behind these.
	MembersAPIBaseURL string `env:"MEMBERS_API_BASE_URL, default=http://127.0.0.1:9000"`
	ContentAPIBaseURL string `env:"CONTENT_API_BASE_URL, default=http://127.0.0.1:9000"`

	BotCheck BotCheckConfig `env:", prefix=BOTCHECK_"`
	Redis    RedisConfig    `env:", prefix=REDIS_"`
	SMTP     SMTPConfig     `env:", prefix=SMTP_"`

	SessionTTLDays         int      `env:"SESSION_TTL_DAYS, default=7"`
	CookieDomain           string   `env:"COOKIE_DOMAIN"`
	AllowedOrigins         []string `env:"CORS_ALLOWED_ORIGINS, delimiter=,"`
	ContentCacheTTLSeconds int      `env:"CONTENT_CACHE_TTL_SECONDS, default=60"`

	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
}

type BotCheckConfig struct {
	VerifyURL string  `env:"VERIFY_URL, default=https://www.google.com/recaptcha/api/siteverify"`
	Secret    string  `env:"SECRET"`
	MinScore  float64 `env:"MIN_SCORE, default=0.5"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR, default=127.0.0.1:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB, default=0"`
}

type SMTPConfig struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT, default=587"`
	User string `env:"USER"`
	Pass string `env:"PASSWORD"`
	From string `env:"FROM, default=no-reply@bioassoc.org"`
	// Where submission receipts are forwarded for staff follow-up.
	StaffInbox string `env:"STAFF_INBOX"`
}

// Load reads .env (if present) and then the process environment.
func Load(ctx context.Context) (Config, error) {
	// A missing .env file is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) SessionTTL() time.Duration {
	days := c.SessionTTLDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

func (c Config) ContentCacheTTL() time.Duration {
	secs := c.ContentCacheTTLSeconds
	if secs <= 0 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
