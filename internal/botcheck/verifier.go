// Package botcheck verifies the bot-check token every public form
// submission carries against a third-party verification service.
package botcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultMinScore = 0.5

var (
	ErrTokenRejected = errors.New("bot check token rejected")
	ErrLowScore      = errors.New("bot check score below threshold")
)

type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type Config struct {
	VerifyURL string
	Secret    string
	MinScore  float64
	Timeout   time.Duration
}

type HTTPVerifier struct {
	cfg  Config
	http *http.Client
}

func NewHTTPVerifier(cfg Config) *HTTPVerifier {
	if cfg.MinScore <= 0 {
		cfg.MinScore = DefaultMinScore
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &HTTPVerifier{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to the verification endpoint and accepts it only
// when the service reports success with a score at or above MinScore.
func (v *HTTPVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	form := url.Values{}
	form.Set("secret", v.cfg.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("bot check request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("bot check: unexpected status %d", res.StatusCode)
	}

	var vr verifyResponse
	if err := json.NewDecoder(res.Body).Decode(&vr); err != nil {
		return fmt.Errorf("bot check decode: %w", err)
	}

	if !vr.Success {
		return fmt.Errorf("%w: %s", ErrTokenRejected, strings.Join(vr.ErrorCodes, ","))
	}

	if vr.Score < v.cfg.MinScore {
		return fmt.Errorf("%w: score=%.2f min=%.2f", ErrLowScore, vr.Score, v.cfg.MinScore)
	}

	return nil
}
