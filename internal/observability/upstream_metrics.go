package observability

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// statusError is satisfied by memberapi.APIError without importing it here.
type statusError interface {
	error
	HTTPStatus() int
}

// ObserveUpstream wraps one logical upstream call, recording latency and
// classifying the failure when there is one.
func (p *Prom) ObserveUpstream(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.UpstreamErrorsTotal.WithLabelValues(op, classifyUpstreamErr(err)).Inc()
	}
	p.UpstreamDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifyUpstreamErr(err error) string {
	var se statusError
	if errors.As(err, &se) {
		switch code := se.HTTPStatus(); {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return "auth"
		case code == http.StatusNotFound:
			return "not_found"
		case code == http.StatusConflict:
			return "conflict"
		case code >= 400 && code < 500:
			return "validation"
		case code >= 500:
			return "upstream_5xx"
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "refused"):
		return "connection"
	default:
		return "unknown"
	}
}
