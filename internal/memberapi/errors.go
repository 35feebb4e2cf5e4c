package memberapi

import (
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindAuth        Kind = "auth"
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindUnavailable Kind = "unavailable"
)

// APIError is the typed form of a non-2xx members API response. The remote
// API is inconsistent about its error bodies: sometimes a messages list,
// sometimes a single error string, sometimes nothing usable. All of that
// shape-sniffing happens once, in decodeError, and callers only ever see
// this struct.
type APIError struct {
	Status   int
	Code     string
	Messages []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("members api: status=%d %s", e.Status, e.Flatten())
}

// HTTPStatus exposes the upstream status for metric classification.
func (e *APIError) HTTPStatus() int { return e.Status }

func (e *APIError) Kind() Kind {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return KindAuth
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status >= 400 && e.Status < 500:
		return KindValidation
	default:
		return KindUnavailable
	}
}

// Flatten reduces the error to one display string: the joined messages
// list when present, then the single error code, then a generic fallback.
func (e *APIError) Flatten() string {
	msgs := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if s := strings.TrimSpace(m); s != "" {
			msgs = append(msgs, s)
		}
	}

	if len(msgs) > 0 {
		return strings.Join(msgs, ", ")
	}

	if s := strings.TrimSpace(e.Code); s != "" {
		return s
	}

	return "Something went wrong. Please try again."
}
