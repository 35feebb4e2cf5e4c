package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/bioassoc/memberhub/internal/domain/content"
)

func TestClientListAndGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/content/events":
			_, _ = w.Write([]byte(`{"items":[{"id":"e-1","title":"Symposium"}]}`))
		case "/content/events/e-1":
			_, _ = w.Write([]byte(`{"id":"e-1","title":"Symposium"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	events, err := c.Events(context.Background())
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Symposium" {
		t.Errorf("events = %+v", events)
	}

	ev, err := c.Event(context.Background(), "e-1")
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	if ev.ID != "e-1" {
		t.Errorf("event = %+v", ev)
	}

	_, err = c.Event(context.Background(), "e-404")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClientUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	if _, err := c.Projects(context.Background()); err == nil {
		t.Fatal("expected error on 502")
	}
}
