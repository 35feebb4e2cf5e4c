// Package content fetches the public catalog (projects, events, services,
// posts, whitepapers) from the external content API and caches reads.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bioassoc/memberhub/internal/domain/content"
)

// Recorder matches observability.Prom's upstream hook. Tests pass nil.
type Recorder interface {
	ObserveUpstream(op string, fn func() error) error
}

type Client struct {
	baseURL string
	http    *http.Client
	rec     Recorder
}

func NewClient(baseURL string, rec Recorder) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		rec:     rec,
	}
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) Projects(ctx context.Context) ([]content.Project, error) {
	return list[content.Project](ctx, c, "projects", "/content/projects")
}

func (c *Client) Project(ctx context.Context, id string) (content.Project, error) {
	return get[content.Project](ctx, c, "project", "/content/projects/"+id)
}

func (c *Client) Events(ctx context.Context) ([]content.Event, error) {
	return list[content.Event](ctx, c, "events", "/content/events")
}

func (c *Client) Event(ctx context.Context, id string) (content.Event, error) {
	return get[content.Event](ctx, c, "event", "/content/events/"+id)
}

func (c *Client) Services(ctx context.Context) ([]content.Service, error) {
	return list[content.Service](ctx, c, "services", "/content/services")
}

func (c *Client) Service(ctx context.Context, id string) (content.Service, error) {
	return get[content.Service](ctx, c, "service", "/content/services/"+id)
}

func (c *Client) Posts(ctx context.Context) ([]content.Post, error) {
	return list[content.Post](ctx, c, "posts", "/content/posts")
}

func (c *Client) Post(ctx context.Context, slug string) (content.Post, error) {
	return get[content.Post](ctx, c, "post", "/content/posts/"+slug)
}

func (c *Client) Whitepapers(ctx context.Context) ([]content.Whitepaper, error) {
	return list[content.Whitepaper](ctx, c, "whitepapers", "/content/whitepapers")
}

func list[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	var out listResponse[T]
	err := c.observe(op, func() error {
		return c.fetch(ctx, path, &out)
	})
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func get[T any](ctx context.Context, c *Client, op, path string) (T, error) {
	var out T
	err := c.observe(op, func() error {
		return c.fetch(ctx, path, &out)
	})
	return out, err
}

func (c *Client) observe(op string, fn func() error) error {
	if c.rec == nil {
		return fn()
	}
	return c.rec.ObserveUpstream(op, fn)
}

func (c *Client) fetch(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return content.ErrNotFound
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("content api: unexpected status %d for %s", res.StatusCode, path)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("content api: decode %s: %w", path, err)
	}

	return nil
}
