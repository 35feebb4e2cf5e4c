package content

import (
	"context"
	"time"

	"github.com/bioassoc/memberhub/internal/cache"
	"github.com/bioassoc/memberhub/internal/domain/content"
)

// Source is the slice of the content client the catalog reads through.
type Source interface {
	Projects(ctx context.Context) ([]content.Project, error)
	Project(ctx context.Context, id string) (content.Project, error)
	Events(ctx context.Context) ([]content.Event, error)
	Event(ctx context.Context, id string) (content.Event, error)
	Services(ctx context.Context) ([]content.Service, error)
	Service(ctx context.Context, id string) (content.Service, error)
	Posts(ctx context.Context) ([]content.Post, error)
	Post(ctx context.Context, slug string) (content.Post, error)
	Whitepapers(ctx context.Context) ([]content.Whitepaper, error)
}

// Catalog is a read-through cache over Source. A hit serves the cached
// copy; a miss fetches, stores, and serves. Upstream failures on a miss
// propagate; there is no stale-serving fallback.
type Catalog struct {
	src Source

	projects    *cache.Cache[[]content.Project]
	project     *cache.Cache[content.Project]
	events      *cache.Cache[[]content.Event]
	event       *cache.Cache[content.Event]
	services    *cache.Cache[[]content.Service]
	service     *cache.Cache[content.Service]
	posts       *cache.Cache[[]content.Post]
	post        *cache.Cache[content.Post]
	whitepapers *cache.Cache[[]content.Whitepaper]
}

func NewCatalog(src Source, ttl time.Duration) *Catalog {
	return &Catalog{
		src:         src,
		projects:    cache.New[[]content.Project](ttl),
		project:     cache.New[content.Project](ttl),
		events:      cache.New[[]content.Event](ttl),
		event:       cache.New[content.Event](ttl),
		services:    cache.New[[]content.Service](ttl),
		service:     cache.New[content.Service](ttl),
		posts:       cache.New[[]content.Post](ttl),
		post:        cache.New[content.Post](ttl),
		whitepapers: cache.New[[]content.Whitepaper](ttl),
	}
}

func (c *Catalog) Projects(ctx context.Context) ([]content.Project, error) {
	return throughList(ctx, c.projects, "projects", c.src.Projects)
}

func (c *Catalog) Project(ctx context.Context, id string) (content.Project, error) {
	return throughItem(ctx, c.project, "project:"+id, id, c.src.Project)
}

func (c *Catalog) Events(ctx context.Context) ([]content.Event, error) {
	return throughList(ctx, c.events, "events", c.src.Events)
}

func (c *Catalog) Event(ctx context.Context, id string) (content.Event, error) {
	return throughItem(ctx, c.event, "event:"+id, id, c.src.Event)
}

func (c *Catalog) Services(ctx context.Context) ([]content.Service, error) {
	return throughList(ctx, c.services, "services", c.src.Services)
}

func (c *Catalog) Service(ctx context.Context, id string) (content.Service, error) {
	return throughItem(ctx, c.service, "service:"+id, id, c.src.Service)
}

func (c *Catalog) Posts(ctx context.Context) ([]content.Post, error) {
	return throughList(ctx, c.posts, "posts", c.src.Posts)
}

func (c *Catalog) Post(ctx context.Context, slug string) (content.Post, error) {
	return throughItem(ctx, c.post, "post:"+slug, slug, c.src.Post)
}

func (c *Catalog) Whitepapers(ctx context.Context) ([]content.Whitepaper, error) {
	return throughList(ctx, c.whitepapers, "whitepapers", c.src.Whitepapers)
}

func throughList[T any](ctx context.Context, c *cache.Cache[[]T], key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(key, v)
	return v, nil
}

func throughItem[T any](ctx context.Context, c *cache.Cache[T], key, id string, fetch func(context.Context, string) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := fetch(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(key, v)
	return v, nil
}
