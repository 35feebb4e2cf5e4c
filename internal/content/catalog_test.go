package content

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/bioassoc/memberhub/internal/domain/content"
)

type countingSource struct {
	listCalls int
	itemCalls int
	fail      bool
}

func (s *countingSource) Projects(context.Context) ([]domain.Project, error) {
	s.listCalls++
	if s.fail {
		return nil, errors.New("upstream down")
	}
	return []domain.Project{{ID: "p-1", Title: "Biobank"}}, nil
}

func (s *countingSource) Project(_ context.Context, id string) (domain.Project, error) {
	s.itemCalls++
	if id != "p-1" {
		return domain.Project{}, domain.ErrNotFound
	}
	return domain.Project{ID: "p-1", Title: "Biobank"}, nil
}

func (s *countingSource) Events(context.Context) ([]domain.Event, error) { return nil, nil }
func (s *countingSource) Event(context.Context, string) (domain.Event, error) {
	return domain.Event{}, domain.ErrNotFound
}
func (s *countingSource) Services(context.Context) ([]domain.Service, error) { return nil, nil }
func (s *countingSource) Service(context.Context, string) (domain.Service, error) {
	return domain.Service{}, domain.ErrNotFound
}
func (s *countingSource) Posts(context.Context) ([]domain.Post, error) { return nil, nil }
func (s *countingSource) Post(context.Context, string) (domain.Post, error) {
	return domain.Post{}, domain.ErrNotFound
}
func (s *countingSource) Whitepapers(context.Context) ([]domain.Whitepaper, error) { return nil, nil }

func TestListIsCached(t *testing.T) {
	src := &countingSource{}
	cat := NewCatalog(src, time.Minute)

	for i := 0; i < 3; i++ {
		items, err := cat.Projects(context.Background())
		if err != nil {
			t.Fatalf("Projects: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("items = %v", items)
		}
	}

	if src.listCalls != 1 {
		t.Errorf("source calls = %d, want 1", src.listCalls)
	}
}

func TestItemCacheKeyedByID(t *testing.T) {
	src := &countingSource{}
	cat := NewCatalog(src, time.Minute)

	if _, err := cat.Project(context.Background(), "p-1"); err != nil {
		t.Fatalf("Project: %v", err)
	}
	if _, err := cat.Project(context.Background(), "p-1"); err != nil {
		t.Fatalf("Project cached: %v", err)
	}
	if _, err := cat.Project(context.Background(), "p-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if src.itemCalls != 2 {
		t.Errorf("source calls = %d, want 2 (one hit, one distinct key)", src.itemCalls)
	}
}

func TestUpstreamFailurePropagatesAndIsNotCached(t *testing.T) {
	src := &countingSource{fail: true}
	cat := NewCatalog(src, time.Minute)

	if _, err := cat.Projects(context.Background()); err == nil {
		t.Fatal("expected upstream error")
	}

	src.fail = false
	if _, err := cat.Projects(context.Background()); err != nil {
		t.Fatalf("recovered fetch: %v", err)
	}

	if src.listCalls != 2 {
		t.Errorf("source calls = %d", src.listCalls)
	}
}
