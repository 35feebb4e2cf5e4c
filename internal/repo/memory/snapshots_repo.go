// Package memory holds in-process repository implementations used in
// tests and local development runs without Redis.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bioassoc/memberhub/internal/session"
)

type SnapshotsRepo struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time
	m   map[string]entry
}

type entry struct {
	snap session.Snapshot
	exp  time.Time
}

func NewSnapshotsRepo(ttl time.Duration) *SnapshotsRepo {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &SnapshotsRepo{
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]entry),
	}
}

func (r *SnapshotsRepo) Load(_ context.Context, id string) (session.Snapshot, bool, error) {
	r.mu.RLock()
	e, ok := r.m[id]
	r.mu.RUnlock()

	if !ok {
		return session.Snapshot{}, false, nil
	}

	if r.now().After(e.exp) {
		r.mu.Lock()
		delete(r.m, id)
		r.mu.Unlock()
		return session.Snapshot{}, false, nil
	}

	return e.snap, true, nil
}

func (r *SnapshotsRepo) Save(_ context.Context, id string, snap session.Snapshot) error {
	r.mu.Lock()
	r.m[id] = entry{snap: snap, exp: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return nil
}

func (r *SnapshotsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.m, id)
	r.mu.Unlock()
	return nil
}
