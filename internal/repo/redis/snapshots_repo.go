// Package redis persists session snapshots as keyed JSON blobs with a
// TTL matching the bearer cookie lifetime.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bioassoc/memberhub/internal/session"
)

const keyPrefix = "session:snapshot:"

type SnapshotsRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSnapshotsRepo(client *goredis.Client, ttl time.Duration) *SnapshotsRepo {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &SnapshotsRepo{client: client, ttl: ttl}
}

func (r *SnapshotsRepo) Load(ctx context.Context, id string) (session.Snapshot, bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()

	if err == goredis.Nil {
		return session.Snapshot{}, false, nil
	}

	if err != nil {
		return session.Snapshot{}, false, fmt.Errorf("snapshot load: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt snapshot is treated as absent; the visitor signs in again.
		return session.Snapshot{}, false, nil
	}

	return snap, true, nil
}

func (r *SnapshotsRepo) Save(ctx context.Context, id string, snap session.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot encode: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+id, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}

	return nil
}

func (r *SnapshotsRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("snapshot delete: %w", err)
	}

	return nil
}
