package session

import (
	"context"
	"time"

	"github.com/bioassoc/memberhub/internal/domain/member"
)

// Snapshot is the serialized form of a visitor session. It is written
// through to a SnapshotStore after every state mutation so a session
// survives process restarts and page reloads.
type Snapshot struct {
	Authenticated  bool            `json:"isAuthenticated"`
	User           *member.User    `json:"user"`
	Profile        *member.Profile `json:"profile"`
	Token          string          `json:"token,omitempty"`
	TokenExpiresAt time.Time       `json:"tokenExpiresAt,omitempty"`
}

// SnapshotStore is the persistence adapter for session snapshots. It is a
// separate collaborator on purpose: the store's actions never know where
// snapshots live, and tests swap in the memory implementation.
type SnapshotStore interface {
	Load(ctx context.Context, id string) (Snapshot, bool, error)
	Save(ctx context.Context, id string, snap Snapshot) error
	Delete(ctx context.Context, id string) error
}
