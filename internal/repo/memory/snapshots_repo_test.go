package memory

import (
	"context"
	"testing"
	"time"

	"github.com/bioassoc/memberhub/internal/domain/member"
	"github.com/bioassoc/memberhub/internal/session"
)

func TestSaveLoadDelete(t *testing.T) {
	r := NewSnapshotsRepo(time.Hour)
	ctx := context.Background()

	user := member.User{ID: "u-1", Email: "ada@example.org"}
	snap := session.Snapshot{Authenticated: true, User: &user, Token: "tok"}

	if err := r.Save(ctx, "sess-1", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := r.Load(ctx, "sess-1")
	if err != nil || !ok {
		t.Fatalf("Load ok=%v err=%v", ok, err)
	}
	if got.Token != "tok" || got.User == nil || got.User.ID != "u-1" {
		t.Errorf("snapshot = %+v", got)
	}

	if err := r.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := r.Load(ctx, "sess-1"); ok {
		t.Error("snapshot survived delete")
	}
}

func TestLoadExpiredSnapshot(t *testing.T) {
	r := NewSnapshotsRepo(time.Minute)
	r.now = func() time.Time { return time.Now() }
	ctx := context.Background()

	if err := r.Save(ctx, "sess-1", session.Snapshot{Token: "tok"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, ok, _ := r.Load(ctx, "sess-1"); ok {
		t.Error("expired snapshot served")
	}
}
