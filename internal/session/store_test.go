package session

import (
	"context"
	"testing"
	"time"

	"github.com/bioassoc/memberhub/internal/domain/member"
	"github.com/bioassoc/memberhub/internal/memberapi"
)

type fakeAPI struct {
	signInFn         func(ctx context.Context, email, password string) (memberapi.AuthResult, error)
	signUpFn         func(ctx context.Context, in memberapi.SignUpInput) (memberapi.AuthResult, error)
	memberProfileFn  func(ctx context.Context, token, userID string) (member.Profile, error)
	registerMemberFn func(ctx context.Context, token, userID string, in member.ProfileInput) error
	updateProfileFn  func(ctx context.Context, token, memberID string, in member.ProfileInput) error
	applyFn          func(ctx context.Context, token, userID string, in member.ApplicationInput) error
}

func (f *fakeAPI) SignIn(ctx context.Context, email, password string) (memberapi.AuthResult, error) {
	return f.signInFn(ctx, email, password)
}

func (f *fakeAPI) SignUp(ctx context.Context, in memberapi.SignUpInput) (memberapi.AuthResult, error) {
	return f.signUpFn(ctx, in)
}

func (f *fakeAPI) MemberProfile(ctx context.Context, token, userID string) (member.Profile, error) {
	return f.memberProfileFn(ctx, token, userID)
}

func (f *fakeAPI) RegisterMember(ctx context.Context, token, userID string, in member.ProfileInput) error {
	return f.registerMemberFn(ctx, token, userID, in)
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, token, memberID string, in member.ProfileInput) error {
	return f.updateProfileFn(ctx, token, memberID, in)
}

func (f *fakeAPI) Apply(ctx context.Context, token, userID string, in member.ApplicationInput) error {
	return f.applyFn(ctx, token, userID, in)
}

type fakeSnapshots struct {
	saved   map[string]Snapshot
	deleted []string
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{saved: make(map[string]Snapshot)}
}

func (f *fakeSnapshots) Load(_ context.Context, id string) (Snapshot, bool, error) {
	s, ok := f.saved[id]
	return s, ok, nil
}

func (f *fakeSnapshots) Save(_ context.Context, id string, snap Snapshot) error {
	f.saved[id] = snap
	return nil
}

func (f *fakeSnapshots) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.saved, id)
	return nil
}

func okUser() member.User {
	return member.User{ID: "u-1", Email: "ada@example.org", FirstName: "Ada", LastName: "Byron", Type: member.TypeMember}
}

func authOKAPI() *fakeAPI {
	return &fakeAPI{
		signInFn: func(_ context.Context, _, _ string) (memberapi.AuthResult, error) {
			return memberapi.AuthResult{AccessToken: "tok-abc", User: okUser()}, nil
		},
	}
}

func TestSignInSuccess(t *testing.T) {
	snaps := newFakeSnapshots()
	s := New("sess-1", authOKAPI(), snaps, Options{})

	if !s.SignIn(context.Background(), "ada@example.org", "hunter22") {
		t.Fatal("SignIn returned false")
	}

	st := s.State()

	if !st.Authenticated {
		t.Error("expected authenticated state")
	}
	if st.User == nil || st.User.ID != "u-1" {
		t.Errorf("unexpected user: %+v", st.User)
	}
	if st.Profile != nil {
		t.Error("profile must be nil right after sign-in")
	}
	if st.Loading {
		t.Error("loading must be false after resolution")
	}
	if st.Err != "" {
		t.Errorf("unexpected error message %q", st.Err)
	}
	if s.Token() != "tok-abc" {
		t.Errorf("token = %q", s.Token())
	}

	snap, ok := snaps.saved["sess-1"]
	if !ok {
		t.Fatal("snapshot was not persisted")
	}
	if !snap.Authenticated || snap.Token != "tok-abc" {
		t.Errorf("persisted snapshot %+v", snap)
	}
}

func TestSignInFailureFlattensAPIError(t *testing.T) {
	api := &fakeAPI{
		signInFn: func(_ context.Context, _, _ string) (memberapi.AuthResult, error) {
			return memberapi.AuthResult{}, &memberapi.APIError{
				Status:   401,
				Code:     "invalid_credentials",
				Messages: []string{"Invalid password"},
			}
		},
	}

	s := New("sess-1", api, newFakeSnapshots(), Options{})

	if s.SignIn(context.Background(), "ada@example.org", "nope") {
		t.Fatal("SignIn returned true on failure")
	}

	st := s.State()

	if st.Authenticated {
		t.Error("must stay unauthenticated")
	}
	if st.Err != "Invalid password" {
		t.Errorf("Err = %q, want flattened API message", st.Err)
	}
	if s.Token() != "" {
		t.Errorf("token leaked: %q", s.Token())
	}
}

func TestSignInFailureGenericMessage(t *testing.T) {
	api := &fakeAPI{
		signInFn: func(_ context.Context, _, _ string) (memberapi.AuthResult, error) {
			return memberapi.AuthResult{}, context.DeadlineExceeded
		},
	}

	s := New("sess-1", api, newFakeSnapshots(), Options{})

	s.SignIn(context.Background(), "ada@example.org", "pw")

	if got := s.State().Err; got != genericErrMessage {
		t.Errorf("Err = %q, want generic message", got)
	}
}

func TestSignOutClearsEverything(t *testing.T) {
	snaps := newFakeSnapshots()
	s := New("sess-1", authOKAPI(), snaps, Options{})

	s.SignIn(context.Background(), "ada@example.org", "pw")
	s.SignOut(context.Background())

	st := s.State()

	if st.Authenticated || st.User != nil || st.Profile != nil || st.Err != "" {
		t.Errorf("state not cleared: %+v", st)
	}
	if s.Token() != "" {
		t.Error("token not cleared")
	}
	if len(snaps.deleted) != 1 || snaps.deleted[0] != "sess-1" {
		t.Errorf("snapshot delete calls: %v", snaps.deleted)
	}
}

func TestSignOutTwiceIsIdempotent(t *testing.T) {
	s := New("sess-1", authOKAPI(), newFakeSnapshots(), Options{})

	s.SignIn(context.Background(), "ada@example.org", "pw")

	s.SignOut(context.Background())
	first := s.State()

	s.SignOut(context.Background())
	second := s.State()

	if first != (State{}) {
		t.Errorf("state after first sign-out: %+v", first)
	}
	if second != first {
		t.Errorf("second sign-out changed state: %+v", second)
	}
	if s.Token() != "" {
		t.Error("token survived sign-out")
	}
}

func TestSignOutDiscardsInFlightResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := authOKAPI()
	api.memberProfileFn = func(_ context.Context, _, _ string) (member.Profile, error) {
		close(started)
		<-release
		return member.Profile{UserID: "u-1", Bio: "late"}, nil
	}

	s := New("sess-1", api, newFakeSnapshots(), Options{})
	s.SignIn(context.Background(), "ada@example.org", "pw")

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.MemberProfile(context.Background())
	}()

	// Sign out while the profile request is still in flight.
	<-started
	s.SignOut(context.Background())
	close(release)
	<-done

	st := s.State()

	if st.Authenticated {
		t.Error("stale profile response resurrected the session")
	}
	if st.Profile != nil {
		t.Errorf("stale profile applied: %+v", st.Profile)
	}
}

func TestSecondRequestWinsOverFirst(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	calls := 0

	api := authOKAPI()
	api.memberProfileFn = func(_ context.Context, _, _ string) (member.Profile, error) {
		calls++
		if calls == 1 {
			close(firstStarted)
			<-releaseFirst
			return member.Profile{UserID: "u-1", Bio: "first"}, nil
		}
		return member.Profile{UserID: "u-1", Bio: "second"}, nil
	}

	s := New("sess-1", api, newFakeSnapshots(), Options{})
	s.SignIn(context.Background(), "ada@example.org", "pw")

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		s.MemberProfile(context.Background())
	}()

	<-firstStarted
	s.MemberProfile(context.Background()) // second request resolves first
	close(releaseFirst)
	<-firstDone

	st := s.State()

	if st.Profile == nil || st.Profile.Bio != "second" {
		t.Errorf("profile = %+v, want the newer response to stick", st.Profile)
	}
}

func TestSignUpRejectsUnknownUserType(t *testing.T) {
	called := false
	api := &fakeAPI{
		signUpFn: func(_ context.Context, _ memberapi.SignUpInput) (memberapi.AuthResult, error) {
			called = true
			return memberapi.AuthResult{}, nil
		},
	}

	s := New("sess-1", api, newFakeSnapshots(), Options{})

	if s.SignUp(context.Background(), "ada@example.org", "hunter22", "Ada", "Byron", "superuser") {
		t.Fatal("SignUp accepted an unknown user type")
	}
	if called {
		t.Error("members API must not be called for an unknown user type")
	}
	if got := s.State().Err; got != "Unknown user type." {
		t.Errorf("Err = %q", got)
	}
}

func TestMemberProfileUnauthenticated(t *testing.T) {
	s := New("sess-1", &fakeAPI{}, newFakeSnapshots(), Options{})

	s.MemberProfile(context.Background())

	if got := s.State().Err; got != "Not authenticated." {
		t.Errorf("Err = %q", got)
	}
}

func TestApplyUnauthenticated(t *testing.T) {
	s := New("sess-1", &fakeAPI{}, newFakeSnapshots(), Options{})

	if s.Apply(context.Background(), member.ApplicationInput{SpecializationArea: "genomics"}) {
		t.Fatal("Apply succeeded without a user")
	}

	if got := s.State().Err; got != "Not authenticated." {
		t.Errorf("Err = %q", got)
	}
}

func TestCreateProfileDoesNotRefreshProfile(t *testing.T) {
	api := authOKAPI()
	api.registerMemberFn = func(_ context.Context, _, _ string, _ member.ProfileInput) error {
		return nil
	}

	s := New("sess-1", api, newFakeSnapshots(), Options{})
	s.SignIn(context.Background(), "ada@example.org", "pw")

	if !s.CreateProfile(context.Background(), member.ProfileInput{Bio: "bio", Specialization: "genomics"}) {
		t.Fatal("CreateProfile returned false")
	}

	if s.State().Profile != nil {
		t.Error("CreateProfile must leave Profile untouched")
	}
}

func TestHydrateRestoresSnapshot(t *testing.T) {
	snaps := newFakeSnapshots()
	user := okUser()
	snaps.saved["sess-1"] = Snapshot{
		Authenticated:  true,
		User:           &user,
		Token:          "tok-old",
		TokenExpiresAt: time.Now().Add(time.Hour),
	}

	s := New("sess-1", &fakeAPI{}, snaps, Options{})

	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	st := s.State()

	if !st.Authenticated || st.User == nil || st.User.ID != "u-1" {
		t.Errorf("state not restored: %+v", st)
	}
	if s.Token() != "tok-old" {
		t.Errorf("token = %q", s.Token())
	}
}

func TestHydrateDropsExpiredToken(t *testing.T) {
	snaps := newFakeSnapshots()
	user := okUser()
	snaps.saved["sess-1"] = Snapshot{
		Authenticated:  true,
		User:           &user,
		Token:          "tok-old",
		TokenExpiresAt: time.Now().Add(-time.Minute),
	}

	s := New("sess-1", &fakeAPI{}, snaps, Options{})

	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	if s.State().Authenticated {
		t.Error("expired snapshot must hydrate to unauthenticated")
	}
	if len(snaps.deleted) != 1 {
		t.Errorf("expired snapshot not deleted: %v", snaps.deleted)
	}
}

func TestSubscribeSeesStateChanges(t *testing.T) {
	s := New("sess-1", authOKAPI(), newFakeSnapshots(), Options{})

	var seen []State
	s.Subscribe(func(st State) { seen = append(seen, st) })

	s.SignIn(context.Background(), "ada@example.org", "pw")

	if len(seen) < 2 {
		t.Fatalf("expected loading + resolved notifications, got %d", len(seen))
	}
	if !seen[0].Loading {
		t.Error("first notification should carry the loading state")
	}
	last := seen[len(seen)-1]
	if !last.Authenticated || last.Loading {
		t.Errorf("last notification %+v", last)
	}
}

func TestErrClearedOnNextAction(t *testing.T) {
	fail := true
	api := &fakeAPI{
		signInFn: func(_ context.Context, _, _ string) (memberapi.AuthResult, error) {
			if fail {
				return memberapi.AuthResult{}, &memberapi.APIError{Status: 401, Code: "invalid_credentials"}
			}
			return memberapi.AuthResult{AccessToken: "tok", User: okUser()}, nil
		},
	}

	s := New("sess-1", api, newFakeSnapshots(), Options{})

	s.SignIn(context.Background(), "ada@example.org", "bad")
	if s.State().Err == "" {
		t.Fatal("expected error after failed sign-in")
	}

	fail = false
	if !s.SignIn(context.Background(), "ada@example.org", "good") {
		t.Fatal("second sign-in failed")
	}
	if got := s.State().Err; got != "" {
		t.Errorf("Err = %q, want cleared", got)
	}
}
