// Package session holds the per-visitor authentication state machine.
//
// A Store has two composite states: Unauthenticated (no user, no token)
// and Authenticated (user set, bearer token held). SignIn/SignUp move it
// forward, SignOut moves it back, and within Authenticated the profile
// sub-state is populated by MemberProfile. Every action calls the members
// API, applies the result to local state, and writes a snapshot through
// the persistence adapter.
//
// Failures never escape an action: the API error is flattened to a single
// display message in State.Err, and the action reports success with a
// plain bool. Callers that need to distinguish error kinds should look at
// the memberapi error types before they reach this layer.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bioassoc/memberhub/internal/auth"
	"github.com/bioassoc/memberhub/internal/domain/member"
	"github.com/bioassoc/memberhub/internal/memberapi"
)

const genericErrMessage = "Something went wrong. Please try again."

// API is the slice of the members API client the store drives.
type API interface {
	SignIn(ctx context.Context, email, password string) (memberapi.AuthResult, error)
	SignUp(ctx context.Context, in memberapi.SignUpInput) (memberapi.AuthResult, error)
	MemberProfile(ctx context.Context, token, userID string) (member.Profile, error)
	RegisterMember(ctx context.Context, token, userID string, in member.ProfileInput) error
	UpdateProfile(ctx context.Context, token, memberID string, in member.ProfileInput) error
	Apply(ctx context.Context, token, userID string, in member.ApplicationInput) error
}

// State is what UI-facing callers read. Err carries the flattened message
// of the most recent failed action; empty means the last action succeeded.
type State struct {
	Authenticated bool            `json:"isAuthenticated"`
	User          *member.User    `json:"user"`
	Profile       *member.Profile `json:"profile"`
	Loading       bool            `json:"loading"`
	Err           string          `json:"error,omitempty"`
}

// Action categories for generation counters. Each in-flight action
// captures its category's generation; a resolution is discarded when a
// newer action in the same category (or a sign-out) has started since.
// This closes the last-write-wins race the original design shipped with.
type category int

const (
	catAuth category = iota
	catProfile
	catApply
	categoryCount
)

type Options struct {
	// TokenTTL is the fallback token lifetime when the access token's own
	// expiry cannot be read. Mirrors the 7-day bearer cookie.
	TokenTTL time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

type Store struct {
	id    string
	api   API
	snaps SnapshotStore
	ttl   time.Duration
	now   func() time.Time
	log   *slog.Logger

	mu          sync.Mutex
	state       State
	token       string
	tokenExpiry time.Time
	gens        [categoryCount]uint64
	subs        []func(State)
}

func New(id string, api API, snaps SnapshotStore, opts Options) *Store {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Store{
		id:    id,
		api:   api,
		snaps: snaps,
		ttl:   opts.TokenTTL,
		now:   opts.Now,
		log:   opts.Logger,
	}
}

func (s *Store) ID() string { return s.id }

// State returns a copy; the caller cannot mutate store internals through it.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current bearer token, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) TokenExpiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenExpiry
}

// Subscribe registers fn to run after every applied state change. The
// callback receives a copy and must not call back into the store.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Hydrate restores state from the snapshot store. A snapshot whose token
// already expired hydrates to the unauthenticated state instead of the
// stale authenticated one the original design presented until an API call
// happened to fail.
func (s *Store) Hydrate(ctx context.Context) error {
	snap, ok, err := s.snaps.Load(ctx, s.id)
	if err != nil {
		return err
	}

	if !ok {
		return nil
	}

	if snap.Authenticated && !snap.TokenExpiresAt.IsZero() && s.now().After(snap.TokenExpiresAt) {
		_ = s.snaps.Delete(ctx, s.id)
		return nil
	}

	s.mu.Lock()
	s.state = State{
		Authenticated: snap.Authenticated,
		User:          snap.User,
		Profile:       snap.Profile,
	}
	s.token = snap.Token
	s.tokenExpiry = snap.TokenExpiresAt
	s.mu.Unlock()

	return nil
}

// SignIn exchanges credentials for a bearer token. On success the store
// moves to Authenticated with a fresh user and no profile. On failure the
// flattened API message lands in State.Err and the state is untouched.
func (s *Store) SignIn(ctx context.Context, email, password string) bool {
	gen := s.begin(catAuth)

	res, err := s.api.SignIn(ctx, email, password)

	return s.finishAuth(ctx, gen, res, err)
}

// SignUp has the same contract as SignIn against the sign-up action. An
// unknown user type fails locally without touching the members API.
func (s *Store) SignUp(ctx context.Context, email, password, firstName, lastName, userType string) bool {
	if !member.IsValidUserType(userType) {
		s.mu.Lock()
		s.state.Err = "Unknown user type."
		s.mu.Unlock()
		s.notify()
		return false
	}

	gen := s.begin(catAuth)

	res, err := s.api.SignUp(ctx, memberapi.SignUpInput{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		UserType:  userType,
	})

	return s.finishAuth(ctx, gen, res, err)
}

// MemberProfile fetches the signed-in member's profile into State.Profile.
// Callers observe Profile/Err/Loading; there is no return value.
func (s *Store) MemberProfile(ctx context.Context) {
	s.mu.Lock()
	if s.state.User == nil {
		s.state.Err = "Not authenticated."
		s.mu.Unlock()
		s.notify()
		return
	}
	userID := s.state.User.ID
	token := s.token
	s.mu.Unlock()

	gen := s.begin(catProfile)

	profile, err := s.api.MemberProfile(ctx, token, userID)

	s.resolve(ctx, catProfile, gen, func(st *State) {
		if err != nil {
			st.Err = messageFrom(err)
			return
		}
		st.Profile = &profile
		st.Err = ""
	})
}

// Apply submits a membership application. Profile is never touched.
func (s *Store) Apply(ctx context.Context, in member.ApplicationInput) bool {
	token, userID, ok := s.requireUser()
	if !ok {
		return false
	}

	gen := s.begin(catApply)

	err := s.api.Apply(ctx, token, userID, in)

	return s.resolveBool(ctx, catApply, gen, err, nil)
}

// CreateProfile registers a new member profile. Deliberately does NOT
// refresh State.Profile: the original behavior leaves the re-fetch to the
// caller, and we keep that contract so callers drive MemberProfile
// explicitly after a create.
func (s *Store) CreateProfile(ctx context.Context, in member.ProfileInput) bool {
	token, userID, ok := s.requireUser()
	if !ok {
		return false
	}

	gen := s.begin(catProfile)

	err := s.api.RegisterMember(ctx, token, userID, in)

	return s.resolveBool(ctx, catProfile, gen, err, nil)
}

// UpdateProfile puts an update to the given member record.
func (s *Store) UpdateProfile(ctx context.Context, memberID string, in member.ProfileInput) bool {
	token, _, ok := s.requireUser()
	if !ok {
		return false
	}

	gen := s.begin(catProfile)

	err := s.api.UpdateProfile(ctx, token, memberID, in)

	return s.resolveBool(ctx, catProfile, gen, err, nil)
}

// SignOut clears all session state and the persisted snapshot. It is
// idempotent and never errors; it also invalidates every in-flight
// action so a racing response cannot resurrect the session.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	for c := range s.gens {
		s.gens[c]++
	}
	s.state = State{}
	s.token = ""
	s.tokenExpiry = time.Time{}
	s.mu.Unlock()

	if err := s.snaps.Delete(ctx, s.id); err != nil {
		s.log.Warn("session snapshot delete failed", "session_id", s.id, "err", err)
	}

	s.notify()
}

// --- internals ---

// begin marks the category as loading and returns the generation this
// action must still hold at resolution time.
func (s *Store) begin(c category) uint64 {
	s.mu.Lock()
	s.gens[c]++
	gen := s.gens[c]
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()

	s.notify()
	return gen
}

// resolve applies mutate under the lock iff the generation is still
// current, then persists and notifies. Stale resolutions are dropped.
func (s *Store) resolve(ctx context.Context, c category, gen uint64, mutate func(*State)) bool {
	s.mu.Lock()
	if s.gens[c] != gen {
		s.mu.Unlock()
		return false
	}

	s.state.Loading = false
	mutate(&s.state)
	applied := s.state.Err == ""
	s.mu.Unlock()

	s.persist(ctx)
	s.notify()
	return applied
}

func (s *Store) resolveBool(ctx context.Context, c category, gen uint64, err error, onOK func(*State)) bool {
	return s.resolve(ctx, c, gen, func(st *State) {
		if err != nil {
			st.Err = messageFrom(err)
			return
		}
		if onOK != nil {
			onOK(st)
		}
		st.Err = ""
	})
}

func (s *Store) finishAuth(ctx context.Context, gen uint64, res memberapi.AuthResult, err error) bool {
	if err != nil {
		return s.resolve(ctx, catAuth, gen, func(st *State) {
			st.Err = messageFrom(err)
		})
	}

	expiry, ok := auth.ExpiryOf(res.AccessToken)
	if !ok {
		expiry = s.now().Add(s.ttl)
	}

	user := res.User

	return s.resolve(ctx, catAuth, gen, func(st *State) {
		st.Authenticated = true
		st.User = &user
		st.Profile = nil
		st.Err = ""

		s.token = res.AccessToken
		s.tokenExpiry = expiry
	})
}

func (s *Store) requireUser() (token, userID string, ok bool) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		if !ok {
			s.notify()
		}
	}()

	if s.state.User == nil {
		s.state.Err = "Not authenticated."
		return "", "", false
	}

	return s.token, s.state.User.ID, true
}

func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	snap := Snapshot{
		Authenticated:  s.state.Authenticated,
		User:           s.state.User,
		Profile:        s.state.Profile,
		Token:          s.token,
		TokenExpiresAt: s.tokenExpiry,
	}
	s.mu.Unlock()

	if err := s.snaps.Save(ctx, s.id, snap); err != nil {
		s.log.Warn("session snapshot save failed", "session_id", s.id, "err", err)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(State), len(s.subs))
	copy(subs, s.subs)
	st := s.state
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

func messageFrom(err error) string {
	var apiErr *memberapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Flatten()
	}
	return genericErrMessage
}
