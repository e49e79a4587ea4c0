// Package session owns the client's credential and identity state: it is
// the only writer of the persisted session representation, validates what it
// reads back, and notifies subscribers of every transition.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/logging"
)

// Persisted keys. Both are read and written only by this package.
const (
	keyToken = "auth_token"
	keyUser  = "user_data"
)

// Store is the session state machine:
// Anonymous -> Authenticated -> (Expired | LoggedOut) -> Anonymous.
//
// Storage failures never propagate to callers: the store logs them and
// degrades to in-memory-only behavior. Corrupted persisted state is cleared
// on read (self-heal) rather than surfaced.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	log     logging.Logger
	user    *models.User
	token   string

	subMu   sync.Mutex
	subs    map[int]func(*models.User)
	nextSub int

	// now is a test seam for expiry checks.
	now func() time.Time
}

// NewStore builds a Store backed by storage and restores any persisted
// session. A persisted identity without a credential (or vice versa, or one
// that fails validation) is treated as corruption and cleared.
func NewStore(ctx context.Context, storage Storage, log logging.Logger) *Store {
	s := &Store{
		storage: storage,
		log:     log,
		subs:    make(map[int]func(*models.User)),
		now:     time.Now,
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	tokenRaw, err := s.storage.Get(ctx, keyToken)
	if err != nil {
		s.log.Warn(ctx, "session storage unreadable, starting anonymous", "err", err)
		return
	}
	userRaw, err := s.storage.Get(ctx, keyUser)
	if err != nil {
		s.log.Warn(ctx, "session storage unreadable, starting anonymous", "err", err)
		return
	}

	token := string(tokenRaw)
	if token == "" && userRaw == nil {
		return
	}
	if token == "" || userRaw == nil {
		s.log.Warn(ctx, "half-persisted session found, clearing")
		s.wipe(ctx)
		return
	}

	var user models.User
	if err := json.Unmarshal(userRaw, &user); err != nil || !user.Valid() {
		s.log.Warn(ctx, "persisted identity failed validation, clearing", "err", err)
		s.wipe(ctx)
		return
	}

	s.user = &user
	s.token = token
}

// SetSession persists credential and identity atomically, transitions to
// Authenticated, and notifies subscribers with the new identity. Persisting
// and notifying are one logical step: no subscriber observes storage and
// memory disagreeing.
func (s *Store) SetSession(ctx context.Context, user models.User, token string) {
	s.mu.Lock()
	data, err := json.Marshal(user)
	if err == nil {
		err = s.storage.SetMany(ctx, map[string][]byte{
			keyToken: []byte(token),
			keyUser:  data,
		})
	}
	if err != nil {
		s.log.Warn(ctx, "session not persisted, continuing in memory", "err", err)
	}
	u := user
	s.user = &u
	s.token = token
	s.mu.Unlock()

	s.notify(&user)
}

// MergeUser overlays non-credential identity fields (profile edit, avatar
// change) onto the current user and notifies subscribers. A merge while
// anonymous is ignored.
func (s *Store) MergeUser(ctx context.Context, update models.User) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	merged := s.user.Merge(update)

	data, err := json.Marshal(merged)
	if err == nil {
		err = s.storage.Set(ctx, keyUser, data)
	}
	if err != nil {
		s.log.Warn(ctx, "session not persisted, continuing in memory", "err", err)
	}
	s.user = &merged
	s.mu.Unlock()

	notified := merged
	s.notify(&notified)
}

// User returns the persisted identity, or nil when anonymous. Structurally
// invalid persisted data clears the whole session and returns nil.
func (s *Store) User(ctx context.Context) *models.User {
	s.mu.Lock()

	raw, err := s.storage.Get(ctx, keyUser)
	if err != nil {
		// Storage unavailable: fall back to the in-memory copy.
		s.log.Warn(ctx, "session storage unreadable, using in-memory state", "err", err)
		u := s.user
		s.mu.Unlock()
		return cloneUser(u)
	}
	if raw == nil {
		if s.user == nil {
			s.mu.Unlock()
			return nil
		}
		// Memory says authenticated but storage is empty; trust memory,
		// it covers the degraded in-memory-only mode.
		u := cloneUser(s.user)
		s.mu.Unlock()
		return u
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil || !user.Valid() {
		s.log.Warn(ctx, "persisted identity failed validation, clearing session", "err", err)
		s.wipe(ctx)
		s.user = nil
		s.token = ""
		s.mu.Unlock()
		s.notify(nil)
		return nil
	}

	s.mu.Unlock()
	return &user
}

// Token returns the current credential, or "" when anonymous. It reads the
// in-memory copy and is safe to use as a transport token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a session is present. It does not check
// expiry; see IsExpired.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// IsExpired decodes the credential's embedded expiry claim without
// verifying the signature. Any decode failure counts as expired
// (fail-closed). A token without an expiry claim does not expire. The check
// is advisory: nothing here refreshes or revokes the session.
func (s *Store) IsExpired() bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return true
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(s.now())
}

// Logout clears credential and identity and notifies subscribers with nil.
// Safe to call when already anonymous.
func (s *Store) Logout(ctx context.Context) {
	s.Clear(ctx)
}

// Clear removes all session state, persisted and in-memory, atomically with
// the nil notification.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	wasAnonymous := s.token == "" && s.user == nil
	s.wipe(ctx)
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if !wasAnonymous {
		s.notify(nil)
	}
}

// Subscribe registers a listener for session transitions. Each listener
// observes every transition exactly once; ordering between listeners is
// unspecified. The returned function unsubscribes and is safe to call
// multiple times.
func (s *Store) Subscribe(fn func(*models.User)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(u *models.User) {
	s.subMu.Lock()
	fns := make([]func(*models.User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(cloneUser(u))
	}
}

// wipe clears persisted state, swallowing storage errors. Callers must hold
// s.mu.
func (s *Store) wipe(ctx context.Context) {
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear persisted session", "err", err)
	}
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
