package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"fouron4/cmd/internal/keyring"
)

// RefreshFunc performs the refresh network round trip and returns the new
// access token. The refresh credential itself travels implicitly in the
// transport (cookie jar); the client never holds it.
type RefreshFunc func(ctx context.Context) (accessToken string, err error)

// Store is the single authority for the client session.
//
// The durable keyring copy is a cache of the in-memory copy, not the
// authority: Initialize seeds memory from it exactly once, and afterwards
// every mutation flows through SetAuth/ClearAuth, which write both copies.
type Store struct {
	log *slog.Logger
	kr  keyring.Keyring

	mu       sync.Mutex
	cur      Session
	refresh  RefreshFunc
	inflight *refreshCall

	bc *broadcaster
}

type refreshCall struct {
	done chan struct{}
	ok   bool
}

// NewStore constructs a Store over the given keyring.
func NewStore(log *slog.Logger, kr keyring.Keyring) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		log: log,
		kr:  kr,
		bc:  newBroadcaster(),
	}
}

// BindRefresh installs the refresh network operation. Wiring happens after
// construction because the HTTP executor that performs the call depends on
// this store for its bearer token.
func (s *Store) BindRefresh(fn RefreshFunc) {
	s.mu.Lock()
	s.refresh = fn
	s.mu.Unlock()
}

// Initialize seeds the in-memory session from durable storage.
//
// Trust-on-read: no network call is made and no validity check happens here.
// A half-present durable pair violates the session invariant and is treated
// as logged out.
func (s *Store) Initialize(ctx context.Context) error {
	token, err := s.readKey(ctx, keyring.KeyAccessToken)
	if err != nil {
		return err
	}
	userID, err := s.readKey(ctx, keyring.KeyUserID)
	if err != nil {
		return err
	}

	next := Session{AccessToken: token, UserID: userID}
	if !next.Valid() {
		if token != "" || userID != "" {
			s.log.Warn("session.initialize.partial_credentials")
		}
		return nil
	}

	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()

	s.log.Debug("session.initialize.restored", "user_id", userID)
	return nil
}

// Current returns a copy of the in-memory session.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// SetAuth stores a credential pair durably and in memory, then notifies
// subscribers. Both arguments must be non-empty.
func (s *Store) SetAuth(ctx context.Context, token, userID string) error {
	if token == "" || userID == "" {
		return ErrIncompleteAuth
	}

	if err := s.kr.Set(ctx, keyring.KeyAccessToken, token); err != nil {
		return err
	}
	if err := s.kr.Set(ctx, keyring.KeyUserID, userID); err != nil {
		return err
	}

	s.mu.Lock()
	s.cur = Session{AccessToken: token, UserID: userID}
	s.mu.Unlock()

	s.bc.publish(Change{AccessToken: token, UserID: userID})
	return nil
}

// ClearAuth removes the credential pair from durable storage and memory.
// Idempotent: clearing an empty session is a no-op.
func (s *Store) ClearAuth(ctx context.Context) error {
	for _, key := range []string{
		keyring.KeyAccessToken,
		keyring.KeyUserID,
		keyring.KeyRefreshToken,
	} {
		if err := s.kr.Delete(ctx, key); err != nil {
			return err
		}
	}

	s.mu.Lock()
	wasValid := s.cur.Valid()
	s.cur = Session{}
	s.mu.Unlock()

	if wasValid {
		s.log.Info("session.cleared")
	}
	s.bc.publish(Change{})
	return nil
}

// Refresh performs at most one concurrent refresh round trip.
//
// Concurrent callers await the in-flight refresh instead of issuing their
// own. On success the new token is stored with the existing user ID (refresh
// never changes identity); on failure the session is cleared. Refresh never
// returns an error: the boolean is the whole contract.
func (s *Store) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	if s.refresh == nil {
		s.mu.Unlock()
		s.log.Error("session.refresh.fail", "err", ErrNoRefresh)
		return false
	}
	if c := s.inflight; c != nil {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.ok
		case <-ctx.Done():
			return false
		}
	}
	c := &refreshCall{done: make(chan struct{})}
	s.inflight = c
	fn := s.refresh
	prev := s.cur
	s.mu.Unlock()

	ok := s.doRefresh(ctx, fn, prev)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()

	c.ok = ok
	close(c.done)
	return ok
}

func (s *Store) doRefresh(ctx context.Context, fn RefreshFunc, prev Session) bool {
	if prev.UserID == "" {
		// Nothing to refresh into: identity is required to rebuild the pair.
		s.log.Warn("session.refresh.no_identity")
		_ = s.ClearAuth(ctx)
		return false
	}

	token, err := fn(ctx)
	if err != nil || token == "" {
		s.log.Warn("session.refresh.fail", "err", err)
		if clearErr := s.ClearAuth(ctx); clearErr != nil {
			s.log.Error("session.clear.fail", "err", clearErr)
		}
		return false
	}

	if err := s.SetAuth(ctx, token, prev.UserID); err != nil {
		s.log.Error("session.refresh.store.fail", "err", err)
		return false
	}

	s.log.Info("session.refresh.ok", "user_id", prev.UserID)
	return true
}

// Subscribe returns a live feed of session changes. Cancel it when done.
func (s *Store) Subscribe() *Subscription {
	return s.bc.subscribe()
}

func (s *Store) readKey(ctx context.Context, key string) (string, error) {
	v, err := s.kr.Get(ctx, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}
