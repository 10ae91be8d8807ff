package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fouron4/cmd/internal/keyring"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_Initialize_RestoresStoredCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kr := keyring.NewMemoryStore()
	if err := kr.Set(ctx, keyring.KeyAccessToken, "abc"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := kr.Set(ctx, keyring.KeyUserID, "u1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	st := NewStore(testLogger(), kr)
	// No refresh bound: Initialize must not touch the network.
	if err := st.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	got := st.Current()
	if got.AccessToken != "abc" || got.UserID != "u1" {
		t.Fatalf("Current=%+v; want abc/u1", got)
	}
	if !got.Valid() {
		t.Fatalf("expected valid session")
	}
}

func TestStore_Initialize_PartialCredentialsStayLoggedOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kr := keyring.NewMemoryStore()
	if err := kr.Set(ctx, keyring.KeyAccessToken, "abc"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	st := NewStore(testLogger(), kr)
	if err := st.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := st.Current(); got.Valid() || got.AccessToken != "" || got.UserID != "" {
		t.Fatalf("expected empty session, got %+v", got)
	}
}

func TestStore_SetAuth_Atomicity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore(testLogger(), keyring.NewMemoryStore())

	// Incomplete pairs are rejected outright.
	if err := st.SetAuth(ctx, "", "u1"); !errors.Is(err, ErrIncompleteAuth) {
		t.Fatalf("expected ErrIncompleteAuth, got %v", err)
	}
	if err := st.SetAuth(ctx, "tok", ""); !errors.Is(err, ErrIncompleteAuth) {
		t.Fatalf("expected ErrIncompleteAuth, got %v", err)
	}
	if got := st.Current(); got.AccessToken != "" || got.UserID != "" {
		t.Fatalf("rejected SetAuth mutated state: %+v", got)
	}

	if err := st.SetAuth(ctx, "tok", "u1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}
	got := st.Current()
	if (got.AccessToken == "") != (got.UserID == "") {
		t.Fatalf("invariant violated: %+v", got)
	}
}

func TestStore_ClearAuth_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore(testLogger(), keyring.NewMemoryStore())

	if err := st.SetAuth(ctx, "tok", "u1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}
	if err := st.ClearAuth(ctx); err != nil {
		t.Fatalf("ClearAuth: %v", err)
	}
	first := st.Current()

	// Clearing again is a no-op, not an error.
	if err := st.ClearAuth(ctx); err != nil {
		t.Fatalf("second ClearAuth: %v", err)
	}
	if second := st.Current(); second != first || second.Valid() {
		t.Fatalf("state changed on repeat clear: %+v vs %+v", first, second)
	}
}

func TestStore_Refresh_PreservesIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore(testLogger(), keyring.NewMemoryStore())
	if err := st.SetAuth(ctx, "old-token", "u1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}

	st.BindRefresh(func(ctx context.Context) (string, error) {
		return "new-token", nil
	})

	if ok := st.Refresh(ctx); !ok {
		t.Fatalf("expected refresh success")
	}

	got := st.Current()
	if got.AccessToken != "new-token" {
		t.Fatalf("token=%q; want new-token", got.AccessToken)
	}
	if got.UserID != "u1" {
		t.Fatalf("refresh changed identity: %q", got.UserID)
	}
}

func TestStore_Refresh_FailureClearsSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kr := keyring.NewMemoryStore()
	st := NewStore(testLogger(), kr)
	if err := st.SetAuth(ctx, "old-token", "u1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}

	st.BindRefresh(func(ctx context.Context) (string, error) {
		return "", errors.New("expired")
	})

	if ok := st.Refresh(ctx); ok {
		t.Fatalf("expected refresh failure")
	}
	if got := st.Current(); got.Valid() {
		t.Fatalf("session not cleared: %+v", got)
	}
	if _, err := kr.Get(ctx, keyring.KeyAccessToken); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("durable token not cleared: %v", err)
	}
	if _, err := kr.Get(ctx, keyring.KeyUserID); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("durable user id not cleared: %v", err)
	}
}

func TestStore_Refresh_SingleFlight(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore(testLogger(), keyring.NewMemoryStore())
	if err := st.SetAuth(ctx, "old-token", "u1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}

	var calls atomic.Int64
	release := make(chan struct{})
	st.BindRefresh(func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "new-token", nil
	})

	const concurrent = 8
	results := make([]bool, concurrent)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = st.Refresh(ctx)
	}()

	// Once the refresh func is running, the in-flight slot is occupied, so
	// every later caller must join it instead of dialing again.
	for calls.Load() == 0 {
		runtime.Gosched()
	}
	for i := 1; i < concurrent; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = st.Refresh(ctx)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("refresh called %d times; want 1", n)
	}
	for i, ok := range results {
		if !ok {
			t.Fatalf("caller %d observed failure", i)
		}
	}
}

func TestStore_Refresh_Unbound(t *testing.T) {
	t.Parallel()

	st := NewStore(testLogger(), keyring.NewMemoryStore())
	if ok := st.Refresh(context.Background()); ok {
		t.Fatalf("expected failure without a bound refresh")
	}
}
