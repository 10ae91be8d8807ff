package session

import (
	"context"
	"testing"
	"time"

	"fouron4/cmd/internal/keyring"
)

func waitChange(t *testing.T, sub *Subscription) Change {
	t.Helper()
	select {
	case c := <-sub.C:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for session change")
		return Change{}
	}
}

func TestBroadcast_RefreshConvergence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore(testLogger(), keyring.NewMemoryStore())
	if err := st.SetAuth(ctx, "old-token", "u1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}
	st.BindRefresh(func(ctx context.Context) (string, error) {
		return "xyz", nil
	})

	subA := st.Subscribe()
	defer subA.Cancel()
	subB := st.Subscribe()
	defer subB.Cancel()

	if ok := st.Refresh(ctx); !ok {
		t.Fatalf("refresh failed")
	}

	for _, sub := range []*Subscription{subA, subB} {
		c := waitChange(t, sub)
		if c.AccessToken != "xyz" || c.UserID != "u1" {
			t.Fatalf("change=%+v; want xyz/u1", c)
		}
		if c.LoggedOut() {
			t.Fatalf("unexpected logout signal")
		}
	}
}

func TestBroadcast_LogoutSignal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewStore(testLogger(), keyring.NewMemoryStore())
	if err := st.SetAuth(ctx, "tok", "u1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}

	sub := st.Subscribe()
	defer sub.Cancel()

	if err := st.ClearAuth(ctx); err != nil {
		t.Fatalf("ClearAuth: %v", err)
	}

	if c := waitChange(t, sub); !c.LoggedOut() {
		t.Fatalf("expected logout change, got %+v", c)
	}
}

func TestBroadcast_CancelledSubscriberIsSkipped(t *testing.T) {
	t.Parallel()

	b := newBroadcaster()
	sub := b.subscribe()
	sub.Cancel()
	// Cancel is idempotent.
	sub.Cancel()

	// Publishing after cancel must not block or panic.
	b.publish(Change{AccessToken: "t", UserID: "u"})

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Fatalf("cancelled subscriber received a change")
		}
	default:
	}
}

func TestBroadcast_DropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	b := newBroadcaster()
	sub := b.subscribe()
	defer sub.Cancel()

	// Flood well past the queue size; publish must never block.
	for i := 0; i < subscriberQueueSize*4; i++ {
		b.publish(Change{AccessToken: "t", UserID: "u"})
	}

	if got := len(sub.C); got != subscriberQueueSize {
		t.Fatalf("queue length=%d; want %d", got, subscriberQueueSize)
	}
}
