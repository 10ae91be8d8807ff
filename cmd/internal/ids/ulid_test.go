package ids

import (
	"testing"
	"time"
)

func TestNewRequestID(t *testing.T) {
	t.Parallel()

	a, err := NewRequestID(time.Time{})
	if err != nil {
		t.Fatalf("NewRequestID: %v", err)
	}
	if len(a) != 26 {
		t.Fatalf("unexpected length %d for %q", len(a), a)
	}

	b, err := NewRequestID(time.Now().UTC())
	if err != nil {
		t.Fatalf("NewRequestID: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct IDs")
	}
}
