// Package ids provides client-side ID primitives (e.g., ULID request IDs).
package ids

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewRequestID returns a new ULID string (26 chars) for request correlation.
// ULIDs are lexicographically sortable, which keeps server-side logs ordered.
func NewRequestID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
