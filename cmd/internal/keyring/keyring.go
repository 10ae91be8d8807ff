// Package keyring is the durable client-side credential store.
//
// It is the Go counterpart of the browser's localStorage: a small opaque
// key-value store that survives restarts. The session layer owns the
// credential keys; multi-step auth flows park their transient bridge values
// here as well.
//
// Values are stored verbatim by the backends. Wrap a backend in Sealed to
// encrypt values at rest.
package keyring

import "context"

// Well-known keys. The session layer reads and writes KeyAccessToken and
// KeyUserID as a pair. KeyRefreshToken is cleared on logout but never read
// here; the refresh credential travels in the transport's cookie jar.
const (
	KeyAccessToken  = "access-token"
	KeyUserID       = "user-id"
	KeyRefreshToken = "refresh-token"

	// Transient keys bridging multi-step flows.
	KeyVerifyEmail   = "verify-email"
	KeyExchangeToken = "exchange-token"
)

// Keyring abstracts durable key-value storage for client state.
//
// Get returns ErrNotFound for absent keys. Delete of an absent key is a
// no-op; Set overwrites silently.
type Keyring interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
