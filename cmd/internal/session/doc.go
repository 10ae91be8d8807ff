// Package session implements the client-side session lifecycle.
//
// It is the single authority for "am I logged in, and with what token and
// identity". The in-memory session is seeded once from the durable keyring at
// startup (trust-on-read, no network), mutated only through SetAuth/ClearAuth,
// and refreshed through a single-flight token refresh.
//
// Every token change fans out to subscribers so all consumers converge on the
// fresh token without re-reading storage.
//
// Transport (the HTTP executor) integration is intentionally out of scope
// here; the refresh network call is injected via BindRefresh.
package session
