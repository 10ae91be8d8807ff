package session

import "errors"

var (
	// ErrIncompleteAuth is returned by SetAuth when the token or the user ID
	// is empty. The session is never valid with one present and the other
	// absent.
	ErrIncompleteAuth = errors.New("token and user id must both be set")

	// ErrNoRefresh is reported when Refresh is called before a refresh
	// operation has been bound.
	ErrNoRefresh = errors.New("no refresh operation bound")
)
