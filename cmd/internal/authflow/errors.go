package authflow

import "errors"

var (
	// ErrNoPendingRegistration is returned when a step is attempted out of
	// order: no verified email and exchange token are on file.
	ErrNoPendingRegistration = errors.New("no pending registration; verify an email code first")

	// ErrNotLoggedIn is returned by operations that need a session.
	ErrNotLoggedIn = errors.New("not logged in")
)
