package keyring

import "errors"

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("key not found")

	// ErrSealed is returned when a sealed value cannot be decrypted
	// (wrong passphrase or corrupted record).
	ErrSealed = errors.New("cannot open sealed value")

	// ErrClosed is returned when the keyring has been closed.
	ErrClosed = errors.New("keyring closed")
)
