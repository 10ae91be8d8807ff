package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork marks transport failures (DNS, refused connection,
	// timeout). These are surfaced to the caller untouched; the executor
	// never retries them.
	ErrNetwork = errors.New("network error")

	// ErrConfig is returned for invalid client configuration.
	ErrConfig = errors.New("invalid config")
)

// genericFailureMessage is shown when the server reports a failure without
// a message of its own.
const genericFailureMessage = "Something went wrong. Please try again."

// APIError is a server-reported failure: the envelope said ok=false, or the
// status line did. Message is the server's own message when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsUnauthorized reports whether err is an authorization failure that
// survived the executor's single refresh-and-retry.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}
