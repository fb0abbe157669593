package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated indicates the session was rejected by the backend.
	// The redirect flow handles it; callers should not surface it again.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNetwork covers transport-level failures: timeouts, connection
	// errors, and malformed response bodies.
	ErrNetwork = errors.New("network failure")
)

// APIError is an application-level failure: the backend responded with a
// nonzero envelope status.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Msg)
}
