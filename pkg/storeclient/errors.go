package storeclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means there is no session at all; no network call
	// was made. The caller should send the user to login.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired means the token was rejected even after a forced
	// refresh. Local session state has been cleared; the caller must
	// re-authenticate.
	ErrSessionExpired = errors.New("session expired")
)

// APIError is any non-auth failure, surfaced verbatim. Status 0 with a
// non-nil Err is a transport failure (including timeouts).
type APIError struct {
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("request failed: status %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
