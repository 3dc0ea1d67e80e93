package gateway

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated means no valid credential was ever presented for this
// call. This is an expected state for anonymous traffic; the caller redirects
// to login.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrSessionExpired means the credential was once valid but could not be
// refreshed. The session has already been torn down when this is returned;
// the caller redirects to login.
var ErrSessionExpired = errors.New("session expired")

// APIError is any other non-2xx backend response, carrying the HTTP status
// and a user-facing message resolved through the message table.
type APIError struct {
	Status  int
	Key     string // backend error key, e.g. "announcement.not.found" (may be empty)
	Message string // user-facing message
}

func (e *APIError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Key, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}
