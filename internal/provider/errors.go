package provider

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ExchangeError is a provider rejection of an authorization code.
type ExchangeError struct {
	Status      int    // HTTP status from the token endpoint (0 for connection failures)
	Code        string // RFC 6749 error code, e.g. "invalid_grant"
	Description string
	Detail      string // transport-level detail when no structured error is available
}

func (e *ExchangeError) Error() string {
	return "token exchange failed: " + formatOAuthError(e.Status, e.Code, e.Description, e.Detail)
}

// RefreshError is a provider rejection of a refresh token.
type RefreshError struct {
	Status      int
	Code        string
	Description string
	Detail      string
}

func (e *RefreshError) Error() string {
	return "token refresh failed: " + formatOAuthError(e.Status, e.Code, e.Description, e.Detail)
}

func formatOAuthError(status int, code, description, detail string) string {
	switch {
	case code != "" && description != "":
		return fmt.Sprintf("%s (%s), status %d", code, description, status)
	case code != "":
		return fmt.Sprintf("%s, status %d", code, status)
	case detail != "":
		return detail
	default:
		return fmt.Sprintf("status %d", status)
	}
}

// decodeRetrieveError extracts RFC 6749 error fields from an
// oauth2.RetrieveError. For errors that never reached the provider
// (connection failures, timeouts) status is 0 and detail carries the
// transport error message.
func decodeRetrieveError(err error) (status int, code, description, detail string) {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status = 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return status, re.ErrorCode, re.ErrorDescription, ""
	}
	return 0, "", "", err.Error()
}
