package protocol

import (
	"regexp"
	"strings"
)

var wwwAuthParamRe = regexp.MustCompile(`(\w+)="([^"]*)"`)

// ParseWWWAuthenticate extracts error, error_description, and error_uri
// from a WWW-Authenticate header value (RFC 6750 Section 3).
func ParseWWWAuthenticate(value string) (errCode, errDesc, errURI string) {
	for _, match := range wwwAuthParamRe.FindAllStringSubmatch(value, -1) {
		switch match[1] {
		case "error":
			errCode = match[2]
		case "error_description":
			errDesc = match[2]
		case "error_uri":
			errURI = match[2]
		}
	}
	return
}

// IndicatesExpiredToken reports whether a WWW-Authenticate header value from
// a 401 response signals that the presented access token expired and a
// refresh should be attempted. The backend marks this with an "expired"
// substring or the RFC 6750 invalid_token error code. Any other challenge
// (missing token, malformed token, wrong audience) means the credential was
// never valid and a refresh would be pointless.
func IndicatesExpiredToken(value string) bool {
	if value == "" {
		return false
	}
	lower := strings.ToLower(value)
	return strings.Contains(lower, "expired") || strings.Contains(lower, "invalid_token")
}
