// Package session persists the current token pair in HTTP-only cookies.
// Cookies are the only session state this application holds; losing them is
// equivalent to losing the session.
package session

import (
	"net/http"
	"time"
)

// Cookie names are part of the observable contract with the browser.
const (
	AccessTokenCookie  = "auth_token"
	RefreshTokenCookie = "refresh_token"
)

const (
	accessTokenMaxAge  = 7 * 24 * time.Hour
	refreshTokenMaxAge = 30 * 24 * time.Hour
)

// TokenPair is the result of any token exchange. A written pair always
// replaces the previous session state, never merges with it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Store reads and writes the current session. It is injected into every
// component that touches session state so tests can substitute a fake.
type Store interface {
	// Read returns the token pair from the request. Absent cookies yield
	// empty fields.
	Read(r *http.Request) TokenPair
	// Write replaces both cookies with the given pair.
	Write(w http.ResponseWriter, pair TokenPair)
	// Clear removes both cookies. Idempotent; clearing a non-existent
	// session is a no-op.
	Clear(w http.ResponseWriter)
}

// CookieStore is the production Store. Both cookies are HttpOnly and
// SameSite=Lax; Secure follows the deployment config.
type CookieStore struct {
	Secure bool
}

// NewCookieStore creates a cookie-backed session store.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure}
}

func (s *CookieStore) Read(r *http.Request) TokenPair {
	var pair TokenPair
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		pair.AccessToken = c.Value
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		pair.RefreshToken = c.Value
	}
	return pair
}

func (s *CookieStore) Write(w http.ResponseWriter, pair TokenPair) {
	http.SetCookie(w, s.cookie(AccessTokenCookie, pair.AccessToken, int(accessTokenMaxAge.Seconds())))
	http.SetCookie(w, s.cookie(RefreshTokenCookie, pair.RefreshToken, int(refreshTokenMaxAge.Seconds())))
}

// Clear overwrites both cookies with an expired empty value. Overwriting
// rather than relying on a delete primitive guards against environments
// where deletion silently fails; a second Clear finds nothing to remove
// and writes the same expired cookies again.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, s.cookie(RefreshTokenCookie, "", -1))
}

func (s *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
