package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCookieStoreWrite(t *testing.T) {
	store := NewCookieStore(true)
	rec := httptest.NewRecorder()

	store.Write(rec, TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"})

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}

	at := cookieByName(cookies, AccessTokenCookie)
	if at == nil {
		t.Fatal("auth_token cookie not set")
	}
	if at.Value != "access-1" {
		t.Errorf("auth_token value = %q", at.Value)
	}
	if at.MaxAge != 7*24*60*60 {
		t.Errorf("auth_token MaxAge = %d, want 7 days", at.MaxAge)
	}
	if !at.HttpOnly {
		t.Error("auth_token should be HttpOnly")
	}
	if !at.Secure {
		t.Error("auth_token should be Secure")
	}
	if at.SameSite != http.SameSiteLaxMode {
		t.Errorf("auth_token SameSite = %v, want Lax", at.SameSite)
	}

	rt := cookieByName(cookies, RefreshTokenCookie)
	if rt == nil {
		t.Fatal("refresh_token cookie not set")
	}
	if rt.Value != "refresh-1" {
		t.Errorf("refresh_token value = %q", rt.Value)
	}
	if rt.MaxAge != 30*24*60*60 {
		t.Errorf("refresh_token MaxAge = %d, want 30 days", rt.MaxAge)
	}
}

func TestCookieStoreRead(t *testing.T) {
	store := NewCookieStore(false)

	t.Run("both cookies present", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "a"})
		r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "r"})

		pair := store.Read(r)
		if pair.AccessToken != "a" || pair.RefreshToken != "r" {
			t.Errorf("pair = %+v", pair)
		}
	})

	t.Run("no cookies", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		pair := store.Read(r)
		if pair.AccessToken != "" || pair.RefreshToken != "" {
			t.Errorf("pair = %+v, want empty", pair)
		}
	})

	t.Run("refresh token only", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "r"})
		pair := store.Read(r)
		if pair.AccessToken != "" {
			t.Errorf("AccessToken = %q, want empty", pair.AccessToken)
		}
		if pair.RefreshToken != "r" {
			t.Errorf("RefreshToken = %q, want r", pair.RefreshToken)
		}
	})
}

func TestCookieStoreClear(t *testing.T) {
	store := NewCookieStore(false)

	assertCleared := func(t *testing.T, rec *httptest.ResponseRecorder) {
		t.Helper()
		cookies := rec.Result().Cookies()
		if len(cookies) != 2 {
			t.Fatalf("got %d cookies, want 2", len(cookies))
		}
		for _, c := range cookies {
			if c.Value != "" {
				t.Errorf("%s value = %q, want empty", c.Name, c.Value)
			}
			if c.MaxAge != -1 {
				t.Errorf("%s MaxAge = %d, want -1", c.Name, c.MaxAge)
			}
		}
	}

	rec := httptest.NewRecorder()
	store.Clear(rec)
	assertCleared(t, rec)

	// Clearing again with no session is a no-op, not an error.
	rec2 := httptest.NewRecorder()
	store.Clear(rec2)
	assertCleared(t, rec2)
}

func TestWriteOverwritesPriorSession(t *testing.T) {
	store := NewCookieStore(false)
	rec := httptest.NewRecorder()

	store.Write(rec, TokenPair{AccessToken: "old-a", RefreshToken: "old-r"})
	store.Write(rec, TokenPair{AccessToken: "new-a", RefreshToken: "new-r"})

	// The last written value wins for each cookie name.
	cookies := rec.Result().Cookies()
	var lastAccess string
	for _, c := range cookies {
		if c.Name == AccessTokenCookie {
			lastAccess = c.Value
		}
	}
	if lastAccess != "new-a" {
		t.Errorf("last auth_token = %q, want new-a", lastAccess)
	}
}
