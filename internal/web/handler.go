// Package web holds the HTTP surface of the dashboard backend: the login and
// callback endpoints driving the authorization-code flow, logout, and the
// authenticated proxy routes in front of the Skylab API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/skylab-kulubu/superadmin-sub000/internal/gateway"
	"github.com/skylab-kulubu/superadmin-sub000/internal/protocol"
	"github.com/skylab-kulubu/superadmin-sub000/internal/session"
)

const stateCookie = "oauth_state"

// Provider is the slice of the identity-provider client the handlers need.
type Provider interface {
	AuthCodeURL(state string) string
	LogoutURL(postLogoutRedirectURI string) string
	Exchange(ctx context.Context, code string) (session.TokenPair, error)
}

// Gateway executes backend calls with the current session.
type Gateway interface {
	Do(ctx context.Context, w http.ResponseWriter, r *http.Request, req gateway.Request) (gateway.Result, error)
}

// apiResources is the proxy allowlist. Anything else under /api is a 404
// before it reaches the backend.
var apiResources = map[string]bool{
	"users":         true,
	"events":        true,
	"competitions":  true,
	"competitors":   true,
	"seasons":       true,
	"sessions":      true,
	"announcements": true,
	"images":        true,
	"qrcodes":       true,
}

// Handler serves the dashboard's HTTP routes.
type Handler struct {
	provider      Provider
	gateway       Gateway
	store         session.Store
	baseURL       string
	secureCookies bool
	logger        *slog.Logger
}

// New creates the web handler. baseURL is the externally visible origin of
// this process, without a trailing slash.
func New(provider Provider, gw Gateway, store session.Store, baseURL string, secureCookies bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		provider:      provider,
		gateway:       gw,
		store:         store,
		baseURL:       baseURL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Register mounts all routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/login", h.handleLogin)
	r.Get("/auth/callback", h.handleCallback)
	r.Get("/logout", h.handleLogout)
	r.HandleFunc("/api/{resource}", h.handleAPI)
	r.HandleFunc("/api/{resource}/*", h.handleAPI)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	pair := h.store.Read(r)
	if pair.AccessToken == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	renderIndex(w)
}

// handleLogin either starts a fresh authorization round-trip or, when an
// error code was relayed to it, renders the error page. The page requires a
// click to retry so a failing provider cannot pull the browser into a
// redirect loop.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if errCode := r.URL.Query().Get("error"); errCode != "" {
		renderLoginError(w, errCode)
		return
	}

	state, err := protocol.RandomHex(16)
	if err != nil {
		h.logger.Error("generate state nonce", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// handleCallback finishes the authorization-code flow. Every terminal state
// is a redirect: success to the landing page, failures to /login with an
// error code.
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	fail := func(code string) {
		http.Redirect(w, r, "/login?error="+url.QueryEscape(code), http.StatusFound)
	}

	q := r.URL.Query()

	// Provider-reported errors are relayed as-is, before anything else and
	// without touching the token endpoint.
	if errCode := q.Get("error"); errCode != "" {
		h.logger.Warn("authorization failed at provider",
			"error", errCode, "description", q.Get("error_description"))
		fail(errCode)
		return
	}

	state, err := r.Cookie(stateCookie)
	http.SetCookie(w, &http.Cookie{
		Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true,
	})
	if err != nil || q.Get("state") != state.Value {
		h.logger.Warn("callback state mismatch")
		fail("state_mismatch")
		return
	}

	code := q.Get("code")
	if code == "" {
		fail("no_code")
		return
	}

	pair, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		fail("token_exchange_failed")
		return
	}

	h.store.Write(w, pair)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout clears the local session first, then hands the browser to the
// provider's logout endpoint when one is known.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(w)

	target := h.provider.LogoutURL(h.baseURL + "/login")
	if target == "" {
		target = "/login"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handleAPI forwards the request to the backend through the gateway.
func (h *Handler) handleAPI(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	if !apiResources[resource] {
		http.NotFound(w, r)
		return
	}

	path := "/api/" + resource
	if rest := chi.URLParam(r, "*"); rest != "" {
		path += "/" + rest
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad_request")
		return
	}

	header := http.Header{}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		header.Set("Content-Type", ct)
	}

	res, err := h.gateway.Do(r.Context(), w, r, gateway.Request{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.Query(),
		Header: header,
		Body:   body,
	})
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	w.Write(res.Body)
}

func (h *Handler) writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gateway.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, gateway.ErrSessionExpired):
		writeJSONError(w, http.StatusUnauthorized, "session_expired")
	default:
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			writeJSONError(w, apiErr.Status, apiErr.Message)
			return
		}
		h.logger.Error("backend call failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadGateway, "backend unreachable")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
