// Package gateway executes requests against the remote Skylab backend with
// the session's bearer token, transparently recovering from token expiry at
// most once per call.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/sync/singleflight"

	"github.com/skylab-kulubu/superadmin-sub000/internal/protocol"
	"github.com/skylab-kulubu/superadmin-sub000/internal/session"
)

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (session.TokenPair, error)
}

// Client is the authenticated fetch gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	refresher  Refresher
	store      session.Store
	logger     *slog.Logger

	// refreshGroup deduplicates concurrent refreshes of the same refresh
	// token. Providers may rotate refresh tokens on use; without this,
	// two requests discovering expiry together would race and the loser
	// would tear down a session that was just renewed.
	refreshGroup singleflight.Group
}

// New creates a gateway client for the backend at baseURL.
func New(baseURL string, httpClient *http.Client, refresher Refresher, store session.Store, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		refresher:  refresher,
		store:      store,
		logger:     logger,
	}
}

// Request describes one backend call. Body is a byte slice rather than a
// reader so the refresh retry can replay it.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Result is a successful backend response.
type Result struct {
	Status int
	Body   json.RawMessage
}

// Do executes the request with the current session's access token. On a 401
// whose WWW-Authenticate challenge indicates an expired token it performs a
// single silent refresh and re-issues the request once; any further 401 or a
// failed refresh tears the session down. The sequence is two explicit
// attempts, never a loop.
func (c *Client) Do(ctx context.Context, w http.ResponseWriter, r *http.Request, req Request) (Result, error) {
	pair := c.store.Read(r)
	if pair.AccessToken == "" {
		// Some endpoints are public; attempt the call anyway.
		c.logger.Warn("backend call without access token", "method", req.Method, "path", req.Path)
	}

	// Direct attempt.
	status, header, body, err := c.send(ctx, req, pair.AccessToken)
	if err != nil {
		return Result{}, fmt.Errorf("call backend: %w", err)
	}
	if status != http.StatusUnauthorized {
		return c.finish(status, body)
	}

	challenge := header.Get("WWW-Authenticate")
	if !protocol.IndicatesExpiredToken(challenge) {
		// The token was never valid; a refresh cannot help.
		c.store.Clear(w)
		return Result{}, ErrUnauthenticated
	}

	if pair.RefreshToken == "" {
		c.store.Clear(w)
		return Result{}, ErrSessionExpired
	}

	newPair, err := c.refreshSession(ctx, pair.RefreshToken)
	if err != nil {
		c.logger.Warn("token refresh failed, tearing down session", "error", err)
		c.store.Clear(w)
		return Result{}, ErrSessionExpired
	}
	c.store.Write(w, newPair)

	// Refreshed retry. A 401 here is terminal: at most one refresh per call.
	status, _, body, err = c.send(ctx, req, newPair.AccessToken)
	if err != nil {
		return Result{}, fmt.Errorf("retry backend call: %w", err)
	}
	if status == http.StatusUnauthorized {
		c.store.Clear(w)
		return Result{}, ErrSessionExpired
	}
	return c.finish(status, body)
}

// refreshSession performs the refresh inside a single-flight group keyed by
// the refresh token, so concurrent callers holding the same expired session
// share one provider call and one resulting pair.
func (c *Client) refreshSession(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	v, err, _ := c.refreshGroup.Do(refreshToken, func() (any, error) {
		return c.refresher.Refresh(ctx, refreshToken)
	})
	if err != nil {
		return session.TokenPair{}, err
	}
	return v.(session.TokenPair), nil
}

func (c *Client) send(ctx context.Context, req Request, accessToken string) (int, http.Header, []byte, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, resp.Header, body, nil
}

// finish maps a terminal (non-401) backend response to a Result or APIError.
func (c *Client) finish(status int, body []byte) (Result, error) {
	if status >= 200 && status < 300 {
		// 204s and empty or non-JSON bodies become an empty object;
		// callers must not assume a body is always present.
		if status == http.StatusNoContent || len(body) == 0 || !json.Valid(body) {
			return Result{Status: status, Body: json.RawMessage(`{}`)}, nil
		}
		return Result{Status: status, Body: body}, nil
	}

	var errBody struct {
		Message string `json:"message"`
	}
	key := ""
	if json.Unmarshal(body, &errBody) == nil {
		key = errBody.Message
	}
	return Result{}, &APIError{Status: status, Key: key, Message: resolveMessage(status, key)}
}
