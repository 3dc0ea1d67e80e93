// Package provider talks to the external OpenID-Connect identity provider:
// it builds authorization and logout URLs and exchanges authorization codes
// and refresh tokens for token pairs. It holds no session state.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/skylab-kulubu/superadmin-sub000/internal/config"
	"github.com/skylab-kulubu/superadmin-sub000/internal/session"
)

const discoveryAttempts = 5

// Client is the identity provider client. Construct with New.
type Client struct {
	oauth2Config *oauth2.Config
	verifier     *gooidc.IDTokenVerifier
	logoutURL    string
	clientID     string
	httpClient   *http.Client
	timeout      time.Duration
}

// New creates a provider client. When cfg.Issuer is set the endpoints are
// taken from OIDC discovery (retried a few times to tolerate a provider that
// is still starting); otherwise the manually configured URLs are used.
// A missing client secret is valid: the client then operates as an OAuth2
// public client and authenticates with its client_id only.
func New(ctx context.Context, cfg config.ProviderConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		clientID:   cfg.ClientID,
		httpClient: httpClient,
		timeout:    cfg.Timeout.Duration,
		logoutURL:  cfg.LogoutURL,
	}
	if c.timeout == 0 {
		c.timeout = 10 * time.Second
	}

	endpoint := oauth2.Endpoint{
		AuthURL:  cfg.AuthorizationURL,
		TokenURL: cfg.TokenURL,
		// The backend token endpoint expects client credentials in the
		// form body, not in a Basic auth header.
		AuthStyle: oauth2.AuthStyleInParams,
	}

	if cfg.Issuer != "" {
		provider, err := discover(ctx, cfg.Issuer, httpClient)
		if err != nil {
			return nil, err
		}

		endpoint = provider.Endpoint()
		endpoint.AuthStyle = oauth2.AuthStyleInParams
		c.verifier = provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID})

		var claims struct {
			EndSessionEndpoint string `json:"end_session_endpoint"`
		}
		if err := provider.Claims(&claims); err != nil {
			slog.Warn("Could not extract provider claims", "issuer", cfg.Issuer, "error", err)
		}
		if claims.EndSessionEndpoint != "" {
			c.logoutURL = claims.EndSessionEndpoint
		}
	}

	c.oauth2Config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     endpoint,
		Scopes:       cfg.Scopes,
	}

	return c, nil
}

func discover(ctx context.Context, issuer string, httpClient *http.Client) (*gooidc.Provider, error) {
	ctx = gooidc.ClientContext(ctx, httpClient)

	var (
		provider *gooidc.Provider
		err      error
	)
	for i := 0; i < discoveryAttempts; i++ {
		provider, err = gooidc.NewProvider(ctx, issuer)
		if err == nil {
			return provider, nil
		}
		slog.Warn("OIDC provider discovery failed", "attempt", i+1, "issuer", issuer, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("discover OIDC provider %s: %w", issuer, err)
}

// AuthCodeURL builds the provider's authorization endpoint URL with
// response_type=code, the configured client, redirect URI and scopes, and
// the given anti-CSRF state. Pure string construction.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth2Config.AuthCodeURL(state)
}

// LogoutURL builds the provider's logout endpoint URL. Returns empty when no
// logout endpoint is configured or discovered.
func (c *Client) LogoutURL(postLogoutRedirectURI string) string {
	if c.logoutURL == "" {
		return ""
	}
	params := url.Values{"client_id": {c.clientID}}
	if postLogoutRedirectURI != "" {
		params.Set("post_logout_redirect_uri", postLogoutRedirectURI)
	}
	return c.logoutURL + "?" + params.Encode()
}

// Exchange trades a one-time authorization code for a token pair. The code is
// consumed by the provider regardless of outcome. When discovery is active and
// the response carries an id_token, the token is verified before the pair is
// accepted.
func (c *Client) Exchange(ctx context.Context, code string) (session.TokenPair, error) {
	if code == "" {
		return session.TokenPair{}, &ExchangeError{Code: "invalid_request", Description: "authorization code is empty"}
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	token, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		status, errCode, desc, detail := decodeRetrieveError(err)
		return session.TokenPair{}, &ExchangeError{Status: status, Code: errCode, Description: desc, Detail: detail}
	}

	if c.verifier != nil {
		if rawIDToken, ok := token.Extra("id_token").(string); ok {
			if _, err := c.verifier.Verify(ctx, rawIDToken); err != nil {
				return session.TokenPair{}, &ExchangeError{Code: "id_token_verification_failed", Detail: err.Error()}
			}
		}
	}

	return session.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

// Refresh trades a refresh token for a new token pair. When the provider does
// not rotate the refresh token the previous one is retained in the returned
// pair, so the caller can always persist the result as-is.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	if refreshToken == "" {
		return session.TokenPair{}, &RefreshError{Code: "invalid_request", Description: "refresh token is empty"}
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	tokenSource := c.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		status, errCode, desc, detail := decodeRetrieveError(err)
		return session.TokenPair{}, &RefreshError{Status: status, Code: errCode, Description: desc, Detail: detail}
	}

	pair := session.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return pair, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return context.WithTimeout(ctx, c.timeout)
}
