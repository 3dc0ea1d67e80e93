package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration.
type Config struct {
	ListenAddr string `toml:"listen_addr"`
	LogLevel   string `toml:"log_level"`
	// BaseURL is the externally visible URL of this dashboard, used to
	// derive the OAuth2 redirect URI and the post-logout redirect target.
	BaseURL string `toml:"base_url"`
	// SecureCookies controls the Secure flag on session cookies.
	// Disabled only for plain-HTTP development.
	SecureCookies      bool `toml:"secure_cookies"`
	InsecureSkipVerify bool `toml:"insecure_skip_verify"`

	Provider ProviderConfig `toml:"provider"`
	API      APIConfig      `toml:"api"`
}

// ProviderConfig defines the external identity provider.
// Either issuer (OIDC discovery) or the manual endpoint URLs are required.
type ProviderConfig struct {
	Issuer           string   `toml:"issuer"`
	AuthorizationURL string   `toml:"authorization_url"`
	TokenURL         string   `toml:"token_url"`
	LogoutURL        string   `toml:"logout_url"`
	ClientID         string   `toml:"client_id"`
	ClientSecret     string   `toml:"client_secret"`
	RedirectURI      string   `toml:"redirect_uri"`
	Scopes           []string `toml:"scopes"`
	Timeout          duration `toml:"timeout"`
}

// APIConfig defines the remote backend the dashboard proxies to.
type APIConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
}

// duration wraps time.Duration for TOML string values like "10s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Load reads the configuration from a TOML file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: ":3000",
		LogLevel:   "info",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// Apply defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if len(cfg.Provider.Scopes) == 0 {
		cfg.Provider.Scopes = []string{"openid", "profile", "email"}
	}
	if cfg.Provider.Timeout.Duration == 0 {
		cfg.Provider.Timeout.Duration = 10 * time.Second
	}
	if cfg.API.Timeout.Duration == 0 {
		cfg.API.Timeout.Duration = 15 * time.Second
	}

	if err := validateBaseURL(&cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("base_url: %w", err)
	}
	if cfg.Provider.RedirectURI == "" {
		cfg.Provider.RedirectURI = cfg.BaseURL + "/auth/callback"
	}

	if cfg.Provider.ClientID == "" {
		return nil, fmt.Errorf("provider.client_id is required")
	}
	if cfg.Provider.Issuer == "" && (cfg.Provider.AuthorizationURL == "" || cfg.Provider.TokenURL == "") {
		return nil, fmt.Errorf("provider: either issuer or both authorization_url and token_url are required")
	}

	if err := validateBaseURL(&cfg.API.BaseURL); err != nil {
		return nil, fmt.Errorf("api.base_url: %w", err)
	}

	return cfg, nil
}

// validateBaseURL checks scheme and host and strips any trailing slash.
func validateBaseURL(baseURL *string) error {
	if *baseURL == "" {
		return fmt.Errorf("value is required")
	}

	u, err := url.Parse(*baseURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", *baseURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q: scheme must be http or https", *baseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q: host is required", *baseURL)
	}

	*baseURL = u.Scheme + "://" + u.Host + strings.TrimRight(u.Path, "/")
	return nil
}
