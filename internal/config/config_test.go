package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Fatal("Load(nonexistent) should return error")
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, `
listen_addr = ":8080"
log_level = "debug"
base_url = "https://admin.skylab.test"
secure_cookies = true

[provider]
issuer = "https://idp.skylab.test/realms/skylab"
client_id = "superadmin"
client_secret = "secret"
scopes = ["openid", "profile"]
timeout = "5s"

[api]
base_url = "https://api.skylab.test/"
timeout = "20s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.SecureCookies {
		t.Error("SecureCookies should be true")
	}
	if cfg.Provider.ClientID != "superadmin" {
		t.Errorf("Provider.ClientID = %q", cfg.Provider.ClientID)
	}
	if len(cfg.Provider.Scopes) != 2 {
		t.Errorf("Provider.Scopes = %v, want 2 scopes", cfg.Provider.Scopes)
	}
	if cfg.Provider.Timeout.Duration != 5*time.Second {
		t.Errorf("Provider.Timeout = %v, want 5s", cfg.Provider.Timeout.Duration)
	}
	// Trailing slash stripped
	if cfg.API.BaseURL != "https://api.skylab.test" {
		t.Errorf("API.BaseURL = %q, want https://api.skylab.test", cfg.API.BaseURL)
	}
	if cfg.API.Timeout.Duration != 20*time.Second {
		t.Errorf("API.Timeout = %v, want 20s", cfg.API.Timeout.Duration)
	}
	// Redirect URI derived from base_url
	if cfg.Provider.RedirectURI != "https://admin.skylab.test/auth/callback" {
		t.Errorf("Provider.RedirectURI = %q", cfg.Provider.RedirectURI)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
base_url = "http://localhost:3000"

[provider]
authorization_url = "https://idp.test/auth"
token_url = "https://idp.test/token"
client_id = "c"

[api]
base_url = "http://localhost:8000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":3000" {
		t.Errorf("ListenAddr = %q, want :3000", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if len(cfg.Provider.Scopes) != 3 {
		t.Errorf("Scopes = %v, want default openid profile email", cfg.Provider.Scopes)
	}
	if cfg.Provider.Timeout.Duration != 10*time.Second {
		t.Errorf("Provider.Timeout = %v, want 10s default", cfg.Provider.Timeout.Duration)
	}
	if cfg.API.Timeout.Duration != 15*time.Second {
		t.Errorf("API.Timeout = %v, want 15s default", cfg.API.Timeout.Duration)
	}
	// Client secret is optional (public-client flow)
	if cfg.Provider.ClientSecret != "" {
		t.Errorf("ClientSecret = %q, want empty", cfg.Provider.ClientSecret)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		toml string
	}{
		{"missing base_url", `
[provider]
issuer = "https://idp.test"
client_id = "c"
[api]
base_url = "http://localhost:8000"
`},
		{"missing client_id", `
base_url = "http://localhost:3000"
[provider]
issuer = "https://idp.test"
[api]
base_url = "http://localhost:8000"
`},
		{"no issuer and no manual endpoints", `
base_url = "http://localhost:3000"
[provider]
client_id = "c"
token_url = "https://idp.test/token"
[api]
base_url = "http://localhost:8000"
`},
		{"missing api base_url", `
base_url = "http://localhost:3000"
[provider]
issuer = "https://idp.test"
client_id = "c"
`},
		{"bad scheme", `
base_url = "ftp://localhost:3000"
[provider]
issuer = "https://idp.test"
client_id = "c"
[api]
base_url = "http://localhost:8000"
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.toml)
			if _, err := Load(path); err == nil {
				t.Error("Load should return error")
			}
		})
	}
}
