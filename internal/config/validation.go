package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.validateCache(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.validateProvider(); err != nil {
		return fmt.Errorf("provider config: %w", err)
	}

	if err := c.validateAuthz(); err != nil {
		return fmt.Errorf("authz config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Server.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	if _, err := url.Parse(c.Server.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}

	sameSite := strings.ToLower(c.Server.CookieSameSite)
	if sameSite != "lax" && sameSite != "strict" && sameSite != "none" {
		return fmt.Errorf("invalid cookie_same_site: %s (must be lax, strict, or none)", c.Server.CookieSameSite)
	}

	if c.Server.SessionTTL < time.Minute {
		return fmt.Errorf("session_ttl must be at least 1 minute")
	}

	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("invalid type: %s (must be memory or redis)", c.Cache.Type)
	}

	if c.Cache.Type == "redis" {
		if c.Cache.Redis == nil {
			return fmt.Errorf("redis config is required when type is redis")
		}
		if c.Cache.Redis.Address == "" {
			return fmt.Errorf("redis address is required")
		}
	}

	return nil
}

func (c *Config) validateProvider() error {
	switch c.Provider.Type {
	case "github":
		return validateGitHubConfig(c.Provider.GitHub)
	case "oidc":
		return validateOIDCConfig(c.Provider.OIDC)
	default:
		return fmt.Errorf("invalid type: %s (must be github or oidc)", c.Provider.Type)
	}
}

func validateGitHubConfig(cfg *GitHubConfig) error {
	if cfg == nil {
		return fmt.Errorf("github config is required")
	}

	if cfg.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}

	if cfg.ClientSecret == "" {
		return fmt.Errorf("client_secret is required")
	}

	for _, u := range []struct {
		name, value string
	}{
		{"auth_url", cfg.AuthURL},
		{"token_url", cfg.TokenURL},
		{"user_url", cfg.UserURL},
	} {
		if u.value == "" {
			return fmt.Errorf("%s is required", u.name)
		}
		if _, err := url.Parse(u.value); err != nil {
			return fmt.Errorf("invalid %s: %w", u.name, err)
		}
	}

	return nil
}

func validateOIDCConfig(cfg *OIDCConfig) error {
	if cfg == nil {
		return fmt.Errorf("oidc config is required")
	}

	if cfg.Issuer == "" {
		return fmt.Errorf("issuer is required")
	}

	if _, err := url.Parse(cfg.Issuer); err != nil {
		return fmt.Errorf("invalid issuer URL: %w", err)
	}

	if cfg.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}

	if cfg.ClientSecret == "" {
		return fmt.Errorf("client_secret is required")
	}

	hasOpenID := false
	for _, scope := range cfg.Scopes {
		if scope == "openid" {
			hasOpenID = true
			break
		}
	}
	if !hasOpenID {
		return fmt.Errorf("'openid' scope is required")
	}

	return nil
}

func (c *Config) validateAuthz() error {
	switch c.Authz.Rule {
	case "organization":
		if c.Authz.Organization == "" {
			return fmt.Errorf("organization is required when rule is organization")
		}
	case "domain":
		if c.Authz.Domain == "" {
			return fmt.Errorf("domain is required when rule is domain")
		}
	default:
		return fmt.Errorf("invalid rule: %s (must be organization or domain)", c.Authz.Rule)
	}

	if c.Authz.Authority == "" {
		return fmt.Errorf("authority is required")
	}

	if c.Authz.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.Authz.Paginate && c.Authz.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1 when paginate is enabled")
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" {
		return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}
