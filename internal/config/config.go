package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	Provider ProviderConfig `yaml:"provider"`
	Authz    AuthzConfig    `yaml:"authz"`
	Logging  LoggingConfig  `yaml:"logging"`
	UI       UIConfig       `yaml:"ui"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	BaseURL        string        `yaml:"base_url"`
	CookieName     string        `yaml:"cookie_name"`
	CookieDomain   string        `yaml:"cookie_domain"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	CookieHTTPOnly bool          `yaml:"cookie_http_only"`
	CookieSameSite string        `yaml:"cookie_same_site"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
}

type CacheConfig struct {
	Type  string       `yaml:"type"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	PoolSize   int    `yaml:"pool_size"`
	MaxRetries int    `yaml:"max_retries"`
}

type ProviderConfig struct {
	Type   string        `yaml:"type"`
	Name   string        `yaml:"name"`
	GitHub *GitHubConfig `yaml:"github,omitempty"`
	OIDC   *OIDCConfig   `yaml:"oidc,omitempty"`
}

type GitHubConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	UserURL      string   `yaml:"user_url"`
	Scopes       []string `yaml:"scopes"`
}

type OIDCConfig struct {
	Issuer       string   `yaml:"issuer"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

// AuthzConfig controls the post-authentication membership decision.
type AuthzConfig struct {
	Rule         string        `yaml:"rule"`
	Organization string        `yaml:"organization"`
	Domain       string        `yaml:"domain"`
	Authority    string        `yaml:"authority"`
	Timeout      time.Duration `yaml:"timeout"`
	Paginate     bool          `yaml:"paginate"`
	MaxPages     int           `yaml:"max_pages"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type UIConfig struct {
	Title         string `yaml:"title"`
	DenialMessage string `yaml:"denial_message"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	if err := cfg.loadSecretsFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load secrets from environment: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() error {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.CookieName == "" {
		c.Server.CookieName = "orggate-session"
	}
	if c.Server.CookieHTTPOnly == false {
		c.Server.CookieHTTPOnly = true
	}
	if c.Server.CookieSameSite == "" {
		c.Server.CookieSameSite = "lax"
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = 24 * time.Hour
	}

	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}

	if c.Cache.Type == "redis" && c.Cache.Redis != nil {
		if c.Cache.Redis.PoolSize == 0 {
			c.Cache.Redis.PoolSize = 10
		}
		if c.Cache.Redis.MaxRetries == 0 {
			c.Cache.Redis.MaxRetries = 3
		}
	}

	if c.Provider.Type == "" {
		c.Provider.Type = "github"
	}
	if c.Provider.Name == "" {
		c.Provider.Name = "GitHub"
	}

	if c.Provider.GitHub != nil {
		if c.Provider.GitHub.AuthURL == "" {
			c.Provider.GitHub.AuthURL = "https://github.com/login/oauth/authorize"
		}
		if c.Provider.GitHub.TokenURL == "" {
			c.Provider.GitHub.TokenURL = "https://github.com/login/oauth/access_token"
		}
		if c.Provider.GitHub.UserURL == "" {
			c.Provider.GitHub.UserURL = "https://api.github.com/user"
		}
		if len(c.Provider.GitHub.Scopes) == 0 {
			c.Provider.GitHub.Scopes = []string{"read:user", "read:org"}
		}
	}

	if c.Provider.OIDC != nil && len(c.Provider.OIDC.Scopes) == 0 {
		c.Provider.OIDC.Scopes = []string{"openid", "email", "profile"}
	}

	if c.Authz.Rule == "" {
		c.Authz.Rule = "organization"
	}
	if c.Authz.Authority == "" {
		c.Authz.Authority = "ROLE_USER"
	}
	if c.Authz.Timeout == 0 {
		c.Authz.Timeout = 5 * time.Second
	}
	if c.Authz.MaxPages == 0 {
		c.Authz.MaxPages = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.UI.Title == "" {
		c.UI.Title = "Sign In"
	}
	if c.UI.DenialMessage == "" {
		c.UI.DenialMessage = "There was an error signing you in. You may not be a member of the required organization."
	}

	return nil
}

func (c *Config) loadSecretsFromEnv() error {
	if c.Provider.GitHub != nil {
		if envClientID := os.Getenv("ORGGATE_CLIENT_ID"); envClientID != "" {
			c.Provider.GitHub.ClientID = envClientID
		}
		if envClientSecret := os.Getenv("ORGGATE_CLIENT_SECRET"); envClientSecret != "" {
			c.Provider.GitHub.ClientSecret = envClientSecret
		}
	}

	if c.Provider.OIDC != nil {
		if envClientID := os.Getenv("ORGGATE_CLIENT_ID"); envClientID != "" {
			c.Provider.OIDC.ClientID = envClientID
		}
		if envClientSecret := os.Getenv("ORGGATE_CLIENT_SECRET"); envClientSecret != "" {
			c.Provider.OIDC.ClientSecret = envClientSecret
		}
	}

	if c.Cache.Type == "redis" && c.Cache.Redis != nil {
		if envPassword := os.Getenv("REDIS_PASSWORD"); envPassword != "" {
			c.Cache.Redis.Password = envPassword
		}
	}

	return nil
}
