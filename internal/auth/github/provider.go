package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/cache"
	"github.com/orggate/orggate/internal/config"
	"golang.org/x/oauth2"
)

// Provider runs the GitHub OAuth2 authorization-code flow and fetches
// the user-info document from the GitHub API.
type Provider struct {
	name  string
	cfg   config.GitHubConfig
	cache cache.Cache

	oauth2Config oauth2.Config
}

func NewProvider(providerCfg config.ProviderConfig, cache cache.Cache) (*Provider, error) {
	if providerCfg.GitHub == nil {
		return nil, fmt.Errorf("github config is required")
	}

	oauth2Config := oauth2.Config{
		ClientID:     providerCfg.GitHub.ClientID,
		ClientSecret: providerCfg.GitHub.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  providerCfg.GitHub.AuthURL,
			TokenURL: providerCfg.GitHub.TokenURL,
		},
		Scopes: providerCfg.GitHub.Scopes,
	}

	return &Provider{
		name:         providerCfg.Name,
		cfg:          *providerCfg.GitHub,
		cache:        cache,
		oauth2Config: oauth2Config,
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Type() string {
	return "github"
}

func (p *Provider) InitiateAuth(ctx context.Context, redirectURL string) (*auth.AuthRedirect, error) {
	state := uuid.New().String()

	p.oauth2Config.RedirectURL = redirectURL

	loginState := &auth.LoginState{
		State:       state,
		RedirectURL: redirectURL,
		CreatedAt:   time.Now(),
	}

	stateData, err := json.Marshal(loginState)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	return &auth.AuthRedirect{
		URL:       p.oauth2Config.AuthCodeURL(state),
		CacheKey:  "login:state:" + state,
		CacheData: stateData,
		CacheTTL:  5 * time.Minute,
	}, nil
}

func (p *Provider) HandleCallback(ctx context.Context, req *http.Request) (*auth.Login, error) {
	if errCode := req.URL.Query().Get("error"); errCode != "" {
		return nil, fmt.Errorf("provider returned error: %s", errCode)
	}

	code := req.URL.Query().Get("code")
	state := req.URL.Query().Get("state")

	if code == "" {
		return nil, fmt.Errorf("missing code parameter")
	}
	if state == "" {
		return nil, fmt.Errorf("missing state parameter")
	}

	stateData, err := p.cache.Get(ctx, "login:state:"+state)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired state: %w", err)
	}

	var loginState auth.LoginState
	if err := json.Unmarshal(stateData, &loginState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	p.cache.Delete(ctx, "login:state:"+state)

	p.oauth2Config.RedirectURL = loginState.RedirectURL

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	profile, err := p.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	return &auth.Login{
		AccessToken: token.AccessToken,
		Profile:     profile,
		TokenExpiry: token.Expiry,
	}, nil
}

func (p *Provider) fetchProfile(ctx context.Context, token *oauth2.Token) (auth.Profile, error) {
	client := p.oauth2Config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.UserURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user-info request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("user-info request returned status %d", resp.StatusCode)
	}

	var profile auth.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return profile, nil
}
