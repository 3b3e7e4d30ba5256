package oidc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/cache"
	"github.com/orggate/orggate/internal/config"
	"golang.org/x/oauth2"
)

// Provider runs the authorization-code flow with PKCE against a generic
// OIDC issuer. The verified ID-token claims become the user profile.
type Provider struct {
	name  string
	cfg   config.OIDCConfig
	cache cache.Cache

	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

func NewProvider(ctx context.Context, providerCfg config.ProviderConfig, cache cache.Cache) (*Provider, error) {
	if providerCfg.OIDC == nil {
		return nil, fmt.Errorf("OIDC config is required")
	}

	provider, err := oidc.NewProvider(ctx, providerCfg.OIDC.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	oauth2Config := oauth2.Config{
		ClientID:     providerCfg.OIDC.ClientID,
		ClientSecret: providerCfg.OIDC.ClientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       providerCfg.OIDC.Scopes,
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: providerCfg.OIDC.ClientID,
	})

	return &Provider{
		name:         providerCfg.Name,
		cfg:          *providerCfg.OIDC,
		cache:        cache,
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Type() string {
	return "oidc"
}

func (p *Provider) InitiateAuth(ctx context.Context, redirectURL string) (*auth.AuthRedirect, error) {
	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	codeChallenge := generateCodeChallenge(codeVerifier)

	state := uuid.New().String()

	p.oauth2Config.RedirectURL = redirectURL

	authURL := p.oauth2Config.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	loginState := &auth.LoginState{
		State:        state,
		CodeVerifier: codeVerifier,
		RedirectURL:  redirectURL,
		CreatedAt:    time.Now(),
	}

	stateData, err := json.Marshal(loginState)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	return &auth.AuthRedirect{
		URL:       authURL,
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

	oauth2Token, err := p.oauth2Config.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", loginState.CodeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("no id_token in token response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims auth.Profile
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	return &auth.Login{
		AccessToken: oauth2Token.AccessToken,
		Profile:     claims,
		TokenExpiry: oauth2Token.Expiry,
	}, nil
}

func generateCodeVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
