package auth

import (
	"context"
	"net/http"
	"time"
)

// Provider drives the OAuth2 handshake with a single identity provider.
// It ends at the point where an access token and a user profile are in
// hand; the membership decision happens elsewhere.
type Provider interface {
	Name() string
	Type() string

	InitiateAuth(ctx context.Context, redirectURL string) (*AuthRedirect, error)
	HandleCallback(ctx context.Context, req *http.Request) (*Login, error)
}

// Login is what a completed provider handshake yields: the raw profile
// document and the access token it was obtained with. It lives for one
// login attempt only.
type Login struct {
	AccessToken string
	Profile     Profile
	TokenExpiry time.Time
}

type AuthRedirect struct {
	URL       string
	CacheKey  string
	CacheData []byte
	CacheTTL  time.Duration
}

// LoginState is cached between the redirect to the provider and the
// callback, keyed by the opaque state nonce.
type LoginState struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier,omitempty"`
	RedirectURL  string    `json:"redirect_url"`
	CreatedAt    time.Time `json:"created_at"`
}
