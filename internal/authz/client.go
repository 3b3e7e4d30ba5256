package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/orggate/orggate/internal/config"
)

var (
	// ErrUpstreamUnavailable covers network failures, timeouts, non-2xx
	// responses and malformed bodies from the provider API.
	ErrUpstreamUnavailable = errors.New("provider API unavailable")

	// ErrUpstreamAuth means the provider API rejected the access token.
	ErrUpstreamAuth = errors.New("provider API rejected credentials")
)

// Organization is one entry of the provider's organizations collection.
// Only the login name matters for the membership check.
type Organization struct {
	Login string `json:"login"`
}

// APIClient issues authenticated reads against the identity provider's
// REST API. The access token is a per-call parameter so one client can
// serve concurrent principals without credential leakage.
type APIClient struct {
	httpClient *http.Client
	timeout    time.Duration
	paginate   bool
	maxPages   int
}

func NewAPIClient(cfg config.AuthzConfig) *APIClient {
	return &APIClient{
		httpClient: &http.Client{},
		timeout:    cfg.Timeout,
		paginate:   cfg.Paginate,
		maxPages:   cfg.MaxPages,
	}
}

// FetchOrganizations retrieves the organizations collection at locator
// using the caller's token. Single attempt per page, bounded by the
// configured timeout across all pages. Pagination is opt-in; with it off
// only the first page is read.
func (c *APIClient) FetchOrganizations(ctx context.Context, locator, accessToken string) ([]Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var orgs []Organization

	next := locator
	for page := 0; next != ""; page++ {
		if page > 0 && (!c.paginate || page >= c.maxPages) {
			break
		}

		pageOrgs, nextURL, err := c.fetchPage(ctx, next, accessToken)
		if err != nil {
			return nil, err
		}

		orgs = append(orgs, pageOrgs...)
		next = nextURL
	}

	return orgs, nil
}

func (c *APIClient) fetchPage(ctx context.Context, url, accessToken string) ([]Organization, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", fmt.Errorf("%w: status %d", ErrUpstreamAuth, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, "", fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var orgs []Organization
	if err := json.NewDecoder(resp.Body).Decode(&orgs); err != nil {
		return nil, "", fmt.Errorf("%w: malformed body: %v", ErrUpstreamUnavailable, err)
	}

	return orgs, nextPageURL(resp.Header), nil
}

// nextPageURL extracts the rel="next" target from an RFC 5988 Link
// header, as used by the GitHub API for paginated collections.
func nextPageURL(header http.Header) string {
	for _, link := range header.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			section := strings.Split(part, ";")
			if len(section) < 2 {
				continue
			}

			target := strings.Trim(strings.TrimSpace(section[0]), "<>")
			for _, param := range section[1:] {
				if strings.TrimSpace(param) == `rel="next"` {
					return target
				}
			}
		}
	}
	return ""
}
