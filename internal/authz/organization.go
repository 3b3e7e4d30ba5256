package authz

import (
	"context"
	"log/slog"

	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/config"
)

// organizationsURLKey is the GitHub user-info field pointing at the
// principal's organizations collection.
const organizationsURLKey = "organizations_url"

// OrganizationEvaluator admits a principal iff the organizations
// collection referenced by its profile contains the configured target
// organization. Match is exact and case-sensitive.
type OrganizationEvaluator struct {
	target    string
	authority string
	client    *APIClient
	logger    *slog.Logger
}

func NewOrganizationEvaluator(cfg config.AuthzConfig, client *APIClient, logger *slog.Logger) *OrganizationEvaluator {
	return &OrganizationEvaluator{
		target:    cfg.Organization,
		authority: cfg.Authority,
		client:    client,
		logger:    logger,
	}
}

func (e *OrganizationEvaluator) Evaluate(ctx context.Context, profile auth.Profile, accessToken string) auth.Outcome {
	locator, err := profile.StringField(organizationsURLKey)
	if err != nil {
		e.logger.Warn("profile has no usable organizations locator", "error", err)
		return auth.Denied(auth.ReasonMalformedProfile)
	}

	orgs, err := e.client.FetchOrganizations(ctx, locator, accessToken)
	if err != nil {
		e.logger.Warn("organizations fetch failed", "locator", locator, "error", err)
		return auth.Denied(denialReasonFor(err))
	}

	for _, org := range orgs {
		if org.Login == e.target {
			return auth.Granted(e.authority)
		}
	}

	e.logger.Info("principal not in target organization",
		"target", e.target,
		"organizations", len(orgs),
	)
	return auth.Denied(auth.ReasonNotInOrganization)
}
