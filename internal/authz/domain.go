package authz

import (
	"context"
	"log/slog"
	"strings"

	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/config"
)

// DomainEvaluator is the membership rule for OIDC providers that expose
// a hosted-domain claim instead of an organizations API. It admits a
// principal whose "hd" claim equals the configured domain, or whose
// verified email belongs to it.
type DomainEvaluator struct {
	domain    string
	authority string
	logger    *slog.Logger
}

func NewDomainEvaluator(cfg config.AuthzConfig, logger *slog.Logger) *DomainEvaluator {
	return &DomainEvaluator{
		domain:    cfg.Domain,
		authority: cfg.Authority,
		logger:    logger,
	}
}

func (e *DomainEvaluator) Evaluate(ctx context.Context, profile auth.Profile, accessToken string) auth.Outcome {
	if hd, err := profile.StringField("hd"); err == nil {
		if hd == e.domain {
			return auth.Granted(e.authority)
		}
		e.logger.Info("hosted domain mismatch", "domain", hd)
		return auth.Denied(auth.ReasonNotInOrganization)
	}

	email, err := profile.StringField("email")
	if err != nil {
		e.logger.Warn("profile has neither hd nor email claim", "error", err)
		return auth.Denied(auth.ReasonMalformedProfile)
	}

	if strings.HasSuffix(email, "@"+e.domain) {
		return auth.Granted(e.authority)
	}

	e.logger.Info("email domain mismatch")
	return auth.Denied(auth.ReasonNotInOrganization)
}
