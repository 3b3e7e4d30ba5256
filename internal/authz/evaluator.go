package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/config"
)

// Evaluator renders the admission verdict for a freshly authenticated
// principal. Implementations must fail closed: any error on their own
// path becomes a denial, never a grant. The verdict is computed from
// scratch on every login attempt.
type Evaluator interface {
	Evaluate(ctx context.Context, profile auth.Profile, accessToken string) auth.Outcome
}

// New selects the membership rule from config. Alternative rules are
// added as new Evaluator implementations, not by touching the pipeline.
func New(cfg config.AuthzConfig, logger *slog.Logger) (Evaluator, error) {
	switch cfg.Rule {
	case "organization":
		return NewOrganizationEvaluator(cfg, NewAPIClient(cfg), logger), nil
	case "domain":
		return NewDomainEvaluator(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported authz rule: %s", cfg.Rule)
	}
}

func denialReasonFor(err error) auth.DenialReason {
	if errors.Is(err, ErrUpstreamAuth) {
		return auth.ReasonUpstreamAuthError
	}
	return auth.ReasonUpstreamUnavailable
}
