package auth

import "net/http"

// DenialReason says why a login attempt was rejected. Reasons are for
// logs and metrics only; clients never see them.
type DenialReason string

const (
	ReasonMalformedProfile    DenialReason = "malformed_profile"
	ReasonUpstreamUnavailable DenialReason = "upstream_unavailable"
	ReasonUpstreamAuthError   DenialReason = "upstream_auth_error"
	ReasonNotInOrganization   DenialReason = "not_in_organization"
	ReasonProviderGrantDenied DenialReason = "provider_grant_denied"
)

// Outcome is the verdict on one login attempt: granted with a set of
// authorities, or denied with a reason. Exactly one of the two holds.
type Outcome struct {
	granted     bool
	authorities []string
	reason      DenialReason
}

func Granted(authorities ...string) Outcome {
	return Outcome{granted: true, authorities: authorities}
}

func Denied(reason DenialReason) Outcome {
	return Outcome{reason: reason}
}

func (o Outcome) IsGranted() bool { return o.granted }

func (o Outcome) Authorities() []string { return o.authorities }

func (o Outcome) Reason() DenialReason { return o.reason }

// Directive is the externally observable effect of an outcome.
type Directive struct {
	AttachSession bool
	Authorities   []string
	RejectStatus  int
}

// Classify maps an outcome to its effect. Every denial collapses to a
// plain 401 so the client learns that it was rejected but not why.
func Classify(outcome Outcome) Directive {
	if outcome.IsGranted() {
		return Directive{
			AttachSession: true,
			Authorities:   outcome.Authorities(),
		}
	}

	return Directive{RejectStatus: http.StatusUnauthorized}
}
