package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"
)

const statusQuery = "data.marketplace.account_status.decision"

// DefaultStatusPolicy maps each portal's profile statuses to an outcome. Account-level suspension or
// deactivation wins over the profile status; anything unrecognised is treated as deactivated.
const DefaultStatusPolicy = `package marketplace.account_status

active_statuses := {
	"admin": {"ACTIVE"},
	"customer": {"ACTIVE", "VERIFIED"},
	"supplier": {"ACTIVE", "APPROVED"},
	"fieldflow": {"ACTIVE"},
}

pending_statuses := {
	"admin": {"PENDING"},
	"customer": {"PENDING", "PENDING_VERIFICATION"},
	"supplier": {"PENDING", "UNDER_REVIEW", "DOCUMENTS_SUBMITTED"},
	"fieldflow": {"PENDING", "INVITED"},
}

suspended_statuses := {"SUSPENDED", "BLOCKED", "LOCKED"}

default decision := {"allow": false, "reason": "ACCOUNT_DEACTIVATED"}

decision := {"allow": false, "reason": "ACCOUNT_SUSPENDED"} if {
	input.account_status in suspended_statuses
} else := {"allow": false, "reason": "ACCOUNT_SUSPENDED"} if {
	input.profile_status in suspended_statuses
} else := {"allow": false, "reason": "ACCOUNT_DEACTIVATED"} if {
	input.account_status == "DEACTIVATED"
} else := {"allow": true, "reason": "ACTIVE"} if {
	input.account_status == "ACTIVE"
	input.profile_status in active_statuses[input.portal]
} else := {"allow": false, "reason": "ACCOUNT_PENDING"} if {
	input.account_status == "PENDING"
} else := {"allow": false, "reason": "ACCOUNT_PENDING"} if {
	input.profile_status in pending_statuses[input.portal]
}
`

var errNoResult = errors.New("policy query returned no result")

// OPAEvaluator evaluates the account-status policy with an in-process OPA Rego engine.
// The query is prepared once; EvaluateStatus is safe for concurrent use.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles policy (DefaultStatusPolicy when empty) and prepares the decision query.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultStatusPolicy
	}
	pq, err := rego.New(
		rego.Query(statusQuery),
		rego.Module("account_status.rego", policy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile account status policy: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// LoadPolicyFile reads a Rego module from path. An empty path returns the default policy.
func LoadPolicyFile(path string) (string, error) {
	if path == "" {
		return DefaultStatusPolicy, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read policy file: %w", err)
	}
	return string(b), nil
}

// HealthCheck evaluates a known-active input and fails unless the policy allows it.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	d, err := e.EvaluateStatus(ctx, StatusInput{Portal: "admin", AccountStatus: "ACTIVE", ProfileStatus: "ACTIVE"})
	if err != nil {
		return err
	}
	if !d.Allow {
		return fmt.Errorf("policy denied an active admin profile: %s", d.Outcome)
	}
	return nil
}

// EvaluateStatus runs the prepared query. Any evaluation failure denies as deactivated.
func (e *OPAEvaluator) EvaluateStatus(ctx context.Context, in StatusInput) (StatusDecision, error) {
	deny := StatusDecision{Allow: false, Outcome: OutcomeDeactivated}
	input := map[string]interface{}{
		"portal":         in.Portal,
		"account_status": in.AccountStatus,
		"profile_status": in.ProfileStatus,
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return deny, fmt.Errorf("eval account status policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return deny, errNoResult
	}
	obj, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return deny, fmt.Errorf("unexpected policy result %T", rs[0].Expressions[0].Value)
	}
	allow, _ := obj["allow"].(bool)
	reason, _ := obj["reason"].(string)
	out := StatusDecision{Allow: allow, Outcome: Outcome(reason)}
	switch out.Outcome {
	case OutcomeActive:
		if !allow {
			return deny, fmt.Errorf("policy returned %s without allow", reason)
		}
	case OutcomePending, OutcomeSuspended, OutcomeDeactivated:
		out.Allow = false
	default:
		return deny, fmt.Errorf("unknown policy outcome %q", reason)
	}
	return out, nil
}
