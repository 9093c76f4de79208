package engine

import "context"

// Outcome is the result of an account-status evaluation. Values match the login failure reasons they map to.
type Outcome string

const (
	OutcomeActive      Outcome = "ACTIVE"
	OutcomePending     Outcome = "ACCOUNT_PENDING"
	OutcomeSuspended   Outcome = "ACCOUNT_SUSPENDED"
	OutcomeDeactivated Outcome = "ACCOUNT_DEACTIVATED"
)

// StatusInput is what the status policy sees: the portal plus the account-level and profile-level status.
type StatusInput struct {
	Portal        string
	AccountStatus string
	ProfileStatus string
}

// StatusDecision holds the result of account-status evaluation.
type StatusDecision struct {
	Allow   bool
	Outcome Outcome
}

// StatusEvaluator decides whether a profile's status permits authentication.
type StatusEvaluator interface {
	// EvaluateStatus returns the decision for in. On error the returned decision denies.
	EvaluateStatus(ctx context.Context, in StatusInput) (StatusDecision, error)
}
