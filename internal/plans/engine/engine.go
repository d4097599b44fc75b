// Package engine validates and prepares lifecycle mutations. It merges a
// candidate onto the existing record (or onto defaults on creation), runs the
// rule table for the entity kind and returns the prepared record or the first
// violation. It never touches a store.
package engine

import (
	"github.com/shopspring/decimal"

	"prevplan/internal/plans/rules"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/money"
)

// Stage is a step of the per-request state machine:
// received -> resolving_references -> validating -> accepted | rejected.
type Stage string

const (
	StageReceived  Stage = "received"
	StageResolving Stage = "resolving_references"
	StageValidate  Stage = "validating"
	StageAccepted  Stage = "accepted"
	StageRejected  Stage = "rejected"
)

// Terminal reports whether no transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageAccepted || s == StageRejected
}

// Next returns the stage after s given the outcome of s. Failing in any
// non-terminal stage rejects; terminal stages do not move.
func (s Stage) Next(err error) Stage {
	if s.Terminal() {
		return s
	}
	if err != nil {
		return StageRejected
	}
	switch s {
	case StageReceived:
		return StageResolving
	case StageResolving:
		return StageValidate
	default:
		return StageAccepted
	}
}

// Engine is stateless apart from the policy it was built with and is safe
// for concurrent use.
type Engine struct {
	policy rules.Policy
}

// New constructs an Engine enforcing policy.
func New(policy rules.Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the floors this engine enforces.
func (e *Engine) Policy() rules.Policy {
	return e.policy
}

// present builds the required-field rule for a creation draft.
func present[T any](field string, has func(T) bool) rules.Rule[T] {
	return rules.Rule[T]{
		Name:   field + "_required",
		Code:   dErrors.CodeInvalidInput,
		Reason: field + " is required",
		Holds:  has,
	}
}

// cents builds the rule rejecting an amount with sub-cent digits. Amounts
// are compared against floors as submitted, so they are never rounded into
// acceptance. An absent amount holds.
func cents[T any](field string, amount func(T) *decimal.Decimal) rules.Rule[T] {
	return rules.Rule[T]{
		Name:   field + "_cents",
		Code:   dErrors.CodeInvalidInput,
		Reason: field + " must have at most 2 decimal places",
		Holds: func(subject T) bool {
			v := amount(subject)
			return v == nil || money.Cents(*v)
		},
	}
}
