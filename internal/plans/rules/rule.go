package rules

import (
	dErrors "prevplan/pkg/domain-errors"
)

// Rule is one named invariant over a subject. Holds reports whether the
// subject satisfies it.
type Rule[T any] struct {
	Name   string
	Code   dErrors.Code
	Reason string
	Holds  func(T) bool
}

// Violation is the rejection produced by the first failing rule.
// It unwraps to a coded domain error carrying the reason as its message.
type Violation struct {
	Rule   string
	Code   dErrors.Code
	Reason string
}

func (v *Violation) Error() string {
	return v.Reason
}

func (v *Violation) Unwrap() error {
	return dErrors.New(v.Code, v.Reason)
}

// First evaluates rules in order and returns the first violation, or nil
// when every rule holds. Evaluation stops at the first failure.
func First[T any](subject T, rules []Rule[T]) *Violation {
	for _, r := range rules {
		if !r.Holds(subject) {
			return &Violation{Rule: r.Name, Code: r.Code, Reason: r.Reason}
		}
	}
	return nil
}

// Check is First returning a plain error, nil when every rule holds.
func Check[T any](subject T, rules []Rule[T]) error {
	if v := First(subject, rules); v != nil {
		return v
	}
	return nil
}
