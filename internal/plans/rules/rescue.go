package rules

import (
	"prevplan/internal/plans/models"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/money"
)

// RescueFacts is a rescue candidate with its plan and the plan's product.
type RescueFacts struct {
	Rescue  models.Rescue
	Plan    models.Plan
	Product models.Product
}

const (
	ReasonInsufficientBalance = "insufficient balance."
	ReasonInitialLockout      = "initial lockout not satisfied"
	ReasonInterRescueLockout  = "inter-rescue lockout not satisfied"
)

// RescueCreateRules returns the rescue invariants checked on creation.
// value_positive runs here as well as on update, so a zero or negative
// rescue is rejected before it is ever stored.
func (p Policy) RescueCreateRules() []Rule[RescueFacts] {
	return []Rule[RescueFacts]{
		p.rescuePositive(),
		p.balanceSufficient(),
		p.initialLockout(),
	}
}

// RescueUpdateRules returns the rescue invariants checked on update. The
// inter-rescue lockout compares the product's configured period against the
// floor; it does not measure time elapsed since the plan's previous rescue.
func (p Policy) RescueUpdateRules() []Rule[RescueFacts] {
	return []Rule[RescueFacts]{
		p.rescuePositive(),
		p.balanceSufficient(),
		p.initialLockout(),
		{
			Name: "inter_rescue_lockout", Code: dErrors.CodePolicyViolation,
			Reason: ReasonInterRescueLockout,
			Holds:  func(f RescueFacts) bool { return f.Product.InterRescueLockout >= p.MinInterRescueLockout },
		},
	}
}

func (p Policy) rescuePositive() Rule[RescueFacts] {
	return Rule[RescueFacts]{
		Name: "value_positive", Code: dErrors.CodePolicyViolation,
		Reason: "rescue value must be greater than 0.",
		Holds:  func(f RescueFacts) bool { return money.Positive(f.Rescue.Value) },
	}
}

func (p Policy) balanceSufficient() Rule[RescueFacts] {
	return Rule[RescueFacts]{
		Name: "balance_sufficient", Code: dErrors.CodePolicyViolation,
		Reason: ReasonInsufficientBalance,
		Holds:  func(f RescueFacts) bool { return f.Rescue.Value.LessThanOrEqual(f.Plan.Contribution) },
	}
}

func (p Policy) initialLockout() Rule[RescueFacts] {
	return Rule[RescueFacts]{
		Name: "initial_lockout", Code: dErrors.CodePolicyViolation,
		Reason: ReasonInitialLockout,
		Holds:  func(f RescueFacts) bool { return f.Product.InitialRescueLockout >= p.MinInitialRescueLockout },
	}
}
