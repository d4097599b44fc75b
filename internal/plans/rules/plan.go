package rules

import (
	"fmt"
	"time"

	"prevplan/internal/plans/models"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/money"
)

// PlanFacts is a plan candidate together with its referenced product and
// the evaluation instant.
type PlanFacts struct {
	Plan    models.Plan
	Product models.Product
	Now     time.Time
}

// ReasonSaleExpired is returned when the referenced product can no longer be sold.
const ReasonSaleExpired = "product sale window expired."

// ReasonSaleExpiredAtContract is returned when the plan's contract date falls
// after the product's sale window closed.
const ReasonSaleExpiredAtContract = "product sale window expired at contract date."

// PlanRules returns the plan invariants in evaluation order: the plan's own
// fields first, then ProductPolicyAtContract.
func (p Policy) PlanRules() []Rule[PlanFacts] {
	own := []Rule[PlanFacts]{
		{
			Name: "contribution_positive", Code: dErrors.CodePolicyViolation,
			Reason: "invalid initial contribution.",
			Holds:  func(f PlanFacts) bool { return money.Positive(f.Plan.Contribution) },
		},
		{
			Name: "retirement_age_positive", Code: dErrors.CodePolicyViolation,
			Reason: "invalid retirement age.",
			Holds:  func(f PlanFacts) bool { return f.Plan.RetirementAge > 0 },
		},
	}
	return append(own, p.ProductPolicyAtContract()...)
}

// ProductPolicyAtContract re-checks the referenced product against the
// current floors when a plan is contracted. Products stored before a floor
// was raised, or edited afterwards, are caught here. The sale window must be
// open both now and on the plan's contract date.
func (p Policy) ProductPolicyAtContract() []Rule[PlanFacts] {
	return []Rule[PlanFacts]{
		{
			Name: "product_on_sale", Code: dErrors.CodePolicyViolation,
			Reason: ReasonSaleExpired,
			Holds:  func(f PlanFacts) bool { return f.Product.SaleExpiration.After(f.Now) },
		},
		{
			Name: "product_on_sale_at_contract", Code: dErrors.CodePolicyViolation,
			Reason: ReasonSaleExpiredAtContract,
			Holds:  func(f PlanFacts) bool { return f.Product.SaleExpiration.After(f.Plan.ContractedAt) },
		},
		{
			Name: "product_min_extra_floor", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("product minimum extra contribution below %s floor.", money.Format(p.MinExtraContribution)),
			Holds:  func(f PlanFacts) bool { return f.Product.MinExtraContribution.GreaterThanOrEqual(p.MinExtraContribution) },
		},
		{
			Name: "product_min_initial_floor", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("product minimum initial contribution below %s floor.", money.Format(p.MinInitialContribution)),
			Holds:  func(f PlanFacts) bool { return f.Product.MinInitialContribution.GreaterThanOrEqual(p.MinInitialContribution) },
		},
		{
			Name: "product_entry_age_floor", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("product entry age below %d.", p.MinEntryAge),
			Holds:  func(f PlanFacts) bool { return f.Product.EntryAge >= p.MinEntryAge },
		},
		{
			Name: "product_exit_age_ceiling", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("product exit age above %d.", p.MaxExitAge),
			Holds:  func(f PlanFacts) bool { return f.Product.ExitAge <= p.MaxExitAge },
		},
	}
}
