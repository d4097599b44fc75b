package rules

import (
	"fmt"
	"strings"

	"prevplan/internal/plans/models"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/money"
)

// ProductRules returns the product invariants in evaluation order.
func (p Policy) ProductRules() []Rule[models.Product] {
	return []Rule[models.Product]{
		{
			Name: "name_present", Code: dErrors.CodeInvalidInput,
			Reason: "product name must not be empty.",
			Holds:  func(pr models.Product) bool { return strings.TrimSpace(pr.Name) != "" },
		},
		{
			Name: "susep_present", Code: dErrors.CodeInvalidInput,
			Reason: "susep code must not be empty.",
			Holds:  func(pr models.Product) bool { return strings.TrimSpace(pr.SusepCode) != "" },
		},
		{
			Name: "min_extra_floor", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("minimum extra contribution below %s floor.", money.Format(p.MinExtraContribution)),
			Holds:  func(pr models.Product) bool { return pr.MinExtraContribution.GreaterThanOrEqual(p.MinExtraContribution) },
		},
		{
			Name: "min_initial_floor", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("minimum initial contribution below %s floor.", money.Format(p.MinInitialContribution)),
			Holds:  func(pr models.Product) bool { return pr.MinInitialContribution.GreaterThanOrEqual(p.MinInitialContribution) },
		},
		{
			Name: "entry_age_floor", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("entry age below %d.", p.MinEntryAge),
			Holds:  func(pr models.Product) bool { return pr.EntryAge >= p.MinEntryAge },
		},
		{
			Name: "exit_age_ceiling", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("exit age above %d.", p.MaxExitAge),
			Holds:  func(pr models.Product) bool { return pr.ExitAge <= p.MaxExitAge },
		},
		{
			Name: "exit_after_entry", Code: dErrors.CodePolicyViolation,
			Reason: "exit age must be greater than entry age.",
			Holds:  func(pr models.Product) bool { return pr.ExitAge > pr.EntryAge },
		},
	}
}
