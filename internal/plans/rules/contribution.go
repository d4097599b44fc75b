package rules

import (
	"fmt"

	"prevplan/internal/plans/models"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/money"
)

// ContributionRules returns the extra contribution invariants. Client and
// plan existence are established by the resolver before these run.
func (p Policy) ContributionRules() []Rule[models.ExtraContribution] {
	return []Rule[models.ExtraContribution]{
		{
			Name: "value_floor", Code: dErrors.CodePolicyViolation,
			Reason: fmt.Sprintf("value below %s floor.", money.Format(p.MinExtraContribution)),
			Holds:  func(c models.ExtraContribution) bool { return c.Value.GreaterThanOrEqual(p.MinExtraContribution) },
		},
	}
}
