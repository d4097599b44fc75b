package engine

import (
	"github.com/shopspring/decimal"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/rules"
	id "prevplan/pkg/domain"
	"prevplan/pkg/money"
)

var contributionRequired = []rules.Rule[models.ContributionDraft]{
	present("client_id", func(d models.ContributionDraft) bool { return d.ClientID != nil }),
	present("plan_id", func(d models.ContributionDraft) bool { return d.PlanID != nil }),
	present("contribution_value", func(d models.ContributionDraft) bool { return d.Value != nil }),
	cents("contribution_value", func(d models.ContributionDraft) *decimal.Decimal { return d.Value }),
}

var contributionPatchInput = []rules.Rule[models.ContributionPatch]{
	cents("contribution_value", func(p models.ContributionPatch) *decimal.Decimal { return p.Value }),
}

// RequireContribution checks that draft carries every creation field.
func (e *Engine) RequireContribution(draft models.ContributionDraft) error {
	return rules.Check(draft, contributionRequired)
}

// PrepareContribution validates a new extra contribution. The resolver has
// already established that the client and plan exist.
func (e *Engine) PrepareContribution(draft models.ContributionDraft) (*models.ExtraContribution, error) {
	if err := e.RequireContribution(draft); err != nil {
		return nil, err
	}
	return e.validateContribution(models.ExtraContribution{
		ID:       id.NewContributionID(),
		ClientID: *draft.ClientID,
		PlanID:   *draft.PlanID,
		Value:    money.Round(*draft.Value),
	})
}

// PrepareContributionUpdate merges patch onto existing and re-runs the rules.
func (e *Engine) PrepareContributionUpdate(existing models.ExtraContribution, patch models.ContributionPatch) (*models.ExtraContribution, error) {
	if err := rules.Check(patch, contributionPatchInput); err != nil {
		return nil, err
	}
	if patch.Value != nil {
		existing.Value = money.Round(*patch.Value)
	}
	return e.validateContribution(existing)
}

func (e *Engine) validateContribution(c models.ExtraContribution) (*models.ExtraContribution, error) {
	if err := rules.Check(c, e.policy.ContributionRules()); err != nil {
		return nil, err
	}
	return &c, nil
}
