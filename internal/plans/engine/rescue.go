package engine

import (
	"github.com/shopspring/decimal"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/rules"
	id "prevplan/pkg/domain"
	"prevplan/pkg/money"
)

var rescueRequired = []rules.Rule[models.RescueDraft]{
	present("plan_id", func(d models.RescueDraft) bool { return d.PlanID != nil }),
	present("rescue_value", func(d models.RescueDraft) bool { return d.Value != nil }),
	cents("rescue_value", func(d models.RescueDraft) *decimal.Decimal { return d.Value }),
}

var rescuePatchInput = []rules.Rule[models.RescuePatch]{
	cents("rescue_value", func(p models.RescuePatch) *decimal.Decimal { return p.Value }),
}

// RequireRescue checks that draft carries every creation field.
func (e *Engine) RequireRescue(draft models.RescueDraft) error {
	return rules.Check(draft, rescueRequired)
}

// PrepareRescue validates a new rescue against its plan and the plan's product.
func (e *Engine) PrepareRescue(draft models.RescueDraft, plan models.Plan, product models.Product) (*models.Rescue, error) {
	if err := e.RequireRescue(draft); err != nil {
		return nil, err
	}
	rescue := models.Rescue{
		ID:     id.NewRescueID(),
		PlanID: *draft.PlanID,
		Value:  money.Round(*draft.Value),
	}
	facts := rules.RescueFacts{Rescue: rescue, Plan: plan, Product: product}
	if err := rules.Check(facts, e.policy.RescueCreateRules()); err != nil {
		return nil, err
	}
	return &rescue, nil
}

// PrepareRescueUpdate merges patch onto existing and runs the update rules,
// which add the inter-rescue lockout to the creation rules.
func (e *Engine) PrepareRescueUpdate(existing models.Rescue, patch models.RescuePatch, plan models.Plan, product models.Product) (*models.Rescue, error) {
	if err := rules.Check(patch, rescuePatchInput); err != nil {
		return nil, err
	}
	if patch.Value != nil {
		existing.Value = money.Round(*patch.Value)
	}
	facts := rules.RescueFacts{Rescue: existing, Plan: plan, Product: product}
	if err := rules.Check(facts, e.policy.RescueUpdateRules()); err != nil {
		return nil, err
	}
	return &existing, nil
}
