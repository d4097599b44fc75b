package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/rules"
	id "prevplan/pkg/domain"
	"prevplan/pkg/money"
)

var planRequired = []rules.Rule[models.PlanDraft]{
	present("client_id", func(d models.PlanDraft) bool { return d.ClientID != nil }),
	present("product_id", func(d models.PlanDraft) bool { return d.ProductID != nil }),
	present("contribution", func(d models.PlanDraft) bool { return d.Contribution != nil }),
	present("age_of_retirement", func(d models.PlanDraft) bool { return d.RetirementAge != nil }),
	cents("contribution", func(d models.PlanDraft) *decimal.Decimal { return d.Contribution }),
}

var planPatchInput = []rules.Rule[models.PlanPatch]{
	cents("contribution", func(p models.PlanPatch) *decimal.Decimal { return p.Contribution }),
}

// RequirePlan checks that draft carries every field plan creation needs.
// Callers run it before resolving the draft's references.
func (e *Engine) RequirePlan(draft models.PlanDraft) error {
	return rules.Check(draft, planRequired)
}

// PreparePlan validates a new plan against its referenced product at now.
// The contract date defaults to now.
func (e *Engine) PreparePlan(draft models.PlanDraft, product models.Product, now time.Time) (*models.Plan, error) {
	if err := e.RequirePlan(draft); err != nil {
		return nil, err
	}
	plan := models.Plan{
		ID:            id.NewPlanID(),
		ClientID:      *draft.ClientID,
		ProductID:     *draft.ProductID,
		Contribution:  money.Round(*draft.Contribution),
		RetirementAge: *draft.RetirementAge,
		ContractedAt:  now.UTC(),
		Version:       1,
	}
	if draft.ContractedAt != nil {
		plan.ContractedAt = draft.ContractedAt.UTC()
	}
	return e.validatePlan(plan, product, now)
}

// PreparePlanUpdate merges patch onto existing and re-runs the plan rules
// against product, which must be the product the merged plan references.
func (e *Engine) PreparePlanUpdate(existing models.Plan, patch models.PlanPatch, product models.Product, now time.Time) (*models.Plan, error) {
	if err := rules.Check(patch, planPatchInput); err != nil {
		return nil, err
	}
	plan := existing
	if patch.ProductID != nil {
		plan.ProductID = *patch.ProductID
	}
	if patch.Contribution != nil {
		plan.Contribution = money.Round(*patch.Contribution)
	}
	if patch.RetirementAge != nil {
		plan.RetirementAge = *patch.RetirementAge
	}
	return e.validatePlan(plan, product, now)
}

func (e *Engine) validatePlan(plan models.Plan, product models.Product, now time.Time) (*models.Plan, error) {
	facts := rules.PlanFacts{Plan: plan, Product: product, Now: now}
	if err := rules.Check(facts, e.policy.PlanRules()); err != nil {
		return nil, err
	}
	return &plan, nil
}
