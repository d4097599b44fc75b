package service

import (
	"context"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/resolver"
	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/requestcontext"
)

const (
	msgPlanNotFound     = "plan not found"
	msgPlanReferences   = "plan references a missing client or product"
	msgPlanReferenced   = "plan still has extra contributions or rescues"
	msgPlanVersionStale = "plan version does not match"
)

// CreatePlan resolves the client and product, then validates the plan and
// the product it binds to at the request time.
func (s *Service) CreatePlan(ctx context.Context, draft models.PlanDraft) (*models.Plan, error) {
	ctx, m := s.begin(ctx, models.KindPlan, models.ActionCreate)
	if err := m.step(s.engine.RequirePlan(draft)); err != nil {
		return nil, s.finish(ctx, m, "", err)
	}

	var refs *resolver.PlanRefs
	err := s.resolve(m, func() (err error) {
		refs, err = s.resolver.ForPlan(ctx, *draft.ClientID, *draft.ProductID)
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}

	var plan *models.Plan
	err = s.validate(m, func() (err error) {
		plan, err = s.engine.PreparePlan(draft, *refs.Product, requestcontext.Now(ctx))
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	if err := s.stores.Plans.CreatePlan(ctx, plan); err != nil {
		return nil, s.finish(ctx, m, "", storeErr(err, msgPlanNotFound, msgPlanReferences, "create plan"))
	}
	return plan, s.finish(ctx, m, plan.ID.String(), nil)
}

// UpdatePlan merges patch onto the stored plan inside the plan's transaction
// and re-validates against the product the merged plan references. A patch
// carrying ExpectedVersion is rejected when the plan has moved on.
func (s *Service) UpdatePlan(ctx context.Context, planID id.PlanID, patch models.PlanPatch) (*models.Plan, error) {
	ctx, m := s.begin(ctx, models.KindPlan, models.ActionUpdate)
	m.step(nil)

	var plan *models.Plan
	err := s.tx.RunInTx(ctx, planID, func(ctx context.Context) error {
		var (
			existing *models.Plan
			product  *models.Product
		)
		err := s.resolve(m, func() error {
			var err error
			existing, err = s.stores.Plans.FindPlan(ctx, planID)
			if err != nil {
				return storeErr(err, msgPlanNotFound, msgPlanReferences, "load plan")
			}
			if patch.ExpectedVersion != nil && *patch.ExpectedVersion != existing.Version {
				return dErrors.New(dErrors.CodeConflict, msgPlanVersionStale)
			}
			productID := existing.ProductID
			if patch.ProductID != nil {
				productID = *patch.ProductID
			}
			product, err = s.stores.Products.FindProduct(ctx, productID)
			return storeErr(err, msgProductNotFound, msgProductReferenced, "load product")
		})
		if err != nil {
			return err
		}

		err = s.validate(m, func() (err error) {
			plan, err = s.engine.PreparePlanUpdate(*existing, patch, *product, requestcontext.Now(ctx))
			return err
		})
		if err != nil {
			return err
		}
		return storeErr(s.stores.Plans.UpdatePlan(ctx, plan), msgPlanNotFound, msgPlanReferences, "update plan")
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	return plan, s.finish(ctx, m, plan.ID.String(), nil)
}

func (s *Service) DeletePlan(ctx context.Context, planID id.PlanID) error {
	ctx, m := s.begin(ctx, models.KindPlan, models.ActionDelete)
	err := s.tx.RunInTx(ctx, planID, func(ctx context.Context) error {
		return storeErr(s.stores.Plans.DeletePlan(ctx, planID), msgPlanNotFound, msgPlanReferenced, "delete plan")
	})
	return s.finish(ctx, m, planID.String(), err)
}

func (s *Service) GetPlan(ctx context.Context, planID id.PlanID) (*models.Plan, error) {
	plan, err := s.stores.Plans.FindPlan(ctx, planID)
	if err != nil {
		return nil, storeErr(err, msgPlanNotFound, msgPlanReferences, "load plan")
	}
	return plan, nil
}

func (s *Service) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	plans, err := s.stores.Plans.ListPlans(ctx)
	if err != nil {
		return nil, storeErr(err, msgPlanNotFound, msgPlanReferences, "list plans")
	}
	return plans, nil
}

// ListPlansByClient returns the client's plans, empty when it has none.
func (s *Service) ListPlansByClient(ctx context.Context, clientID id.ClientID) ([]*models.Plan, error) {
	plans, err := s.stores.Plans.ListPlansByClient(ctx, clientID)
	if err != nil {
		return nil, storeErr(err, msgPlanNotFound, msgPlanReferences, "list plans")
	}
	return plans, nil
}
