package service

import (
	"context"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/resolver"
	id "prevplan/pkg/domain"
)

const (
	msgRescueNotFound   = "rescue not found"
	msgRescueReferences = "rescue references a missing plan"
)

// CreateRescue resolves the plan and its product and checks the balance and
// lockouts. Resolution, validation and the write share one plan transaction
// so concurrent rescues on a plan are evaluated one at a time.
func (s *Service) CreateRescue(ctx context.Context, draft models.RescueDraft) (*models.Rescue, error) {
	ctx, m := s.begin(ctx, models.KindRescue, models.ActionCreate)
	if err := m.step(s.engine.RequireRescue(draft)); err != nil {
		return nil, s.finish(ctx, m, "", err)
	}

	var rescue *models.Rescue
	err := s.tx.RunInTx(ctx, *draft.PlanID, func(ctx context.Context) error {
		var refs *resolver.RescueRefs
		err := s.resolve(m, func() (err error) {
			refs, err = s.resolver.ForRescue(ctx, *draft.PlanID)
			return err
		})
		if err != nil {
			return err
		}

		err = s.validate(m, func() (err error) {
			rescue, err = s.engine.PrepareRescue(draft, *refs.Plan, *refs.Product)
			return err
		})
		if err != nil {
			return err
		}
		return storeErr(s.stores.Rescues.CreateRescue(ctx, rescue), msgRescueNotFound, msgRescueReferences, "create rescue")
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	return rescue, s.finish(ctx, m, rescue.ID.String(), nil)
}

// UpdateRescue merges patch onto the stored rescue and re-runs the rescue
// rules, including the inter-rescue lockout, inside the plan transaction.
func (s *Service) UpdateRescue(ctx context.Context, rescueID id.RescueID, patch models.RescuePatch) (*models.Rescue, error) {
	ctx, m := s.begin(ctx, models.KindRescue, models.ActionUpdate)
	m.step(nil)

	current, err := s.stores.Rescues.FindRescue(ctx, rescueID)
	if err != nil {
		return nil, s.finish(ctx, m, "", storeErr(err, msgRescueNotFound, msgRescueReferences, "load rescue"))
	}

	var rescue *models.Rescue
	err = s.tx.RunInTx(ctx, current.PlanID, func(ctx context.Context) error {
		var (
			existing *models.Rescue
			refs     *resolver.RescueRefs
		)
		err := s.resolve(m, func() (err error) {
			existing, err = s.stores.Rescues.FindRescue(ctx, rescueID)
			if err != nil {
				return storeErr(err, msgRescueNotFound, msgRescueReferences, "load rescue")
			}
			refs, err = s.resolver.ForRescue(ctx, existing.PlanID)
			return err
		})
		if err != nil {
			return err
		}

		err = s.validate(m, func() (err error) {
			rescue, err = s.engine.PrepareRescueUpdate(*existing, patch, *refs.Plan, *refs.Product)
			return err
		})
		if err != nil {
			return err
		}
		return storeErr(s.stores.Rescues.UpdateRescue(ctx, rescue), msgRescueNotFound, msgRescueReferences, "update rescue")
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	return rescue, s.finish(ctx, m, rescue.ID.String(), nil)
}

func (s *Service) DeleteRescue(ctx context.Context, rescueID id.RescueID) error {
	ctx, m := s.begin(ctx, models.KindRescue, models.ActionDelete)
	err := s.stores.Rescues.DeleteRescue(ctx, rescueID)
	return s.finish(ctx, m, rescueID.String(), storeErr(err, msgRescueNotFound, msgRescueReferences, "delete rescue"))
}

func (s *Service) GetRescue(ctx context.Context, rescueID id.RescueID) (*models.Rescue, error) {
	rescue, err := s.stores.Rescues.FindRescue(ctx, rescueID)
	if err != nil {
		return nil, storeErr(err, msgRescueNotFound, msgRescueReferences, "load rescue")
	}
	return rescue, nil
}

func (s *Service) ListRescues(ctx context.Context) ([]*models.Rescue, error) {
	rescues, err := s.stores.Rescues.ListRescues(ctx)
	if err != nil {
		return nil, storeErr(err, msgRescueNotFound, msgRescueReferences, "list rescues")
	}
	return rescues, nil
}

// ListRescuesByPlan returns the plan's rescues, empty when it has none.
func (s *Service) ListRescuesByPlan(ctx context.Context, planID id.PlanID) ([]*models.Rescue, error) {
	rescues, err := s.stores.Rescues.ListRescuesByPlan(ctx, planID)
	if err != nil {
		return nil, storeErr(err, msgRescueNotFound, msgRescueReferences, "list rescues")
	}
	return rescues, nil
}
