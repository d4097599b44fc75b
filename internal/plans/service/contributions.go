package service

import (
	"context"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
)

const (
	msgContributionNotFound   = "extra contribution not found"
	msgContributionReferences = "extra contribution references a missing client or plan"
)

// CreateContribution resolves the client, then the plan, then checks the
// contribution floor.
func (s *Service) CreateContribution(ctx context.Context, draft models.ContributionDraft) (*models.ExtraContribution, error) {
	ctx, m := s.begin(ctx, models.KindContribution, models.ActionCreate)
	if err := m.step(s.engine.RequireContribution(draft)); err != nil {
		return nil, s.finish(ctx, m, "", err)
	}

	err := s.resolve(m, func() error {
		_, err := s.resolver.ForContribution(ctx, *draft.ClientID, *draft.PlanID)
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}

	var contribution *models.ExtraContribution
	err = s.validate(m, func() (err error) {
		contribution, err = s.engine.PrepareContribution(draft)
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	if err := s.stores.Contributions.CreateContribution(ctx, contribution); err != nil {
		return nil, s.finish(ctx, m, "", storeErr(err, msgContributionNotFound, msgContributionReferences, "create extra contribution"))
	}
	return contribution, s.finish(ctx, m, contribution.ID.String(), nil)
}

// UpdateContribution changes the value of a stored contribution. The client
// and plan it references are immutable.
func (s *Service) UpdateContribution(ctx context.Context, contributionID id.ContributionID, patch models.ContributionPatch) (*models.ExtraContribution, error) {
	ctx, m := s.begin(ctx, models.KindContribution, models.ActionUpdate)
	m.step(nil)

	var existing *models.ExtraContribution
	err := s.resolve(m, func() (err error) {
		existing, err = s.stores.Contributions.FindContribution(ctx, contributionID)
		return storeErr(err, msgContributionNotFound, msgContributionReferences, "load extra contribution")
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}

	var contribution *models.ExtraContribution
	err = s.validate(m, func() (err error) {
		contribution, err = s.engine.PrepareContributionUpdate(*existing, patch)
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	if err := s.stores.Contributions.UpdateContribution(ctx, contribution); err != nil {
		return nil, s.finish(ctx, m, "", storeErr(err, msgContributionNotFound, msgContributionReferences, "update extra contribution"))
	}
	return contribution, s.finish(ctx, m, contribution.ID.String(), nil)
}

func (s *Service) DeleteContribution(ctx context.Context, contributionID id.ContributionID) error {
	ctx, m := s.begin(ctx, models.KindContribution, models.ActionDelete)
	err := s.stores.Contributions.DeleteContribution(ctx, contributionID)
	return s.finish(ctx, m, contributionID.String(), storeErr(err, msgContributionNotFound, msgContributionReferences, "delete extra contribution"))
}

func (s *Service) GetContribution(ctx context.Context, contributionID id.ContributionID) (*models.ExtraContribution, error) {
	contribution, err := s.stores.Contributions.FindContribution(ctx, contributionID)
	if err != nil {
		return nil, storeErr(err, msgContributionNotFound, msgContributionReferences, "load extra contribution")
	}
	return contribution, nil
}

func (s *Service) ListContributions(ctx context.Context) ([]*models.ExtraContribution, error) {
	contributions, err := s.stores.Contributions.ListContributions(ctx)
	if err != nil {
		return nil, storeErr(err, msgContributionNotFound, msgContributionReferences, "list extra contributions")
	}
	return contributions, nil
}

func (s *Service) ListContributionsByClient(ctx context.Context, clientID id.ClientID) ([]*models.ExtraContribution, error) {
	contributions, err := s.stores.Contributions.ListContributionsByClient(ctx, clientID)
	if err != nil {
		return nil, storeErr(err, msgContributionNotFound, msgContributionReferences, "list extra contributions")
	}
	return contributions, nil
}
