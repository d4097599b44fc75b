package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
)

// Portfolio loads a client with its plans and extra contributions. The three
// reads run concurrently; the first failure cancels the others.
func (s *Service) Portfolio(ctx context.Context, clientID id.ClientID) (*models.Portfolio, error) {
	ctx, span := s.tracer.Start(ctx, "plans.portfolio")
	defer span.End()

	var (
		client        *models.Client
		plans         []*models.Plan
		contributions []*models.ExtraContribution
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		client, err = s.stores.Clients.FindClient(gctx, clientID)
		return storeErr(err, msgClientNotFound, msgEmailTaken, "load client")
	})
	g.Go(func() error {
		var err error
		plans, err = s.stores.Plans.ListPlansByClient(gctx, clientID)
		return storeErr(err, msgPlanNotFound, msgPlanReferences, "list plans")
	})
	g.Go(func() error {
		var err error
		contributions, err = s.stores.Contributions.ListContributionsByClient(gctx, clientID)
		return storeErr(err, msgContributionNotFound, msgContributionReferences, "list extra contributions")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.Portfolio{Client: client, Plans: plans, Contributions: contributions}, nil
}
