package resolver

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks Reader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/resolver/mocks"
	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/platform/sentinel"
)

// =============================================================================
// Resolver Test Suite
// =============================================================================
// Justification for unit tests: resolution order and short-circuiting are
// only observable through which store reads happen, so the reader is mocked
// and the expected calls are asserted exactly.

type ResolverSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	reader   *mocks.MockReader
	resolver *Resolver
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.reader = mocks.NewMockReader(s.ctrl)
	s.resolver = New(s.reader)
	s.ctx = context.Background()
}

func (s *ResolverSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResolverSuite) TestForPlan() {
	clientID, productID := id.NewClientID(), id.NewProductID()

	s.Run("resolves client then product", func() {
		gomock.InOrder(
			s.reader.EXPECT().FindClient(s.ctx, clientID).Return(&models.Client{ID: clientID}, nil),
			s.reader.EXPECT().FindProduct(s.ctx, productID).Return(&models.Product{ID: productID}, nil),
		)
		refs, err := s.resolver.ForPlan(s.ctx, clientID, productID)
		s.Require().NoError(err)
		s.Equal(clientID, refs.Client.ID)
		s.Equal(productID, refs.Product.ID)
	})

	s.Run("missing client short-circuits", func() {
		s.reader.EXPECT().FindClient(s.ctx, clientID).Return(nil, sentinel.ErrNotFound)
		_, err := s.resolver.ForPlan(s.ctx, clientID, productID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("client not found", dErrors.Message(err))
	})

	s.Run("missing product is not found", func() {
		s.reader.EXPECT().FindClient(s.ctx, clientID).Return(&models.Client{ID: clientID}, nil)
		s.reader.EXPECT().FindProduct(s.ctx, productID).Return(nil, sentinel.ErrNotFound)
		_, err := s.resolver.ForPlan(s.ctx, clientID, productID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("product not found", dErrors.Message(err))
	})
}

func (s *ResolverSuite) TestForContribution() {
	clientID, planID := id.NewClientID(), id.NewPlanID()

	s.Run("resolves client then plan", func() {
		gomock.InOrder(
			s.reader.EXPECT().FindClient(s.ctx, clientID).Return(&models.Client{ID: clientID}, nil),
			s.reader.EXPECT().FindPlan(s.ctx, planID).Return(&models.Plan{ID: planID}, nil),
		)
		refs, err := s.resolver.ForContribution(s.ctx, clientID, planID)
		s.Require().NoError(err)
		s.Equal(planID, refs.Plan.ID)
	})

	s.Run("missing plan is not found", func() {
		s.reader.EXPECT().FindClient(s.ctx, clientID).Return(&models.Client{ID: clientID}, nil)
		s.reader.EXPECT().FindPlan(s.ctx, planID).Return(nil, sentinel.ErrNotFound)
		_, err := s.resolver.ForContribution(s.ctx, clientID, planID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("plan not found", dErrors.Message(err))
	})
}

func (s *ResolverSuite) TestForRescue() {
	planID, productID := id.NewPlanID(), id.NewProductID()
	plan := &models.Plan{ID: planID, ProductID: productID}

	s.Run("resolves plan then its product", func() {
		gomock.InOrder(
			s.reader.EXPECT().FindPlan(s.ctx, planID).Return(plan, nil),
			s.reader.EXPECT().FindProduct(s.ctx, productID).Return(&models.Product{ID: productID}, nil),
		)
		refs, err := s.resolver.ForRescue(s.ctx, planID)
		s.Require().NoError(err)
		s.Equal(productID, refs.Product.ID)
	})

	s.Run("missing plan never reads the product", func() {
		s.reader.EXPECT().FindPlan(s.ctx, planID).Return(nil, sentinel.ErrNotFound)
		_, err := s.resolver.ForRescue(s.ctx, planID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("orphaned plan reports its product", func() {
		s.reader.EXPECT().FindPlan(s.ctx, planID).Return(plan, nil)
		s.reader.EXPECT().FindProduct(s.ctx, productID).Return(nil, sentinel.ErrNotFound)
		_, err := s.resolver.ForRescue(s.ctx, planID)
		s.Equal("product associated with plan not found", dErrors.Message(err))
	})

	s.Run("store failure is internal", func() {
		s.reader.EXPECT().FindPlan(s.ctx, planID).Return(nil, errors.New("connection reset"))
		_, err := s.resolver.ForRescue(s.ctx, planID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
