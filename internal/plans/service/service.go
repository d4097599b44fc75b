// Package service runs each lifecycle mutation through the request state
// machine: received, resolving references, validating, then accepted or
// rejected. Accepted candidates are persisted and announced as events.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"prevplan/internal/plans/engine"
	"prevplan/internal/plans/events"
	"prevplan/internal/plans/metrics"
	"prevplan/internal/plans/models"
	"prevplan/internal/plans/resolver"
	"prevplan/internal/plans/rules"
	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/platform/sentinel"
	"prevplan/pkg/requestcontext"
)

type ClientStore interface {
	CreateClient(ctx context.Context, c *models.Client) error
	UpdateClient(ctx context.Context, c *models.Client) error
	DeleteClient(ctx context.Context, clientID id.ClientID) error
	FindClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	FindClientByEmail(ctx context.Context, email string) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, productID id.ProductID) error
	FindProduct(ctx context.Context, productID id.ProductID) (*models.Product, error)
	FindProductsByName(ctx context.Context, name string) ([]*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
}

type PlanStore interface {
	CreatePlan(ctx context.Context, p *models.Plan) error
	UpdatePlan(ctx context.Context, p *models.Plan) error
	DeletePlan(ctx context.Context, planID id.PlanID) error
	FindPlan(ctx context.Context, planID id.PlanID) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	ListPlansByClient(ctx context.Context, clientID id.ClientID) ([]*models.Plan, error)
}

type ContributionStore interface {
	CreateContribution(ctx context.Context, c *models.ExtraContribution) error
	UpdateContribution(ctx context.Context, c *models.ExtraContribution) error
	DeleteContribution(ctx context.Context, contributionID id.ContributionID) error
	FindContribution(ctx context.Context, contributionID id.ContributionID) (*models.ExtraContribution, error)
	ListContributions(ctx context.Context) ([]*models.ExtraContribution, error)
	ListContributionsByClient(ctx context.Context, clientID id.ClientID) ([]*models.ExtraContribution, error)
}

type RescueStore interface {
	CreateRescue(ctx context.Context, r *models.Rescue) error
	UpdateRescue(ctx context.Context, r *models.Rescue) error
	DeleteRescue(ctx context.Context, rescueID id.RescueID) error
	FindRescue(ctx context.Context, rescueID id.RescueID) (*models.Rescue, error)
	ListRescues(ctx context.Context) ([]*models.Rescue, error)
	ListRescuesByPlan(ctx context.Context, planID id.PlanID) ([]*models.Rescue, error)
}

// Stores groups the per-entity persistence ports. One implementation may
// satisfy all of them.
type Stores struct {
	Clients       ClientStore
	Products      ProductStore
	Plans         PlanStore
	Contributions ContributionStore
	Rescues       RescueStore
}

// EventEmitter receives accepted mutations.
type EventEmitter interface {
	Emit(ctx context.Context, e events.Event)
}

// Service orchestrates validation and persistence for every entity kind.
type Service struct {
	stores   Stores
	engine   *engine.Engine
	resolver *resolver.Resolver
	tx       PlanTx
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	emitter  EventEmitter
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEvents(emitter EventEmitter) Option {
	return func(s *Service) {
		s.emitter = emitter
	}
}

// WithPolicy replaces the default policy floors.
func WithPolicy(policy rules.Policy) Option {
	return func(s *Service) {
		s.engine = engine.New(policy)
	}
}

// WithPlanTx sets the per-plan transaction boundary. Without it the service
// serialises per plan with an in-process sharded lock.
func WithPlanTx(tx PlanTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service.
func New(stores Stores, opts ...Option) *Service {
	s := &Service{
		stores: stores,
		engine: engine.New(rules.DefaultPolicy()),
		logger: slog.Default(),
		tracer: otel.Tracer("prevplan/internal/plans/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedPlanTx(0)
	}
	s.resolver = resolver.New(storeReader{stores: stores})
	return s
}

// storeReader adapts the per-entity stores to the resolver's read port.
type storeReader struct {
	stores Stores
}

func (r storeReader) FindClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	return r.stores.Clients.FindClient(ctx, clientID)
}

func (r storeReader) FindProduct(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	return r.stores.Products.FindProduct(ctx, productID)
}

func (r storeReader) FindPlan(ctx context.Context, planID id.PlanID) (*models.Plan, error) {
	return r.stores.Plans.FindPlan(ctx, planID)
}

// -----------------------------------------------------------------------------
// Request tracking
// -----------------------------------------------------------------------------

// mutation follows one request through the stage machine.
type mutation struct {
	kind     models.Kind
	action   models.Action
	stage    engine.Stage
	failedAt engine.Stage
	span     trace.Span
}

func (s *Service) begin(ctx context.Context, kind models.Kind, action models.Action) (context.Context, *mutation) {
	ctx, span := s.tracer.Start(ctx, "plans."+string(action)+"_"+string(kind),
		trace.WithAttributes(
			attribute.String("plans.kind", string(kind)),
			attribute.String("plans.action", string(action)),
		))
	return ctx, &mutation{kind: kind, action: action, stage: engine.StageReceived, span: span}
}

// step closes the current stage with its outcome and returns err unchanged.
func (m *mutation) step(err error) error {
	if err != nil && !m.stage.Terminal() {
		m.failedAt = m.stage
	}
	m.stage = m.stage.Next(err)
	return err
}

// resolve runs fn as the resolving stage and records its latency.
func (s *Service) resolve(m *mutation, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveResolveLatency(string(m.kind), time.Since(start))
	return m.step(err)
}

// validate runs fn as the validating stage and records its latency.
func (s *Service) validate(m *mutation, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveValidateLatency(string(m.kind), time.Since(start))
	return m.step(err)
}

// finish records the outcome, emits the lifecycle event on success and ends
// the span. It returns err so callers can `return s.finish(...)`.
func (s *Service) finish(ctx context.Context, m *mutation, entityID string, err error) error {
	defer m.span.End()
	requestID := requestcontext.RequestID(ctx)

	if err == nil {
		for !m.stage.Terminal() {
			m.step(nil)
		}
		m.span.SetAttributes(attribute.String("plans.id", entityID))
		s.metrics.IncrementOutcome(string(m.kind), string(m.action), metrics.StatusAccepted)
		s.logger.InfoContext(ctx, "mutation accepted",
			"kind", string(m.kind),
			"action", string(m.action),
			"id", entityID,
			"request_id", requestID,
		)
		if s.emitter != nil {
			s.emitter.Emit(ctx, events.Event{
				Kind:   m.kind,
				Action: m.action,
				ID:     entityID,
				At:     requestcontext.Now(ctx).UTC(),
			})
		}
		return nil
	}

	if !m.stage.Terminal() {
		m.step(err)
	}
	code := dErrors.CodeOf(err)
	if isRejection(code) {
		rule := ""
		var v *rules.Violation
		if errors.As(err, &v) {
			rule = v.Rule
		}
		s.metrics.IncrementOutcome(string(m.kind), string(m.action), metrics.StatusRejected)
		s.metrics.IncrementRejection(string(m.kind), string(code), rule)
		m.span.SetAttributes(attribute.String("plans.rejection_code", string(code)))
		s.logger.WarnContext(ctx, "mutation rejected",
			"kind", string(m.kind),
			"action", string(m.action),
			"stage", string(m.failedAt),
			"code", string(code),
			"rule", rule,
			"reason", dErrors.Message(err),
			"request_id", requestID,
		)
		return err
	}

	s.metrics.IncrementOutcome(string(m.kind), string(m.action), metrics.StatusError)
	m.span.RecordError(err)
	m.span.SetStatus(codes.Error, string(code))
	s.logger.ErrorContext(ctx, "mutation failed",
		"kind", string(m.kind),
		"action", string(m.action),
		"stage", string(m.failedAt),
		"error", err,
		"request_id", requestID,
	)
	return err
}

func isRejection(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeNotFound, dErrors.CodePolicyViolation,
		dErrors.CodeConflict, dErrors.CodeBadRequest:
		return true
	}
	return false
}

// storeErr translates a store failure into a domain error. notFound and
// conflict are the messages used for missing records and constraint clashes.
func storeErr(err error, notFound, conflict, op string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrStaleVersion):
		return dErrors.New(dErrors.CodeConflict, "plan was modified concurrently")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, conflict)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+": timed out")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeInternal, op+": store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
}
