// Package handler exposes the plan lifecycle over HTTP JSON.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/platform/httputil"
	"prevplan/pkg/platform/middleware/admin"
	request "prevplan/pkg/platform/middleware/request"
)

// Service is the lifecycle surface the handlers drive.
type Service interface {
	CreateClient(ctx context.Context, fields models.ClientFields) (*models.Client, error)
	UpdateClient(ctx context.Context, clientID id.ClientID, fields models.ClientFields) (*models.Client, error)
	DeleteClient(ctx context.Context, clientID id.ClientID) error
	GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	GetClientByEmail(ctx context.Context, email string) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
	Portfolio(ctx context.Context, clientID id.ClientID) (*models.Portfolio, error)

	CreateProduct(ctx context.Context, fields models.ProductFields) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID id.ProductID, fields models.ProductFields) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID id.ProductID) error
	GetProduct(ctx context.Context, productID id.ProductID) (*models.Product, error)
	ListProductsByName(ctx context.Context, name string) ([]*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)

	CreatePlan(ctx context.Context, draft models.PlanDraft) (*models.Plan, error)
	UpdatePlan(ctx context.Context, planID id.PlanID, patch models.PlanPatch) (*models.Plan, error)
	DeletePlan(ctx context.Context, planID id.PlanID) error
	GetPlan(ctx context.Context, planID id.PlanID) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	ListPlansByClient(ctx context.Context, clientID id.ClientID) ([]*models.Plan, error)

	CreateContribution(ctx context.Context, draft models.ContributionDraft) (*models.ExtraContribution, error)
	UpdateContribution(ctx context.Context, contributionID id.ContributionID, patch models.ContributionPatch) (*models.ExtraContribution, error)
	DeleteContribution(ctx context.Context, contributionID id.ContributionID) error
	GetContribution(ctx context.Context, contributionID id.ContributionID) (*models.ExtraContribution, error)
	ListContributions(ctx context.Context) ([]*models.ExtraContribution, error)
	ListContributionsByClient(ctx context.Context, clientID id.ClientID) ([]*models.ExtraContribution, error)

	CreateRescue(ctx context.Context, draft models.RescueDraft) (*models.Rescue, error)
	UpdateRescue(ctx context.Context, rescueID id.RescueID, patch models.RescuePatch) (*models.Rescue, error)
	DeleteRescue(ctx context.Context, rescueID id.RescueID) error
	GetRescue(ctx context.Context, rescueID id.RescueID) (*models.Rescue, error)
	ListRescues(ctx context.Context) ([]*models.Rescue, error)
	ListRescuesByPlan(ctx context.Context, planID id.PlanID) ([]*models.Rescue, error)
}

// Handler serves the client, product, plan, extra contribution and rescue
// resources.
type Handler struct {
	service    Service
	logger     *slog.Logger
	adminToken string
}

// New creates a Handler. A non-empty adminToken guards product mutations.
func New(service Service, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{
		service:    service,
		logger:     logger,
		adminToken: adminToken,
	}
}

// Register mounts every lifecycle route on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.handleListClients)
		r.Post("/", h.handleCreateClient)
		r.Get("/by-email/{email}", h.handleGetClientByEmail)
		r.Get("/{id}", h.handleGetClient)
		r.Patch("/{id}", h.handleUpdateClient)
		r.Delete("/{id}", h.handleDeleteClient)
		r.Get("/{id}/portfolio", h.handlePortfolio)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Get("/by-name/{name}", h.handleListProductsByName)
		r.Get("/{id}", h.handleGetProduct)
		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
			r.Post("/", h.handleCreateProduct)
			r.Patch("/{id}", h.handleUpdateProduct)
			r.Delete("/{id}", h.handleDeleteProduct)
		})
	})

	r.Route("/plans", func(r chi.Router) {
		r.Get("/", h.handleListPlans)
		r.Post("/", h.handleCreatePlan)
		r.Get("/by-client/{client_id}", h.handleListPlansByClient)
		r.Get("/{id}", h.handleGetPlan)
		r.Patch("/{id}", h.handleUpdatePlan)
		r.Delete("/{id}", h.handleDeletePlan)
	})

	r.Route("/extra-contributions", func(r chi.Router) {
		r.Get("/", h.handleListContributions)
		r.Post("/", h.handleCreateContribution)
		r.Get("/by-client/{client_id}", h.handleListContributionsByClient)
		r.Get("/{id}", h.handleGetContribution)
		r.Patch("/{id}", h.handleUpdateContribution)
		r.Delete("/{id}", h.handleDeleteContribution)
	})

	r.Route("/rescues", func(r chi.Router) {
		r.Get("/", h.handleListRescues)
		r.Post("/", h.handleCreateRescue)
		r.Get("/by-plan/{plan_id}", h.handleListRescuesByPlan)
		r.Get("/{id}", h.handleGetRescue)
		r.Patch("/{id}", h.handleUpdateRescue)
		r.Delete("/{id}", h.handleDeleteRescue)
	})
}

// createdResponse is returned by every create route.
type createdResponse struct {
	ID string `json:"id"`
}

// pathID parses the named URL parameter. On failure it writes the error and
// returns false.
func pathID[T any](w http.ResponseWriter, r *http.Request, param string, parse func(string) (T, error)) (T, bool) {
	v, err := parse(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteError(w, err)
		return v, false
	}
	return v, true
}

// fail writes err. Rejections are already logged by the service; only
// failures that never reached it, or internal ones, are logged here.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", request.GetRequestID(ctx),
			"op", op,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

// writeList writes items, rendering a nil slice as an empty array.
func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}
