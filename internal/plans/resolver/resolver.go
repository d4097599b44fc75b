// Package resolver loads the records a cross-entity mutation depends on.
// A reference that does not resolve is reported as not_found before any
// rule runs.
package resolver

import (
	"context"
	"errors"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/platform/sentinel"
)

// Reader is the read side of the entity store the resolver needs.
type Reader interface {
	FindClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	FindProduct(ctx context.Context, productID id.ProductID) (*models.Product, error)
	FindPlan(ctx context.Context, planID id.PlanID) (*models.Plan, error)
}

// PlanRefs are the records a plan mutation depends on.
type PlanRefs struct {
	Client  *models.Client
	Product *models.Product
}

// ContributionRefs are the records an extra contribution depends on.
type ContributionRefs struct {
	Client *models.Client
	Plan   *models.Plan
}

// RescueRefs are the records a rescue depends on.
type RescueRefs struct {
	Plan    *models.Plan
	Product *models.Product
}

// Resolver resolves references in parent-first order and stops at the
// first one that is missing.
type Resolver struct {
	reader Reader
}

func New(reader Reader) *Resolver {
	return &Resolver{reader: reader}
}

// ForPlan resolves the client, then the product.
func (r *Resolver) ForPlan(ctx context.Context, clientID id.ClientID, productID id.ProductID) (*PlanRefs, error) {
	client, err := r.reader.FindClient(ctx, clientID)
	if err != nil {
		return nil, translate(err, "client not found", "failed to load client")
	}
	product, err := r.reader.FindProduct(ctx, productID)
	if err != nil {
		return nil, translate(err, "product not found", "failed to load product")
	}
	return &PlanRefs{Client: client, Product: product}, nil
}

// ForContribution resolves the client, then the plan.
func (r *Resolver) ForContribution(ctx context.Context, clientID id.ClientID, planID id.PlanID) (*ContributionRefs, error) {
	client, err := r.reader.FindClient(ctx, clientID)
	if err != nil {
		return nil, translate(err, "client not found", "failed to load client")
	}
	plan, err := r.reader.FindPlan(ctx, planID)
	if err != nil {
		return nil, translate(err, "plan not found", "failed to load plan")
	}
	return &ContributionRefs{Client: client, Plan: plan}, nil
}

// ForRescue resolves the plan, then the product the plan references.
func (r *Resolver) ForRescue(ctx context.Context, planID id.PlanID) (*RescueRefs, error) {
	plan, err := r.reader.FindPlan(ctx, planID)
	if err != nil {
		return nil, translate(err, "plan not found", "failed to load plan")
	}
	product, err := r.reader.FindProduct(ctx, plan.ProductID)
	if err != nil {
		return nil, translate(err, "product associated with plan not found", "failed to load product")
	}
	return &RescueRefs{Plan: plan, Product: product}, nil
}

func translate(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, internal)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}
