// Package store persists lifecycle entities. InMemory backs tests and
// single-process deployments; PostgresStore backs production.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
	"prevplan/pkg/platform/sentinel"
)

// InMemory keeps every entity in maps guarded by one RWMutex. It enforces the
// same uniqueness and referential constraints as the postgres schema so
// services behave identically on both.
type InMemory struct {
	mu            sync.RWMutex
	clients       map[id.ClientID]models.Client
	products      map[id.ProductID]models.Product
	plans         map[id.PlanID]models.Plan
	contributions map[id.ContributionID]models.ExtraContribution
	rescues       map[id.RescueID]models.Rescue
}

// NewInMemory constructs an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		clients:       make(map[id.ClientID]models.Client),
		products:      make(map[id.ProductID]models.Product),
		plans:         make(map[id.PlanID]models.Plan),
		contributions: make(map[id.ContributionID]models.ExtraContribution),
		rescues:       make(map[id.RescueID]models.Rescue),
	}
}

// Ping always succeeds.
func (s *InMemory) Ping(context.Context) error { return nil }

// LockPlan only reports whether the plan exists; callers serialize per plan
// with a sharded mutex.
func (s *InMemory) LockPlan(_ context.Context, planID id.PlanID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.plans[planID]; !ok {
		return sentinel.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// Clients
// -----------------------------------------------------------------------------

func (s *InMemory) CreateClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(c.Email, c.ID) {
		return fmt.Errorf("client email %q: %w", c.Email, sentinel.ErrConflict)
	}
	s.clients[c.ID] = *c
	return nil
}

func (s *InMemory) UpdateClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.emailTaken(c.Email, c.ID) {
		return fmt.Errorf("client email %q: %w", c.Email, sentinel.ErrConflict)
	}
	s.clients[c.ID] = *c
	return nil
}

func (s *InMemory) DeleteClient(_ context.Context, clientID id.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[clientID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, p := range s.plans {
		if p.ClientID == clientID {
			return fmt.Errorf("client referenced by plan: %w", sentinel.ErrConflict)
		}
	}
	for _, c := range s.contributions {
		if c.ClientID == clientID {
			return fmt.Errorf("client referenced by extra contribution: %w", sentinel.ErrConflict)
		}
	}
	delete(s.clients, clientID)
	return nil
}

func (s *InMemory) FindClient(_ context.Context, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemory) FindClientByEmail(_ context.Context, email string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if strings.EqualFold(c.Email, email) {
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListClients(context.Context) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// emailTaken must be called with mu held.
func (s *InMemory) emailTaken(email string, self id.ClientID) bool {
	for _, c := range s.clients {
		if c.ID != self && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Products
// -----------------------------------------------------------------------------

func (s *InMemory) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *InMemory) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *InMemory) DeleteProduct(_ context.Context, productID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, p := range s.plans {
		if p.ProductID == productID {
			return fmt.Errorf("product referenced by plan: %w", sentinel.ErrConflict)
		}
	}
	delete(s.products, productID)
	return nil
}

func (s *InMemory) FindProduct(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindProductsByName(_ context.Context, name string) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Product{}
	for _, p := range s.products {
		if p.Name == name {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *InMemory) ListProducts(context.Context) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// -----------------------------------------------------------------------------
// Plans
// -----------------------------------------------------------------------------

func (s *InMemory) CreatePlan(_ context.Context, p *models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[p.ClientID]; !ok {
		return fmt.Errorf("plan client: %w", sentinel.ErrConflict)
	}
	if _, ok := s.products[p.ProductID]; !ok {
		return fmt.Errorf("plan product: %w", sentinel.ErrConflict)
	}
	s.plans[p.ID] = *p
	return nil
}

// UpdatePlan replaces the plan when the stored version equals p.Version and
// bumps p.Version on success.
func (s *InMemory) UpdatePlan(_ context.Context, p *models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.plans[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != p.Version {
		return sentinel.ErrStaleVersion
	}
	if _, ok := s.products[p.ProductID]; !ok {
		return fmt.Errorf("plan product: %w", sentinel.ErrConflict)
	}
	p.Version++
	s.plans[p.ID] = *p
	return nil
}

func (s *InMemory) DeletePlan(_ context.Context, planID id.PlanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[planID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, c := range s.contributions {
		if c.PlanID == planID {
			return fmt.Errorf("plan referenced by extra contribution: %w", sentinel.ErrConflict)
		}
	}
	for _, r := range s.rescues {
		if r.PlanID == planID {
			return fmt.Errorf("plan referenced by rescue: %w", sentinel.ErrConflict)
		}
	}
	delete(s.plans, planID)
	return nil
}

func (s *InMemory) FindPlan(_ context.Context, planID id.PlanID) (*models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[planID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) ListPlans(context.Context) ([]*models.Plan, error) {
	return s.filterPlans(func(models.Plan) bool { return true }), nil
}

func (s *InMemory) ListPlansByClient(_ context.Context, clientID id.ClientID) ([]*models.Plan, error) {
	return s.filterPlans(func(p models.Plan) bool { return p.ClientID == clientID }), nil
}

func (s *InMemory) filterPlans(keep func(models.Plan) bool) []*models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Plan{}
	for _, p := range s.plans {
		if keep(p) {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ContractedAt.Equal(out[j].ContractedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].ContractedAt.Before(out[j].ContractedAt)
	})
	return out
}

// -----------------------------------------------------------------------------
// Extra contributions
// -----------------------------------------------------------------------------

func (s *InMemory) CreateContribution(_ context.Context, c *models.ExtraContribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ClientID]; !ok {
		return fmt.Errorf("contribution client: %w", sentinel.ErrConflict)
	}
	if _, ok := s.plans[c.PlanID]; !ok {
		return fmt.Errorf("contribution plan: %w", sentinel.ErrConflict)
	}
	s.contributions[c.ID] = *c
	return nil
}

func (s *InMemory) UpdateContribution(_ context.Context, c *models.ExtraContribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contributions[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.contributions[c.ID] = *c
	return nil
}

func (s *InMemory) DeleteContribution(_ context.Context, contributionID id.ContributionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contributions[contributionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.contributions, contributionID)
	return nil
}

func (s *InMemory) FindContribution(_ context.Context, contributionID id.ContributionID) (*models.ExtraContribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contributions[contributionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemory) ListContributions(context.Context) ([]*models.ExtraContribution, error) {
	return s.filterContributions(func(models.ExtraContribution) bool { return true }), nil
}

func (s *InMemory) ListContributionsByClient(_ context.Context, clientID id.ClientID) ([]*models.ExtraContribution, error) {
	return s.filterContributions(func(c models.ExtraContribution) bool { return c.ClientID == clientID }), nil
}

func (s *InMemory) filterContributions(keep func(models.ExtraContribution) bool) []*models.ExtraContribution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.ExtraContribution{}
	for _, c := range s.contributions {
		if keep(c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// -----------------------------------------------------------------------------
// Rescues
// -----------------------------------------------------------------------------

func (s *InMemory) CreateRescue(_ context.Context, r *models.Rescue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[r.PlanID]; !ok {
		return fmt.Errorf("rescue plan: %w", sentinel.ErrConflict)
	}
	s.rescues[r.ID] = *r
	return nil
}

func (s *InMemory) UpdateRescue(_ context.Context, r *models.Rescue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rescues[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.rescues[r.ID] = *r
	return nil
}

func (s *InMemory) DeleteRescue(_ context.Context, rescueID id.RescueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rescues[rescueID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rescues, rescueID)
	return nil
}

func (s *InMemory) FindRescue(_ context.Context, rescueID id.RescueID) (*models.Rescue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rescues[rescueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemory) ListRescues(context.Context) ([]*models.Rescue, error) {
	return s.filterRescues(func(models.Rescue) bool { return true }), nil
}

func (s *InMemory) ListRescuesByPlan(_ context.Context, planID id.PlanID) ([]*models.Rescue, error) {
	return s.filterRescues(func(r models.Rescue) bool { return r.PlanID == planID }), nil
}

func (s *InMemory) filterRescues(keep func(models.Rescue) bool) []*models.Rescue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Rescue{}
	for _, r := range s.rescues {
		if keep(r) {
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}
