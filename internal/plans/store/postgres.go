package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
	"prevplan/pkg/platform/sentinel"
	txctx "prevplan/pkg/platform/tx"
)

// PostgreSQL error codes the store translates into sentinels.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// PostgresStore persists entities in PostgreSQL. Every method joins the
// transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) exec(ctx context.Context) txctx.Executor {
	return txctx.Or(ctx, s.db)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LockPlan takes a row lock on the plan for the rest of the caller's
// transaction. Outside a transaction the lock is released immediately.
func (s *PostgresStore) LockPlan(ctx context.Context, planID id.PlanID) error {
	var locked uuid.UUID
	err := s.exec(ctx).QueryRowContext(ctx, `SELECT id FROM plan WHERE id = $1 FOR UPDATE`, uuid.UUID(planID)).Scan(&locked)
	if err != nil {
		return notFoundOr(err, "lock plan")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Clients
// -----------------------------------------------------------------------------

const clientColumns = `id, cpf, name, email, date_of_birth, gender, monthly_income`

func (s *PostgresStore) CreateClient(ctx context.Context, c *models.Client) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO client (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(c.ID), c.TaxID, c.Name, c.Email, c.DateOfBirth, string(c.Gender), c.MonthlyIncome)
	return translate(err, "create client")
}

func (s *PostgresStore) UpdateClient(ctx context.Context, c *models.Client) error {
	res, err := s.exec(ctx).ExecContext(ctx, `
		UPDATE client
		SET cpf = $2, name = $3, email = $4, date_of_birth = $5, gender = $6, monthly_income = $7
		WHERE id = $1
	`, uuid.UUID(c.ID), c.TaxID, c.Name, c.Email, c.DateOfBirth, string(c.Gender), c.MonthlyIncome)
	return affected(res, err, "update client")
}

func (s *PostgresStore) DeleteClient(ctx context.Context, clientID id.ClientID) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM client WHERE id = $1`, uuid.UUID(clientID))
	return affected(res, err, "delete client")
}

func (s *PostgresStore) FindClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	row := s.exec(ctx).QueryRowContext(ctx, `SELECT `+clientColumns+` FROM client WHERE id = $1`, uuid.UUID(clientID))
	c, err := scanClient(row)
	if err != nil {
		return nil, notFoundOr(err, "find client")
	}
	return c, nil
}

func (s *PostgresStore) FindClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	row := s.exec(ctx).QueryRowContext(ctx, `SELECT `+clientColumns+` FROM client WHERE lower(email) = lower($1)`, email)
	c, err := scanClient(row)
	if err != nil {
		return nil, notFoundOr(err, "find client by email")
	}
	return c, nil
}

func (s *PostgresStore) ListClients(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+clientColumns+` FROM client ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return collect(rows, scanClient, "list clients")
}

func scanClient(row scanner) (*models.Client, error) {
	var (
		c      models.Client
		rawID  uuid.UUID
		gender string
	)
	if err := row.Scan(&rawID, &c.TaxID, &c.Name, &c.Email, &c.DateOfBirth, &gender, &c.MonthlyIncome); err != nil {
		return nil, err
	}
	c.ID = id.ClientID(rawID)
	c.Gender = models.Gender(gender)
	return &c, nil
}

// -----------------------------------------------------------------------------
// Products
// -----------------------------------------------------------------------------

const productColumns = `id, name, susep, expiration_of_sale, value_minimum_aporte_initial,
	value_minimum_aporte_extra, entry_age, age_of_exit, lack_initial_of_rescue, lack_entre_resgates`

func (s *PostgresStore) CreateProduct(ctx context.Context, p *models.Product) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, productArgs(p)...)
	return translate(err, "create product")
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.exec(ctx).ExecContext(ctx, `
		UPDATE products
		SET name = $2, susep = $3, expiration_of_sale = $4, value_minimum_aporte_initial = $5,
			value_minimum_aporte_extra = $6, entry_age = $7, age_of_exit = $8,
			lack_initial_of_rescue = $9, lack_entre_resgates = $10
		WHERE id = $1
	`, productArgs(p)...)
	return affected(res, err, "update product")
}

func productArgs(p *models.Product) []any {
	return []any{
		uuid.UUID(p.ID), p.Name, p.SusepCode, p.SaleExpiration, p.MinInitialContribution,
		p.MinExtraContribution, p.EntryAge, p.ExitAge, p.InitialRescueLockout, p.InterRescueLockout,
	}
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, uuid.UUID(productID))
	return affected(res, err, "delete product")
}

func (s *PostgresStore) FindProduct(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	row := s.exec(ctx).QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, uuid.UUID(productID))
	p, err := scanProduct(row)
	if err != nil {
		return nil, notFoundOr(err, "find product")
	}
	return p, nil
}

func (s *PostgresStore) FindProductsByName(ctx context.Context, name string) ([]*models.Product, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1 ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("find products by name: %w", err)
	}
	return collect(rows, scanProduct, "find products by name")
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collect(rows, scanProduct, "list products")
}

func scanProduct(row scanner) (*models.Product, error) {
	var (
		p     models.Product
		rawID uuid.UUID
	)
	err := row.Scan(&rawID, &p.Name, &p.SusepCode, &p.SaleExpiration, &p.MinInitialContribution,
		&p.MinExtraContribution, &p.EntryAge, &p.ExitAge, &p.InitialRescueLockout, &p.InterRescueLockout)
	if err != nil {
		return nil, err
	}
	p.ID = id.ProductID(rawID)
	p.SaleExpiration = p.SaleExpiration.UTC()
	return &p, nil
}

// -----------------------------------------------------------------------------
// Plans
// -----------------------------------------------------------------------------

const planColumns = `id, client_id, product_id, contribution, date_of_contract, age_of_retirement, version`

func (s *PostgresStore) CreatePlan(ctx context.Context, p *models.Plan) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO plan (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(p.ID), uuid.UUID(p.ClientID), uuid.UUID(p.ProductID), p.Contribution, p.ContractedAt, p.RetirementAge, p.Version)
	return translate(err, "create plan")
}

// UpdatePlan writes p only if the stored version still equals p.Version,
// then bumps p.Version.
func (s *PostgresStore) UpdatePlan(ctx context.Context, p *models.Plan) error {
	res, err := s.exec(ctx).ExecContext(ctx, `
		UPDATE plan
		SET product_id = $3, contribution = $4, age_of_retirement = $5, version = version + 1
		WHERE id = $1 AND version = $2
	`, uuid.UUID(p.ID), p.Version, uuid.UUID(p.ProductID), p.Contribution, p.RetirementAge)
	if err != nil {
		return translate(err, "update plan")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if n == 0 {
		// Distinguish a missing plan from a concurrent writer.
		if _, err := s.FindPlan(ctx, p.ID); err != nil {
			return err
		}
		return sentinel.ErrStaleVersion
	}
	p.Version++
	return nil
}

func (s *PostgresStore) DeletePlan(ctx context.Context, planID id.PlanID) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM plan WHERE id = $1`, uuid.UUID(planID))
	return affected(res, err, "delete plan")
}

func (s *PostgresStore) FindPlan(ctx context.Context, planID id.PlanID) (*models.Plan, error) {
	row := s.exec(ctx).QueryRowContext(ctx, `SELECT `+planColumns+` FROM plan WHERE id = $1`, uuid.UUID(planID))
	p, err := scanPlan(row)
	if err != nil {
		return nil, notFoundOr(err, "find plan")
	}
	return p, nil
}

func (s *PostgresStore) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+planColumns+` FROM plan ORDER BY date_of_contract, id`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return collect(rows, scanPlan, "list plans")
}

func (s *PostgresStore) ListPlansByClient(ctx context.Context, clientID id.ClientID) ([]*models.Plan, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+planColumns+` FROM plan WHERE client_id = $1 ORDER BY date_of_contract, id`, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("list plans by client: %w", err)
	}
	return collect(rows, scanPlan, "list plans by client")
}

func scanPlan(row scanner) (*models.Plan, error) {
	var (
		p                          models.Plan
		rawID, clientID, productID uuid.UUID
	)
	err := row.Scan(&rawID, &clientID, &productID, &p.Contribution, &p.ContractedAt, &p.RetirementAge, &p.Version)
	if err != nil {
		return nil, err
	}
	p.ID = id.PlanID(rawID)
	p.ClientID = id.ClientID(clientID)
	p.ProductID = id.ProductID(productID)
	p.ContractedAt = p.ContractedAt.UTC()
	return &p, nil
}

// -----------------------------------------------------------------------------
// Extra contributions
// -----------------------------------------------------------------------------

const contributionColumns = `id, client_id, plan_id, contribution_value`

func (s *PostgresStore) CreateContribution(ctx context.Context, c *models.ExtraContribution) error {
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO extra_contribution (`+contributionColumns+`)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(c.ID), uuid.UUID(c.ClientID), uuid.UUID(c.PlanID), c.Value)
	return translate(err, "create extra contribution")
}

func (s *PostgresStore) UpdateContribution(ctx context.Context, c *models.ExtraContribution) error {
	res, err := s.exec(ctx).ExecContext(ctx, `UPDATE extra_contribution SET contribution_value = $2 WHERE id = $1`, uuid.UUID(c.ID), c.Value)
	return affected(res, err, "update extra contribution")
}

func (s *PostgresStore) DeleteContribution(ctx context.Context, contributionID id.ContributionID) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM extra_contribution WHERE id = $1`, uuid.UUID(contributionID))
	return affected(res, err, "delete extra contribution")
}

func (s *PostgresStore) FindContribution(ctx context.Context, contributionID id.ContributionID) (*models.ExtraContribution, error) {
	row := s.exec(ctx).QueryRowContext(ctx, `SELECT `+contributionColumns+` FROM extra_contribution WHERE id = $1`, uuid.UUID(contributionID))
	c, err := scanContribution(row)
	if err != nil {
		return nil, notFoundOr(err, "find extra contribution")
	}
	return c, nil
}

func (s *PostgresStore) ListContributions(ctx context.Context) ([]*models.ExtraContribution, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+contributionColumns+` FROM extra_contribution ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list extra contributions: %w", err)
	}
	return collect(rows, scanContribution, "list extra contributions")
}

func (s *PostgresStore) ListContributionsByClient(ctx context.Context, clientID id.ClientID) ([]*models.ExtraContribution, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+contributionColumns+` FROM extra_contribution WHERE client_id = $1 ORDER BY id`, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("list extra contributions by client: %w", err)
	}
	return collect(rows, scanContribution, "list extra contributions by client")
}

func scanContribution(row scanner) (*models.ExtraContribution, error) {
	var (
		c                       models.ExtraContribution
		rawID, clientID, planID uuid.UUID
	)
	if err := row.Scan(&rawID, &clientID, &planID, &c.Value); err != nil {
		return nil, err
	}
	c.ID = id.ContributionID(rawID)
	c.ClientID = id.ClientID(clientID)
	c.PlanID = id.PlanID(planID)
	return &c, nil
}

// -----------------------------------------------------------------------------
// Rescues
// -----------------------------------------------------------------------------

const rescueColumns = `id, plan_id, rescue_value`

func (s *PostgresStore) CreateRescue(ctx context.Context, r *models.Rescue) error {
	_, err := s.exec(ctx).ExecContext(ctx, `INSERT INTO rescue (`+rescueColumns+`) VALUES ($1, $2, $3)`,
		uuid.UUID(r.ID), uuid.UUID(r.PlanID), r.Value)
	return translate(err, "create rescue")
}

func (s *PostgresStore) UpdateRescue(ctx context.Context, r *models.Rescue) error {
	res, err := s.exec(ctx).ExecContext(ctx, `UPDATE rescue SET rescue_value = $2 WHERE id = $1`, uuid.UUID(r.ID), r.Value)
	return affected(res, err, "update rescue")
}

func (s *PostgresStore) DeleteRescue(ctx context.Context, rescueID id.RescueID) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM rescue WHERE id = $1`, uuid.UUID(rescueID))
	return affected(res, err, "delete rescue")
}

func (s *PostgresStore) FindRescue(ctx context.Context, rescueID id.RescueID) (*models.Rescue, error) {
	row := s.exec(ctx).QueryRowContext(ctx, `SELECT `+rescueColumns+` FROM rescue WHERE id = $1`, uuid.UUID(rescueID))
	r, err := scanRescue(row)
	if err != nil {
		return nil, notFoundOr(err, "find rescue")
	}
	return r, nil
}

func (s *PostgresStore) ListRescues(ctx context.Context) ([]*models.Rescue, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+rescueColumns+` FROM rescue ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rescues: %w", err)
	}
	return collect(rows, scanRescue, "list rescues")
}

func (s *PostgresStore) ListRescuesByPlan(ctx context.Context, planID id.PlanID) ([]*models.Rescue, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT `+rescueColumns+` FROM rescue WHERE plan_id = $1 ORDER BY id`, uuid.UUID(planID))
	if err != nil {
		return nil, fmt.Errorf("list rescues by plan: %w", err)
	}
	return collect(rows, scanRescue, "list rescues by plan")
}

func scanRescue(row scanner) (*models.Rescue, error) {
	var (
		r             models.Rescue
		rawID, planID uuid.UUID
	)
	if err := row.Scan(&rawID, &planID, &r.Value); err != nil {
		return nil, err
	}
	r.ID = id.RescueID(rawID)
	r.PlanID = id.PlanID(planID)
	return &r, nil
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

type scanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows *sql.Rows, scan func(scanner) (*T, error), op string) ([]*T, error) {
	defer rows.Close()
	out := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// translate maps constraint violations onto sentinel.ErrConflict.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation, pgForeignKeyViolation:
			return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, sentinel.ErrConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func affected(res sql.Result, err error, op string) error {
	if err != nil {
		return translate(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
