package handler

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
)

// Column widths of the persisted record.
const (
	maxTaxIDLength     = 11
	maxNameLength      = 320
	maxEmailLength     = 320
	maxSusepCodeLength = 20
)

// clientRequest is both the create and the PATCH body for a client. Absent
// fields stay nil.
type clientRequest struct {
	TaxID         *string          `json:"cpf"`
	Name          *string          `json:"name"`
	Email         *string          `json:"email"`
	DateOfBirth   *string          `json:"date_of_birth"`
	Gender        *string          `json:"gender"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income"`

	dateOfBirth *time.Time
}

func (r *clientRequest) Validate() error {
	if err := maxLength("cpf", r.TaxID, maxTaxIDLength); err != nil {
		return err
	}
	if err := maxLength("name", r.Name, maxNameLength); err != nil {
		return err
	}
	if err := maxLength("email", r.Email, maxEmailLength); err != nil {
		return err
	}
	born, err := parseDate("date_of_birth", r.DateOfBirth)
	if err != nil {
		return err
	}
	r.dateOfBirth = born
	return nil
}

func (r *clientRequest) fields() models.ClientFields {
	return models.ClientFields{
		TaxID:         r.TaxID,
		Name:          r.Name,
		Email:         r.Email,
		DateOfBirth:   r.dateOfBirth,
		Gender:        r.Gender,
		MonthlyIncome: r.MonthlyIncome,
	}
}

// productRequest is both the create and the PATCH body for a product.
type productRequest struct {
	Name                   *string          `json:"name"`
	SusepCode              *string          `json:"susep"`
	SaleExpiration         *string          `json:"expiration_of_sale"`
	MinInitialContribution *decimal.Decimal `json:"value_minimum_aporte_initial"`
	MinExtraContribution   *decimal.Decimal `json:"value_minimum_aporte_extra"`
	EntryAge               *int             `json:"entry_age"`
	ExitAge                *int             `json:"age_of_exit"`
	InitialRescueLockout   *int             `json:"lack_initial_of_rescue"`
	InterRescueLockout     *int             `json:"lack_entre_resgates"`

	saleExpiration *time.Time
}

func (r *productRequest) Validate() error {
	if err := maxLength("name", r.Name, maxNameLength); err != nil {
		return err
	}
	if err := maxLength("susep", r.SusepCode, maxSusepCodeLength); err != nil {
		return err
	}
	expires, err := parseDate("expiration_of_sale", r.SaleExpiration)
	if err != nil {
		return err
	}
	r.saleExpiration = expires
	return nil
}

func (r *productRequest) fields() models.ProductFields {
	return models.ProductFields{
		Name:                   r.Name,
		SusepCode:              r.SusepCode,
		SaleExpiration:         r.saleExpiration,
		MinInitialContribution: r.MinInitialContribution,
		MinExtraContribution:   r.MinExtraContribution,
		EntryAge:               r.EntryAge,
		ExitAge:                r.ExitAge,
		InitialRescueLockout:   r.InitialRescueLockout,
		InterRescueLockout:     r.InterRescueLockout,
	}
}

type createPlanRequest struct {
	ClientID      *string          `json:"client_id"`
	ProductID     *string          `json:"product_id"`
	Contribution  *decimal.Decimal `json:"contribution"`
	ContractedAt  *string          `json:"date_of_contract"`
	RetirementAge *int             `json:"age_of_retirement"`

	draft models.PlanDraft
}

func (r *createPlanRequest) Validate() error {
	var err error
	if r.draft.ClientID, err = optionalID(r.ClientID, id.ParseClientID); err != nil {
		return err
	}
	if r.draft.ProductID, err = optionalID(r.ProductID, id.ParseProductID); err != nil {
		return err
	}
	if r.draft.ContractedAt, err = parseDate("date_of_contract", r.ContractedAt); err != nil {
		return err
	}
	r.draft.Contribution = r.Contribution
	r.draft.RetirementAge = r.RetirementAge
	return nil
}

// updatePlanRequest carries the plan fields a PATCH may change. Version,
// when sent, must equal the stored version.
type updatePlanRequest struct {
	ProductID     *string          `json:"product_id"`
	Contribution  *decimal.Decimal `json:"contribution"`
	RetirementAge *int             `json:"age_of_retirement"`
	Version       *int64           `json:"version"`

	patch models.PlanPatch
}

func (r *updatePlanRequest) Validate() error {
	var err error
	if r.patch.ProductID, err = optionalID(r.ProductID, id.ParseProductID); err != nil {
		return err
	}
	if r.Version != nil && *r.Version < 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "version must be positive")
	}
	r.patch.Contribution = r.Contribution
	r.patch.RetirementAge = r.RetirementAge
	r.patch.ExpectedVersion = r.Version
	return nil
}

type createContributionRequest struct {
	ClientID *string          `json:"client_id"`
	PlanID   *string          `json:"plan_id"`
	Value    *decimal.Decimal `json:"contribution_value"`

	draft models.ContributionDraft
}

func (r *createContributionRequest) Validate() error {
	var err error
	if r.draft.ClientID, err = optionalID(r.ClientID, id.ParseClientID); err != nil {
		return err
	}
	if r.draft.PlanID, err = optionalID(r.PlanID, id.ParsePlanID); err != nil {
		return err
	}
	r.draft.Value = r.Value
	return nil
}

type updateContributionRequest struct {
	Value *decimal.Decimal `json:"contribution_value"`
}

func (r *updateContributionRequest) Validate() error { return nil }

type createRescueRequest struct {
	PlanID *string          `json:"plan_id"`
	Value  *decimal.Decimal `json:"rescue_value"`

	draft models.RescueDraft
}

func (r *createRescueRequest) Validate() error {
	var err error
	if r.draft.PlanID, err = optionalID(r.PlanID, id.ParsePlanID); err != nil {
		return err
	}
	r.draft.Value = r.Value
	return nil
}

type updateRescueRequest struct {
	Value *decimal.Decimal `json:"rescue_value"`
}

func (r *updateRescueRequest) Validate() error { return nil }

// optionalID parses s when present. Absence is left to the engine's
// required-field check.
func optionalID[T any](s *string, parse func(string) (T, error)) (*T, error) {
	if s == nil {
		return nil, nil
	}
	v, err := parse(strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a date (YYYY-MM-DD)")
}

func maxLength(field string, s *string, limit int) error {
	if s != nil && utf8.RuneCountInString(*s) > limit {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return nil
}
