package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "prevplan/pkg/domain"
)

// Plan binds a client to a product. Contribution is the balance rescues
// are checked against. Version increments on every update.
type Plan struct {
	ID            id.PlanID       `json:"id"`
	ClientID      id.ClientID     `json:"client_id"`
	ProductID     id.ProductID    `json:"product_id"`
	Contribution  decimal.Decimal `json:"contribution"`
	ContractedAt  time.Time       `json:"date_of_contract"`
	RetirementAge int             `json:"age_of_retirement"`
	Version       int64           `json:"version"`
}

// PlanDraft is a plan creation candidate. ContractedAt defaults to the
// request time when absent.
type PlanDraft struct {
	ClientID      *id.ClientID
	ProductID     *id.ProductID
	Contribution  *decimal.Decimal
	RetirementAge *int
	ContractedAt  *time.Time
}

// PlanPatch lists the fields a plan update may change. ExpectedVersion,
// when set, must match the stored version.
type PlanPatch struct {
	ProductID       *id.ProductID
	Contribution    *decimal.Decimal
	RetirementAge   *int
	ExpectedVersion *int64
}
