package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "prevplan/pkg/domain"
)

// Product is a sellable savings offering and its policy bounds.
//
// Invariants:
//   - ExitAge > EntryAge
//   - minimums and ages respect the policy floors at creation and update
type Product struct {
	ID                     id.ProductID    `json:"id"`
	Name                   string          `json:"name"`
	SusepCode              string          `json:"susep"`
	SaleExpiration         time.Time       `json:"expiration_of_sale"`
	MinInitialContribution decimal.Decimal `json:"value_minimum_aporte_initial"`
	MinExtraContribution   decimal.Decimal `json:"value_minimum_aporte_extra"`
	EntryAge               int             `json:"entry_age"`
	ExitAge                int             `json:"age_of_exit"`
	InitialRescueLockout   int             `json:"lack_initial_of_rescue"`
	InterRescueLockout     int             `json:"lack_entre_resgates"`
}

// ProductFields is both the creation draft and the update patch for a product.
type ProductFields struct {
	Name                   *string
	SusepCode              *string
	SaleExpiration         *time.Time
	MinInitialContribution *decimal.Decimal
	MinExtraContribution   *decimal.Decimal
	EntryAge               *int
	ExitAge                *int
	InitialRescueLockout   *int
	InterRescueLockout     *int
}
