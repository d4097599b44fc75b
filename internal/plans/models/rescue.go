package models

import (
	"github.com/shopspring/decimal"

	id "prevplan/pkg/domain"
)

// Rescue is a withdrawal against a plan's balance.
type Rescue struct {
	ID     id.RescueID     `json:"id"`
	PlanID id.PlanID       `json:"plan_id"`
	Value  decimal.Decimal `json:"rescue_value"`
}

type RescueDraft struct {
	PlanID *id.PlanID
	Value  *decimal.Decimal
}

type RescuePatch struct {
	Value *decimal.Decimal
}
