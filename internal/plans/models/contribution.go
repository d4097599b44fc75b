package models

import (
	"github.com/shopspring/decimal"

	id "prevplan/pkg/domain"
)

// ExtraContribution is a deposit into an existing plan.
type ExtraContribution struct {
	ID       id.ContributionID `json:"id"`
	ClientID id.ClientID       `json:"client_id"`
	PlanID   id.PlanID         `json:"plan_id"`
	Value    decimal.Decimal   `json:"contribution_value"`
}

type ContributionDraft struct {
	ClientID *id.ClientID
	PlanID   *id.PlanID
	Value    *decimal.Decimal
}

type ContributionPatch struct {
	Value *decimal.Decimal
}
