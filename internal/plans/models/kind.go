// Package models holds the plan lifecycle entities and the candidate
// structures submitted for creation and partial update.
package models

// Kind names an entity type. It labels metrics, logs and lifecycle events.
type Kind string

const (
	KindClient       Kind = "client"
	KindProduct      Kind = "product"
	KindPlan         Kind = "plan"
	KindContribution Kind = "extra_contribution"
	KindRescue       Kind = "rescue"
)

// Action names a mutation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
