package domain

import (
	"github.com/google/uuid"

	dErrors "prevplan/pkg/domain-errors"
)

// Typed identifiers keep a PlanID from being passed where a ProductID is
// expected. Construct them with the Parse functions at trust boundaries.
type (
	ClientID       uuid.UUID
	ProductID      uuid.UUID
	PlanID         uuid.UUID
	ContributionID uuid.UUID
	RescueID       uuid.UUID
)

func NewClientID() ClientID             { return ClientID(uuid.New()) }
func NewProductID() ProductID           { return ProductID(uuid.New()) }
func NewPlanID() PlanID                 { return PlanID(uuid.New()) }
func NewContributionID() ContributionID { return ContributionID(uuid.New()) }
func NewRescueID() RescueID             { return RescueID(uuid.New()) }

func (id ClientID) String() string       { return uuid.UUID(id).String() }
func (id ProductID) String() string      { return uuid.UUID(id).String() }
func (id PlanID) String() string         { return uuid.UUID(id).String() }
func (id ContributionID) String() string { return uuid.UUID(id).String() }
func (id RescueID) String() string       { return uuid.UUID(id).String() }

func (id ClientID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id PlanID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ContributionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RescueID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// ParseClientID parses a client identifier.
//
// Errors: CodeInvalidInput when s is empty, malformed or the nil UUID.
func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s, "client_id")
	return ClientID(u), err
}

// ParseProductID parses a product identifier.
func ParseProductID(s string) (ProductID, error) {
	u, err := parseUUID(s, "product_id")
	return ProductID(u), err
}

// ParsePlanID parses a plan identifier.
func ParsePlanID(s string) (PlanID, error) {
	u, err := parseUUID(s, "plan_id")
	return PlanID(u), err
}

// ParseContributionID parses an extra contribution identifier.
func ParseContributionID(s string) (ContributionID, error) {
	u, err := parseUUID(s, "extra_contribution_id")
	return ContributionID(u), err
}

// ParseRescueID parses a rescue identifier.
func ParseRescueID(s string) (RescueID, error) {
	u, err := parseUUID(s, "rescue_id")
	return RescueID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	return u, nil
}

// Text encoding so identifiers serialize as canonical UUID strings in JSON.

func (id ClientID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id ProductID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id PlanID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id ContributionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id RescueID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }

func (id *ClientID) UnmarshalText(b []byte) error {
	parsed, err := ParseClientID(string(b))
	*id = parsed
	return err
}

func (id *ProductID) UnmarshalText(b []byte) error {
	parsed, err := ParseProductID(string(b))
	*id = parsed
	return err
}

func (id *PlanID) UnmarshalText(b []byte) error {
	parsed, err := ParsePlanID(string(b))
	*id = parsed
	return err
}

func (id *ContributionID) UnmarshalText(b []byte) error {
	parsed, err := ParseContributionID(string(b))
	*id = parsed
	return err
}

func (id *RescueID) UnmarshalText(b []byte) error {
	parsed, err := ParseRescueID(string(b))
	*id = parsed
	return err
}
