package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "prevplan/pkg/domain"
)

// Gender is stored with the canonical Portuguese labels.
type Gender string

const (
	GenderMale   Gender = "Masculino"
	GenderFemale Gender = "Feminino"
	GenderOther  Gender = "Outro"
)

var genderAliases = map[string]Gender{
	"masculino": GenderMale,
	"male":      GenderMale,
	"feminino":  GenderFemale,
	"female":    GenderFemale,
	"outro":     GenderOther,
	"other":     GenderOther,
}

// ParseGender normalises a gender label. English aliases map to the
// canonical value; matching ignores case and surrounding space.
func ParseGender(s string) (Gender, bool) {
	g, ok := genderAliases[strings.ToLower(strings.TrimSpace(s))]
	return g, ok
}

// Valid reports whether g is one of the canonical labels.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Client is a plan holder. Email is unique across clients.
type Client struct {
	ID            id.ClientID     `json:"id"`
	TaxID         string          `json:"cpf"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	DateOfBirth   time.Time       `json:"date_of_birth"`
	Gender        Gender          `json:"gender"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

// ClientFields is both the creation draft and the update patch for a client.
// A nil field is absent.
type ClientFields struct {
	TaxID         *string
	Name          *string
	Email         *string
	DateOfBirth   *time.Time
	Gender        *string
	MonthlyIncome *decimal.Decimal
}

