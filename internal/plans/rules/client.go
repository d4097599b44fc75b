package rules

import (
	"strings"

	"prevplan/internal/plans/models"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/money"
)

// ReasonInvalidIncome is returned when a client's monthly income is not positive.
const ReasonInvalidIncome = "invalid monthly income."

// ClientRules returns the client invariants in evaluation order.
func (p Policy) ClientRules() []Rule[models.Client] {
	return []Rule[models.Client]{
		// Rule 1: identity fields
		{
			Name: "tax_id_present", Code: dErrors.CodeInvalidInput,
			Reason: "cpf must not be empty.",
			Holds:  func(c models.Client) bool { return strings.TrimSpace(c.TaxID) != "" },
		},
		{
			Name: "email_present", Code: dErrors.CodeInvalidInput,
			Reason: "email must not be empty.",
			Holds:  func(c models.Client) bool { return strings.TrimSpace(c.Email) != "" },
		},
		{
			Name: "name_present", Code: dErrors.CodeInvalidInput,
			Reason: "name must not be empty.",
			Holds:  func(c models.Client) bool { return strings.TrimSpace(c.Name) != "" },
		},
		// Rule 2: income
		{
			Name: "income_positive", Code: dErrors.CodePolicyViolation,
			Reason: ReasonInvalidIncome,
			Holds:  func(c models.Client) bool { return money.Positive(c.MonthlyIncome) },
		},
		// Rule 3: enumerated gender
		{
			Name: "gender_enumerated", Code: dErrors.CodeInvalidInput,
			Reason: "gender must be one of Masculino, Feminino, Outro.",
			Holds:  func(c models.Client) bool { return c.Gender.Valid() },
		},
	}
}
