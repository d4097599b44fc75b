package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/rules"
	id "prevplan/pkg/domain"
	"prevplan/pkg/money"
)

var clientRequired = []rules.Rule[models.ClientFields]{
	present("cpf", func(f models.ClientFields) bool { return f.TaxID != nil }),
	present("email", func(f models.ClientFields) bool { return f.Email != nil }),
	present("name", func(f models.ClientFields) bool { return f.Name != nil }),
	present("date_of_birth", func(f models.ClientFields) bool { return f.DateOfBirth != nil }),
	present("monthly_income", func(f models.ClientFields) bool { return f.MonthlyIncome != nil }),
	present("gender", func(f models.ClientFields) bool { return f.Gender != nil }),
}

var clientInput = []rules.Rule[models.ClientFields]{
	cents("monthly_income", func(f models.ClientFields) *decimal.Decimal { return f.MonthlyIncome }),
}

// PrepareClient validates a new client. Every field is required.
func (e *Engine) PrepareClient(draft models.ClientFields) (*models.Client, error) {
	if err := rules.Check(draft, append(clientRequired, clientInput...)); err != nil {
		return nil, err
	}
	return e.validateClient(mergeClient(models.Client{ID: id.NewClientID()}, draft))
}

// PrepareClientUpdate merges patch onto existing and re-runs the client rules.
func (e *Engine) PrepareClientUpdate(existing models.Client, patch models.ClientFields) (*models.Client, error) {
	if err := rules.Check(patch, clientInput); err != nil {
		return nil, err
	}
	return e.validateClient(mergeClient(existing, patch))
}

func (e *Engine) validateClient(c models.Client) (*models.Client, error) {
	if err := rules.Check(c, e.policy.ClientRules()); err != nil {
		return nil, err
	}
	return &c, nil
}

// mergeClient applies the set fields of f onto c. An unrecognised gender is
// kept verbatim so the gender rule rejects it in its turn.
func mergeClient(c models.Client, f models.ClientFields) models.Client {
	if f.TaxID != nil {
		c.TaxID = strings.TrimSpace(*f.TaxID)
	}
	if f.Name != nil {
		c.Name = strings.TrimSpace(*f.Name)
	}
	if f.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*f.Email))
	}
	if f.DateOfBirth != nil {
		c.DateOfBirth = *f.DateOfBirth
	}
	if f.Gender != nil {
		if g, ok := models.ParseGender(*f.Gender); ok {
			c.Gender = g
		} else {
			c.Gender = models.Gender(*f.Gender)
		}
	}
	if f.MonthlyIncome != nil {
		c.MonthlyIncome = money.Round(*f.MonthlyIncome)
	}
	return c
}
