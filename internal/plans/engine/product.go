package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/rules"
	id "prevplan/pkg/domain"
	"prevplan/pkg/money"
)

var productRequired = []rules.Rule[models.ProductFields]{
	present("name", func(f models.ProductFields) bool { return f.Name != nil }),
	present("susep", func(f models.ProductFields) bool { return f.SusepCode != nil }),
	present("expiration_of_sale", func(f models.ProductFields) bool { return f.SaleExpiration != nil }),
}

var productInput = []rules.Rule[models.ProductFields]{
	cents("value_minimum_aporte_initial", func(f models.ProductFields) *decimal.Decimal { return f.MinInitialContribution }),
	cents("value_minimum_aporte_extra", func(f models.ProductFields) *decimal.Decimal { return f.MinExtraContribution }),
}

// PrepareProduct validates a new product. Name, susep code and sale
// expiration are required; omitted bounds default to the policy floors.
func (e *Engine) PrepareProduct(draft models.ProductFields) (*models.Product, error) {
	if err := rules.Check(draft, append(productRequired, productInput...)); err != nil {
		return nil, err
	}
	return e.validateProduct(mergeProduct(e.productDefaults(), draft))
}

// PrepareProductUpdate merges patch onto existing and re-runs the product rules.
func (e *Engine) PrepareProductUpdate(existing models.Product, patch models.ProductFields) (*models.Product, error) {
	if err := rules.Check(patch, productInput); err != nil {
		return nil, err
	}
	return e.validateProduct(mergeProduct(existing, patch))
}

func (e *Engine) validateProduct(p models.Product) (*models.Product, error) {
	if err := rules.Check(p, e.policy.ProductRules()); err != nil {
		return nil, err
	}
	return &p, nil
}

func (e *Engine) productDefaults() models.Product {
	return models.Product{
		ID:                     id.NewProductID(),
		MinInitialContribution: e.policy.MinInitialContribution,
		MinExtraContribution:   e.policy.MinExtraContribution,
		EntryAge:               e.policy.MinEntryAge,
		ExitAge:                e.policy.MaxExitAge,
		InitialRescueLockout:   e.policy.MinInitialRescueLockout,
		InterRescueLockout:     e.policy.MinInterRescueLockout,
	}
}

func mergeProduct(p models.Product, f models.ProductFields) models.Product {
	if f.Name != nil {
		p.Name = strings.TrimSpace(*f.Name)
	}
	if f.SusepCode != nil {
		p.SusepCode = strings.TrimSpace(*f.SusepCode)
	}
	if f.SaleExpiration != nil {
		p.SaleExpiration = f.SaleExpiration.UTC()
	}
	if f.MinInitialContribution != nil {
		p.MinInitialContribution = money.Round(*f.MinInitialContribution)
	}
	if f.MinExtraContribution != nil {
		p.MinExtraContribution = money.Round(*f.MinExtraContribution)
	}
	if f.EntryAge != nil {
		p.EntryAge = *f.EntryAge
	}
	if f.ExitAge != nil {
		p.ExitAge = *f.ExitAge
	}
	if f.InitialRescueLockout != nil {
		p.InitialRescueLockout = *f.InitialRescueLockout
	}
	if f.InterRescueLockout != nil {
		p.InterRescueLockout = *f.InterRescueLockout
	}
	return p
}
