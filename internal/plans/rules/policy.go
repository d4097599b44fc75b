// Package rules holds the pure lifecycle validators. Nothing here performs
// I/O or mutates its input; every fact a rule needs arrives as an argument.
package rules

import (
	"github.com/shopspring/decimal"

	"prevplan/pkg/money"
)

// Policy holds the floors enforced independent of any product's configuration.
type Policy struct {
	MinExtraContribution    decimal.Decimal
	MinInitialContribution  decimal.Decimal
	MinEntryAge             int
	MaxExitAge              int
	MinInitialRescueLockout int // days
	MinInterRescueLockout   int // days
}

// DefaultPolicy returns the regulatory floors in force.
func DefaultPolicy() Policy {
	return Policy{
		MinExtraContribution:    money.MustParse("100.00"),
		MinInitialContribution:  money.MustParse("1000.00"),
		MinEntryAge:             18,
		MaxExitAge:              60,
		MinInitialRescueLockout: 60,
		MinInterRescueLockout:   30,
	}
}
