package rules_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"prevplan/internal/plans/models"
	"prevplan/internal/plans/rules"
	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/money"
)

// =============================================================================
// Rule Table Test Suite
// =============================================================================
// Justification for unit tests: the rule tables are pure and their order is
// observable (one reason per rejection), so each rule and its position is
// pinned here rather than through the HTTP surface.

type RulesSuite struct {
	suite.Suite
	policy rules.Policy
	now    time.Time
}

func TestRulesSuite(t *testing.T) {
	suite.Run(t, new(RulesSuite))
}

func (s *RulesSuite) SetupTest() {
	s.policy = rules.DefaultPolicy()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func validClient() models.Client {
	return models.Client{
		ID:            id.ClientID(uuid.New()),
		TaxID:         "12345678901",
		Name:          "Ana Souza",
		Email:         "ana@example.com",
		DateOfBirth:   time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC),
		Gender:        models.GenderMale,
		MonthlyIncome: money.MustParse("5000"),
	}
}

func validProduct(now time.Time) models.Product {
	return models.Product{
		ID:                     id.ProductID(uuid.New()),
		Name:                   "Brasilprev Longo Prazo",
		SusepCode:              "15414900840201817",
		SaleExpiration:         now.AddDate(1, 0, 0),
		MinInitialContribution: money.MustParse("1000"),
		MinExtraContribution:   money.MustParse("100"),
		EntryAge:               18,
		ExitAge:                60,
		InitialRescueLockout:   60,
		InterRescueLockout:     30,
	}
}

func (s *RulesSuite) requireViolation(v *rules.Violation, code dErrors.Code, reason string) {
	s.Require().NotNil(v)
	s.Equal(code, v.Code)
	s.Equal(reason, v.Reason)
}

// =============================================================================
// Evaluator
// =============================================================================

func (s *RulesSuite) TestFirst() {
	calls := 0
	table := []rules.Rule[int]{
		{Name: "a", Code: dErrors.CodeInvalidInput, Reason: "a", Holds: func(int) bool { calls++; return true }},
		{Name: "b", Code: dErrors.CodePolicyViolation, Reason: "b", Holds: func(int) bool { calls++; return false }},
		{Name: "c", Code: dErrors.CodePolicyViolation, Reason: "c", Holds: func(int) bool { calls++; return false }},
	}

	s.Run("stops at first failure", func() {
		calls = 0
		v := rules.First(0, table)
		s.requireViolation(v, dErrors.CodePolicyViolation, "b")
		s.Equal("b", v.Rule)
		s.Equal(2, calls)
	})

	s.Run("violation unwraps to coded error", func() {
		err := rules.Check(0, table)
		s.True(dErrors.HasCode(err, dErrors.CodePolicyViolation))
		s.Equal("b", dErrors.Message(err))
	})

	s.Run("empty table accepts", func() {
		s.Nil(rules.First(0, []rules.Rule[int]{}))
		s.NoError(rules.Check(0, nil))
	})
}

// =============================================================================
// Client
// =============================================================================

func (s *RulesSuite) TestClientRules() {
	s.Run("valid client passes", func() {
		s.Nil(rules.First(validClient(), s.policy.ClientRules()))
	})

	s.Run("non-positive income is a policy violation", func() {
		for _, income := range []string{"0", "-0.01", "-5000"} {
			c := validClient()
			c.MonthlyIncome = money.MustParse(income)
			s.requireViolation(rules.First(c, s.policy.ClientRules()), dErrors.CodePolicyViolation, rules.ReasonInvalidIncome)
		}
	})

	s.Run("blank tax id is invalid input", func() {
		c := validClient()
		c.TaxID = "   "
		v := rules.First(c, s.policy.ClientRules())
		s.Require().NotNil(v)
		s.Equal(dErrors.CodeInvalidInput, v.Code)
		s.Equal("tax_id_present", v.Rule)
	})

	s.Run("identity fields are checked before income", func() {
		c := validClient()
		c.Email = ""
		c.MonthlyIncome = decimal.Zero
		v := rules.First(c, s.policy.ClientRules())
		s.Require().NotNil(v)
		s.Equal("email_present", v.Rule)
	})

	s.Run("income is checked before gender", func() {
		c := validClient()
		c.Gender = "Unknown"
		c.MonthlyIncome = decimal.Zero
		v := rules.First(c, s.policy.ClientRules())
		s.Require().NotNil(v)
		s.Equal("income_positive", v.Rule)
	})

	s.Run("non-enumerated gender is invalid input", func() {
		c := validClient()
		c.Gender = "Male"
		v := rules.First(c, s.policy.ClientRules())
		s.Require().NotNil(v)
		s.Equal(dErrors.CodeInvalidInput, v.Code)
		s.Equal("gender_enumerated", v.Rule)
	})
}

// =============================================================================
// Product
// =============================================================================

func (s *RulesSuite) TestProductRules() {
	s.Run("product at the floors passes", func() {
		p := validProduct(s.now)
		p.ExitAge = 45
		s.Nil(rules.First(p, s.policy.ProductRules()))
	})

	s.Run("exit age not above entry age is always rejected", func() {
		for entry := 18; entry <= 60; entry += 7 {
			for _, exit := range []int{entry, entry - 1} {
				p := validProduct(s.now)
				p.EntryAge = entry
				p.ExitAge = exit
				v := rules.First(p, s.policy.ProductRules())
				s.Require().NotNil(v, "entry=%d exit=%d", entry, exit)
				s.Equal(dErrors.CodePolicyViolation, v.Code)
			}
		}
	})

	s.Run("each floor has its own reason", func() {
		cases := []struct {
			mutate func(*models.Product)
			rule   string
			reason string
		}{
			{func(p *models.Product) { p.Name = "" }, "name_present", "product name must not be empty."},
			{func(p *models.Product) { p.SusepCode = "" }, "susep_present", "susep code must not be empty."},
			{func(p *models.Product) { p.MinExtraContribution = money.MustParse("99.99") }, "min_extra_floor", "minimum extra contribution below 100.00 floor."},
			{func(p *models.Product) { p.MinInitialContribution = money.MustParse("999.99") }, "min_initial_floor", "minimum initial contribution below 1000.00 floor."},
			{func(p *models.Product) { p.EntryAge = 17 }, "entry_age_floor", "entry age below 18."},
			{func(p *models.Product) { p.ExitAge = 61 }, "exit_age_ceiling", "exit age above 60."},
			{func(p *models.Product) { p.EntryAge, p.ExitAge = 40, 40 }, "exit_after_entry", "exit age must be greater than entry age."},
		}
		for _, tc := range cases {
			p := validProduct(s.now)
			tc.mutate(&p)
			v := rules.First(p, s.policy.ProductRules())
			s.Require().NotNil(v, tc.rule)
			s.Equal(tc.rule, v.Rule)
			s.Equal(tc.reason, v.Reason)
		}
	})
}

// =============================================================================
// Plan
// =============================================================================

func (s *RulesSuite) planFacts() rules.PlanFacts {
	product := validProduct(s.now)
	return rules.PlanFacts{
		Plan: models.Plan{
			ID:            id.PlanID(uuid.New()),
			ClientID:      id.ClientID(uuid.New()),
			ProductID:     product.ID,
			Contribution:  money.MustParse("1500"),
			ContractedAt:  s.now,
			RetirementAge: 60,
		},
		Product: product,
		Now:     s.now,
	}
}

func (s *RulesSuite) TestPlanRules() {
	s.Run("valid plan passes", func() {
		s.Nil(rules.First(s.planFacts(), s.policy.PlanRules()))
	})

	s.Run("expired sale window rejects an otherwise valid plan", func() {
		for _, offset := range []time.Duration{0, -time.Second, -24 * time.Hour} {
			f := s.planFacts()
			f.Product.SaleExpiration = s.now.Add(offset)
			s.requireViolation(rules.First(f, s.policy.PlanRules()), dErrors.CodePolicyViolation, rules.ReasonSaleExpired)
		}
	})

	s.Run("contract date must fall inside the sale window", func() {
		f := s.planFacts()
		f.Plan.ContractedAt = f.Product.SaleExpiration.AddDate(4, 0, 0)
		v := rules.First(f, s.policy.PlanRules())
		s.requireViolation(v, dErrors.CodePolicyViolation, rules.ReasonSaleExpiredAtContract)
		s.Equal("product_on_sale_at_contract", v.Rule)

		f.Plan.ContractedAt = f.Product.SaleExpiration
		s.NotNil(rules.First(f, s.policy.PlanRules()))
	})

	s.Run("plan fields are checked before the product", func() {
		f := s.planFacts()
		f.Plan.Contribution = decimal.Zero
		f.Product.SaleExpiration = s.now.Add(-time.Hour)
		v := rules.First(f, s.policy.PlanRules())
		s.Require().NotNil(v)
		s.Equal("contribution_positive", v.Rule)
	})

	s.Run("referenced product is re-checked against current floors", func() {
		f := s.planFacts()
		f.Product.EntryAge = 16
		v := rules.First(f, s.policy.PlanRules())
		s.Require().NotNil(v)
		s.Equal("product_entry_age_floor", v.Rule)
	})

	s.Run("raising a floor can only reject more plans", func() {
		f := s.planFacts()
		f.Product.MinInitialContribution = money.MustParse("1000")
		s.Nil(rules.First(f, s.policy.PlanRules()))

		stricter := s.policy
		stricter.MinInitialContribution = money.MustParse("2000")
		v := rules.First(f, stricter.PlanRules())
		s.Require().NotNil(v)
		s.Equal("product_min_initial_floor", v.Rule)
	})
}

// =============================================================================
// Extra Contribution
// =============================================================================

func (s *RulesSuite) TestContributionRules() {
	c := models.ExtraContribution{Value: money.MustParse("20.00")}
	s.requireViolation(rules.First(c, s.policy.ContributionRules()), dErrors.CodePolicyViolation, "value below 100.00 floor.")

	c.Value = money.MustParse("100.00")
	s.Nil(rules.First(c, s.policy.ContributionRules()))
}

// =============================================================================
// Rescue
// =============================================================================

func (s *RulesSuite) rescueFacts(value, balance string) rules.RescueFacts {
	product := validProduct(s.now)
	plan := s.planFacts().Plan
	plan.ProductID = product.ID
	plan.Contribution = money.MustParse(balance)
	return rules.RescueFacts{
		Rescue:  models.Rescue{ID: id.RescueID(uuid.New()), PlanID: plan.ID, Value: money.MustParse(value)},
		Plan:    plan,
		Product: product,
	}
}

func (s *RulesSuite) TestRescueRules() {
	s.Run("rescue above balance is rejected", func() {
		f := s.rescueFacts("2000.00", "1500.00")
		s.requireViolation(rules.First(f, s.policy.RescueCreateRules()), dErrors.CodePolicyViolation, rules.ReasonInsufficientBalance)
	})

	s.Run("rescue equal to balance passes", func() {
		s.Nil(rules.First(s.rescueFacts("1500.00", "1500.00"), s.policy.RescueCreateRules()))
	})

	s.Run("short initial lockout rejects even with sufficient balance", func() {
		f := s.rescueFacts("500.00", "1500.00")
		f.Product.InitialRescueLockout = 30
		s.requireViolation(rules.First(f, s.policy.RescueCreateRules()), dErrors.CodePolicyViolation, rules.ReasonInitialLockout)
	})

	s.Run("inter-rescue lockout applies only on update", func() {
		f := s.rescueFacts("500.00", "1500.00")
		f.Product.InterRescueLockout = 10
		s.Nil(rules.First(f, s.policy.RescueCreateRules()))
		s.requireViolation(rules.First(f, s.policy.RescueUpdateRules()), dErrors.CodePolicyViolation, rules.ReasonInterRescueLockout)
	})

	s.Run("non-positive value is rejected first", func() {
		f := s.rescueFacts("0", "1500.00")
		f.Product.InitialRescueLockout = 0
		v := rules.First(f, s.policy.RescueUpdateRules())
		s.Require().NotNil(v)
		s.Equal("value_positive", v.Rule)

		v = rules.First(f, s.policy.RescueCreateRules())
		s.Require().NotNil(v)
		s.Equal("value_positive", v.Rule)
	})
}
