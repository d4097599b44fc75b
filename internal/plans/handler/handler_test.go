package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"prevplan/internal/plans/metrics"
	"prevplan/internal/plans/models"
	"prevplan/internal/plans/service"
	"prevplan/internal/plans/store"
	"prevplan/pkg/testutil"
)

// =============================================================================
// Handler Test Suite
// =============================================================================
// Justification for unit tests: handlers own the wire contract. Field names,
// date and id parsing, length limits, status mapping and the admin guard
// on catalog writes are asserted here through the router against a real
// service over the in-memory store.

const testAdminToken = "secret"

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	logs   *bytes.Buffer
	now    time.Time
}

const testRequestID = "req-handler"

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.logs = &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(s.logs, nil))
	mem := store.NewInMemory()
	svc := service.New(service.Stores{
		Clients:       mem,
		Products:      mem,
		Plans:         mem,
		Contributions: mem,
		Rescues:       mem,
	}, service.WithLogger(logger), service.WithMetrics(metrics.NewWithRegisterer(prometheus.NewRegistry())))

	r := chi.NewRouter()
	New(svc, logger, testAdminToken).Register(r)
	s.router = r
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(s.T(), method, path, body)
	} else {
		req = testutil.NewRequest(s.T(), method, path)
	}
	req = testutil.WithRequestTime(testutil.WithAdminToken(req, testAdminToken), s.now)
	req = testutil.WithRequestID(req, testRequestID)
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) create(path string, body any) string {
	resp := s.do(http.MethodPost, path, body)
	s.Require().Equal(http.StatusCreated, resp.Code, resp.Body.String())
	return testutil.UnmarshalResponse[createdResponse](s.T(), resp).ID
}

func (s *HandlerSuite) seed() (clientID, productID, planID string) {
	clientID = s.create("/clients", map[string]any{
		"cpf":            "12345678901",
		"name":           "Maria Souza",
		"email":          "maria@example.com",
		"date_of_birth":  "1980-06-01",
		"gender":         "female",
		"monthly_income": "5000.00",
	})
	productID = s.create("/products", map[string]any{
		"name":               "Brasilprev Long Term",
		"susep":              "15414900840201817",
		"expiration_of_sale": "2027-01-01",
		"age_of_exit":        45,
	})
	planID = s.create("/plans", map[string]any{
		"client_id":         clientID,
		"product_id":        productID,
		"contribution":      "1500.00",
		"age_of_retirement": 60,
	})
	return clientID, productID, planID
}

// =============================================================================
// Clients
// =============================================================================

func (s *HandlerSuite) TestClientRoutes() {
	clientID, _, _ := s.seed()

	s.Run("get returns canonical gender", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/clients/"+clientID))
		testutil.AssertStatusOK(s.T(), rr)
		client := testutil.UnmarshalResponse[models.Client](s.T(), rr)
		s.Equal(models.GenderFemale, client.Gender)
	})

	s.Run("by email ignores case", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/clients/by-email/MARIA@example.com"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("cpf longer than 11 characters is invalid", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPatch, "/clients/"+clientID, map[string]any{
			"cpf": "123456789012",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("malformed id is invalid", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/clients/not-a-uuid"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("delete with plans conflicts", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/clients/"+clientID))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("portfolio lists plans", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/clients/"+clientID+"/portfolio"))
		testutil.AssertStatusOK(s.T(), rr)
		portfolio := testutil.UnmarshalResponse[models.Portfolio](s.T(), rr)
		s.Len(portfolio.Plans, 1)
		s.Empty(portfolio.Contributions)
	})
}

func (s *HandlerSuite) TestCreateClientRejections() {
	s.Run("missing field is invalid input", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/clients", map[string]any{
			"name": "No Email",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("malformed date is invalid input", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/clients", map[string]any{
			"date_of_birth": "01/06/1980",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("empty body is bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/clients", ""))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

// =============================================================================
// Products
// =============================================================================

func (s *HandlerSuite) TestProductWritesRequireAdminToken() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/products", map[string]any{
		"name": "Open", "susep": "1", "expiration_of_sale": "2027-01-01",
	}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/products"))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *HandlerSuite) TestProductDefaultsAndPolicy() {
	_, productID, _ := s.seed()

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/products/"+productID))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "lack_initial_of_rescue", float64(60))

	resp := s.do(http.MethodPatch, "/products/"+productID, map[string]any{"entry_age": 16})
	s.Equal(http.StatusUnprocessableEntity, resp.Code)
}

// =============================================================================
// Plans, extra contributions and rescues
// =============================================================================

func (s *HandlerSuite) TestPlanVersioning() {
	_, _, planID := s.seed()

	rr := s.do(http.MethodPatch, "/plans/"+planID, map[string]any{"age_of_retirement": 62, "version": 1})
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "version", float64(2))

	rr = s.do(http.MethodPatch, "/plans/"+planID, map[string]any{"age_of_retirement": 63, "version": 1})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
}

func (s *HandlerSuite) TestPlanReferencesResolveFirst() {
	_, productID, _ := s.seed()
	resp := s.do(http.MethodPost, "/plans", map[string]any{
		"client_id":         "6f1c2a4e-8d7b-4c3a-9e5f-1a2b3c4d5e6f",
		"product_id":        productID,
		"contribution":      "-1",
		"age_of_retirement": 60,
	})
	testutil.AssertStatusAndError(s.T(), resp, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestContributionAndRescueScenarios() {
	clientID, _, planID := s.seed()

	s.Run("extra contribution below floor", func() {
		resp := s.do(http.MethodPost, "/extra-contributions", map[string]any{
			"client_id": clientID, "plan_id": planID, "contribution_value": "20.00",
		})
		testutil.AssertStatusAndError(s.T(), resp, http.StatusUnprocessableEntity, "policy_violation")
	})

	s.Run("rescue above balance", func() {
		rr := s.do(http.MethodPost, "/rescues", map[string]any{"plan_id": planID, "rescue_value": "2000.00"})
		testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("insufficient balance.", body["error_description"])
	})

	s.Run("accepted rescue is listed by plan", func() {
		rescueID := s.create("/rescues", map[string]any{"plan_id": planID, "rescue_value": "500"})
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/rescues/by-plan/"+planID))
		testutil.AssertStatusOK(s.T(), rr)
		rescues := testutil.UnmarshalResponse[[]models.Rescue](s.T(), rr)
		s.Require().Len(*rescues, 1)
		s.Equal(rescueID, (*rescues)[0].ID.String())

		resp := s.do(http.MethodDelete, "/rescues/"+rescueID, nil)
		testutil.AssertStatus(s.T(), resp, http.StatusNoContent)
		resp = s.do(http.MethodDelete, "/rescues/"+rescueID, nil)
		testutil.AssertStatusAndError(s.T(), resp, http.StatusNotFound, "not_found")
	})

	s.Run("by-parent list of unknown plan is empty", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/rescues/by-plan/6f1c2a4e-8d7b-4c3a-9e5f-1a2b3c4d5e6f"))
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`[]`, rr.Body.String())
	})
}

// =============================================================================
// Amounts and contract dates
// =============================================================================

func (s *HandlerSuite) TestSubCentAmountsAreInvalidInput() {
	clientID, _, planID := s.seed()

	rr := s.do(http.MethodPost, "/extra-contributions", map[string]any{
		"client_id":          clientID,
		"plan_id":            planID,
		"contribution_value": "99.995",
	})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")

	rr = s.do(http.MethodPost, "/rescues", map[string]any{
		"plan_id":      planID,
		"rescue_value": "1500.004",
	})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")

	s.Contains(s.logs.String(), `"rule":"rescue_value_cents"`)
	s.Contains(s.logs.String(), `"request_id":"`+testRequestID+`"`)
}

func (s *HandlerSuite) TestPlanContractedAfterSaleWindowIsRejected() {
	clientID, productID, _ := s.seed()

	rr := s.do(http.MethodPost, "/plans", map[string]any{
		"client_id":         clientID,
		"product_id":        productID,
		"contribution":      "1500.00",
		"age_of_retirement": 60,
		"date_of_contract":  "2031-03-01",
	})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "policy_violation")
}
