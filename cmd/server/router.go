package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prevplan/internal/plans/handler"
	platformmetrics "prevplan/internal/platform/metrics"
	"prevplan/pkg/platform/httputil"
	"prevplan/pkg/platform/middleware/metadata"
	request "prevplan/pkg/platform/middleware/request"
	"prevplan/pkg/platform/middleware/requesttime"
)

// healthCheck reports whether one dependency is reachable.
type healthCheck func(ctx context.Context) error

type routerDeps struct {
	logger   *slog.Logger
	plans    *handler.Handler
	events   http.Handler
	metrics  *platformmetrics.Metrics
	metricsH http.Handler
	checks   map[string]healthCheck
}

func newRouter(deps routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(deps.logger))
	r.Use(chimw.Recoverer)
	if deps.metrics != nil {
		r.Use(deps.metrics.Middleware)
	}

	metricsHandler := deps.metricsH
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/healthz", healthz(deps.checks))
	if deps.events != nil {
		r.Method(http.MethodGet, "/ws/events", deps.events)
	}
	deps.plans.Register(r)
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthz runs every check with a short deadline. Any failure turns the
// response into 503.
func healthz(checks map[string]healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
