package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"prevplan/internal/plans/events"
	"prevplan/internal/plans/handler"
	plansmetrics "prevplan/internal/plans/metrics"
	"prevplan/internal/plans/service"
	"prevplan/internal/plans/store"
	"prevplan/internal/plans/store/cache"
	"prevplan/internal/platform/config"
	"prevplan/internal/platform/httpserver"
	"prevplan/internal/platform/logger"
	platformmetrics "prevplan/internal/platform/metrics"
	"prevplan/internal/platform/postgres"
	"prevplan/internal/platform/redis"
)

const eventQueueCapacity = 1024

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the stores, the event fan-out and the HTTP surface, then blocks
// until a signal or a fatal component error.
func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	planMetrics := plansmetrics.New()
	checks := map[string]healthCheck{}

	stores, planTx, closeStore, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	checks["store"] = stores.ping

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		stores.Products = cache.NewProducts(stores.Products, rdb.Client, cfg.Redis.ProductCacheTTL,
			cache.WithMetrics(planMetrics),
			cache.WithLogger(log),
		)
		checks["redis"] = rdb.Health
		log.Info("product cache enabled", "ttl", cfg.Redis.ProductCacheTTL.String())
	}

	hub := events.NewHub(log)
	sinks := []events.Sink{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafkaClient(cfg.Kafka.Brokers)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafka.Close()
		sinks = append(sinks, events.NewKafkaSink(kafka, cfg.Kafka.Topic))
		log.Info("publishing lifecycle events to kafka", "topic", cfg.Kafka.Topic)
	}
	dispatcher := events.NewDispatcher(eventQueueCapacity, sinks,
		events.WithLogger(log),
		events.WithMetrics(planMetrics),
	)

	svc := service.New(stores.Stores,
		service.WithLogger(log),
		service.WithMetrics(planMetrics),
		service.WithEvents(dispatcher),
		service.WithPlanTx(planTx),
	)

	router := newRouter(routerDeps{
		logger:  log,
		plans:   handler.New(svc, log, cfg.AdminToken),
		events:  hub,
		metrics: platformmetrics.New(),
		checks:  checks,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting prevplan", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// storeSet is the persistence the service runs on plus its liveness probe.
type storeSet struct {
	service.Stores
	ping healthCheck
}

// openStores uses postgres when a database URL is configured and the
// in-memory store otherwise.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (storeSet, service.PlanTx, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database configured, using in-memory store")
		mem := store.NewInMemory()
		return storeSet{Stores: allStores(mem), ping: mem.Ping}, service.NewShardedPlanTx(cfg.TxTimeout), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return storeSet{}, nil, nil, fmt.Errorf("open database: %w", err)
	}
	pg := store.NewPostgres(db)
	closeDB := func() {
		if err := db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			log.Warn("failed to close database", "error", err)
		}
	}
	return storeSet{Stores: allStores(pg), ping: pg.Ping}, newPlanPostgresTx(db, pg, cfg.TxTimeout), closeDB, nil
}

type entityStore interface {
	service.ClientStore
	service.ProductStore
	service.PlanStore
	service.ContributionStore
	service.RescueStore
}

func allStores(s entityStore) service.Stores {
	return service.Stores{
		Clients:       s,
		Products:      s,
		Plans:         s,
		Contributions: s,
		Rescues:       s,
	}
}
