package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"leaveflow/internal/domain/audit"
	"leaveflow/internal/domain/auth"
	"leaveflow/internal/domain/leave"
	"leaveflow/internal/platform/config"
	"leaveflow/internal/platform/db"
	"leaveflow/internal/platform/logging"
	"leaveflow/internal/platform/metrics"
	"leaveflow/internal/platform/querier"
	"leaveflow/internal/transport/http/api"
	audithandler "leaveflow/internal/transport/http/handlers/audit"
	authhandler "leaveflow/internal/transport/http/handlers/auth"
	leavehandler "leaveflow/internal/transport/http/handlers/leave"
	"leaveflow/internal/transport/http/middleware"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config  config.Config
	DB      *db.Pool
	Log     *zap.Logger
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects, migrates, seeds and wires every component.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	directory := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	leaveSvc := leave.NewService(leave.NewStore(pool, querier.NewTxManager(pool)), directory, logger.Named("leave"), collector)

	router := newRouter(cfg, logger, collector, pool,
		leavehandler.NewHandler(leaveSvc, directory, auditSvc, middleware.NewIdempotencyStore(pool)),
		audithandler.NewHandler(auditSvc, directory),
		authhandler.NewHandler(directory),
	)
	return &App{Config: cfg, DB: pool, Log: logger, Metrics: collector, Router: router}, nil
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

func newRouter(cfg config.Config, logger *zap.Logger, collector *metrics.Collector, ready pinger, handlers ...routeRegistrar) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ready.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.MutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
		for _, h := range handlers {
			h.RegisterRoutes(r)
		}
	})
	return router
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, config.Load())
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              app.Config.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		app.Log.Info("leave workflow server listening", zap.String("addr", app.Config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
