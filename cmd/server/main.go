package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certledger/internal/audit"
	importerhandler "certledger/internal/importer/handler"
	jwttoken "certledger/internal/jwt_token"
	"certledger/internal/platform/config"
	"certledger/internal/platform/httpserver"
	"certledger/internal/platform/logger"
	platformmetrics "certledger/internal/platform/metrics"
	"certledger/internal/platform/middleware"
	platformredis "certledger/internal/platform/redis"
	"certledger/internal/registry"
	registryhandler "certledger/internal/registry/handler"
	registrymetrics "certledger/internal/registry/metrics"
	"certledger/internal/registry/models"
	"certledger/internal/registry/roles"
	"certledger/internal/registry/store"
	"certledger/internal/render"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	certStore, storeHealth, err := buildStore(cfg)
	if err != nil {
		log.Error("failed to build certificate store", "error", err)
		os.Exit(1)
	}

	roleManager := roles.New(models.Identity(cfg.Owner))

	auditStore := audit.NewInMemoryStore()
	auditInbox := make(chan audit.Event, 256)
	auditPublisher := audit.NewPublisher(audit.NewQueueStore(auditStore, auditInbox))

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := audit.NewWorker(auditStore, auditInbox).Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	sink := registry.MultiSink{
		registry.LogSink{Logger: log},
		registry.AuditSink{
			Publisher: auditPublisher,
			Caller: func(ctx context.Context) models.Identity {
				return models.Identity(middleware.GetCaller(ctx))
			},
		},
	}

	service, err := registry.New(roleManager, certStore,
		registry.WithSink(sink),
		registry.WithAuditPublisher(auditPublisher),
		registry.WithMetrics(registrymetrics.New()),
		registry.WithLogger(log),
		registry.WithAdminIssuance(cfg.AdminsMayIssue),
	)
	if err != nil {
		log.Error("failed to build registry service", "error", err)
		os.Exit(1)
	}

	renderer, err := render.New()
	if err != nil {
		log.Error("failed to build renderer", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "certledger")
	httpMetrics := platformmetrics.New()

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Latency(httpMetrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if storeHealth != nil {
			if err := storeHealth(r.Context()); err != nil {
				log.Warn("store health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(api chi.Router) {
		api.Use(middleware.ResolveCaller(jwtService, log, cfg.AllowHeaderIdentity))
		registryhandler.New(service, log).Register(api)
		importerhandler.New(service, renderer, log).Register(api)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting certledger", "addr", cfg.Addr, "owner", cfg.Owner, "store", cfg.StoreBackend)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildStore selects the certificate store backend from configuration. The
// returned health func probes the backing service; it is nil for the memory
// backend, which has nothing to probe.
func buildStore(cfg config.Server) (store.Store, func(context.Context) error, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgres(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return pg, db.PingContext, nil
	case "redis":
		client, err := platformredis.New(context.Background(), cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedis(client.Client), client.Health, nil
	default:
		return store.NewMemoryStore(), nil, nil
	}
}
