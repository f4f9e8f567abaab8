package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"perfeval/internal/db"
	"perfeval/internal/domain/access"
	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/domain/hierarchy"
	"perfeval/internal/domain/matrix"
	"perfeval/internal/platform/cache"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/metrics"
	evaluationhandler "perfeval/internal/transport/http/handlers/evaluation"
	matrixhandler "perfeval/internal/transport/http/handlers/matrix"
	reportshandler "perfeval/internal/transport/http/handlers/reports"
	"perfeval/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()

	resolver := hierarchy.NewResolver(hierarchy.NewStore(pool), cache.NewMemory(), cfg.RoleCacheTTL, cfg.HierarchyMaxDepth)
	matrices := matrix.NewService(matrix.NewStore(pool))
	evaluations := evaluation.NewService(evaluation.NewStore(pool), matrices)
	engine := access.NewEngine(resolver, evaluations, matrices)
	auditSvc := audit.New(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Identity(cfg.IdentitySecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	idem := middleware.NewIdempotencyStore(pool)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateLimitWindow))
		matrixhandler.NewHandler(matrices, resolver, engine, auditSvc, collector).RegisterRoutes(r)
		evaluationhandler.NewHandler(evaluations, resolver, engine, auditSvc, collector, idem).RegisterRoutes(r)
		reportshandler.NewHandler(evaluations, matrices, engine, cfg.ExportDir).RegisterRoutes(r)
	})

	slog.Info("server listening", "addr", cfg.Addr, "environment", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
