package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	lthttp "github.com/lettora/lettora/internal/adapter/http"
	ltnats "github.com/lettora/lettora/internal/adapter/nats"
	lotel "github.com/lettora/lettora/internal/adapter/otel"
	"github.com/lettora/lettora/internal/adapter/postgres"
	"github.com/lettora/lettora/internal/adapter/ristretto"
	"github.com/lettora/lettora/internal/config"
	"github.com/lettora/lettora/internal/logger"
	"github.com/lettora/lettora/internal/middleware"
	"github.com/lettora/lettora/internal/port/messagequeue"
	"github.com/lettora/lettora/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}

	log, closer := logger.New(cfg.Logging)
	defer closer.Close()
	slog.SetDefault(log)

	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(cfg, os.Args[2:]); err != nil {
			slog.Error("admin command failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	// --- Telemetry ---
	otelShutdown, err := lotel.Setup(ctx, cfg.Logging.Service, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := lotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// NATS is optional: without it the engine still runs, with local-only
	// cache invalidation.
	var queue messagequeue.Queue
	if cfg.NATS.URL != "" {
		q, err := ltnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = q.Close() }()
		queue = q
	} else {
		slog.Info("nats disabled: no URL configured")
	}

	// --- Services ---
	store := postgres.NewStore(pool)
	sectionSvc := service.NewSectionService(store, cache, queue)
	documentSvc := service.NewDocumentService(store, sectionSvc, queue, metrics)

	if queue != nil {
		cancelInvalidation, err := service.StartInvalidationSubscriber(ctx, queue, sectionSvc)
		if err != nil {
			return fmt.Errorf("invalidation subscriber: %w", err)
		}
		defer cancelInvalidation()
	}

	// --- HTTP ---
	handlers := lthttp.NewHandlers(sectionSvc, documentSvc)

	r := chi.NewRouter()
	r.Use(lthttp.CORS(cfg.Server.CORSOrigin))
	r.Use(lthttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.AgencyID)
	r.Use(lthttp.Logger)
	r.Use(lotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	lthttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
