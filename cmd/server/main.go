package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "renterverify/internal/jwt_token"
	"renterverify/internal/platform/config"
	"renterverify/internal/platform/httpserver"
	"renterverify/internal/platform/logger"
	"renterverify/internal/platform/metrics"
	"renterverify/internal/platform/ordinal"
	"renterverify/internal/registry/handler"
	registrymetrics "renterverify/internal/registry/metrics"
	"renterverify/internal/registry/models"
	"renterverify/internal/registry/service"
	"renterverify/pkg/platform/httputil"
)

// main wires the registry, its optional backends and the HTTP server, and
// keeps the lifecycle in one errgroup. Business logic lives in internal/registry.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	admin, err := models.ParseIdentity(cfg.Registry.Admin)
	if err != nil {
		return fmt.Errorf("REGISTRY_ADMIN: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps, err := buildBackends(ctx, cfg, admin, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	clock, err := ordinal.NewBlockClock(cfg.Registry.Genesis, cfg.Registry.BlockInterval)
	if err != nil {
		return fmt.Errorf("ordinal source: %w", err)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New(reg)),
		service.WithAuditPublisher(deps.audit),
	}
	if deps.cache != nil {
		opts = append(opts, service.WithCache(deps.cache))
	}
	registry, err := service.New(deps.store, clock, opts...)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	router := chi.NewRouter()
	router.Get("/health", healthHandler(deps))
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	handler.New(registry, log, metrics.New(reg), jwtService).Register(router)
	if cfg.Server.OpsToken != "" {
		handler.NewAuditHandler(deps.audit, cfg.Server.OpsToken, log).Register(router)
	}

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting renterverify", "addr", cfg.Server.Addr, "admin", admin.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func healthHandler(deps *backends) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := deps.Health(ctx)
		for _, result := range checks {
			if result != "ok" {
				status = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, status, checks)
	}
}
