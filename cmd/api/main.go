package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/okpanku/ministry-api/internal/adapters/http"
	natsadapter "github.com/okpanku/ministry-api/internal/adapters/nats"
	"github.com/okpanku/ministry-api/internal/adapters/postgres"
	"github.com/okpanku/ministry-api/internal/adapters/valkey"
	"github.com/okpanku/ministry-api/internal/core/domain"
	"github.com/okpanku/ministry-api/internal/core/ports"
	"github.com/okpanku/ministry-api/internal/core/usecases"
	"github.com/okpanku/ministry-api/internal/pkg/config"
	"github.com/okpanku/ministry-api/internal/pkg/logging"
	"github.com/okpanku/ministry-api/internal/pkg/metrics"
	"github.com/okpanku/ministry-api/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("ministry-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.RequireAuth(); err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("ministry-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Shared calibration and label settings
	nudge := domain.Nudge{X: cfg.GIS.NudgeX, Y: cfg.GIS.NudgeY}
	labels := domain.StatusLabels{
		Pending:    cfg.Review.PendingLabel,
		Unreviewed: cfg.Review.UnreviewedLabel,
	}

	// Repos
	plotRepo := postgres.NewPlotRepo(db)
	appRepo := postgres.NewApplicationRepo(db)

	// nil interface values must stay nil, not wrap nil pointers
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var events ports.EventPublisher
	if publisher != nil {
		events = publisher
	}

	// Use cases
	plotSvc := usecases.NewPlotService(plotRepo, cacheSvc, nudge, labels, cfg.Plots.Exclude)
	appSvc := usecases.NewApplicationService(appRepo, events, cacheSvc, nudge, labels)
	authSvc := usecases.NewAuthService(cfg.Auth.Username, cfg.Auth.Password)

	deps := &http.Dependencies{
		Plots:        plotSvc,
		Applications: appSvc,
		Auth:         authSvc,
		NATS:         natsConn,
		DB:           db,
		Cache:        cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024, // footprints can be huge
		AppName:      "Ministry API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Periodic pool gauge refresh
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete; the pool is
	// released by the deferred Close only after the drain finishes.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
