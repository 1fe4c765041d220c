package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"docsync/internal/cache"
	"docsync/internal/config"
	"docsync/internal/database"
	"docsync/internal/database/migration"
	handlers "docsync/internal/http/handler"
	"docsync/internal/http/middleware"
	"docsync/internal/logger"
	tracing "docsync/internal/otel"
	"docsync/internal/repository/postgres"
	"docsync/internal/service"
	"docsync/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Document Sync API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := cfg.LogLocation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.IsDevelopment(), loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid_config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("db_connect_failed", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db.DB, log, cfg.Database.Host); err != nil {
		log.Fatal("db_migration_failed", zap.Error(err))
	}

	objStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage_init_failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	urlCache := cache.Noop()
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			// signed URLs still work without the cache
			log.Warn("url_cache_disabled", zap.String("redis_addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer client.Close()
			urlCache = cache.NewRedis(client, log)
		}
	}

	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(storage.NewBackend(objStore), docRepo, service.Options{
		Logger:        log,
		URLCache:      urlCache,
		URLTTL:        cfg.Storage.URLTTL,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(cfg.IsDevelopment()),
		BodyLimit:    cfg.Storage.BodyLimit(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", handlers.Metrics(reg))
	app.Get("/swagger/*", handlers.Swagger(cfg.Storage.PublicBaseURL))
	if cfg.Storage.Driver == config.DriverLocal {
		app.Static(storage.UploadsPrefix, cfg.Storage.LocalDir)
	}
	handlers.RegisterRoutes(app, db, docSvc)

	go func() {
		<-ctx.Done()
		log.Info("server_shutdown", zap.String("status", "starting"))
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("server_shutdown_failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_start",
		zap.String("addr", addr),
		zap.String("app_env", cfg.AppEnv),
		zap.String("storage_driver", cfg.Storage.Driver),
	)
	if err := app.Listen(addr); err != nil {
		log.Error("server_listen_failed", zap.Error(err))
	}

	tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(tctx); err != nil {
		log.Error("tracing_shutdown_failed", zap.Error(err))
	}
}
