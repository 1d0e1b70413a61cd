package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/localnerve/carscan-store/internal/config"
	"github.com/localnerve/carscan-store/internal/database"
	"github.com/localnerve/carscan-store/internal/handlers"
	"github.com/localnerve/carscan-store/internal/images"
	"github.com/localnerve/carscan-store/internal/logging"
	"github.com/localnerve/carscan-store/internal/metrics"
	"github.com/localnerve/carscan-store/internal/middleware"
	"github.com/localnerve/carscan-store/internal/services"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to a .env file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(envFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("Server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()
	storeLog := logging.Component(log, "store")
	recorder := metrics.NewStoreMetrics(prometheus.DefaultRegisterer)

	// Open the on-device store
	localDB, err := database.OpenLocal(cfg.LocalDBPath, logging.Component(log, "sqlite"))
	if err != nil {
		return err
	}
	defer database.Close(localDB)

	local := store.NewLocalStore(localDB, store.WithLogger(storeLog))
	if err := local.Initialize(ctx); err != nil {
		return err
	}

	// Connect the remote store when configured
	var remoteDB *gorm.DB
	var remote *store.RemoteStore
	if cfg.RemoteEnabled() {
		remoteDB, err = database.Connect(cfg, logging.Component(log, "remote-db"))
		if err != nil {
			return err
		}
		defer database.Close(remoteDB)

		if err := database.AutoMigrate(remoteDB); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		remote = store.NewRemoteStore(remoteDB, store.WithLogger(storeLog))
	} else {
		log.Info().Msg("DB_TYPE not set, remote store disabled")
	}

	provider := store.NewProvider(local, remote, storeLog, recorder)

	var validator services.SessionValidator
	if cfg.AuthEnabled() {
		redirectURL := fmt.Sprintf("http://localhost:%s", cfg.Port)
		validator = services.NewAuthorizerValidator(cfg, redirectURL, logging.Component(log, "authorizer"))
		log.Info().Msg("Authorizer will be initialized on first authenticated request")
	}

	scans := services.NewScanService(
		images.NewOS(filepath.Join(cfg.ImagesDir, "local")),
		images.NewOS(filepath.Join(cfg.ImagesDir, "users")),
		logging.Component(log, "scans"),
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New(compress.Config{
		// event streams must reach the client unbuffered
		Next: func(c *fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/watch")
		},
	}))

	// Prometheus metrics
	prom := fiberprometheus.New("carscan")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	health := &handlers.HealthHandler{Cfg: cfg, Local: localDB, Remote: remoteDB, Log: logging.Component(log, "health")}
	app.Get("/health", health.Health)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	api.Use(middleware.Session(provider, validator, logging.Component(log, "session")))

	handlers.Routes{
		Scans:       &handlers.ScanHandler{Scans: scans, PageSize: cfg.PageSize},
		Collections: &handlers.CollectionHandler{Provider: provider, Log: logging.Component(log, "collections")},
		Stats:       &handlers.StatsHandler{},
	}.Register(api)

	// 404 handler
	app.Use(handlers.NotFound)

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		log.Info().Msg("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(shutdownTimeout)
	}()

	log.Info().Str("port", cfg.Port).Msg("Starting server")
	return app.Listen(":" + cfg.Port)
}
