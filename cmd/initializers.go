package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"surveyor/app/handler"
	"surveyor/app/router"
	"surveyor/internal/dispatcher"
	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/service"
	"surveyor/pkg/config"
	"surveyor/pkg/logger"
	"surveyor/pkg/notification"
	"surveyor/pkg/provider"
	"surveyor/pkg/ratelimit"
	mysqlstore "surveyor/pkg/store/mysql"
	redisstore "surveyor/pkg/store/redis"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.InfoCtx(app.ctx, "Logging system has been closed")
		_ = logger.Sync()
	})
	return nil
}

// initDatabase opens the store and migrates the schema
func (app *Application) initDatabase() error {
	repo, err := openRepository(app.config)
	if err != nil {
		return err
	}

	app.mysqlRepo = repo
	app.registerCleanup(func() {
		repo.Close()
		logger.InfoCtx(app.ctx, "Database connection has been closed")
	})

	return repo.Migrate(app.ctx)
}

// initRedis initializes Redis when enabled; without it locks and rate limits
// stay local to this process
func (app *Application) initRedis() error {
	if !app.config.Redis.Enabled {
		logger.InfoCtx(app.ctx, "Redis disabled, running in single-instance mode")
		return nil
	}

	client, err := redisstore.NewRedisClient(app.ctx, app.config.Redis)
	if err != nil {
		return err
	}

	app.redisClient = client
	app.registerCleanup(func() {
		client.Close()
		logger.InfoCtx(app.ctx, "Redis connection has been closed")
	})

	return nil
}

func (app *Application) redis() *redis.Client {
	if app.redisClient == nil {
		return nil
	}
	return app.redisClient.GetClient()
}

// initCatalog loads the built-in registries and syncs reference tables
func (app *Application) initCatalog() error {
	app.instruments = instrument.NewDefaultRegistry()
	app.encoders = encoding.NewDefaultRegistry()
	app.catalogService = service.NewCatalogService(app.mysqlRepo, app.instruments, app.encoders)
	return app.catalogService.Sync(app.ctx, app.config.Providers)
}

// initServices initializes service layer
func (app *Application) initServices() error {
	app.profileService = service.NewProfileService(app.mysqlRepo)
	app.expanderService = service.NewExpanderService(app.mysqlRepo, app.instruments, app.encoders, providerNames(app.config))
	app.experimentService = service.NewExperimentService(app.mysqlRepo)
	if url := app.config.Notification.FeishuWebhookURL; url != "" {
		app.experimentService.SetNotifier(notification.NewFeishuNotifier(url))
	}
	app.queueService = service.NewQueueService(app.mysqlRepo, app.config.Queue)
	app.analysisService = service.NewAnalysisService(app.mysqlRepo)
	return nil
}

// initDispatcher builds provider clients and limiters and the claim loops
func (app *Application) initDispatcher() error {
	if !app.config.Dispatcher.Enabled {
		logger.InfoCtx(app.ctx, "Dispatcher disabled, this instance only serves the API")
		return nil
	}
	if len(app.config.Providers) == 0 {
		return fmt.Errorf("dispatcher enabled but no providers configured")
	}

	clients, err := provider.NewAll(app.config.Providers)
	if err != nil {
		return err
	}
	limiters := ratelimit.ForProviders(app.config, app.redis())

	d, err := dispatcher.New(app.config.Dispatcher, app.config.Providers, app.queueService,
		app.instruments, app.encoders, clients, limiters)
	if err != nil {
		return err
	}
	app.dispatcher = d
	return nil
}

// initHandlers initializes handler layer
func (app *Application) initHandlers() error {
	app.experimentHandler = handler.NewExperimentHandler(app.expanderService, app.experimentService)
	app.profileHandler = handler.NewProfileHandler(app.profileService)
	app.catalogHandler = handler.NewCatalogHandler(app.catalogService)
	app.analysisHandler = handler.NewAnalysisHandler(app.analysisService)
	return nil
}

func (app *Application) initHTTPServer() error {
	r := router.NewRouter(app.experimentHandler, app.profileHandler, app.catalogHandler, app.analysisHandler, app.config.Server.APIKey)

	gin.SetMode(app.config.Server.Mode)
	app.ginEngine = gin.New()
	r.Setup(app.ginEngine)

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func openRepository(cfg *config.Config) (*mysqlstore.Repository, error) {
	if cfg.Database.Driver == "sqlite" && !strings.HasPrefix(cfg.Database.Path, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return mysqlstore.NewRepository(cfg.Database.Driver, cfg.Database.DSN())
}

func providerNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		names = append(names, p.Name)
	}
	return names
}
