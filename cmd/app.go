package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"surveyor/app/handler"
	"surveyor/internal/dispatcher"
	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/jobs"
	"surveyor/internal/service"
	"surveyor/pkg/config"
	"surveyor/pkg/logger"
	mysqlstore "surveyor/pkg/store/mysql"
	redisstore "surveyor/pkg/store/redis"

	"github.com/gin-gonic/gin"
)

// Application manages the lifecycle of the entire application
type Application struct {
	// Infrastructure components
	config      *config.Config
	mysqlRepo   *mysqlstore.Repository
	redisClient *redisstore.RedisClient

	// Registries
	instruments *instrument.Registry
	encoders    *encoding.Registry

	// Service layer
	catalogService    *service.CatalogService
	profileService    *service.ProfileService
	expanderService   *service.ExpanderService
	experimentService *service.ExperimentService
	queueService      *service.QueueService
	analysisService   *service.AnalysisService

	// Handler layer
	experimentHandler *handler.ExperimentHandler
	profileHandler    *handler.ProfileHandler
	catalogHandler    *handler.CatalogHandler
	analysisHandler   *handler.AnalysisHandler

	// Work execution
	dispatcher *dispatcher.Dispatcher

	// HTTP server
	httpServer *http.Server
	ginEngine  *gin.Engine

	// Background tasks
	jobsManager *jobs.Manager

	// Context management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Background task cleanup functions
	cleanupFuncs []func()
}

// NewApplication creates a new Application instance
func NewApplication(cfg *config.Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		config:       cfg,
		ctx:          ctx,
		cancel:       cancel,
		cleanupFuncs: make([]func(), 0),
	}
}

// Initialize initializes all application components
func (app *Application) Initialize() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"Logging", app.initLogger},
		{"Database", app.initDatabase},
		{"Redis", app.initRedis},
		{"Catalog", app.initCatalog},
		{"Service Layer", app.initServices},
		{"Dispatcher", app.initDispatcher},
		{"Background Tasks", app.initJobs},
		{"Handler Layer", app.initHandlers},
		{"HTTP Server", app.initHTTPServer},
	}

	for _, step := range steps {
		logger.InfoCtx(app.ctx, "Initializing %s...", step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		logger.InfoCtx(app.ctx, "%s initialized successfully", step.name)
	}

	logger.InfoCtx(app.ctx, "Application initialization completed")
	return nil
}

// Start starts all application components
func (app *Application) Start() error {
	logger.InfoCtx(app.ctx, "Starting application components...")

	// 1. Start background tasks
	if app.jobsManager != nil {
		app.jobsManager.Start()
	}

	// 2. Start dispatcher
	if app.dispatcher != nil {
		app.dispatcher.Start(app.ctx)
	}

	// 3. Start HTTP server
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		logger.InfoCtx(app.ctx, "HTTP server listening on: %s", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCtx(app.ctx, "HTTP server error: %v", err)
			app.cancel()
		}
	}()

	logger.InfoCtx(app.ctx, "All components started successfully")
	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown(timeout time.Duration) error {
	logger.InfoCtx(app.ctx, "Starting graceful shutdown (timeout: %v)...", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// 1. Stop HTTP server (stop accepting new requests)
	logger.InfoCtx(app.ctx, "Shutting down HTTP server...")
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(app.ctx, "HTTP server shutdown error: %v", err)
	}

	// 2. Stop claiming and drain in-flight units
	var dispatchErr error
	if app.dispatcher != nil {
		logger.InfoCtx(app.ctx, "Stopping dispatcher...")
		dispatchErr = app.dispatcher.Stop(shutdownCtx)
	}

	// 3. Cancel background tasks
	logger.InfoCtx(app.ctx, "Canceling background tasks...")
	app.cancel()
	if app.jobsManager != nil {
		app.jobsManager.Stop()
	}

	// 4. Wait for the HTTP goroutine
	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoCtx(app.ctx, "All background tasks completed")
	case <-shutdownCtx.Done():
		logger.WarnCtx(app.ctx, "Shutdown timeout, some tasks may not have completed")
	}

	// 5. Execute all cleanup functions (in reverse registration order)
	app.runCleanup()

	logger.InfoCtx(app.ctx, "Graceful shutdown completed")
	return dispatchErr
}

// registerCleanup registers cleanup function
func (app *Application) registerCleanup(cleanup func()) {
	app.cleanupFuncs = append(app.cleanupFuncs, cleanup)
}

func (app *Application) runCleanup() {
	for i := len(app.cleanupFuncs) - 1; i >= 0; i-- {
		app.cleanupFuncs[i]()
	}
	app.cleanupFuncs = nil
}
