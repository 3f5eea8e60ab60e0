package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/igorsal/commit-reviewer/api/handlers"
	"github.com/igorsal/commit-reviewer/api/middleware"
	"github.com/igorsal/commit-reviewer/internal/config"
	"github.com/igorsal/commit-reviewer/internal/interfaces"
	"github.com/igorsal/commit-reviewer/internal/review"
	"github.com/igorsal/commit-reviewer/internal/services"
	"github.com/igorsal/commit-reviewer/io/dingtalk"
	"github.com/igorsal/commit-reviewer/io/gitlab"
	"github.com/igorsal/commit-reviewer/pkg/logger"
	"github.com/igorsal/commit-reviewer/pkg/metrics"
)

const (
	ShutdownTimeout = 30 * time.Second
	IdleTimeout     = 120 * time.Second
)

// Application holds all dependencies
type Application struct {
	config     *config.Config
	logger     interfaces.Logger
	metrics    interfaces.MetricsCollector
	fetcher    interfaces.DiffFetcher
	engine     interfaces.ReviewEngine
	dispatcher interfaces.NotificationDispatcher
	pipeline   interfaces.ReviewPipeline
	server     *http.Server
}

func main() {
	app, err := initializeApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	app.logger.Info("Starting commit review service",
		"environment", os.Getenv("ENVIRONMENT"),
	)

	if err := app.run(); err != nil {
		app.logger.Fatal("Application failed to run", err)
	}
}

// initializeApplication sets up all dependencies using dependency injection pattern
func initializeApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := logger.NewAdapter(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize metrics collector
	metrics := metrics.NewPrometheusCollector()

	// Initialize clients with dependencies
	gitlabClient := gitlab.NewClient(cfg.GitLab, logger, metrics)
	dingtalkClient := dingtalk.NewClient(cfg.DingTalk, logger, metrics)

	// Initialize pipeline
	validator := services.NewEventValidator(cfg.GitLab.WebhookSecret, logger)
	engine := review.NewHeuristicEngine(logger)
	pipeline := services.NewPipelineService(cfg, validator, gitlabClient, engine, dingtalkClient, logger, metrics)

	// Create application
	app := &Application{
		config:     cfg,
		logger:     logger,
		metrics:    metrics,
		fetcher:    gitlabClient,
		engine:     engine,
		dispatcher: dingtalkClient,
		pipeline:   pipeline,
	}

	// Setup HTTP server
	app.setupServer()

	return app, nil
}

// setupServer configures the HTTP server with all routes and middleware
func (app *Application) setupServer() {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(app.logger, app.metrics)
	infoHandler := handlers.NewInfoHandler(app.logger)
	webhookHandler := handlers.NewWebhookHandler(app.pipeline, app.logger, app.metrics)
	testNotifyHandler := handlers.NewTestNotifyHandler(app.dispatcher, app.logger)

	// Setup router
	router := mux.NewRouter()

	// Apply global middleware in order
	router.Use(middleware.PanicRecoveryMiddleware(app.logger))
	router.Use(middleware.MetricsMiddleware(app.metrics))
	router.Use(middleware.LoggingMiddleware(app.logger))
	router.Use(middleware.ErrorHandlerMiddleware(app.logger))

	// Endpoints
	router.HandleFunc("/health", healthHandler.Handle).Methods("GET")
	router.HandleFunc("/info", infoHandler.Handle).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/webhook/gitlab", webhookHandler.Handle).Methods("POST")
	router.HandleFunc("/test/dingtalk", testNotifyHandler.Handle).Methods("POST")

	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", app.config.Server.Host, app.config.Server.Port),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}
}

// run starts the application and handles graceful shutdown
func (app *Application) run() error {
	// Channel to capture server errors
	serverErrors := make(chan error, 1)

	go func() {
		app.logger.Info("Starting HTTP server",
			"host", app.config.Server.Host,
			"port", app.config.Server.Port,
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Wait for interrupt signal or server error
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)

	case <-ctx.Done():
		app.logger.Info("Shutdown signal received")
		return app.gracefulShutdown()
	}
}

// gracefulShutdown performs graceful shutdown with timeout
func (app *Application) gracefulShutdown() error {
	app.logger.Info("Starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	shutdownComplete := make(chan error, 1)

	go func() {
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			shutdownComplete <- fmt.Errorf("server shutdown failed: %w", err)
			return
		}

		app.logger.Info("All services shutdown successfully")
		shutdownComplete <- nil
	}()

	select {
	case err := <-shutdownComplete:
		if err != nil {
			app.logger.Error("Graceful shutdown failed", err)
			if closeErr := app.server.Close(); closeErr != nil {
				app.logger.Error("Force shutdown also failed", closeErr)
			}
			return err
		}
		app.logger.Info("Graceful shutdown completed successfully")
		return nil

	case <-shutdownCtx.Done():
		app.logger.Error("Shutdown timeout exceeded, forcing close", nil)
		if err := app.server.Close(); err != nil {
			app.logger.Error("Force shutdown failed", err)
		}
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
