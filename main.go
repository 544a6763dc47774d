package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/FACorreiaa/go-family-activity-search/app/logger"
	"github.com/FACorreiaa/go-family-activity-search/app/tracer"
	"github.com/FACorreiaa/go-family-activity-search/config"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/festivals"
	generativeAI "github.com/FACorreiaa/go-family-activity-search/internal/api/generative_ai"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/geocoding"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/history"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/holidays"
	knowledgeGraph "github.com/FACorreiaa/go-family-activity-search/internal/api/knowledge_graph"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/recommendation"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/run"
	"github.com/FACorreiaa/go-family-activity-search/internal/api/weather"
	api "github.com/FACorreiaa/go-family-activity-search/internal/router"
)

func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger)

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	metricsHandler, err := tracer.InitTracingAndMetrics()
	if err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}
	tracer.InitializeMetrics()

	// --- Dependency Injection ---
	geocoder := geocoding.NewServiceImpl(cfg.Providers.Geocoding.BaseURL, cfg.Providers.Geocoding.Timeout, logger)
	weatherSvc := weather.NewServiceImpl(cfg.Providers.Weather.BaseURL, cfg.Providers.Weather.Timeout, logger)
	knowledgeSvc := knowledgeGraph.NewServiceImpl(cfg.Providers.KnowledgeGraph.Endpoint, cfg.Providers.KnowledgeGraph.Timeout, logger)

	var discoverer holidays.EventDiscoverer
	aiClient, err := generativeAI.NewAIClient(ctx)
	if err != nil {
		logger.Warn("AI client unavailable, holiday discovery tier disabled", slog.Any("error", err))
	} else {
		discoverer = holidays.NewAIDiscoverer(aiClient, logger)
	}

	holidaySvc := holidays.NewServiceImpl(
		holidays.NewCalendarClient(cfg.Providers.HolidayCalendar.BaseURL, cfg.Providers.HolidayCalendar.Timeout, logger),
		knowledgeSvc,
		holidays.NewEnhancedClient(cfg.Providers.EnhancedHolidays.Endpoint, cfg.Providers.EnhancedHolidays.Timeout, logger),
		discoverer,
		logger,
	)
	festivalSvc := festivals.NewServiceImpl(knowledgeSvc, cfg.Search.FestivalLimit, logger)
	historySvc := history.NewServiceImpl(cfg.Providers.History.BaseURL, cfg.Providers.History.Timeout, logger)

	durations := run.NewDurationHistory()
	invoker := recommendation.NewInvokerImpl(
		cfg.Recommendation.Endpoint,
		cfg.Recommendation.Timeout,
		cfg.Recommendation.MaxRetries,
		cfg.Recommendation.RetryDelay,
		durations,
		logger,
	)
	validator := recommendation.NewValidatorImpl(logger)

	controller := run.NewController(geocoder, weatherSvc, holidaySvc, festivalSvc, invoker, validator, historySvc, durations,
		run.Options{
			FestivalRadiusKm:    cfg.Search.FestivalRadiusKm,
			SuccessDisplayDelay: cfg.Search.SuccessDisplayDelay,
			ErrorDisplayDelay:   cfg.Search.ErrorDisplayDelay,
		}, logger)
	runHandler := run.NewHandler(controller, logger)

	// --- Router Setup ---
	mainRouter := api.SetupRouter(&api.Config{
		RunHandler:     runHandler,
		MetricsHandler: metricsHandler,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// --- Start Server Goroutine ---
	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	// --- Wait for Shutdown Signal ---
	<-ctx.Done()

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
