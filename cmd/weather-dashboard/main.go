package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/pk-weather-dashboard/internal/api/http"
	"github.com/i474232898/pk-weather-dashboard/internal/config"
	"github.com/i474232898/pk-weather-dashboard/internal/geocode"
	"github.com/i474232898/pk-weather-dashboard/internal/observability"
	"github.com/i474232898/pk-weather-dashboard/internal/scheduler"
	"github.com/i474232898/pk-weather-dashboard/internal/store"
	"github.com/i474232898/pk-weather-dashboard/internal/weather"
	"github.com/i474232898/pk-weather-dashboard/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	metrics := observability.NewMetrics()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provider := providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoBaseURL)

	// Core pipeline: resolver -> normalizer -> aggregator.
	normalizer := weather.NewNormalizer(weather.NewTimeIndexResolver(nil))
	aggregator := weather.NewAggregator(provider, normalizer, metrics, nil)

	// In-memory history of roster batches with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	service := weather.NewService(aggregator, memStore, cfg.Locations, cfg.BatchConcurrency)

	var resolver geocode.Resolver
	if cfg.GeocoderAPIKey != "" {
		resolver = geocode.NewCachedResolver(geocode.NewGoogleResolver(cfg.GeocoderAPIKey))
		log.Println("INFO: city geocoding enabled")
	}

	// Scheduler that periodically refreshes the roster.
	sched := scheduler.New(cfg.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, resolver)

	go func() {
		log.Printf("INFO: listening on :%s with %d roster locations", cfg.Port, len(cfg.Locations))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
