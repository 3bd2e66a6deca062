package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/agro-weather/internal/alerting"
	httpapi "github.com/i474232898/agro-weather/internal/api/http"
	"github.com/i474232898/agro-weather/internal/auth"
	"github.com/i474232898/agro-weather/internal/config"
	"github.com/i474232898/agro-weather/internal/scheduler"
	"github.com/i474232898/agro-weather/internal/store"
	"github.com/i474232898/agro-weather/internal/weather"
	"github.com/i474232898/agro-weather/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker), in fallback order.
	provs := buildProviders(cfg, httpClient)

	// Forecast cache: Redis when configured, in-memory otherwise.
	var cache weather.Cache = store.NewMemoryCache(cfg.CacheMaxEntries, cfg.CacheTTL)
	if cfg.RedisURL != "" {
		client, err := store.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("ERROR: %v; falling back to in-memory cache", err)
		} else {
			defer client.Close()
			cache = store.NewRedisCache(client, cfg.CacheTTL)
		}
	}

	// Rain alerts always go to the log; Kafka is added when brokers are set.
	alerts := alerting.Multi{alerting.LogPublisher{}}
	if len(cfg.KafkaBrokers) > 0 {
		alerts = append(alerts, alerting.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic))
		log.Printf("INFO: publishing rain alerts to kafka topic %s", cfg.KafkaTopic)
	}
	defer alerts.Close()

	// Accounts: Postgres when configured, in-memory otherwise.
	var accounts store.Accounts = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		accounts = db
	} else {
		log.Println("INFO: DATABASE_URL not set; accounts are kept in memory")
	}

	manager, err := auth.NewManager(auth.Config{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.JWTTTL}, accounts)
	if err != nil {
		log.Fatalf("failed to configure auth: %v", err)
	}

	// Core service orchestrating providers, cache and alerts.
	service := weather.NewService(provs, cache, alerts, weather.Options{
		Calendar:  cfg.Calendar,
		SkipToday: cfg.DigestSkipToday,
	})

	// Scheduler that periodically refreshes the tracked locations.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, cfg.DefaultLang, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "agro-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "agro-weather",
			"providers": len(provs),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cfg.DefaultLang)
	httpapi.RegisterAccountRoutes(app, manager, accounts)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s with %d providers", cfg.Port, len(provs))

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func buildProviders(cfg *config.AppConfig, client *http.Client) []weather.Provider {
	var provs []weather.Provider
	for _, name := range cfg.Providers {
		switch name {
		case "openweather", "openweathermap":
			if cfg.OpenWeatherAPIKey == "" {
				log.Println("INFO: OPENWEATHER_API_KEY not set; skipping openweather")
				continue
			}
			provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey))
		case "weatherapi":
			if cfg.WeatherAPIKey == "" {
				log.Println("INFO: WEATHERAPI_API_KEY not set; skipping weatherapi")
				continue
			}
			provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey))
		case "openmeteo":
			// Open-Meteo needs no key but only serves coordinate requests.
			provs = append(provs, providers.NewOpenMeteoProvider(client))
		default:
			log.Printf("INFO: unknown provider %q ignored", name)
		}
	}
	return provs
}
