package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jyotish-platform/internal/astro"
	"jyotish-platform/internal/config"
	"jyotish-platform/internal/ephemeris"
	"jyotish-platform/internal/geo"
	"jyotish-platform/internal/handlers"
	"jyotish-platform/internal/repository"
	"jyotish-platform/internal/services"
	"jyotish-platform/pkg/database"
	"jyotish-platform/pkg/logging"
	"jyotish-platform/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("jyotish-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting jyotish platform API server", logging.Fields{
		"version":      "1.0.0",
		"server_host":  cfg.Server.Host,
		"server_port":  cfg.Server.Port,
		"db_host":      cfg.Database.Host,
		"db_name":      cfg.Database.Database,
		"house_system": cfg.Chart.HouseSystem,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("jyotish_platform")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize redis for geo-lookup caching
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "[STARTUP_WARNING] Redis unreachable, geo lookups will not be cached", logging.Fields{
			"redis_addr": cfg.Redis.Addr,
			"error":      err.Error(),
		})
	}

	// Initialize external collaborators
	geocoder := geo.NewCachedGeocoder(
		geo.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, logger, metricsCollector),
		rdb, cfg.Redis.CacheTTL, logger, metricsCollector,
	)
	timezoneResolver := geo.NewCachedTimezoneResolver(
		geo.NewTimezoneClient(cfg.Timezone.BaseURL, cfg.Timezone.Timeout, logger),
		rdb, cfg.Redis.CacheTTL, logger, metricsCollector,
	)
	ephemerisClient := ephemeris.NewClient(cfg.Ephemeris.BaseURL, cfg.Ephemeris.Timeout, logger, metricsCollector)

	// Initialize chart engine
	calculator, err := astro.NewCalculator(
		ephemerisClient,
		astro.HouseSystem(cfg.Chart.HouseSystem),
		cfg.Chart.AyanamsaFallback,
		logger,
		metricsCollector,
	)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to initialize chart calculator", logging.Fields{}, err)
	}

	// Initialize repository and service
	chartRepo := repository.NewChartRepository(db, logger, metricsCollector)
	chartService := services.NewChartService(calculator, geocoder, timezoneResolver, chartRepo, logger, metricsCollector)

	// Initialize handlers
	chartHandler := handlers.NewChartHandler(chartService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()

	chartHandler.RegisterRoutes(router)

	// API documentation
	router.HandleFunc("/api/docs/openapi.json", handlers.OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", handlers.SwaggerUI).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
