package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/stoktakip/catalog-view/docs"
	"github.com/stoktakip/catalog-view/internal/catalog"
	"github.com/stoktakip/catalog-view/internal/catalog/client"
	httpDelivery "github.com/stoktakip/catalog-view/internal/catalog/delivery/http"
	"github.com/stoktakip/catalog-view/internal/catalog/session"
	"github.com/stoktakip/catalog-view/kafka"
	"github.com/stoktakip/catalog-view/pkg/logger"
	"github.com/stoktakip/catalog-view/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "catalog-view-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting catalog view service")

	// Initialize tracing
	tracerProvider, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tracerProvider); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
		}
	}()

	// Redis backs the export rate limiter and facet response cache. The
	// service runs without it.
	redisClient := connectRedis()

	// Kafka carries write audit events. A nil publisher publishes nothing.
	publisher := connectKafka()
	defer publisher.Close()

	// Inventory service client: the single data owner this view reads from
	inventoryURL := getEnv("INVENTORY_SERVICE_URL", "http://localhost:8082")
	inventoryClient := client.NewInventoryClient(inventoryURL)

	// Initialize handler with Wire DI
	handler, err := catalog.InitializeCatalogHandler(inventoryClient, session.DefaultConfig(), publisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8086")
	server := buildHTTPServer(handler, redisClient, httpPort)

	go func() {
		logger.Logger.Info().
			Str("port", httpPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/index.html").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server shutdown failed")
	}

	if redisClient != nil {
		redisClient.Close()
	}
}

func buildHTTPServer(handler *httpDelivery.CatalogHandler, redisClient *redis.Client, port string) *http.Server {
	// Setup router
	router := mux.NewRouter()

	// Register routes
	handler.RegisterRoutes(router, redisClient)

	// Health check endpoint
	handler.RegisterHealthCheck(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:    ":" + port,
		Handler: c.Handler(router),
	}
}

func connectRedis() *redis.Client {
	addr := getEnv("REDIS_ADDR", "localhost:6379")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("addr", addr).
			Msg("Redis unavailable, rate limiting and caching disabled")
		return nil
	}

	logger.Logger.Info().Str("addr", addr).Msg("Redis connected")
	return client
}

func connectKafka() *kafka.Publisher {
	brokersEnv := getEnv("KAFKA_BROKERS", "")
	if brokersEnv == "" {
		logger.Logger.Info().Msg("No Kafka brokers configured, audit events disabled")
		return nil
	}

	publisher, err := kafka.NewPublisher(strings.Split(brokersEnv, ","))
	if err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("brokers", brokersEnv).
			Msg("Kafka unavailable, audit events disabled")
		return nil
	}
	return publisher
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
