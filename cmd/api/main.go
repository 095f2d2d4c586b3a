package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mdsetiawan/facility-directory/internal/adapters/cache"
	"github.com/mdsetiawan/facility-directory/internal/adapters/database"
	"github.com/mdsetiawan/facility-directory/internal/adapters/events"
	"github.com/mdsetiawan/facility-directory/internal/adapters/mail"
	"github.com/mdsetiawan/facility-directory/internal/adapters/search"
	"github.com/mdsetiawan/facility-directory/internal/adapters/storage"
	"github.com/mdsetiawan/facility-directory/internal/api/handlers"
	"github.com/mdsetiawan/facility-directory/internal/api/routes"
	"github.com/mdsetiawan/facility-directory/internal/application/services"
	"github.com/mdsetiawan/facility-directory/internal/domain/providers"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/groq"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/postgres"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/redis"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/typesense"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/observability"
	"github.com/mdsetiawan/facility-directory/pkg/config"
)

func main() {

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Sessions, OTPs and caches live in Redis, so it is not optional
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis client initialized successfully")

	cacheProvider := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)

	// Initialize Typesense client when enabled
	var searchRepo repositories.FacilitySearchRepository
	if cfg.Typesense.Enabled {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		} else {
			adapter := search.NewTypesenseAdapter(typesenseClient)
			if err := typesenseClient.InitSchema(ctx); err != nil {
				log.Printf("Warning: Failed to init Typesense schema: %v", err)
			}
			searchRepo = adapter
			log.Println("Typesense client initialized successfully")
		}
	}

	// Asset stores, one directory per asset family
	iconStore := mustStore(cfg, "icons")
	markerStore := mustStore(cfg, "markers")
	facilityPhotoStore := mustStore(cfg, "facilities")
	userPhotoStore := mustStore(cfg, "users")

	// Initialize adapters

	typeAdapter := database.NewCachedFacilityTypeAdapter(
		database.NewFacilityTypeAdapter(pgClient),
		cacheProvider,
	)
	facilityAdapter := database.NewFacilityAdapter(pgClient)
	reviewAdapter := database.NewReviewAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)

	var descriptionProvider providers.DescriptionProvider
	if cfg.Groq.APIKey == "" {
		log.Println("Warning: GROQ_API_KEY is not set; description generation disabled")
	} else {
		groqClient, err := groq.NewClient(&cfg.Groq)
		if err != nil {
			log.Printf("Warning: Failed to initialize Groq client: %v", err)
		} else {
			descriptionProvider = groqClient
		}
	}

	mailer := mail.NewSMTPMailer(&cfg.SMTP)

	// Initialize services

	typeService := services.NewFacilityTypeService(typeAdapter, facilityAdapter, iconStore, markerStore)
	facilityService := services.NewFacilityService(
		facilityAdapter,
		typeAdapter,
		searchRepo,
		facilityPhotoStore,
		eventBus,
		descriptionProvider,
	)
	resolver := services.NewKindResolver(typeAdapter, facilityAdapter)
	reviewService := services.NewReviewService(reviewAdapter, facilityAdapter, resolver)
	userService := services.NewUserService(userAdapter, userPhotoStore)
	authService := services.NewAuthService(userAdapter, cacheProvider, mailer, services.AuthConfig{
		SessionTTL: time.Duration(cfg.Auth.SessionTTLMinutes) * time.Minute,
		OTPTTL:     time.Duration(cfg.Auth.OTPTTLMinutes) * time.Minute,
		ResetTTL:   time.Duration(cfg.Auth.ResetTTLMinutes) * time.Minute,
	})

	// Initialize handlers

	typeHandler := handlers.NewFacilityTypeHandler(typeService)
	facilityHandler := handlers.NewFacilityHandler(facilityService, resolver)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(authService, userService)
	sseHandler := handlers.NewSSEHandler(eventBus)

	// Set up router

	router := routes.NewRouter(
		typeHandler,
		facilityHandler,
		reviewHandler,
		userHandler,
		authHandler,
		sseHandler,
		authService,
		cfg.Uploads.Root,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if err := eventBus.Close(); err != nil {
		log.Printf("Error closing event bus: %v", err)
	}

	log.Println("Server stopped")
}

func mustStore(cfg *config.Config, family string) *storage.LocalStore {
	store, err := storage.NewLocalStore(
		filepath.Join(cfg.Uploads.Root, family),
		cfg.Uploads.PublicBaseURL+"/"+family,
	)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", family, err)
	}
	return store
}
