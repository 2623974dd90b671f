package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/nuxeo/mkto-pd-sync-app/internal/config"
	"github.com/nuxeo/mkto-pd-sync-app/internal/controllers"
	"github.com/nuxeo/mkto-pd-sync-app/internal/database"
	"github.com/nuxeo/mkto-pd-sync-app/internal/marketo"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
	"github.com/nuxeo/mkto-pd-sync-app/internal/queue"
	"github.com/nuxeo/mkto-pd-sync-app/internal/repository"
	"github.com/nuxeo/mkto-pd-sync-app/internal/services"
	"github.com/nuxeo/mkto-pd-sync-app/internal/sync"

	mqttbroker "github.com/nuxeo/mkto-pd-sync-app/internal/broker"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Create repositories
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	journalRepo := repository.NewJournalRepository(db)

	// Create CRM clients
	marketoClient := marketo.NewClient(
		cfg.Marketo.IdentityEndpoint,
		cfg.Marketo.APIEndpoint,
		cfg.Marketo.ClientID,
		cfg.Marketo.ClientSecret,
	)
	pipedriveClient := pipedrive.NewClient(cfg.Pipedrive.BaseURL, cfg.Pipedrive.APIToken)

	// Create sync service; mapping tables validate here, before anything
	// is served.
	syncService, err := sync.NewService(marketoClient, pipedriveClient, sync.Options{
		PipelineName: cfg.PipelineName,
		Journal:      journalRepo,
	})
	if err != nil {
		log.Fatalf("Failed to create sync service: %v", err)
	}

	// Create task queue
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()
	taskQueue := queue.New(redisClient, cfg.Redis.QueueKey)

	// Create broker publisher
	publisher, err := mqttbroker.NewPublisher(&cfg.Broker)
	if err != nil {
		log.Fatalf("Failed to create broker publisher: %v", err)
	}
	defer publisher.Close()

	// Create services
	runner := services.NewTaskRunner(syncService)
	authService := services.NewAuthService(apiKeyRepo)
	webhookService := services.NewWebhookService(cfg.WebhookSecret, taskQueue)
	consumerService := services.NewConsumerService(authService, runner)

	// Create broker consumer
	consumer, err := mqttbroker.NewConsumer(&cfg.Broker, publisher)
	if err != nil {
		log.Fatalf("Failed to create broker consumer: %v", err)
	}
	defer consumer.Close()

	// Register handlers and start consumer
	consumerService.RegisterHandlers(consumer)
	if err := consumer.Start(); err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}

	// Create handlers
	syncHandler := controllers.NewSyncHandler(runner, authService)
	webhookHandler := controllers.NewWebhookHandler(webhookService)
	mappingsHandler := controllers.NewMappingsHandler()
	journalHandler := controllers.NewJournalHandler(journalRepo)
	resultsHandler := controllers.NewResultsHandler(taskQueue)

	// Create router
	router := mux.NewRouter()

	// Enable CORS for the mappings/journal UI
	router.Use(corsMiddleware)

	// Unauthenticated surface: webhook intake is HMAC-verified instead.
	router.HandleFunc("/hook", webhookHandler.HandleWebhook).Methods("POST")
	router.HandleFunc("/health", webhookHandler.HandleHealth).Methods("GET")

	// Task routes, behind api_key authentication.
	authed := router.NewRoute().Subrouter()
	authed.Use(controllers.AuthMiddleware(authService))
	syncHandler.Register(authed)
	authed.HandleFunc("/api/mappings", mappingsHandler.HandleListMappings).Methods("GET")
	authed.HandleFunc("/api/journal", journalHandler.HandleListJournal).Methods("GET")
	authed.HandleFunc("/api/results/{id}", resultsHandler.HandleGetResult).Methods("GET")

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("[sync-app] Server running on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[sync-app] Shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[sync-app] Server stopped")
}

// corsMiddleware adds CORS headers for the WebUI
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
