package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/nuxeo/mkto-pd-sync-app/internal/broker"
	"github.com/nuxeo/mkto-pd-sync-app/internal/config"
	"github.com/nuxeo/mkto-pd-sync-app/internal/database"
	"github.com/nuxeo/mkto-pd-sync-app/internal/marketo"
	"github.com/nuxeo/mkto-pd-sync-app/internal/pipedrive"
	"github.com/nuxeo/mkto-pd-sync-app/internal/queue"
	"github.com/nuxeo/mkto-pd-sync-app/internal/repository"
	"github.com/nuxeo/mkto-pd-sync-app/internal/services"
	"github.com/nuxeo/mkto-pd-sync-app/internal/sync"
)

// The worker drains the task queue the webhook intake fills. It runs
// apart from the HTTP server so a slow CRM never backs up webhook
// delivery.
func main() {
	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	journalRepo := repository.NewJournalRepository(db)

	marketoClient := marketo.NewClient(
		cfg.Marketo.IdentityEndpoint,
		cfg.Marketo.APIEndpoint,
		cfg.Marketo.ClientID,
		cfg.Marketo.ClientSecret,
	)
	pipedriveClient := pipedrive.NewClient(cfg.Pipedrive.BaseURL, cfg.Pipedrive.APIToken)

	syncService, err := sync.NewService(marketoClient, pipedriveClient, sync.Options{
		PipelineName: cfg.PipelineName,
		Journal:      journalRepo,
	})
	if err != nil {
		log.Fatalf("Failed to create sync service: %v", err)
	}
	runner := services.NewTaskRunner(syncService)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()
	taskQueue := queue.New(redisClient, cfg.Redis.QueueKey)

	// A distinct client id keeps the broker from kicking the HTTP
	// binary's session.
	brokerCfg := cfg.Broker
	brokerCfg.ClientID += "-worker"
	publisher, err := broker.NewPublisher(&brokerCfg)
	if err != nil {
		log.Fatalf("Failed to create broker publisher: %v", err)
	}
	defer publisher.Close()

	worker := queue.NewWorker(taskQueue)
	for _, task := range runner.Tasks() {
		task := task
		worker.Register(task, func(entityID string) (any, error) {
			result, err := runner.Run(task, entityID)
			if err != nil {
				return nil, err
			}
			if err := publisher.PublishResult(task, entityID, result); err != nil {
				log.Printf("[worker] Failed to publish result for task=%s: %v", task, err)
			}
			return result, nil
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Worker stopped: %v", err)
	}
	log.Println("[worker] Stopped")
}
