package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Results expire so the queue never turns into a second journal.
const resultTTL = 500 * time.Second

const popTimeout = 5 * time.Second

// Handler runs one task for one entity id.
type Handler func(entityID string) (any, error)

// Worker drains the queue and routes tasks to registered handlers.
type Worker struct {
	queue    *Queue
	handlers map[string]Handler
}

func NewWorker(q *Queue) *Worker {
	return &Worker{
		queue:    q,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a task name.
func (w *Worker) Register(name string, handler Handler) {
	w.handlers[name] = handler
	log.Printf("[worker] Registered handler for task: %s", name)
}

// Run blocks on the queue until the context is cancelled. Task
// failures are stored as results, never returned; only losing Redis
// stops the loop.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("[worker] Draining queue %s", w.queue.key)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		values, err := w.queue.client.BLPop(ctx, popTimeout, w.queue.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if len(values) < 2 {
			continue
		}

		var task Task
		if err := json.Unmarshal([]byte(values[1]), &task); err != nil {
			log.Printf("[worker] Dropping unparseable task: %v", err)
			continue
		}

		w.queue.client.SRem(ctx, w.queue.pendingKey(), task.dedupeKey())
		w.handle(ctx, task)
	}
}

func (w *Worker) handle(ctx context.Context, task Task) {
	handler, ok := w.handlers[task.Name]
	if !ok {
		log.Printf("[worker] No handler for task: %s", task.Name)
		w.queue.storeResult(ctx, task.ID, map[string]string{"error": "unknown task: " + task.Name}, resultTTL)
		return
	}

	log.Printf("[worker] Running task=%s entity_id=%s id=%s", task.Name, task.EntityID, task.ID)
	result, err := handler(task.EntityID)
	if err != nil {
		log.Printf("[worker] Task %s failed for entity_id=%s: %v", task.Name, task.EntityID, err)
		w.queue.storeResult(ctx, task.ID, map[string]string{"error": err.Error()}, resultTTL)
		return
	}

	w.queue.storeResult(ctx, task.ID, result, resultTTL)
}
