package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
)

// Task is one queued synchronization request.
type Task struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	EntityID   string    `json:"entity_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func (t Task) dedupeKey() string {
	return t.Name + ":" + t.EntityID
}

// Queue is a Redis-backed task queue. Webhook bursts for the same
// entity collapse into one pending task through a companion set, and
// results stay readable for a while under a per-task key.
type Queue struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Queue {
	return &Queue{client: client, key: key}
}

// Enqueue pushes a task unless the same task for the same entity is
// already pending. Returns the task id and whether it was queued.
func (q *Queue) Enqueue(ctx context.Context, name string, entityID any) (string, bool, error) {
	task := Task{
		ID:         uuid.NewString(),
		Name:       name,
		EntityID:   crm.String(entityID),
		EnqueuedAt: time.Now().UTC(),
	}

	added, err := q.client.SAdd(ctx, q.pendingKey(), task.dedupeKey()).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to mark task pending: %w", err)
	}
	if added == 0 {
		log.Printf("[queue] Task %s already pending for entity_id=%s", name, task.EntityID)
		return "", false, nil
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		q.client.SRem(ctx, q.pendingKey(), task.dedupeKey())
		return "", false, fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Printf("[queue] Enqueued task=%s entity_id=%s id=%s", name, task.EntityID, task.ID)
	return task.ID, true, nil
}

// Result reads a stored task result, nil when unknown or expired.
func (q *Queue) Result(ctx context.Context, taskID string) (json.RawMessage, error) {
	raw, err := q.client.Get(ctx, q.resultKey(taskID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task result: %w", err)
	}
	return raw, nil
}

func (q *Queue) storeResult(ctx context.Context, taskID string, result any, ttl time.Duration) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("[queue] Failed to marshal result for task id=%s: %v", taskID, err)
		return
	}
	if err := q.client.Set(ctx, q.resultKey(taskID), payload, ttl).Err(); err != nil {
		log.Printf("[queue] Failed to store result for task id=%s: %v", taskID, err)
	}
}

func (q *Queue) pendingKey() string {
	return q.key + ":pending"
}

func (q *Queue) resultKey(taskID string) string {
	return q.key + ":result:" + taskID
}
