package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/nuxeo/mkto-pd-sync-app/internal/queue"
)

// WebhookService verifies webhook calls and turns them into queued
// tasks. Webhooks never run a synchronization inline; both CRMs retry
// aggressively and the queue absorbs the bursts.
type WebhookService interface {
	VerifySignature(payload []byte, signature string) bool
	EnqueueTask(ctx context.Context, task string, entityID any) (string, bool, error)
}

type webhookService struct {
	secret string
	queue  *queue.Queue
}

// NewWebhookService creates a new webhook service
func NewWebhookService(secret string, q *queue.Queue) WebhookService {
	return &webhookService{
		secret: secret,
		queue:  q,
	}
}

// VerifySignature verifies the webhook signature using HMAC-SHA256
func (s *webhookService) VerifySignature(payload []byte, signature string) bool {
	if s.secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(payload)
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	// Use constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expectedSig)) == 1
}

// EnqueueTask queues a task for the worker. Returns the task id and
// whether a new task was queued; an already-pending duplicate is not.
func (s *webhookService) EnqueueTask(ctx context.Context, task string, entityID any) (string, bool, error) {
	return s.queue.Enqueue(ctx, task, entityID)
}
