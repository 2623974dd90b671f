package services

import (
	"log"

	"github.com/nuxeo/mkto-pd-sync-app/internal/broker"
)

// ConsumerService handles task requests arriving over the broker.
type ConsumerService struct {
	auth   *AuthService
	runner *TaskRunner
}

func NewConsumerService(auth *AuthService, runner *TaskRunner) *ConsumerService {
	return &ConsumerService{
		auth:   auth,
		runner: runner,
	}
}

// RegisterHandlers registers one broker handler per task.
func (s *ConsumerService) RegisterHandlers(consumer *broker.Consumer) {
	for _, task := range s.runner.Tasks() {
		consumer.RegisterHandler(task, s.handleRequest)
	}
}

func (s *ConsumerService) handleRequest(req *broker.RequestMessage) *broker.ResponseMessage {
	apiKey, err := s.auth.ValidateAPIKey(req.APIKey)
	if err != nil {
		return errorResponse(req.RequestID, "unauthorized", err.Error())
	}
	if err := s.auth.ValidateTask(apiKey, req.Task); err != nil {
		return errorResponse(req.RequestID, "forbidden", err.Error())
	}

	if req.EntityID == "" {
		return errorResponse(req.RequestID, "bad_request", "entity_id is required")
	}

	result, err := s.runner.Run(req.Task, req.EntityID)
	if err != nil {
		log.Printf("[consumer] Task %s failed for entity_id=%s: %v", req.Task, req.EntityID, err)
		return errorResponse(req.RequestID, "task_failed", err.Error())
	}

	return &broker.ResponseMessage{
		RequestID: req.RequestID,
		Success:   result.Error == "",
		Data:      result,
	}
}

func errorResponse(requestID, code, message string) *broker.ResponseMessage {
	return &broker.ResponseMessage{
		RequestID: requestID,
		Success:   false,
		Error: &broker.ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}
