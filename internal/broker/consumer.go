package broker

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nuxeo/mkto-pd-sync-app/internal/config"
)

// RequestMessage represents an incoming task request from external
// services.
type RequestMessage struct {
	RequestID string `json:"request_id"`
	APIKey    string `json:"api_key"`
	Task      string `json:"task"`
	EntityID  string `json:"entity_id"`
}

// ResponseMessage represents response to external services
type ResponseMessage struct {
	RequestID string       `json:"request_id"`
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data"`
	Error     *ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RequestHandler handles a specific task
type RequestHandler func(req *RequestMessage) *ResponseMessage

// Consumer subscribes to request topics and routes to handlers
type Consumer struct {
	client    mqtt.Client
	handlers  map[string]RequestHandler
	publisher *Publisher
}

func NewConsumer(cfg *config.BrokerConfig, publisher *Publisher) (*Consumer, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID + "-consumer").
		SetAutoReconnect(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	log.Println("[consumer] Connected to broker")

	return &Consumer{
		client:    client,
		handlers:  make(map[string]RequestHandler),
		publisher: publisher,
	}, nil
}

// RegisterHandler registers a handler for a task
func (c *Consumer) RegisterHandler(task string, handler RequestHandler) {
	c.handlers[task] = handler
	log.Printf("[consumer] Registered handler for task: %s", task)
}

// Start subscribes to request topics
func (c *Consumer) Start() error {
	topic := requestTopicPrefix + "#"

	token := c.client.Subscribe(topic, 1, c.handleMessage)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}

	log.Printf("[consumer] Subscribed to: %s", topic)
	return nil
}

func (c *Consumer) handleMessage(client mqtt.Client, msg mqtt.Message) {
	log.Printf("[consumer] Received message on topic: %s", msg.Topic())

	topicTask, _ := ParseRequestTopic(msg.Topic())

	// Parse message
	var req RequestMessage
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		log.Printf("[consumer] Failed to parse message: %v", err)
		c.publishError("", "parse_error", "Failed to parse request message")
		return
	}

	// Use task from message (or fallback to topic)
	if req.Task == "" {
		req.Task = topicTask
	}

	// Find handler
	handler, ok := c.handlers[req.Task]
	if !ok {
		log.Printf("[consumer] No handler for task: %s", req.Task)
		c.publishError(req.RequestID, "unknown_task", "Unknown task: "+req.Task)
		return
	}

	// Execute handler
	resp := handler(&req)

	// Publish response
	c.publishResponse(req.RequestID, resp)
}

func (c *Consumer) publishResponse(requestID string, resp *ResponseMessage) {
	if requestID == "" {
		log.Println("[consumer] Cannot publish response: missing request_id")
		return
	}

	resp.RequestID = requestID

	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[consumer] Failed to marshal response: %v", err)
		return
	}

	topic := BuildResponseTopic(requestID)
	if err := c.publisher.PublishRaw(topic, payload); err != nil {
		log.Printf("[consumer] Failed to publish response: %v", err)
	} else {
		log.Printf("[consumer] Published response to: %s", topic)
	}
}

func (c *Consumer) publishError(requestID, code, message string) {
	resp := &ResponseMessage{
		RequestID: requestID,
		Success:   false,
		Data:      nil,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
	c.publishResponse(requestID, resp)
}

func (c *Consumer) Close() {
	c.client.Disconnect(250)
	log.Println("[consumer] Disconnected from broker")
}
