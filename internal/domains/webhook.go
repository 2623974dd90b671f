package domains

import "time"

// WebhookPayload is the payload Pipedrive and Marketo webhooks post:
// the record after the change and, for updates and deletions, before
// it.
type WebhookPayload struct {
	Current  map[string]interface{} `json:"current"`
	Previous map[string]interface{} `json:"previous"`
	Meta     map[string]interface{} `json:"meta"`
}

// CurrentID returns the id of the record after the change.
func (p *WebhookPayload) CurrentID() (interface{}, bool) {
	if p.Current == nil {
		return nil, false
	}
	id, ok := p.Current["id"]
	return id, ok && id != nil
}

// PreviousField returns a field of the record before the change, used
// on deletions where current is gone.
func (p *WebhookPayload) PreviousField(key string) (interface{}, bool) {
	if p.Previous == nil {
		return nil, false
	}
	v, ok := p.Previous[key]
	return v, ok && v != nil
}

// SyncEvent is the message published to the broker after a task ran.
type SyncEvent struct {
	Task      string      `json:"task"`
	Timestamp string      `json:"timestamp"`
	SourceID  string      `json:"source_id"`
	Result    interface{} `json:"result"`
}

// NewSyncEvent creates a new sync event
func NewSyncEvent(task, sourceID string, result interface{}) *SyncEvent {
	return &SyncEvent{
		Task:      task,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		SourceID:  sourceID,
		Result:    result,
	}
}

// WebhookResponse is the response returned to the webhook caller.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TaskID  string `json:"task_id,omitempty"`
}

// ErrorResponse is the error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
