package sync

// Sync statuses.
const (
	StatusCreated          = "created"
	StatusUpdated          = "updated"
	StatusSkipped          = "skipped"
	StatusDeleted          = "deleted"
	StatusReadyForDeletion = "Ready for deletion"
)

// Result is what one task invocation answers with. It is returned to
// the trigger surface as JSON and never persisted.
type Result struct {
	Status     string  `json:"status,omitempty"`
	ID         any     `json:"id,omitempty"`
	ExternalID string  `json:"externalId,omitempty"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
	Role       *Result `json:"role,omitempty"`
}

func errorResult(message string) Result {
	return Result{Error: message}
}
