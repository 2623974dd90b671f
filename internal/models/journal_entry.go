package models

import "time"

// JournalEntry is one recorded task invocation.
type JournalEntry struct {
	ID        string
	Task      string
	SourceID  string
	Status    string
	TargetID  string
	CreatedAt time.Time
}
