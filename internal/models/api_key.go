package models

import "time"

type APIKey struct {
	ID           string
	Key          string
	Name         string
	AllowedTasks []string
	IsActive     bool
	CreatedAt    time.Time
}

func (k *APIKey) CanRunTask(task string) bool {
	if !k.IsActive {
		return false
	}
	for _, t := range k.AllowedTasks {
		if t == task || t == "*" {
			return true
		}
	}
	return false
}
