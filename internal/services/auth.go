package services

import (
	"fmt"

	"github.com/nuxeo/mkto-pd-sync-app/internal/models"
	"github.com/nuxeo/mkto-pd-sync-app/internal/repository"
)

type AuthService struct {
	repo *repository.APIKeyRepository
}

func NewAuthService(repo *repository.APIKeyRepository) *AuthService {
	return &AuthService{repo: repo}
}

// ValidateAPIKey validates an API key and returns its record
func (s *AuthService) ValidateAPIKey(key string) (*models.APIKey, error) {
	if key == "" {
		return nil, fmt.Errorf("missing api_key")
	}

	apiKey, err := s.repo.FindByKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to validate api_key: %w", err)
	}

	if apiKey == nil {
		return nil, fmt.Errorf("invalid api_key")
	}

	if !apiKey.IsActive {
		return nil, fmt.Errorf("api_key is inactive")
	}

	return apiKey, nil
}

// ValidateTask checks if the key holder can run the task
func (s *AuthService) ValidateTask(apiKey *models.APIKey, task string) error {
	if !apiKey.CanRunTask(task) {
		return fmt.Errorf("task '%s' not allowed for '%s'", task, apiKey.Name)
	}
	return nil
}
