package repository

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/nuxeo/mkto-pd-sync-app/internal/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) FindByKey(key string) (*models.APIKey, error) {
	query := `
		SELECT id, key, name, allowed_tasks, is_active, created_at
		FROM api_keys
		WHERE key = $1 AND is_active = true
	`

	apiKey := &models.APIKey{}
	var tasks pq.StringArray

	err := r.db.QueryRow(query, key).Scan(
		&apiKey.ID,
		&apiKey.Key,
		&apiKey.Name,
		&tasks,
		&apiKey.IsActive,
		&apiKey.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	apiKey.AllowedTasks = []string(tasks)
	return apiKey, nil
}
