package repository

import (
	"database/sql"
	"log"

	"github.com/google/uuid"
	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
	"github.com/nuxeo/mkto-pd-sync-app/internal/models"
)

// JournalRepository persists one row per completed task invocation. It
// satisfies the sync service's journal interface.
type JournalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Record inserts a journal entry. Journal failures are logged and
// swallowed; bookkeeping must never break a synchronization.
func (r *JournalRepository) Record(task string, sourceID any, status string, targetID any) {
	query := `
		INSERT INTO sync_journal (id, task, source_id, status, target_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(query,
		uuid.NewString(),
		task,
		crm.String(sourceID),
		status,
		crm.String(targetID),
	)
	if err != nil {
		log.Printf("[journal] Failed to record task=%s source_id=%v: %v", task, sourceID, err)
	}
}

// ListRecent returns the latest entries, newest first.
func (r *JournalRepository) ListRecent(limit int) ([]*models.JournalEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, task, source_id, status, target_id, created_at
		FROM sync_journal
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		e := &models.JournalEntry{}
		var targetID sql.NullString

		err := rows.Scan(
			&e.ID,
			&e.Task,
			&e.SourceID,
			&e.Status,
			&targetID,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if targetID.Valid {
			e.TargetID = targetID.String
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
