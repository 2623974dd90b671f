package database

import (
	"database/sql"
	"log"

	_ "github.com/lib/pq"
)

func New(connectionString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	log.Println("[database] Connected to PostgreSQL")
	return db, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		allowed_tasks TEXT[],
		is_active BOOLEAN DEFAULT true,
		created_at TIMESTAMP DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS sync_journal (
		id UUID PRIMARY KEY,
		task VARCHAR(50) NOT NULL,
		source_id VARCHAR(100) NOT NULL,
		status VARCHAR(50) NOT NULL,
		target_id VARCHAR(100),
		created_at TIMESTAMP DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS sync_journal_task_idx ON sync_journal (task, created_at DESC);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return err
	}

	log.Println("[database] Migrations applied")
	return nil
}
