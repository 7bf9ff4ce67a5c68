package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/haasonsaas/agentcore"
)

// Postgres is a second durable StateStore backend, for multi-process
// deployments that still run each task's orchestration process-local
// (spec §1 non-goal: no distributed scheduler — only the storage is
// shared).
type Postgres struct {
	db *sql.DB
}

// OpenPostgres opens a Postgres-backed checkpoint store using dsn (a
// standard libpq connection string).
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	key TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	payload JSONB NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close releases the underlying database handle.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// SaveCheckpoint implements the StateStore contract.
func (p *Postgres) SaveCheckpoint(checkpoint agentcore.Checkpoint) error {
	payload, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("store: marshal checkpoint: %w", err)
	}
	_, err = p.db.Exec(
		`INSERT INTO checkpoints (key, task_id, payload) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET payload = excluded.payload`,
		CheckpointKey(checkpoint.TaskID), checkpoint.TaskID, payload,
	)
	if err != nil {
		return fmt.Errorf("store: save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint implements the StateStore contract.
func (p *Postgres) LoadCheckpoint(taskID string) (agentcore.Checkpoint, bool, error) {
	var payload []byte
	err := p.db.QueryRow(`SELECT payload FROM checkpoints WHERE key = $1`, CheckpointKey(taskID)).Scan(&payload)
	if err == sql.ErrNoRows {
		return agentcore.Checkpoint{}, false, nil
	}
	if err != nil {
		return agentcore.Checkpoint{}, false, fmt.Errorf("store: load checkpoint: %w", err)
	}
	var cp agentcore.Checkpoint
	if err := json.Unmarshal(payload, &cp); err != nil {
		return agentcore.Checkpoint{}, false, fmt.Errorf("store: decode checkpoint: %w", err)
	}
	return cp, true, nil
}

// DeleteCheckpoint implements the StateStore contract.
func (p *Postgres) DeleteCheckpoint(taskID string) error {
	_, err := p.db.Exec(`DELETE FROM checkpoints WHERE key = $1`, CheckpointKey(taskID))
	if err != nil {
		return fmt.Errorf("store: delete checkpoint: %w", err)
	}
	return nil
}

// ListCheckpoints implements the StateStore contract.
func (p *Postgres) ListCheckpoints() ([]string, error) {
	rows, err := p.db.Query(`SELECT task_id FROM checkpoints`)
	if err != nil {
		return nil, fmt.Errorf("store: list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("store: scan checkpoint row: %w", err)
		}
		out = append(out, taskID)
	}
	return out, rows.Err()
}
