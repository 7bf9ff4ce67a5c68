package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haasonsaas/agentcore"
)

// SQLite is a durable StateStore backed by a single table, one row per
// task_id, keyed by CheckpointKey and storing the checkpoint as a JSON
// blob — the serialization format spec.md §6 specifies.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) a SQLite-backed checkpoint
// store at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	key TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	payload TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveCheckpoint implements the StateStore contract.
func (s *SQLite) SaveCheckpoint(checkpoint agentcore.Checkpoint) error {
	payload, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("store: marshal checkpoint: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO checkpoints (key, task_id, payload) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`,
		CheckpointKey(checkpoint.TaskID), checkpoint.TaskID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("store: save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint implements the StateStore contract. Unknown fields in the
// stored JSON are tolerated for forward compatibility, per spec.md §9.
func (s *SQLite) LoadCheckpoint(taskID string) (agentcore.Checkpoint, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM checkpoints WHERE key = ?`, CheckpointKey(taskID)).Scan(&payload)
	if err == sql.ErrNoRows {
		return agentcore.Checkpoint{}, false, nil
	}
	if err != nil {
		return agentcore.Checkpoint{}, false, fmt.Errorf("store: load checkpoint: %w", err)
	}
	var cp agentcore.Checkpoint
	if err := json.Unmarshal([]byte(payload), &cp); err != nil {
		return agentcore.Checkpoint{}, false, fmt.Errorf("store: decode checkpoint: %w", err)
	}
	return cp, true, nil
}

// DeleteCheckpoint implements the StateStore contract.
func (s *SQLite) DeleteCheckpoint(taskID string) error {
	_, err := s.db.Exec(`DELETE FROM checkpoints WHERE key = ?`, CheckpointKey(taskID))
	if err != nil {
		return fmt.Errorf("store: delete checkpoint: %w", err)
	}
	return nil
}

// ListCheckpoints implements the StateStore contract.
func (s *SQLite) ListCheckpoints() ([]string, error) {
	rows, err := s.db.Query(`SELECT task_id FROM checkpoints`)
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
