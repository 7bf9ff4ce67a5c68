// Package store implements the StateStore contract (§6): checkpoint
// persistence keyed "v_agent:checkpoint:{task_id}", with an in-memory
// backend plus two durable ones (SQLite, Postgres).
package store

import (
	"fmt"
	"sync"

	"github.com/haasonsaas/agentcore"
)

// CheckpointKey returns the stable key a durable backend stores a
// checkpoint under, per spec.md §6.
func CheckpointKey(taskID string) string {
	return fmt.Sprintf("v_agent:checkpoint:%s", taskID)
}

// Memory is a process-local, map-backed StateStore. It is the default when
// no durable backend is configured.
type Memory struct {
	mu          sync.RWMutex
	checkpoints map[string]agentcore.Checkpoint
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{checkpoints: make(map[string]agentcore.Checkpoint)}
}

// SaveCheckpoint implements the StateStore contract.
func (m *Memory) SaveCheckpoint(checkpoint agentcore.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[checkpoint.TaskID] = checkpoint
	return nil
}

// LoadCheckpoint implements the StateStore contract.
func (m *Memory) LoadCheckpoint(taskID string) (agentcore.Checkpoint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.checkpoints[taskID]
	return cp, ok, nil
}

// DeleteCheckpoint implements the StateStore contract.
func (m *Memory) DeleteCheckpoint(taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkpoints, taskID)
	return nil
}

// ListCheckpoints implements the StateStore contract.
func (m *Memory) ListCheckpoints() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.checkpoints))
	for taskID := range m.checkpoints {
		out = append(out, taskID)
	}
	return out, nil
}
