package store

import (
	"reflect"
	"testing"

	"github.com/haasonsaas/agentcore"
)

func TestMemoryCheckpointRoundTrip(t *testing.T) {
	m := NewMemory()
	cp := agentcore.Checkpoint{
		TaskID:     "task-1",
		CycleIndex: 3,
		Status:     agentcore.StatusWaitUser,
		Messages:   []agentcore.Message{{Role: agentcore.RoleUser, Content: "hi"}},
		SharedState: agentcore.SharedState{"todo_list": []agentcore.TodoItem{{Title: "x", Done: true}}},
	}

	if err := m.SaveCheckpoint(cp); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := m.LoadCheckpoint("task-1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(cp, loaded) {
		t.Fatalf("expected round-trip equality, got %+v vs %+v", cp, loaded)
	}
}

func TestMemoryCheckpointMissingReturnsFalse(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.LoadCheckpoint("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing checkpoint")
	}
}

func TestMemoryDeleteCheckpoint(t *testing.T) {
	m := NewMemory()
	_ = m.SaveCheckpoint(agentcore.Checkpoint{TaskID: "task-1"})
	if err := m.DeleteCheckpoint("task-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, ok, _ := m.LoadCheckpoint("task-1")
	if ok {
		t.Fatal("expected checkpoint to be gone after delete")
	}
}

func TestMemoryListCheckpoints(t *testing.T) {
	m := NewMemory()
	_ = m.SaveCheckpoint(agentcore.Checkpoint{TaskID: "a"})
	_ = m.SaveCheckpoint(agentcore.Checkpoint{TaskID: "b"})

	list, err := m.ListCheckpoints()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d: %v", len(list), list)
	}
}

func TestCheckpointKeyFormat(t *testing.T) {
	if got := CheckpointKey("task-7"); got != "v_agent:checkpoint:task-7" {
		t.Fatalf("unexpected key format: %q", got)
	}
}
