package session

import (
	"testing"
	"time"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/backend"
	"github.com/haasonsaas/agentcore/builtin"
	"github.com/haasonsaas/agentcore/cycle"
	"github.com/haasonsaas/agentcore/hooks"
	"github.com/haasonsaas/agentcore/llmclient"
	"github.com/haasonsaas/agentcore/memory"
	"github.com/haasonsaas/agentcore/runtime"
	"github.com/haasonsaas/agentcore/store"
	"github.com/haasonsaas/agentcore/tools"
)

func newTestEngine(t *testing.T, llm llmclient.Client) *runtime.Engine {
	t.Helper()
	registry := tools.NewRegistry()
	if err := builtin.Register(registry); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	dispatcher := tools.NewDispatcher(registry, nil)
	compactor := memory.NewCompactor()
	hookManager := hooks.NewManager()
	runner := cycle.New(registry, dispatcher, compactor, hookManager, llm, nil)
	b := backend.NewInline()
	return runtime.New(b, runner, hookManager, store.NewMemory(), agentcore.DefaultRuntimeOptions(), nil)
}

func TestManagerIssueAndResumeToken(t *testing.T) {
	mgr := NewManager([]byte("test-signing-key"), time.Hour)
	engine := newTestEngine(t, llmclient.NewScripted())
	s := mgr.Create(engine, TaskTemplate{Model: "test-model", SystemPrompt: "sys"})

	raw, err := mgr.IssueResumeToken(s.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	resumed, err := mgr.Resume(raw)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.ID != s.ID {
		t.Fatalf("expected to resume %s, got %s", s.ID, resumed.ID)
	}
}

func TestManagerResumeRejectsUnknownSession(t *testing.T) {
	mgr := NewManager([]byte("key-a"), time.Hour)
	other := NewManager([]byte("key-b"), time.Hour)
	engine := newTestEngine(t, llmclient.NewScripted())
	s := other.Create(engine, TaskTemplate{Model: "test-model"})

	raw, err := other.IssueResumeToken(s.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := mgr.Resume(raw); err == nil {
		t.Fatal("expected resume with a token signed by a different key to fail")
	}
}

func TestManagerCloseRemovesSession(t *testing.T) {
	mgr := NewManager([]byte("key"), time.Hour)
	engine := newTestEngine(t, llmclient.NewScripted())
	s := mgr.Create(engine, TaskTemplate{Model: "test-model"})

	mgr.Close(s.ID)

	if _, err := mgr.IssueResumeToken(s.ID); err == nil {
		t.Fatal("expected issuing a token for a closed session to fail")
	}
}
