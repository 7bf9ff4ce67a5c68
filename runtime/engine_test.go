package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/backend"
	"github.com/haasonsaas/agentcore/builtin"
	"github.com/haasonsaas/agentcore/cycle"
	"github.com/haasonsaas/agentcore/hooks"
	"github.com/haasonsaas/agentcore/llmclient"
	"github.com/haasonsaas/agentcore/memory"
	"github.com/haasonsaas/agentcore/store"
	"github.com/haasonsaas/agentcore/tools"
)

type recordingSink struct {
	mu     sync.Mutex
	events []agentcore.Event
}

func (r *recordingSink) Emit(e agentcore.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) types() []agentcore.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]agentcore.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newEngine(t *testing.T, llm llmclient.Client, sink agentcore.EventSink) *Engine {
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
	opts := agentcore.DefaultRuntimeOptions()
	return New(b, runner, hookManager, store.NewMemory(), opts, sink)
}

func TestEngineRunCompletesAndEmitsLifecycleEvents(t *testing.T) {
	llm := llmclient.NewScripted(llmclient.ScriptedTurn{Response: llmclient.Response{Content: "the answer"}})
	sink := &recordingSink{}
	engine := newEngine(t, llm, sink)

	task := agentcore.AgentTask{TaskID: "run-1", Model: "test-model", MaxCycles: 5, SystemPrompt: "sys", UserPrompt: "hi"}
	result := engine.Run(context.Background(), task, nil, nil)

	if result.Status != agentcore.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", result.Status)
	}
	if result.FinalAnswer != "the answer" {
		t.Fatalf("unexpected final answer: %q", result.FinalAnswer)
	}

	types := sink.types()
	if len(types) < 2 || types[0] != agentcore.EventRunStarted {
		t.Fatalf("expected run_started first, got %v", types)
	}
	if types[len(types)-1] != agentcore.EventRunCompleted {
		t.Fatalf("expected run_completed last, got %v", types)
	}
}

func TestEngineRunExhaustsMaxCycles(t *testing.T) {
	turns := make([]llmclient.ScriptedTurn, 0, 3)
	for i := 0; i < 3; i++ {
		turns = append(turns, llmclient.ScriptedTurn{
			Response: llmclient.Response{
				ToolCalls: []agentcore.ToolCall{{ID: "c", Name: "compress_memory"}},
			},
		})
	}
	llm := llmclient.NewScripted(turns...)
	sink := &recordingSink{}
	engine := newEngine(t, llm, sink)

	task := agentcore.AgentTask{TaskID: "run-2", Model: "test-model", MaxCycles: 3, SystemPrompt: "sys", UserPrompt: "hi"}
	result := engine.Run(context.Background(), task, nil, nil)

	if result.Status != agentcore.StatusMaxCycles {
		t.Fatalf("expected MAX_CYCLES, got %s: %+v", result.Status, result)
	}

	found := false
	for _, typ := range sink.types() {
		if typ == agentcore.EventRunMaxCycles {
			found = true
		}
	}
	if !found {
		t.Fatal("expected run_max_cycles event")
	}
}
