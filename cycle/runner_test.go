package cycle

import (
	"context"
	"testing"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/builtin"
	"github.com/haasonsaas/agentcore/execctx"
	"github.com/haasonsaas/agentcore/hooks"
	"github.com/haasonsaas/agentcore/llmclient"
	"github.com/haasonsaas/agentcore/memory"
	"github.com/haasonsaas/agentcore/token"
	"github.com/haasonsaas/agentcore/tools"
)

func newTestRunner(t *testing.T, llm llmclient.Client) (*Runner, *tools.Registry) {
	t.Helper()
	registry := tools.NewRegistry()
	if err := builtin.Register(registry); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	dispatcher := tools.NewDispatcher(registry, nil)
	compactor := memory.NewCompactor()
	hookManager := hooks.NewManager()
	return New(registry, dispatcher, compactor, hookManager, llm, nil), registry
}

func baseState(task agentcore.AgentTask) *State {
	return &State{
		Task:        task,
		Messages:    []agentcore.Message{{Role: agentcore.RoleSystem, Content: "sys"}, {Role: agentcore.RoleUser, Content: "hi"}},
		SharedState: agentcore.SharedState{},
	}
}

func TestRunCompletesOnNoToolCalls(t *testing.T) {
	llm := llmclient.NewScripted(llmclient.ScriptedTurn{
		Response: llmclient.Response{Content: "final answer"},
	})
	runner, _ := newTestRunner(t, llm)
	state := baseState(agentcore.AgentTask{TaskID: "t1", MaxCycles: 5})
	ectx := execctx.New(nil, nil, nil)

	result, err := runner.Run(context.Background(), ectx, 1, state)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result == nil {
		t.Fatal("expected terminal result")
	}
	if result.Status != agentcore.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", result.Status)
	}
	if result.FinalAnswer != "final answer" {
		t.Fatalf("unexpected final answer: %q", result.FinalAnswer)
	}
}

func TestRunContinuesAfterToolCallWithoutDirective(t *testing.T) {
	llm := llmclient.NewScripted(llmclient.ScriptedTurn{
		Response: llmclient.Response{
			Content: "",
			ToolCalls: []agentcore.ToolCall{
				{ID: "call-1", Name: "write_file", Arguments: map[string]any{"path": "a.txt", "content": "x"}},
			},
		},
	})
	runner, _ := newTestRunner(t, llm)
	ws := newWritableWorkspace(t)
	task := agentcore.AgentTask{TaskID: "t2", MaxCycles: 5, UseWorkspace: true, Metadata: map[string]any{"workspace_root": ws}}
	state := baseState(task)
	ectx := execctx.New(nil, nil, nil)

	result, err := runner.Run(context.Background(), ectx, 1, state)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil (continue), got %+v", result)
	}
	if len(state.Cycles) != 1 {
		t.Fatalf("expected one recorded cycle, got %d", len(state.Cycles))
	}
	if len(state.Cycles[0].ToolResults) != 1 {
		t.Fatalf("expected one tool result recorded")
	}
	last := state.Messages[len(state.Messages)-1]
	if last.Role != agentcore.RoleTool || last.ToolCallID != "call-1" {
		t.Fatalf("expected trailing tool message matching call id, got %+v", last)
	}
}

func TestRunFinishDirectiveTerminatesCompleted(t *testing.T) {
	llm := llmclient.NewScripted(llmclient.ScriptedTurn{
		Response: llmclient.Response{
			Content: "",
			ToolCalls: []agentcore.ToolCall{
				{ID: "call-1", Name: "task_finish", Arguments: map[string]any{"message": "done"}},
			},
		},
	})
	runner, _ := newTestRunner(t, llm)
	state := baseState(agentcore.AgentTask{TaskID: "t3", MaxCycles: 5})
	ectx := execctx.New(nil, nil, nil)

	result, err := runner.Run(context.Background(), ectx, 1, state)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result == nil || result.Status != agentcore.StatusCompleted {
		t.Fatalf("expected COMPLETED via finish directive, got %+v", result)
	}
	if result.FinalAnswer != "done" {
		t.Fatalf("unexpected final answer: %q", result.FinalAnswer)
	}
}

func TestRunTaskFinishBlockedByIncompleteTodo(t *testing.T) {
	llm := llmclient.NewScripted(llmclient.ScriptedTurn{
		Response: llmclient.Response{
			Content: "",
			ToolCalls: []agentcore.ToolCall{
				{ID: "call-1", Name: "task_finish", Arguments: map[string]any{"message": "done"}},
			},
		},
	})
	runner, _ := newTestRunner(t, llm)
	state := baseState(agentcore.AgentTask{TaskID: "t4", MaxCycles: 5})
	state.SharedState[agentcore.SharedStateTodoList] = []agentcore.TodoItem{{Title: "write tests", Done: false}}
	ectx := execctx.New(nil, nil, nil)

	result, err := runner.Run(context.Background(), ectx, 1, state)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result != nil {
		t.Fatalf("expected run to continue past a blocked finish, got %+v", result)
	}
	last := state.Cycles[0].ToolResults[0]
	if last.ErrorCode != agentcore.ErrCodeTodoIncomplete {
		t.Fatalf("expected todo_incomplete, got %q", last.ErrorCode)
	}
}

func TestRunAskUserDirectiveSuspends(t *testing.T) {
	llm := llmclient.NewScripted(llmclient.ScriptedTurn{
		Response: llmclient.Response{
			Content: "",
			ToolCalls: []agentcore.ToolCall{
				{ID: "call-1", Name: "ask_user", Arguments: map[string]any{"question": "which file?"}},
			},
		},
	})
	runner, _ := newTestRunner(t, llm)
	state := baseState(agentcore.AgentTask{TaskID: "t5", MaxCycles: 5, AllowInterruption: true})
	ectx := execctx.New(nil, nil, nil)

	result, err := runner.Run(context.Background(), ectx, 1, state)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result == nil || result.Status != agentcore.StatusWaitUser {
		t.Fatalf("expected WAIT_USER, got %+v", result)
	}
	if result.WaitReason != "which file?" {
		t.Fatalf("unexpected wait reason: %q", result.WaitReason)
	}
}

func TestRunRespectsPreCancellation(t *testing.T) {
	llm := llmclient.NewScripted() // no turns scripted: must not be called
	runner, _ := newTestRunner(t, llm)
	state := baseState(agentcore.AgentTask{TaskID: "t6", MaxCycles: 5})

	tok := token.New()
	tok.Cancel("test setup")
	ectx := execctx.New(tok, nil, nil)

	result, err := runner.Run(context.Background(), ectx, 1, state)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result == nil || result.Status != agentcore.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %+v", result)
	}
	if llm.CallCount() != 0 {
		t.Fatalf("expected no LLM calls after pre-cancellation, got %d", llm.CallCount())
	}
}

func TestRunHookAbortFailsRun(t *testing.T) {
	llm := llmclient.NewScripted(llmclient.ScriptedTurn{Response: llmclient.Response{Content: "unused"}})
	runner, _ := newTestRunner(t, llm)
	runner.Hooks.Register(abortingHook{})
	state := baseState(agentcore.AgentTask{TaskID: "t7", MaxCycles: 5})
	ectx := execctx.New(nil, nil, nil)

	result, err := runner.Run(context.Background(), ectx, 1, state)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result == nil || result.Status != agentcore.StatusFailed {
		t.Fatalf("expected FAILED from hook abort, got %+v", result)
	}
	if llm.CallCount() != 0 {
		t.Fatalf("expected before-LLM abort to skip the LLM call, got %d calls", llm.CallCount())
	}
}

type abortingHook struct{ hooks.NoopHook }

func (abortingHook) BeforeLLM(hooks.BeforeLLMEvent) (*hooks.LLMPatch, error) {
	return &hooks.LLMPatch{Abort: true, Reason: "blocked by policy"}, nil
}

func newWritableWorkspace(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}
