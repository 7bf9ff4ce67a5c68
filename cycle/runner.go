// Package cycle implements the cycle runner (C6): the per-cycle protocol
// that plans tools, compacts memory, calls the model, dispatches tool
// calls, and decides whether the run terminates or continues.
//
// Grounded on the original implementation's runtime/cycle.py run_cycle
// function, restructured as a Runner holding its collaborators (planner,
// registry, dispatcher, memory compactor, hook manager, event sink) so a
// single method advances one cycle against mutable state the caller owns.
package cycle

import (
	"context"
	"fmt"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/builtin"
	"github.com/haasonsaas/agentcore/execctx"
	"github.com/haasonsaas/agentcore/hooks"
	"github.com/haasonsaas/agentcore/llmclient"
	"github.com/haasonsaas/agentcore/memory"
	"github.com/haasonsaas/agentcore/planner"
	"github.com/haasonsaas/agentcore/tools"
	"github.com/haasonsaas/agentcore/workspace"
)

// SchemaResolver is the subset of *tools.Registry PlanToolSchemas needs;
// declared locally so Runner's field can be satisfied by a fake in tests.
type SchemaResolver interface {
	SchemasFor(names []string) []tools.OpenAITool
}

// Runner advances one run one cycle at a time. It holds no per-run state
// of its own; State carries everything that accumulates across cycles.
type Runner struct {
	Registry   SchemaResolver
	Dispatcher *tools.Dispatcher
	Compactor  *memory.Compactor
	Hooks      *hooks.Manager
	LLM        llmclient.Client
	Events     agentcore.EventSink

	// StrictCheckpointing, when true, turns a failing checkpoint save into a
	// run-failing error instead of a swallowed best-effort attempt (spec.md
	// §4.8: "a failing store raises only if configured strict").
	StrictCheckpointing bool
}

// New builds a Runner over its collaborators. events may be nil, in which
// case agentcore.NopEventSink is used.
func New(registry SchemaResolver, dispatcher *tools.Dispatcher, compactor *memory.Compactor, hookManager *hooks.Manager, llm llmclient.Client, events agentcore.EventSink) *Runner {
	if events == nil {
		events = agentcore.NopEventSink
	}
	return &Runner{
		Registry:   registry,
		Dispatcher: dispatcher,
		Compactor:  compactor,
		Hooks:      hookManager,
		LLM:        llm,
		Events:     events,
	}
}

// State is the mutable transcript and bookkeeping a Runner advances one
// cycle at a time. The caller (typically runtime.Engine) owns the
// lifetime of a State across an entire run.
type State struct {
	Task        agentcore.AgentTask
	Messages    []agentcore.Message
	Cycles      []agentcore.CycleRecord
	SharedState agentcore.SharedState
	TokenUsage  agentcore.TokenUsage
}

// memoryUsagePercentage estimates how full the transcript is relative to
// the compactor's threshold, the signal the tool planner's
// compress_memory step consults (spec.md §4.4 step 7).
func (s *State) memoryUsagePercentage(thresholdChars int) int {
	if thresholdChars <= 0 {
		return 0
	}
	total := 0
	for _, m := range s.Messages {
		total += len(m.Content)
	}
	pct := total * 100 / thresholdChars
	if pct > 1000 {
		pct = 1000
	}
	return pct
}

// Run advances state by exactly one cycle and returns a non-nil
// AgentResult when the run has reached a terminal or suspended status. A
// nil result with a nil error means: continue to the next cycle index.
func (r *Runner) Run(ctx context.Context, ectx *execctx.Context, cycleIndex int, state *State) (*agentcore.AgentResult, error) {
	taskID := state.Task.TaskID

	if err := ectx.CheckCancelled(); err != nil {
		return r.cancelledResult(state, err), nil
	}

	toolNames := planner.PlanToolNames(state.Task, intPtr(state.memoryUsagePercentage(r.Compactor.ThresholdChars)))

	beforeLLM := hooks.BeforeLLMEvent{
		TaskID:     taskID,
		CycleIndex: cycleIndex,
		Messages:   state.Messages,
		ToolNames:  toolNames,
	}
	patch, err := r.Hooks.RunBeforeLLM(beforeLLM)
	if err != nil {
		return r.failedResult(state, err), nil
	}
	if patch != nil {
		if patch.Abort {
			return r.failedResult(state, fmt.Errorf("cycle: %w: %s", agentcore.ErrHookAborted, patch.Reason)), nil
		}
		if patch.Messages != nil {
			state.Messages = patch.Messages
		}
		if patch.Tools != nil {
			toolNames = patch.Tools
		}
	}

	schemas := r.Registry.SchemasFor(toolNames)

	compactor := r.Compactor
	if requested, _ := state.SharedState[builtin.CompressMemoryRequestedKey].(bool); requested {
		delete(state.SharedState, builtin.CompressMemoryRequestedKey)
		compactor = &memory.Compactor{ThresholdChars: 0, KeepRecentMessages: r.Compactor.KeepRecentMessages}
	}
	if compacted, did := compactor.Compact(state.Messages); did {
		r.Hooks.RunBeforeMemoryCompact(hooks.BeforeMemoryCompactEvent{
			TaskID:       taskID,
			CycleIndex:   cycleIndex,
			MessageCount: len(state.Messages),
		})
		state.Messages = compacted
		r.Events.Emit(agentcore.Event{Type: agentcore.EventMemoryCompacted, TaskID: taskID, Cycle: cycleIndex})
	}

	r.Events.Emit(agentcore.Event{Type: agentcore.EventCycleStarted, TaskID: taskID, Cycle: cycleIndex})

	if err := ectx.CheckCancelled(); err != nil {
		return r.cancelledResult(state, err), nil
	}

	response, err := r.LLM.Complete(ctx, state.Task.Model, state.Messages, schemas, ectx.Stream)
	if err != nil {
		r.Events.Emit(agentcore.Event{Type: agentcore.EventCycleFailed, TaskID: taskID, Cycle: cycleIndex, Payload: map[string]any{"error": err.Error()}})
		return r.failedResult(state, err), nil
	}

	if err := ectx.CheckCancelled(); err != nil {
		return r.cancelledResult(state, err), nil
	}

	state.TokenUsage = state.TokenUsage.Add(response.TokenUsage)
	r.Hooks.RunAfterLLM(hooks.AfterLLMEvent{
		TaskID:     taskID,
		CycleIndex: cycleIndex,
		Content:    response.Content,
		ToolCalls:  response.ToolCalls,
		TokenUsage: response.TokenUsage,
	})
	r.Events.Emit(agentcore.Event{Type: agentcore.EventCycleLLMResponse, TaskID: taskID, Cycle: cycleIndex, Payload: map[string]any{
		"content":    response.Content,
		"tool_calls": len(response.ToolCalls),
	}})

	assistantMessage := agentcore.Message{
		Role:      agentcore.RoleAssistant,
		Content:   response.Content,
		ToolCalls: response.ToolCalls,
	}
	state.Messages = append(state.Messages, assistantMessage)

	record := agentcore.CycleRecord{
		Index:       cycleIndex,
		LLMResponse: response.Content,
		ToolCalls:   response.ToolCalls,
		TokenUsage:  response.TokenUsage,
	}

	if len(response.ToolCalls) == 0 {
		state.Cycles = append(state.Cycles, record)
		r.Events.Emit(agentcore.Event{Type: agentcore.EventCycleCompleted, TaskID: taskID, Cycle: cycleIndex})
		return &agentcore.AgentResult{
			Status:      agentcore.StatusCompleted,
			FinalAnswer: response.Content,
			Messages:    state.Messages,
			Cycles:      state.Cycles,
			SharedState: state.SharedState,
			TokenUsage:  state.TokenUsage,
			TodoList:    state.SharedState.TodoList(),
		}, nil
	}

	workspaceRoot := taskWorkspace(state.Task)
	toolCtx := &tools.Context{
		Workspace:   workspaceRoot,
		SharedState: state.SharedState,
		CycleIndex:  cycleIndex,
		Exec:        ectx,
	}
	if workspaceRoot != "" {
		toolCtx.FileBackend = workspace.NewLocal(workspaceRoot)
	}

	var results []agentcore.ToolExecutionResult
	var terminal *agentcore.AgentResult

	for _, call := range response.ToolCalls {
		if err := ectx.CheckCancelled(); err != nil {
			return r.cancelledResult(state, err), nil
		}

		call := applyToolPatch(r.Hooks, taskID, cycleIndex, call)
		if call.aborted {
			state.Cycles = append(state.Cycles, withResults(record, results))
			return r.failedResult(state, fmt.Errorf("cycle: %w: %s", agentcore.ErrHookAborted, call.reason)), nil
		}

		r.Events.Emit(agentcore.Event{Type: agentcore.EventToolCalled, TaskID: taskID, Cycle: cycleIndex, Payload: map[string]any{
			"tool_call_id": call.call.ID,
			"name":         call.call.Name,
		}})

		result := r.Dispatcher.Dispatch(toolCtx, call.call)

		r.Hooks.RunAfterToolCall(hooks.AfterToolCallEvent{
			TaskID:     taskID,
			CycleIndex: cycleIndex,
			Call:       call.call,
			Result:     result,
		})
		r.Events.Emit(agentcore.Event{Type: agentcore.EventToolResult, TaskID: taskID, Cycle: cycleIndex, Payload: map[string]any{
			"tool_call_id": result.ToolCallID,
			"status_code":  string(result.StatusCode),
		}})

		results = append(results, result)
		state.Messages = append(state.Messages, agentcore.Message{
			Role:       agentcore.RoleTool,
			Content:    result.Content,
			ToolCallID: result.ToolCallID,
		})

		if err := ectx.CheckCancelled(); err != nil {
			return r.cancelledResult(state, err), nil
		}

		if terminal == nil {
			switch result.Directive {
			case agentcore.DirectiveFinish:
				terminal = &agentcore.AgentResult{
					Status:      agentcore.StatusCompleted,
					FinalAnswer: result.Content,
				}
			case agentcore.DirectiveWaitUser:
				reason := result.Content
				if q, ok := result.Metadata["question"].(string); ok && q != "" {
					reason = q
				}
				terminal = &agentcore.AgentResult{
					Status:     agentcore.StatusWaitUser,
					WaitReason: reason,
				}
			}
		}
	}

	record.ToolResults = results
	state.Cycles = append(state.Cycles, record)

	r.Events.Emit(agentcore.Event{Type: agentcore.EventCycleCompleted, TaskID: taskID, Cycle: cycleIndex})

	if ectx.Store != nil {
		checkpoint := agentcore.Checkpoint{
			TaskID:      taskID,
			CycleIndex:  cycleIndex,
			Status:      agentcore.StatusWaitUser,
			Messages:    state.Messages,
			Cycles:      state.Cycles,
			SharedState: state.SharedState,
		}
		if saveErr := ectx.Store.SaveCheckpoint(checkpoint); saveErr != nil && r.StrictCheckpointing {
			return r.failedResult(state, fmt.Errorf("cycle: checkpoint: %w", saveErr)), nil
		}
	}

	if terminal != nil {
		terminal.Messages = state.Messages
		terminal.Cycles = state.Cycles
		terminal.SharedState = state.SharedState
		terminal.TokenUsage = state.TokenUsage
		terminal.TodoList = state.SharedState.TodoList()
		return terminal, nil
	}

	return nil, nil
}

func (r *Runner) cancelledResult(state *State, err error) *agentcore.AgentResult {
	return &agentcore.AgentResult{
		Status:      agentcore.StatusCancelled,
		Error:       err.Error(),
		Messages:    state.Messages,
		Cycles:      state.Cycles,
		SharedState: state.SharedState,
		TokenUsage:  state.TokenUsage,
		TodoList:    state.SharedState.TodoList(),
	}
}

func (r *Runner) failedResult(state *State, err error) *agentcore.AgentResult {
	return &agentcore.AgentResult{
		Status:      agentcore.StatusFailed,
		Error:       err.Error(),
		Messages:    state.Messages,
		Cycles:      state.Cycles,
		SharedState: state.SharedState,
		TokenUsage:  state.TokenUsage,
		TodoList:    state.SharedState.TodoList(),
	}
}

func withResults(record agentcore.CycleRecord, results []agentcore.ToolExecutionResult) agentcore.CycleRecord {
	record.ToolResults = results
	return record
}

func taskWorkspace(task agentcore.AgentTask) string {
	if !task.UseWorkspace {
		return ""
	}
	if ws, ok := task.Metadata["workspace_root"].(string); ok {
		return ws
	}
	return ""
}

func intPtr(v int) *int {
	return &v
}

type patchedCall struct {
	call    agentcore.ToolCall
	aborted bool
	reason  string
}

func applyToolPatch(mgr *hooks.Manager, taskID string, cycleIndex int, call agentcore.ToolCall) patchedCall {
	patch, err := mgr.RunBeforeToolCall(hooks.BeforeToolCallEvent{
		TaskID:     taskID,
		CycleIndex: cycleIndex,
		Call:       call,
	})
	if err != nil {
		return patchedCall{call: call, aborted: true, reason: err.Error()}
	}
	if patch == nil {
		return patchedCall{call: call}
	}
	if patch.Abort {
		return patchedCall{call: call, aborted: true, reason: patch.Reason}
	}
	if patch.Arguments != nil {
		call.Arguments = patch.Arguments
	}
	return patchedCall{call: call}
}
