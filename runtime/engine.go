// Package runtime implements the runtime engine (C8): it builds a fresh
// shared state and initial transcript per run, wires the hook manager and
// event sink through to the cycle runner, drives the execution backend, and
// owns checkpoint persistence and the exact event vocabulary spec.md §4.8
// names.
//
// Grounded on the original implementation's runtime/engine.py Runtime.run,
// restyled after the teacher's internal/agent engine composition (a struct
// holding its collaborators, constructed once and reused across runs).
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/backend"
	"github.com/haasonsaas/agentcore/cycle"
	"github.com/haasonsaas/agentcore/execctx"
	"github.com/haasonsaas/agentcore/hooks"
	"github.com/haasonsaas/agentcore/token"
)

// Engine composes a backend, a cycle runner, and the observability
// collaborators into a single entry point: Run executes one task end to
// end and returns its terminal AgentResult.
type Engine struct {
	Backend backend.Backend
	Runner  *cycle.Runner
	Hooks   *hooks.Manager
	Store   execctx.StateStore
	Options agentcore.RuntimeOptions
	Events  agentcore.EventSink
	Metrics *Metrics
	Tracer  *Tracer
}

// New builds an Engine. events and metrics may be nil; Tracer is always set
// to a tracer drawing from the process's globally configured
// TracerProvider (a no-op provider if the host never configured one), so
// Run never needs a nil check before starting a span.
func New(b backend.Backend, runner *cycle.Runner, hookManager *hooks.Manager, store execctx.StateStore, options agentcore.RuntimeOptions, events agentcore.EventSink) *Engine {
	if events == nil {
		events = agentcore.NopEventSink
	}
	runner.StrictCheckpointing = options.StrictCheckpointing
	e := &Engine{
		Backend: b,
		Runner:  runner,
		Hooks:   hookManager,
		Store:   store,
		Options: options,
		Events:  events,
		Tracer:  NewTracer("agentcore"),
	}
	// Forward the runner's cycle/tool events to the engine's current sink
	// (read at emit time, so a later Events replacement is honored).
	runnerEvents := runner.Events
	runner.Events = agentcore.EventSinkFunc(func(event agentcore.Event) {
		if runnerEvents != nil {
			runnerEvents.Emit(event)
		}
		e.safeEmit(event)
	})
	return e
}

// Run executes task to completion or suspension, composing the initial
// [system, user] message pair from the task itself. tok may be nil (an
// uncancellable run); stream may be nil (no incremental output).
func (e *Engine) Run(ctx context.Context, task agentcore.AgentTask, tok *token.Token, stream execctx.StreamFunc) agentcore.AgentResult {
	messages := []agentcore.Message{
		{Role: agentcore.RoleSystem, Content: task.SystemPrompt},
		{Role: agentcore.RoleUser, Content: task.UserPrompt},
	}
	return e.RunFrom(ctx, task, messages, tok, stream)
}

// RunFrom executes task starting from a caller-supplied transcript instead
// of a fresh [system, user] pair, so a caller that persists conversation
// state across runs (the session layer) can resume with full history.
func (e *Engine) RunFrom(ctx context.Context, task agentcore.AgentTask, messages []agentcore.Message, tok *token.Token, stream execctx.StreamFunc) agentcore.AgentResult {
	maxCycles := task.MaxCycles
	if maxCycles <= 0 {
		maxCycles = e.Options.MaxCycles
	}

	sharedState := agentcore.SharedState{}

	ectx := execctx.New(tok, stream, e.Store)
	state := &cycle.State{Task: task, Messages: messages, SharedState: sharedState}

	e.safeEmit(agentcore.Event{Type: agentcore.EventRunStarted, TaskID: task.TaskID, Payload: map[string]any{"model": task.Model}})
	e.incActiveRuns(1)
	defer e.incActiveRuns(-1)

	runCtx, runSpan := e.Tracer.StartRun(ctx, task.TaskID, task.Model)

	executor := func(cycleIndex int) (*agentcore.AgentResult, error) {
		cycleCtx, cycleSpan := e.Tracer.StartCycle(runCtx, task.TaskID, cycleIndex)

		start := time.Now()
		result, err := e.Runner.Run(cycleCtx, ectx, cycleIndex, state)
		if e.Metrics != nil {
			e.Metrics.RecordCycle(task.AgentType, time.Since(start).Seconds())
			e.Metrics.RecordTokens(state.TokenUsage.PromptTokens, state.TokenUsage.CompletionTokens)
		}
		End(cycleSpan, err)
		return result, err
	}

	snapshot := func() agentcore.AgentResult {
		return agentcore.AgentResult{
			Messages:    state.Messages,
			Cycles:      state.Cycles,
			SharedState: state.SharedState,
			TokenUsage:  state.TokenUsage,
			TodoList:    state.SharedState.TodoList(),
		}
	}

	result, err := e.Backend.Execute(maxCycles, executor, snapshot, ectx)
	End(runSpan, err)
	if err != nil {
		result = agentcore.AgentResult{
			Status:      agentcore.StatusFailed,
			Error:       fmt.Errorf("runtime: %w", err).Error(),
			Messages:    state.Messages,
			Cycles:      state.Cycles,
			SharedState: state.SharedState,
			TokenUsage:  state.TokenUsage,
			TodoList:    state.SharedState.TodoList(),
		}
	}

	e.emitTerminal(task.TaskID, result)
	if e.Metrics != nil {
		e.Metrics.RecordRun(string(result.Status))
	}
	return result
}

func (e *Engine) emitTerminal(taskID string, result agentcore.AgentResult) {
	payload := map[string]any{"status": string(result.Status)}
	switch result.Status {
	case agentcore.StatusCompleted:
		e.safeEmit(agentcore.Event{Type: agentcore.EventRunCompleted, TaskID: taskID, Payload: payload})
	case agentcore.StatusWaitUser:
		e.safeEmit(agentcore.Event{Type: agentcore.EventRunWaitUser, TaskID: taskID, Payload: payload})
	case agentcore.StatusMaxCycles:
		e.safeEmit(agentcore.Event{Type: agentcore.EventRunMaxCycles, TaskID: taskID, Payload: payload})
	case agentcore.StatusCancelled:
		e.safeEmit(agentcore.Event{Type: agentcore.EventRunCancelled, TaskID: taskID, Payload: payload})
	case agentcore.StatusFailed:
		e.safeEmit(agentcore.Event{Type: agentcore.EventRunCompleted, TaskID: taskID, Payload: payload})
	}
}

// safeEmit never lets a panicking sink escape into the engine, per spec.md
// §4.8's "must be non-throwing or errors swallowed" requirement; a
// recovered panic is logged as a warning via slog.Default().
func (e *Engine) safeEmit(event agentcore.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Default().Warn("runtime: event sink panicked", "event", string(event.Type), "panic", r)
		}
	}()
	e.Events.Emit(event)
}

func (e *Engine) incActiveRuns(delta int) {
	if e.Metrics == nil {
		return
	}
	if delta > 0 {
		e.Metrics.ActiveRuns.Inc()
	} else {
		e.Metrics.ActiveRuns.Dec()
	}
}
