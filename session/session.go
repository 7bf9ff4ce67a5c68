// Package session implements the session layer (C9): a persistent
// conversation wrapper around the runtime engine that queues steer and
// follow-up messages, exposes prompt/continue_run/cancel operations, and
// fans every emitted event out to subscribers.
//
// Grounded on the original implementation's runtime/session.py Session
// class; restyled as a struct owning its own runtime.Engine (and therefore
// its own hooks.Manager), since the steer-injection mechanism is
// implemented as a session-scoped BeforeLLM hook rather than a parameter
// threaded through the engine.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/hooks"
	"github.com/haasonsaas/agentcore/runtime"
	"github.com/haasonsaas/agentcore/token"
)

// RunState is a session's per-run state machine position, distinct from
// agentcore.AgentStatus in that it adds IDLE/RUNNING, the two states no run
// result ever carries.
type RunState string

// Session run states (spec.md §4.9).
const (
	RunStateIdle      RunState = "IDLE"
	RunStateRunning   RunState = "RUNNING"
	RunStateCompleted RunState = "COMPLETED"
	RunStateWaitUser  RunState = "WAIT_USER"
	RunStateFailed    RunState = "FAILED"
	RunStateCancelled RunState = "CANCELLED"
	RunStateMaxCycles RunState = "MAX_CYCLES"
)

// TaskTemplate carries the fixed per-session task configuration (model,
// system prompt, tool enablement) that every run in this session reuses;
// only the user-facing prompt text varies call to call.
type TaskTemplate struct {
	Model                     string
	SystemPrompt              string
	MaxCycles                 int
	AllowInterruption         bool
	UseWorkspace              bool
	AgentType                 string
	SubAgentsEnabled          bool
	NativeMultimodal          bool
	ExtraToolNames            []string
	ExcludeTools              []string
	MemoryThresholdPercentage *int
	Metadata                  map[string]any
}

// Session holds a persistent transcript across multiple runs, plus the
// steer/follow-up queues and subscriber list spec.md §4.9 describes.
type Session struct {
	ID       string
	Engine   *runtime.Engine
	Template TaskTemplate

	mu            sync.Mutex
	messages      []agentcore.Message
	steerQueue    []string
	followUpQueue []string
	state         RunState
	lastResult    *agentcore.AgentResult
	subscribers   []agentcore.EventSink
	currentToken  *token.Token
}

// New builds a Session over engine, registering this session's steer hook
// into engine.Hooks. engine should not be shared with any other session:
// the hook manager it owns is session-scoped.
func New(id string, engine *runtime.Engine, template TaskTemplate) *Session {
	s := &Session{
		ID:       id,
		Engine:   engine,
		Template: template,
		state:    RunStateIdle,
	}
	engine.Hooks.Register(&steerHook{session: s})
	engine.Events = agentcore.EventSinkFunc(s.broadcast)
	return s
}

// broadcast forwards an engine-emitted event to every subscriber.
func (s *Session) broadcast(event agentcore.Event) {
	s.mu.Lock()
	subs := make([]agentcore.EventSink, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Emit(event)
	}
}

// Subscribe registers handler to receive every event this session's runs
// emit, plus the four session_* events.
func (s *Session) Subscribe(handler agentcore.EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, handler)
}

// Steer enqueues text to be injected as a user-role message before the
// next cycle's LLM call, whether that cycle belongs to an in-flight run or
// a future one.
func (s *Session) Steer(text string) {
	s.mu.Lock()
	s.steerQueue = append(s.steerQueue, text)
	s.mu.Unlock()
	s.broadcast(agentcore.Event{Type: agentcore.EventSessionSteerQueued, TaskID: s.ID, Payload: map[string]any{"text": text}})
}

// FollowUp enqueues text to be run as a subsequent prompt once the current
// one completes successfully.
func (s *Session) FollowUp(text string) {
	s.mu.Lock()
	s.followUpQueue = append(s.followUpQueue, text)
	s.mu.Unlock()
	s.broadcast(agentcore.Event{Type: agentcore.EventSessionFollowUpQueued, TaskID: s.ID, Payload: map[string]any{"text": text}})
}

// Cancel triggers the cancellation token of whatever run is currently in
// flight. It is a no-op if no run is active.
func (s *Session) Cancel(reason string) {
	s.mu.Lock()
	tok := s.currentToken
	s.mu.Unlock()
	if tok != nil {
		tok.Cancel(reason)
	}
}

// State reports the session's current run state.
func (s *Session) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastResult returns the most recently completed run's AgentResult, or nil
// if no run has finished yet.
func (s *Session) LastResult() *agentcore.AgentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Prompt builds a task whose user message is text, runs it, and — on
// COMPLETED with autoFollowUp set — drains the follow-up queue in FIFO
// order by recursively prompting with each entry. All runs in the chain
// share this session's transcript.
func (s *Session) Prompt(ctx context.Context, text string, autoFollowUp bool) (agentcore.AgentResult, error) {
	s.mu.Lock()
	if s.state == RunStateRunning {
		s.mu.Unlock()
		return agentcore.AgentResult{}, fmt.Errorf("session: %s: a run is already in flight", s.ID)
	}
	s.state = RunStateRunning
	tok := token.New()
	s.currentToken = tok
	history := s.messages
	if len(history) == 0 && s.Template.SystemPrompt != "" {
		history = []agentcore.Message{{Role: agentcore.RoleSystem, Content: s.Template.SystemPrompt}}
	}
	messages := append(append([]agentcore.Message{}, history...), agentcore.Message{Role: agentcore.RoleUser, Content: text})
	s.mu.Unlock()

	s.broadcast(agentcore.Event{Type: agentcore.EventSessionRunStart, TaskID: s.ID})

	task := s.buildTask()
	result := s.Engine.RunFrom(ctx, task, messages, tok, nil)

	s.mu.Lock()
	s.messages = result.Messages
	s.lastResult = &result
	s.currentToken = nil
	s.state = stateFromStatus(result.Status)
	s.mu.Unlock()

	s.broadcast(agentcore.Event{Type: agentcore.EventSessionRunEnd, TaskID: s.ID, Payload: map[string]any{"status": string(result.Status)}})

	if result.Status == agentcore.StatusCompleted && autoFollowUp {
		s.mu.Lock()
		next := s.popFollowUp()
		s.mu.Unlock()
		for next != "" {
			followResult, err := s.Prompt(ctx, next, autoFollowUp)
			if err != nil {
				return followResult, err
			}
			result = followResult
			s.mu.Lock()
			next = s.popFollowUp()
			s.mu.Unlock()
		}
	}

	return result, nil
}

// ContinueRun is only valid when the last run suspended with WAIT_USER; it
// appends userReply as a user message and resumes as a new run.
func (s *Session) ContinueRun(ctx context.Context, userReply string) (agentcore.AgentResult, error) {
	s.mu.Lock()
	if s.state != RunStateWaitUser {
		state := s.state
		s.mu.Unlock()
		return agentcore.AgentResult{}, fmt.Errorf("session: %s: continue_run is only valid after WAIT_USER, current state is %s", s.ID, state)
	}
	s.mu.Unlock()

	return s.Prompt(ctx, userReply, true)
}

func (s *Session) popFollowUp() string {
	if len(s.followUpQueue) == 0 {
		return ""
	}
	next := s.followUpQueue[0]
	s.followUpQueue = s.followUpQueue[1:]
	return next
}

// drainSteer removes and returns every currently queued steer message, so
// a steer enqueued after this drain call applies to the next cycle, not
// this one (spec.md §4.9's ordering guarantee).
func (s *Session) drainSteer() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steerQueue) == 0 {
		return nil
	}
	out := s.steerQueue
	s.steerQueue = nil
	return out
}

func (s *Session) buildTask() agentcore.AgentTask {
	t := s.Template
	return agentcore.AgentTask{
		TaskID:                    uuid.NewString(),
		Model:                     t.Model,
		SystemPrompt:              t.SystemPrompt,
		MaxCycles:                 t.MaxCycles,
		AllowInterruption:         t.AllowInterruption,
		UseWorkspace:              t.UseWorkspace,
		AgentType:                 t.AgentType,
		SubAgentsEnabled:          t.SubAgentsEnabled,
		NativeMultimodal:          t.NativeMultimodal,
		ExtraToolNames:            t.ExtraToolNames,
		ExcludeTools:              t.ExcludeTools,
		MemoryThresholdPercentage: t.MemoryThresholdPercentage,
		Metadata:                  t.Metadata,
	}
}

func stateFromStatus(status agentcore.AgentStatus) RunState {
	switch status {
	case agentcore.StatusCompleted:
		return RunStateCompleted
	case agentcore.StatusWaitUser:
		return RunStateWaitUser
	case agentcore.StatusFailed:
		return RunStateFailed
	case agentcore.StatusCancelled:
		return RunStateCancelled
	case agentcore.StatusMaxCycles:
		return RunStateMaxCycles
	default:
		return RunStateIdle
	}
}

// steerHook is the BeforeLLM hook that injects queued steer messages as
// user-role messages immediately before each cycle's LLM call.
type steerHook struct {
	hooks.NoopHook
	session *Session
}

func (h *steerHook) BeforeLLM(event hooks.BeforeLLMEvent) (*hooks.LLMPatch, error) {
	pending := h.session.drainSteer()
	if len(pending) == 0 {
		return nil, nil
	}
	patched := append([]agentcore.Message{}, event.Messages...)
	for _, text := range pending {
		patched = append(patched, agentcore.Message{Role: agentcore.RoleUser, Content: text})
	}
	return &hooks.LLMPatch{Messages: patched}, nil
}
