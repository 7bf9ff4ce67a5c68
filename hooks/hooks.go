// Package hooks implements the ordered pre/post interceptor chain (C10).
// Each hook implements some subset of the Hook interface; NoopHook
// supplies no-op defaults so a hook author embeds it and overrides only
// the methods it cares about, the same "implement a subset" contract
// spec.md §4.10 describes for a dynamically-typed host language.
//
// Styled after the field-naming conventions of the teacher's
// internal/hooks/tool_hooks.go ToolHookContext, generalized to the
// Continue/Patch/Abort fold semantics spec.md §9 calls for.
package hooks

import "github.com/haasonsaas/agentcore"

// BeforeLLMEvent carries the state visible to a before-LLM hook.
type BeforeLLMEvent struct {
	TaskID     string
	CycleIndex int
	Messages   []agentcore.Message
	ToolNames  []string
}

// LLMPatch is what a before-LLM hook may return to alter cycle execution.
// A nil patch, or one with Abort false and both slices nil, means
// "continue unchanged".
type LLMPatch struct {
	Messages []agentcore.Message
	Tools    []string
	Abort    bool
	Reason   string
}

// AfterLLMEvent carries the model's response for observation-only hooks.
type AfterLLMEvent struct {
	TaskID      string
	CycleIndex  int
	Content     string
	ToolCalls   []agentcore.ToolCall
	TokenUsage  agentcore.TokenUsage
}

// BeforeToolCallEvent carries a single pending tool call.
type BeforeToolCallEvent struct {
	TaskID     string
	CycleIndex int
	Call       agentcore.ToolCall
}

// ToolPatch is what a before-tool-call hook may return.
type ToolPatch struct {
	Arguments any
	Abort     bool
	Reason    string
}

// AfterToolCallEvent carries a tool call's result for observation-only hooks.
type AfterToolCallEvent struct {
	TaskID     string
	CycleIndex int
	Call       agentcore.ToolCall
	Result     agentcore.ToolExecutionResult
}

// BeforeMemoryCompactEvent fires just before the memory compactor runs.
type BeforeMemoryCompactEvent struct {
	TaskID        string
	CycleIndex    int
	MessageCount  int
	TotalChars    int
}

// Hook is the full interceptor contract. Embed NoopHook to implement only
// the methods relevant to a given hook.
type Hook interface {
	BeforeLLM(event BeforeLLMEvent) (*LLMPatch, error)
	AfterLLM(event AfterLLMEvent)
	BeforeToolCall(event BeforeToolCallEvent) (*ToolPatch, error)
	AfterToolCall(event AfterToolCallEvent)
	BeforeMemoryCompact(event BeforeMemoryCompactEvent)
}

// NoopHook implements Hook with no-op defaults. Embed it in a concrete hook
// type to avoid writing out every method.
type NoopHook struct{}

func (NoopHook) BeforeLLM(BeforeLLMEvent) (*LLMPatch, error)          { return nil, nil }
func (NoopHook) AfterLLM(AfterLLMEvent)                               {}
func (NoopHook) BeforeToolCall(BeforeToolCallEvent) (*ToolPatch, error) { return nil, nil }
func (NoopHook) AfterToolCall(AfterToolCallEvent)                     {}
func (NoopHook) BeforeMemoryCompact(BeforeMemoryCompactEvent)         {}
