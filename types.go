// Package agentcore defines the shared data model for the agent runtime:
// messages, tool calls, tasks, results, and the other values that flow
// between the cycle engine, the tool registry, the memory compactor, and
// the session layer. Subpackages (token, execctx, tools, planner, memory,
// cycle, backend, runtime, session, hooks) implement behavior over these
// types; this package holds no behavior beyond small, obviously-safe
// helpers.
package agentcore

import "time"

// Role identifies the author of a Message.
type Role string

// Message roles recognized by the engine.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// MemorySummaryName is the Message.Name used to mark a synthetic compaction
// summary, so the memory compactor can find and drop a stale one before
// recomputing.
const MemorySummaryName = "memory_summary"

// Message is one entry in a conversation transcript. A tool-role message
// must reference, via ToolCallID, a tool_calls entry on the immediately
// preceding assistant message.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a single tool invocation requested by the model. Arguments
// may arrive as a JSON-encoded string (some providers emit it that way) or
// already decoded; the dispatcher normalizes it to a map before the
// handler ever sees it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments any    `json:"arguments"`
}

// ToolResultStatus is the coarse-grained outcome of a tool dispatch.
type ToolResultStatus string

// Tool result statuses.
const (
	ToolStatusSuccess ToolResultStatus = "success"
	ToolStatusError   ToolResultStatus = "error"
)

// ToolResultStatusCode refines ToolResultStatus with control-flow meaning
// the cycle runner acts on.
type ToolResultStatusCode string

// Tool result status codes.
const (
	StatusCodeSuccess      ToolResultStatusCode = "SUCCESS"
	StatusCodeError        ToolResultStatusCode = "ERROR"
	StatusCodeRunning      ToolResultStatusCode = "RUNNING"
	StatusCodeWaitResponse ToolResultStatusCode = "WAIT_RESPONSE"
)

// ToolDirective signals engine-level control flow from a tool result.
type ToolDirective string

// Tool directives.
const (
	DirectiveNone     ToolDirective = "NONE"
	DirectiveFinish   ToolDirective = "FINISH"
	DirectiveWaitUser ToolDirective = "WAIT_USER"
)

// ToolExecutionResult is what a tool handler (or the dispatcher, on its
// behalf) returns for a single ToolCall.
type ToolExecutionResult struct {
	ToolCallID string                 `json:"tool_call_id"`
	Status     ToolResultStatus       `json:"status"`
	StatusCode ToolResultStatusCode   `json:"status_code"`
	Directive  ToolDirective          `json:"directive"`
	ErrorCode  string                 `json:"error_code,omitempty"`
	Content    string                 `json:"content"`
	Metadata   map[string]any         `json:"metadata,omitempty"`
	ImageURL   string                 `json:"image_url,omitempty"`
	ImagePath  string                 `json:"image_path,omitempty"`
}

// TokenUsage accumulates prompt/completion token counts across cycles.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add folds another usage sample into u and returns the result; it does
// not mutate the receiver so callers can use it in accumulation loops
// without aliasing surprises.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// CycleRecord is an immutable log entry for one completed cycle.
type CycleRecord struct {
	Index       int                    `json:"index"`
	LLMResponse string                 `json:"llm_response"`
	ToolCalls   []ToolCall             `json:"tool_calls"`
	ToolResults []ToolExecutionResult  `json:"tool_results"`
	TokenUsage  TokenUsage             `json:"token_usage"`
	ElapsedMS   int64                  `json:"elapsed_ms"`
	Events      []string               `json:"events,omitempty"`
}

// AgentTask describes one run. It is immutable once the run starts; the
// runtime never mutates a task it was given.
type AgentTask struct {
	TaskID                     string
	Model                      string
	SystemPrompt               string
	UserPrompt                 string
	MaxCycles                  int
	AllowInterruption          bool
	UseWorkspace               bool
	AgentType                  string
	SubAgentsEnabled           bool
	NativeMultimodal           bool
	ExtraToolNames             []string
	ExcludeTools               []string
	MemoryThresholdPercentage  *int
	Metadata                   map[string]any
}

// AgentStatus is the terminal (or wait-suspend) state of a run.
type AgentStatus string

// Agent statuses.
const (
	StatusCompleted AgentStatus = "COMPLETED"
	StatusWaitUser  AgentStatus = "WAIT_USER"
	StatusFailed    AgentStatus = "FAILED"
	StatusMaxCycles AgentStatus = "MAX_CYCLES"
	StatusCancelled AgentStatus = "CANCELLED"
)

// IsTerminal reports whether s ends the run (as opposed to WAIT_USER, which
// merely suspends it pending continue_run).
func (s AgentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusMaxCycles, StatusCancelled:
		return true
	default:
		return false
	}
}

// SharedState is the per-run mutable map threaded through tool contexts and
// hooks. Known keys are listed below; unknown keys are opaque to the
// engine and may be used freely by tools.
type SharedState map[string]any

// Known SharedState keys.
const (
	SharedStateTodoList     = "todo_list"
	SharedStateMemoryNotes  = "memory_notes"
)

// TodoItem is the shape expected under SharedStateTodoList.
type TodoItem struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// TodoList extracts and type-asserts the shared-state todo list. An entry
// that is not well-formed does not cause a panic; it is kept as a not-done
// item (with whatever title could be read) so the completion gate stays
// conservative.
func (s SharedState) TodoList() []TodoItem {
	raw, ok := s[SharedStateTodoList]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []TodoItem:
		return v
	case []any:
		items := make([]TodoItem, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				items = append(items, TodoItem{Done: false})
				continue
			}
			item := TodoItem{}
			if title, ok := m["title"].(string); ok {
				item.Title = title
			}
			if done, ok := m["done"].(bool); ok {
				item.Done = done
			}
			items = append(items, item)
		}
		return items
	default:
		return nil
	}
}

// AgentResult is the outcome of a run.
type AgentResult struct {
	Status      AgentStatus
	FinalAnswer string
	WaitReason  string
	Error       string
	Messages    []Message
	Cycles      []CycleRecord
	SharedState SharedState
	TokenUsage  TokenUsage
	TodoList    []TodoItem
}

// Checkpoint is a serializable snapshot sufficient to resume a run at a
// cycle boundary.
type Checkpoint struct {
	TaskID      string        `json:"task_id"`
	CycleIndex  int           `json:"cycle_index"`
	Status      AgentStatus   `json:"status"`
	Messages    []Message     `json:"messages"`
	Cycles      []CycleRecord `json:"cycles"`
	SharedState SharedState   `json:"shared_state"`
	SavedAt     time.Time     `json:"saved_at"`
}
