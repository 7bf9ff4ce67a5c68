// Package tools implements the capability-scoped tool registry and
// dispatch pipeline (C3): a name→handler map with argument normalization,
// directive translation, and the dispatcher error taxonomy.
//
// Grounded on the original implementation's tools/registry.py,
// tools/dispatcher.py, and tools/base.py, restyled after the teacher's
// internal/agent/tool_registry.go (sync.RWMutex-guarded map, constant
// name/size limits, normalized tool names).
package tools

import (
	"encoding/json"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/execctx"
)

// MaxToolNameLength and MaxArgumentsSize mirror the teacher's
// tool_registry.go constants. Registry.Register enforces MaxToolNameLength;
// the dispatcher does not check argument size against MaxArgumentsSize.
const (
	MaxToolNameLength = 128
	MaxArgumentsSize  = 1 << 20 // 1 MiB
)

// Context is what a handler receives alongside the normalized arguments. It
// must not be retained past the call that received it.
type Context struct {
	// Workspace is the canonicalized workspace root a handler's file paths
	// are resolved against. Empty if the task does not use a workspace.
	Workspace string

	// SharedState is the per-run mutable map; handlers read and write it
	// directly, the same reference every call within a run shares.
	SharedState agentcore.SharedState

	// CycleIndex is the cycle currently being executed.
	CycleIndex int

	// Exec carries the cancellation token, stream sink, and state store for
	// this run.
	Exec *execctx.Context

	// FileBackend is the workspace I/O handle file-oriented tools dispatch
	// against (github.com/haasonsaas/agentcore/workspace.Local or .InMemory
	// satisfy this structurally). Nil if the task does not use a workspace.
	FileBackend FileBackend

	// SubTaskRunner, if non-nil, lets a handler spawn and run a nested task
	// using the same engine (sub-agent tools). It is an external
	// collaborator; CORE only carries the slot.
	SubTaskRunner func(task agentcore.AgentTask) (agentcore.AgentResult, error)
}

// FileBackend is the minimal file I/O surface a workspace tool handler
// needs; it matches workspace.Backend's method set structurally so this
// package never has to import workspace.
type FileBackend interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	ListFiles(dir string) ([]string, error)
}

// Handler is the uniform signature every tool implements: given a Context
// and normalized arguments, produce a result. Handlers should be
// idempotent when possible and must not retain ctx beyond the call.
type Handler func(ctx *Context, args map[string]any) agentcore.ToolExecutionResult

// Tool binds a name and optional JSON Schema to a Handler. Schema is used
// both to advertise the tool to the LLM client (Registry.SchemasFor) and,
// when non-empty and the Dispatcher has a SchemaValidator, to validate
// normalized arguments before the handler runs.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Handler     Handler
}
