// Package builtin provides reference implementations for the tools the
// planner treats as mandatory or fixed-group (task_finish, ask_user,
// compress_memory) plus a minimal workspace file pair, so the dispatcher
// can be exercised end to end without an external tool collaborator.
package builtin

import (
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/planner"
	"github.com/haasonsaas/agentcore/tools"
)

// TaskFinishSchema is the JSON Schema advertised for the task_finish tool.
var TaskFinishSchema = json.RawMessage(`{
	"type": "object",
	"properties": {"message": {"type": "string"}},
	"required": ["message"]
}`)

// TaskFinish enforces the todo-completion invariant (spec.md §7): it must
// fail with todo_incomplete if any shared_state.todo_list item is not done,
// so the model can finish pending work before the run is allowed to end.
func TaskFinish(ctx *tools.Context, args map[string]any) agentcore.ToolExecutionResult {
	message, _ := args["message"].(string)

	for _, item := range ctx.SharedState.TodoList() {
		if !item.Done {
			return agentcore.ToolExecutionResult{
				Status:     agentcore.ToolStatusError,
				StatusCode: agentcore.StatusCodeError,
				Directive:  agentcore.DirectiveNone,
				ErrorCode:  agentcore.ErrCodeTodoIncomplete,
				Content:    fmt.Sprintf("cannot finish: todo item %q is not done", item.Title),
			}
		}
	}

	return agentcore.ToolExecutionResult{
		Status:     agentcore.ToolStatusSuccess,
		StatusCode: agentcore.StatusCodeSuccess,
		Directive:  agentcore.DirectiveFinish,
		Content:    message,
	}
}

// AskUserSchema is the JSON Schema advertised for the ask_user tool.
var AskUserSchema = json.RawMessage(`{
	"type": "object",
	"properties": {"question": {"type": "string"}},
	"required": ["question"]
}`)

// AskUser emits the WAIT_USER directive so the cycle runner suspends the
// run with wait_reason set to the question.
func AskUser(_ *tools.Context, args map[string]any) agentcore.ToolExecutionResult {
	question, _ := args["question"].(string)
	return agentcore.ToolExecutionResult{
		Status:     agentcore.ToolStatusSuccess,
		StatusCode: agentcore.StatusCodeSuccess,
		Directive:  agentcore.DirectiveWaitUser,
		Content:    question,
		Metadata:   map[string]any{"question": question},
	}
}

// CompressMemoryRequestedKey is the SharedState key CompressMemory sets;
// the cycle runner consults it at the top of the next cycle to force a
// compaction pass regardless of the threshold percentage.
const CompressMemoryRequestedKey = "compress_memory_requested"

// CompressMemory lets an agent request compaction explicitly, mirroring
// the threshold-driven path the tool planner's compress_memory step
// triggers automatically.
func CompressMemory(ctx *tools.Context, _ map[string]any) agentcore.ToolExecutionResult {
	ctx.SharedState[CompressMemoryRequestedKey] = true
	return agentcore.ToolExecutionResult{
		Status:     agentcore.ToolStatusSuccess,
		StatusCode: agentcore.StatusCodeSuccess,
		Directive:  agentcore.DirectiveNone,
		Content:    "memory compaction requested for next cycle",
	}
}

// ReadFileSchema is the JSON Schema advertised for the read_file tool.
var ReadFileSchema = json.RawMessage(`{
	"type": "object",
	"properties": {"path": {"type": "string"}},
	"required": ["path"]
}`)

// ReadFile resolves its path argument against the workspace root and reads
// it through the configured FileBackend.
func ReadFile(ctx *tools.Context, args map[string]any) agentcore.ToolExecutionResult {
	raw, _ := args["path"].(string)
	if raw == "" {
		return errorResult(agentcore.ErrCodeInvalidArgumentsPayload, "path is required")
	}
	resolved, err := ctx.ResolveWorkspacePath(raw)
	if err != nil {
		return errorResult(agentcore.ErrCodeInvalidArgumentsPayload, err.Error())
	}
	if ctx.FileBackend == nil {
		return errorResult(agentcore.ErrCodeToolExecutionFailed, "no workspace backend configured")
	}
	data, err := ctx.FileBackend.ReadFile(resolved)
	if err != nil {
		return errorResult(agentcore.ErrCodeToolExecutionFailed, err.Error())
	}
	return agentcore.ToolExecutionResult{
		Status:     agentcore.ToolStatusSuccess,
		StatusCode: agentcore.StatusCodeSuccess,
		Directive:  agentcore.DirectiveNone,
		Content:    string(data),
	}
}

// WriteFileSchema is the JSON Schema advertised for the write_file tool.
var WriteFileSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"path": {"type": "string"},
		"content": {"type": "string"}
	},
	"required": ["path", "content"]
}`)

// WriteFile resolves its path argument against the workspace root and
// writes content through the configured FileBackend.
func WriteFile(ctx *tools.Context, args map[string]any) agentcore.ToolExecutionResult {
	raw, _ := args["path"].(string)
	content, _ := args["content"].(string)
	if raw == "" {
		return errorResult(agentcore.ErrCodeInvalidArgumentsPayload, "path is required")
	}
	resolved, err := ctx.ResolveWorkspacePath(raw)
	if err != nil {
		return errorResult(agentcore.ErrCodeInvalidArgumentsPayload, err.Error())
	}
	if ctx.FileBackend == nil {
		return errorResult(agentcore.ErrCodeToolExecutionFailed, "no workspace backend configured")
	}
	if err := ctx.FileBackend.WriteFile(resolved, []byte(content)); err != nil {
		return errorResult(agentcore.ErrCodeToolExecutionFailed, err.Error())
	}
	return agentcore.ToolExecutionResult{
		Status:     agentcore.ToolStatusSuccess,
		StatusCode: agentcore.StatusCodeSuccess,
		Directive:  agentcore.DirectiveNone,
		Content:    "written",
	}
}

func errorResult(code, message string) agentcore.ToolExecutionResult {
	return agentcore.ToolExecutionResult{
		Status:     agentcore.ToolStatusError,
		StatusCode: agentcore.StatusCodeError,
		Directive:  agentcore.DirectiveNone,
		ErrorCode:  code,
		Content:    message,
	}
}

// Register binds every reference tool handler in this package to registry
// under the names the planner (package planner) expects.
func Register(registry *tools.Registry) error {
	return registry.RegisterMany([]tools.Tool{
		{Name: planner.TaskFinishTool, Description: "Finish the current task.", Schema: TaskFinishSchema, Handler: TaskFinish},
		{Name: planner.AskUserTool, Description: "Ask the user a clarifying question and suspend the run.", Schema: AskUserSchema, Handler: AskUser},
		{Name: planner.CompressMemoryTool, Description: "Request memory compaction before the next cycle.", Handler: CompressMemory},
		{Name: "read_file", Description: "Read a file from the workspace.", Schema: ReadFileSchema, Handler: ReadFile},
		{Name: "write_file", Description: "Write a file to the workspace.", Schema: WriteFileSchema, Handler: WriteFile},
	})
}
