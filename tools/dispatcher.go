package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/agentcore"
)

// Dispatcher runs the argument-normalization → lookup → invocation →
// post-processing pipeline for a single ToolCall. It never returns a Go
// error for a tool-local failure: every outcome, including an unknown tool
// name or a handler panic, becomes an error-shaped ToolExecutionResult so
// the cycle runner can always append a tool-role message and continue.
type Dispatcher struct {
	Registry *Registry
	Validator *SchemaValidator
}

// NewDispatcher builds a Dispatcher over registry. validator may be nil to
// skip JSON Schema validation entirely.
func NewDispatcher(registry *Registry, validator *SchemaValidator) *Dispatcher {
	return &Dispatcher{Registry: registry, Validator: validator}
}

// Dispatch runs the full pipeline for call against toolCtx.
func (d *Dispatcher) Dispatch(toolCtx *Context, call agentcore.ToolCall) agentcore.ToolExecutionResult {
	args, errResult := normalizeArguments(call)
	if errResult != nil {
		errResult.ToolCallID = call.ID
		return *errResult
	}

	tool, err := d.Registry.Get(call.Name)
	if err != nil {
		return errorResult(call.ID, agentcore.ErrCodeToolNotFound,
			fmt.Sprintf("tool %q is not registered", call.Name))
	}

	if d.Validator != nil && len(tool.Schema) > 0 {
		if verr := d.Validator.Validate(tool.Name, tool.Schema, args); verr != nil {
			return errorResult(call.ID, agentcore.ErrCodeInvalidArgumentsPayload, verr.Error())
		}
	}

	result := d.invoke(tool, toolCtx, args, call.ID)
	return postProcess(result, call.ID)
}

// invoke calls the handler, trapping any panic and converting it into a
// tool_execution_failed result with the original message embedded, exactly
// as dispatcher.py's except-Exception clause does.
func (d *Dispatcher) invoke(tool Tool, toolCtx *Context, args map[string]any, callID string) (result agentcore.ToolExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(callID, agentcore.ErrCodeToolExecutionFailed,
				fmt.Sprintf("tool %q panicked: %v", tool.Name, r))
		}
	}()
	return tool.Handler(toolCtx, args)
}

// normalizeArguments implements dispatcher.py's _parse_arguments: nil → {},
// a map passes through, a string is JSON-decoded (empty/blank → {}), and
// any other type fails invalid_arguments_type.
func normalizeArguments(call agentcore.ToolCall) (map[string]any, *agentcore.ToolExecutionResult) {
	switch v := call.Arguments.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return map[string]any{}, nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			res := errorResult(call.ID, agentcore.ErrCodeInvalidArgumentsJSON,
				fmt.Sprintf("arguments is not valid JSON: %v", err))
			return nil, &res
		}
		asMap, ok := decoded.(map[string]any)
		if !ok {
			res := errorResult(call.ID, agentcore.ErrCodeInvalidArgumentsPayload,
				"arguments JSON did not decode to an object")
			return nil, &res
		}
		return asMap, nil
	default:
		res := errorResult(call.ID, agentcore.ErrCodeInvalidArgumentsType,
			fmt.Sprintf("arguments has unsupported type %T", call.Arguments))
		return nil, &res
	}
}

// postProcess applies dispatcher.py's result fix-ups: stamp a missing/placeholder
// tool_call_id, and coerce WAIT_USER+SUCCESS to WAIT_RESPONSE.
func postProcess(result agentcore.ToolExecutionResult, callID string) agentcore.ToolExecutionResult {
	if result.ToolCallID == "" || result.ToolCallID == "pending" {
		result.ToolCallID = callID
	}
	if result.Directive == agentcore.DirectiveWaitUser && result.StatusCode == agentcore.StatusCodeSuccess {
		result.StatusCode = agentcore.StatusCodeWaitResponse
	}
	return result
}

func errorResult(callID, code, message string) agentcore.ToolExecutionResult {
	return agentcore.ToolExecutionResult{
		ToolCallID: callID,
		Status:     agentcore.ToolStatusError,
		StatusCode: agentcore.StatusCodeError,
		Directive:  agentcore.DirectiveNone,
		ErrorCode:  code,
		Content:    message,
	}
}
