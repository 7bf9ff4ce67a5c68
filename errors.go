package agentcore

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine's own control flow. Tool-local
// failures are represented instead by ToolError / ToolExecutionResult.ErrorCode
// and never escape as Go errors from the dispatcher.
var (
	// ErrCancelled is wrapped into the error returned by a CancellationToken
	// once Cancel has been called and Check is subsequently invoked.
	ErrCancelled = errors.New("operation was cancelled")

	// ErrMaxCycles names the outcome of a run that exhausts its cycle budget
	// without reaching a terminal directive. The engine neither returns nor
	// records it; callers observe that outcome via
	// AgentResult.Status == StatusMaxCycles instead.
	ErrMaxCycles = errors.New("reached max cycles without finish signal")

	// ErrToolNotFound is the underlying error for the tool_not_found error
	// code, surfaced when a registry lookup misses.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool is wrapped into the error tools.Registry.Register
	// returns when a name is already bound.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrHookAborted is wrapped with the hook's reason when a hook's verdict
	// is Abort.
	ErrHookAborted = errors.New("hook aborted operation")

	// ErrSessionNotFound is wrapped into the errors the session manager
	// returns when a session ID has no registered session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidResumeToken is returned by session token verification when a
	// resumption token fails signature or expiry checks.
	ErrInvalidResumeToken = errors.New("invalid resume token")

	// ErrWorkspacePathEscape is returned when a tool-supplied relative path
	// resolves outside the workspace root.
	ErrWorkspacePathEscape = errors.New("path escapes workspace")
)

// ToolErrorType classifies a tool-local failure for retry and logging
// decisions. It mirrors the error taxonomy tool authors are expected to
// report against.
type ToolErrorType string

// Tool error types.
const (
	ToolErrorNotFound    ToolErrorType = "not_found"
	ToolErrorInvalidArgs ToolErrorType = "invalid_input"
	ToolErrorTimeout     ToolErrorType = "timeout"
	ToolErrorNetwork     ToolErrorType = "network"
	ToolErrorPermission  ToolErrorType = "permission"
	ToolErrorRateLimit   ToolErrorType = "rate_limit"
	ToolErrorExecution   ToolErrorType = "execution"
	ToolErrorPanic       ToolErrorType = "panic"
	ToolErrorUnknown     ToolErrorType = "unknown"
)

// Dispatcher-assigned error codes. These populate ToolExecutionResult.ErrorCode
// and are distinct from ToolErrorType: the error code is the specific,
// machine-checkable reason; ToolErrorType is the coarser retry classification
// a handler author chooses when they build a ToolError.
const (
	ErrCodeInvalidArgumentsJSON    = "invalid_arguments_json"
	ErrCodeInvalidArgumentsPayload = "invalid_arguments_payload"
	ErrCodeInvalidArgumentsType    = "invalid_arguments_type"
	ErrCodeToolNotFound            = "tool_not_found"
	ErrCodeToolExecutionFailed     = "tool_execution_failed"
	ErrCodeTodoIncomplete          = "todo_incomplete"
	ErrCodeDangerousCommand        = "dangerous_command"
	ErrCodeSessionIDRequired       = "session_id_required"
	ErrCodeBackgroundCommandFailed = "background_command_failed"
	ErrCodeCoreInformationRequired = "core_information_required"
	ErrCodeUnsupportedImageFormat  = "unsupported_image_format"
	ErrCodeMultipleInProgressTodos = "multiple_in_progress_todos"
)

// ToolError is a structured, classified error for tool-local failures. The
// dispatcher does not consume it: a tools.Handler returns a
// ToolExecutionResult, and a handler panic (with a ToolError or any other
// value) becomes a tool_execution_failed result. Code carries to the
// result's ErrorCode only where the handler copies it there itself.
type ToolError struct {
	Type    ToolErrorType
	Code    string
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Type)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As chains.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a caller should expect a retry of the same
// tool call to plausibly succeed. Permission and invalid-input failures are
// never retryable; network, timeout, and rate-limit failures are.
func (e *ToolError) IsRetryable() bool {
	switch e.Type {
	case ToolErrorNetwork, ToolErrorTimeout, ToolErrorRateLimit:
		return true
	default:
		return false
	}
}

// NewToolError builds a ToolError with the given classification and message,
// wrapping cause if provided.
func NewToolError(t ToolErrorType, code, message string, cause error) *ToolError {
	return &ToolError{Type: t, Code: code, Message: message, Err: cause}
}

// HookError wraps ErrHookAborted with the hook's own reason so callers can
// distinguish an aborted cycle from an engine-internal failure via
// errors.Is(err, ErrHookAborted).
func HookError(hookName, reason string) error {
	return fmt.Errorf("%s: %w: %s", hookName, ErrHookAborted, reason)
}
