// Package llmclient declares the LLMClient contract (§6) the cycle runner
// calls against, plus concrete adapters for three real model transports
// and one deterministic scripted client for tests.
package llmclient

import (
	"context"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/tools"
)

// Response is what a Client returns for one model call.
type Response struct {
	Content    string
	ToolCalls  []agentcore.ToolCall
	Raw        any
	TokenUsage agentcore.TokenUsage
}

// StreamFunc receives incremental content deltas, in wire order, while a
// Complete call is in flight.
type StreamFunc func(chunk string)

// Client is the engine's only dependency on a model transport. Errors
// propagate as Go errors; the cycle runner maps them to cycle_failed / run
// FAILED.
type Client interface {
	Complete(ctx context.Context, model string, messages []agentcore.Message, toolSchemas []tools.OpenAITool, stream StreamFunc) (Response, error)
}
