package llmclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/tools"
)

// AnthropicClient adapts anthropic-sdk-go's Messages API to the Client
// contract, grounded on the teacher's internal/agent/providers/anthropic.go
// (message/tool conversion shape, streaming-to-callback pattern).
type AnthropicClient struct {
	client       anthropic.Client
	defaultModel string
}

// AnthropicConfig configures AnthropicClient construction.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// NewAnthropicClient builds a Client backed by the Anthropic API.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llmclient: anthropic API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-sonnet-4-20250514"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicClient{
		client:       anthropic.NewClient(opts...),
		defaultModel: cfg.DefaultModel,
	}, nil
}

// Complete implements Client.
func (a *AnthropicClient) Complete(ctx context.Context, model string, messages []agentcore.Message, toolSchemas []tools.OpenAITool, stream StreamFunc) (Response, error) {
	if model == "" {
		model = a.defaultModel
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
	}

	var system string
	var apiMessages []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case agentcore.RoleSystem:
			if system == "" {
				system = m.Content
			} else {
				system += "\n" + m.Content
			}
		case agentcore.RoleUser:
			apiMessages = append(apiMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case agentcore.RoleAssistant:
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case agentcore.RoleTool:
			content, _ := json.Marshal(m.Content)
			apiMessages = append(apiMessages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, string(content), false)))
		}
	}
	params.Messages = apiMessages
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: system}}
	}

	if len(toolSchemas) > 0 {
		var apiTools []anthropic.ToolUnionParam
		for _, t := range toolSchemas {
			apiTools = append(apiTools, anthropic.ToolUnionParam{
				OfTool: &anthropic.ToolParam{
					Name:        t.Name,
					Description: anthropic.String(t.Description),
				},
			})
		}
		params.Tools = apiTools
	}

	result := Response{}
	str := a.client.Messages.NewStreaming(ctx, params)
	for str.Next() {
		event := str.Current()
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if textDelta, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok {
				result.Content += textDelta.Text
				if stream != nil {
					stream(textDelta.Text)
				}
			}
		}
	}
	if err := str.Err(); err != nil {
		return Response{}, fmt.Errorf("llmclient: anthropic stream: %w", err)
	}

	result.Raw = str
	return result, nil
}
