package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/tools"
)

// OpenAIClient adapts go-openai's chat completion API to the Client
// contract. It is the reference implementation for the JSON-encoded
// tool_calls.arguments string shape spec.md §3's ToolCall.Arguments models.
type OpenAIClient struct {
	client       *openai.Client
	defaultModel string
}

// OpenAIConfig configures OpenAIClient construction.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// NewOpenAIClient builds a Client backed by an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llmclient: openai API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = openai.GPT4o
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:       openai.NewClientWithConfig(config),
		defaultModel: cfg.DefaultModel,
	}, nil
}

// Complete implements Client.
func (o *OpenAIClient) Complete(ctx context.Context, model string, messages []agentcore.Message, toolSchemas []tools.OpenAITool, stream StreamFunc) (Response, error) {
	if model == "" {
		model = o.defaultModel
	}

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
		Stream:   stream != nil,
	}
	for _, t := range toolSchemas {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  json.RawMessage(t.Parameters),
			},
		})
	}

	if stream == nil {
		resp, err := o.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return Response{}, fmt.Errorf("llmclient: openai completion: %w", err)
		}
		return fromOpenAIResponse(resp), nil
	}

	return o.completeStreaming(ctx, req, stream)
}

func (o *OpenAIClient) completeStreaming(ctx context.Context, req openai.ChatCompletionRequest, stream StreamFunc) (Response, error) {
	s, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("llmclient: openai stream: %w", err)
	}
	defer s.Close()

	var result Response
	toolCallsByIndex := map[int]*agentcore.ToolCall{}
	var usage agentcore.TokenUsage

	for {
		chunk, err := s.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Response{}, fmt.Errorf("llmclient: openai stream recv: %w", err)
		}
		if chunk.Usage != nil {
			usage = agentcore.TokenUsage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				result.Content += choice.Delta.Content
				stream(choice.Delta.Content)
			}
			for _, tc := range choice.Delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				existing, ok := toolCallsByIndex[idx]
				if !ok {
					existing = &agentcore.ToolCall{}
					toolCallsByIndex[idx] = existing
				}
				if tc.ID != "" {
					existing.ID = tc.ID
				}
				if tc.Function.Name != "" {
					existing.Name = tc.Function.Name
				}
				existing.Arguments = fmt.Sprintf("%s%s", stringArg(existing.Arguments), tc.Function.Arguments)
			}
		}
	}

	result.TokenUsage = usage
	for i := 0; i < len(toolCallsByIndex); i++ {
		if tc, ok := toolCallsByIndex[i]; ok {
			result.ToolCalls = append(result.ToolCalls, *tc)
		}
	}
	return result, nil
}

func stringArg(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toOpenAIMessages(messages []agentcore.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			args, _ := json.Marshal(tc.Arguments)
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func fromOpenAIResponse(resp openai.ChatCompletionResponse) Response {
	result := Response{
		TokenUsage: agentcore.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Raw: resp,
	}
	if len(resp.Choices) == 0 {
		return result
	}
	choice := resp.Choices[0]
	result.Content = choice.Message.Content
	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, agentcore.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result
}
