package llmclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/haasonsaas/agentcore"
	"github.com/haasonsaas/agentcore/tools"
)

// BedrockClient adapts bedrockruntime's Converse/ConverseStream API to the
// Client contract, demonstrating the same interface over a non-HTTP-JSON
// transport. Grounded on the teacher's
// internal/agent/providers/bedrock.go ConverseStream usage.
type BedrockClient struct {
	client       *bedrockruntime.Client
	defaultModel string
}

// BedrockConfig configures BedrockClient construction.
type BedrockConfig struct {
	Region       string
	DefaultModel string
}

// NewBedrockClient builds a Client backed by AWS Bedrock, using the default
// AWS credential chain (environment, IAM role, or shared config).
func NewBedrockClient(ctx context.Context, cfg BedrockConfig) (*BedrockClient, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "anthropic.claude-3-sonnet-20240229-v1:0"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("llmclient: load aws config: %w", err)
	}
	return &BedrockClient{
		client:       bedrockruntime.NewFromConfig(awsCfg),
		defaultModel: cfg.DefaultModel,
	}, nil
}

// Complete implements Client using ConverseStream so stream deltas forward
// to the caller's StreamFunc in wire order.
func (b *BedrockClient) Complete(ctx context.Context, model string, messages []agentcore.Message, toolSchemas []tools.OpenAITool, stream StreamFunc) (Response, error) {
	if model == "" {
		model = b.defaultModel
	}

	req := &bedrockruntime.ConverseStreamInput{
		ModelId:  aws.String(model),
		Messages: toBedrockMessages(messages),
	}
	if system := systemPromptOf(messages); system != "" {
		req.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: system},
		}
	}

	out, err := b.client.ConverseStream(ctx, req)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return Response{}, fmt.Errorf("llmclient: bedrock converse (%s): %w", apiErr.ErrorCode(), err)
		}
		return Response{}, fmt.Errorf("llmclient: bedrock converse: %w", err)
	}

	result := Response{}
	eventStream := out.GetStream()
	defer eventStream.Close()

	for event := range eventStream.Events() {
		delta, ok := event.(*types.ConverseStreamOutputMemberContentBlockDelta)
		if !ok {
			continue
		}
		textDelta, ok := delta.Value.Delta.(*types.ContentBlockDeltaMemberText)
		if !ok {
			continue
		}
		result.Content += textDelta.Value
		if stream != nil {
			stream(textDelta.Value)
		}
	}
	if err := eventStream.Err(); err != nil {
		return Response{}, fmt.Errorf("llmclient: bedrock stream: %w", err)
	}

	result.Raw = out
	return result, nil
}

func systemPromptOf(messages []agentcore.Message) string {
	for _, m := range messages {
		if m.Role == agentcore.RoleSystem {
			return m.Content
		}
	}
	return ""
}

func toBedrockMessages(messages []agentcore.Message) []types.Message {
	out := make([]types.Message, 0, len(messages))
	for _, m := range messages {
		var role types.ConversationRole
		switch m.Role {
		case agentcore.RoleUser, agentcore.RoleTool:
			role = types.ConversationRoleUser
		case agentcore.RoleAssistant:
			role = types.ConversationRoleAssistant
		default:
			continue
		}
		out = append(out, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}
	return out
}
