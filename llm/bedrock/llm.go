// Package bedrock implements configbot.Completer on the Bedrock Converse API.
package bedrock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"configbot"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	// defaultModelID is an inference profile ID, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Used when a request leaves MaxTokens unset.
	defaultMaxTokens = 1024
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type LLMOptions struct {
	ModelID string
}

type LLMClient struct {
	brc  bedrockRuntimeClient
	opts LLMOptions
}

func NewLLMClient(brc bedrockRuntimeClient, opts LLMOptions) *LLMClient {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	return &LLMClient{
		brc:  brc,
		opts: opts,
	}
}

// Complete sends the prompt as a single user turn.
func (c *LLMClient) Complete(ctx context.Context, cr configbot.CompletionRequest) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.opts.ModelID, "prompt_len", len(cr.Prompt))

	maxTokens := int32(cr.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.opts.ModelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: cr.Prompt}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(maxTokens),
			Temperature: aws.Float32(float32(cr.Temperature)),
		},
	}
	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock invoke failed", "error", err)
		return "", fmt.Errorf("bedrock converse failed: %w", err)
	}

	var latency int64
	var inTok, outTok int32
	if out.Metrics != nil {
		latency = aws.ToInt64(out.Metrics.LatencyMs)
	}
	if out.Usage != nil {
		inTok, outTok = aws.ToInt32(out.Usage.InputTokens), aws.ToInt32(out.Usage.OutputTokens)
	}
	slog.Info("LLM_CLIENT: Bedrock invoke succeeded",
		"stop_reason", out.StopReason,
		"latency_ms", latency,
		"input_tokens", inTok,
		"output_tokens", outTok,
	)

	switch out.StopReason {
	case types.StopReasonGuardrailIntervened, types.StopReasonContentFiltered:
		return "", fmt.Errorf("model response blocked by Bedrock safety filters")
	case types.StopReasonMaxTokens:
		// A truncated edit usually lacks the closing brace; extraction reports it.
		slog.Warn("LLM_CLIENT: Model hit MaxTokens limit", "max_tokens", maxTokens)
	}

	return textFromOutput(out), nil
}

// textFromOutput joins every text block of the assistant message with '\n'.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	return strings.Join(texts, "\n")
}
