package bedrock

import (
	"context"
	"errors"
	"testing"

	"configbot"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBedrockClient implements bedrockRuntimeClient for testing
type mockBedrockClient struct {
	response *bedrockruntime.ConverseOutput
	err      error
	input    *bedrockruntime.ConverseInput
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = input
	return m.response, m.err
}

func textOutput(stop types.StopReason, texts ...string) *bedrockruntime.ConverseOutput {
	var blocks []types.ContentBlock
	for _, s := range texts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: s})
	}
	return &bedrockruntime.ConverseOutput{
		StopReason: stop,
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{Role: types.ConversationRoleAssistant, Content: blocks},
		},
		Metrics: &types.ConverseMetrics{LatencyMs: aws.Int64(42)},
		Usage:   &types.TokenUsage{InputTokens: aws.Int32(10), OutputTokens: aws.Int32(5)},
	}
}

func TestNewLLMClient(t *testing.T) {
	c := NewLLMClient(&mockBedrockClient{}, LLMOptions{})
	assert.Equal(t, defaultModelID, c.opts.ModelID)

	c = NewLLMClient(&mockBedrockClient{}, LLMOptions{ModelID: "custom-model"})
	assert.Equal(t, "custom-model", c.opts.ModelID)
}

func TestLLMClient_Complete(t *testing.T) {
	tests := []struct {
		name     string
		response *bedrockruntime.ConverseOutput
		err      error
		want     string
		wantErr  bool
	}{
		{
			name:     "single text block",
			response: textOutput(types.StopReasonEndTurn, "matchmaking"),
			want:     "matchmaking",
		},
		{
			name:     "multiple blocks joined",
			response: textOutput(types.StopReasonEndTurn, "Here you go:", `{"a":1}`),
			want:     "Here you go:\n{\"a\":1}",
		},
		{
			name:     "max tokens still returns text",
			response: textOutput(types.StopReasonMaxTokens, `{"a":`),
			want:     `{"a":`,
		},
		{
			name:     "content filtered",
			response: textOutput(types.StopReasonContentFiltered, "nope"),
			wantErr:  true,
		},
		{
			name:    "api error",
			err:     errors.New("throttled"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockBedrockClient{response: tt.response, err: tt.err}
			c := NewLLMClient(m, LLMOptions{ModelID: "test-model"})

			got, err := c.Complete(context.Background(), configbot.CompletionRequest{Prompt: "p", Temperature: 0, MaxTokens: 10})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.NotNil(t, m.input)
			assert.Equal(t, "test-model", aws.ToString(m.input.ModelId))
			assert.Equal(t, int32(10), aws.ToInt32(m.input.InferenceConfig.MaxTokens))
			assert.Equal(t, float32(0), aws.ToFloat32(m.input.InferenceConfig.Temperature))
		})
	}
}

func TestTextFromOutput_Empty(t *testing.T) {
	assert.Equal(t, "", textFromOutput(nil))
	assert.Equal(t, "", textFromOutput(&bedrockruntime.ConverseOutput{}))
}
