package llm

import (
	"context"
	"testing"

	"configbot"
	"configbot/llm/mock"
	"configbot/llm/ollama"
	"configbot/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		deps    Deps
		check   func(t *testing.T, c configbot.Completer)
		wantErr bool
	}{
		{
			name: "ollama default",
			deps: Deps{Model: configbot.ModelConfig{ModelID: "llama3.2"}, Bot: configbot.BotConfig{BaseOllamaEndpoint: "http://ollama:11434"}},
			check: func(t *testing.T, c configbot.Completer) {
				assert.IsType(t, &ollama.Client{}, c)
			},
		},
		{
			name: "openai",
			deps: Deps{Model: configbot.ModelConfig{Provider: ProviderOpenAI, ModelID: "gpt-4o-mini"}, OpenAI: configbot.OpenAIConfig{APIKey: "k"}},
			check: func(t *testing.T, c configbot.Completer) {
				assert.IsType(t, &openai.Client{}, c)
			},
		},
		{
			name:    "openai without key",
			deps:    Deps{Model: configbot.ModelConfig{Provider: ProviderOpenAI}},
			wantErr: true,
		},
		{
			name: "mock",
			deps: Deps{Model: configbot.ModelConfig{Provider: ProviderMock}},
			check: func(t *testing.T, c configbot.Completer) {
				assert.IsType(t, &mock.LLMClient{}, c)
			},
		},
		{
			name: "empty provider is ollama",
			deps: Deps{Model: configbot.ModelConfig{Provider: "", ModelID: "llama3.2"}},
			check: func(t *testing.T, c configbot.Completer) {
				assert.IsType(t, &ollama.Client{}, c)
			},
		},
		{
			name: "mock names the configured app",
			deps: Deps{Model: configbot.ModelConfig{Provider: ProviderMock, MockApp: "tournament"}},
			check: func(t *testing.T, c configbot.Completer) {
				out, err := c.Complete(context.Background(), configbot.CompletionRequest{Prompt: "which app?"})
				require.NoError(t, err)
				assert.Equal(t, " Tournament.", out)
			},
		},
		{
			name:    "mock with unknown app",
			deps:    Deps{Model: configbot.ModelConfig{Provider: ProviderMock, MockApp: "lobby"}},
			wantErr: true,
		},
		{
			name:    "unknown",
			deps:    Deps{Model: configbot.ModelConfig{Provider: "watsonx"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(context.Background(), tt.deps)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestIsOllama(t *testing.T) {
	assert.True(t, IsOllama(ProviderOllama))
	assert.True(t, IsOllama(""), "ollama is the default provider")
	assert.False(t, IsOllama(ProviderMock))
	assert.False(t, IsOllama(ProviderBedrock))
}
