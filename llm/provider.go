// Package llm selects the completion backend named by MODEL_PROVIDER.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"configbot"
	"configbot/llm/bedrock"
	"configbot/llm/mock"
	"configbot/llm/ollama"
	"configbot/llm/openai"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	ProviderOllama  = "ollama"
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"
	ProviderMock    = "mock"
)

type Deps struct {
	Model  configbot.ModelConfig
	Bot    configbot.BotConfig
	OpenAI configbot.OpenAIConfig
	// HTTPClient is used by the Ollama backend; nil means http.DefaultClient.
	HTTPClient configbot.HTTPClient
}

// IsOllama reports whether provider selects the Ollama backend, which is
// also the default when no provider is configured.
func IsOllama(provider string) bool {
	return provider == ProviderOllama || provider == ""
}

func New(ctx context.Context, d Deps) (configbot.Completer, error) {
	if IsOllama(d.Model.Provider) {
		hc := d.HTTPClient
		if hc == nil {
			hc = http.DefaultClient
		}
		return ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: d.Bot.BaseOllamaEndpoint,
			ModelID:      d.Model.ModelID,
			HTTPClient:   hc,
		})
	}

	switch d.Model.Provider {
	case ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewLLMClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{ModelID: d.Model.ModelID}), nil

	case ProviderOpenAI:
		return openai.NewClient(d.OpenAI, d.Model.ModelID)

	case ProviderMock:
		app := configbot.AppChat
		if d.Model.MockApp != "" {
			var ok bool
			if app, ok = configbot.ParseApp(d.Model.MockApp); !ok {
				return nil, fmt.Errorf("unknown mock application %q", d.Model.MockApp)
			}
		}
		return mock.NewLLMClient(app), nil

	default:
		return nil, fmt.Errorf("unknown model provider %q", d.Model.Provider)
	}
}
