package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joeshaw/envdecode"

	"configbot"
	"configbot/llm"
	"configbot/orchestrator"
	"configbot/server"
	"configbot/storeclient"
)

type Params struct {
	Input *string `json:"input"`
}

// Results mirrors the HTTP surface: Status is the code /message would
// answer with and Body its JSON body.
type Results struct {
	Status int `json:"status"`
	Body   any `json:"body"`
}

func main() {
	var modelConfig configbot.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var botConfig configbot.BotConfig
	if err := envdecode.Decode(&botConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var openAIConfig configbot.OpenAIConfig
	if err := envdecode.Decode(&openAIConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	fn := func(ctx context.Context, params Params) (Results, error) {
		tracerProvider, meterProvider, otelShutdown, err := configbot.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		completer, err := llm.New(ctx, llm.Deps{Model: modelConfig, Bot: botConfig, OpenAI: openAIConfig})
		if err != nil {
			slog.Error("SETUP: Failed to create completion provider", "error", err)
			return Results{}, err
		}

		bot := orchestrator.New(
			completer,
			storeclient.New("schema", botConfig.SchemaServiceURL, botConfig.StoreTimeout),
			storeclient.New("values", botConfig.ValuesServiceURL, botConfig.StoreTimeout),
			orchestrator.OptionsFromConfig(modelConfig, botConfig),
			configbot.NewStdoutRequestLogger(),
			tracerProvider,
			meterProvider,
		)

		if params.Input == nil {
			oe := orchestrator.ErrMissingInput()
			return Results{Status: http.StatusBadRequest, Body: map[string]any{"error": oe.Message}}, nil
		}

		res, err := bot.Handle(ctx, *params.Input)
		if err != nil {
			status, body := server.ErrorBody(err)
			slog.Error("RESULT: Error handling request", "status", status, "error", err)
			return Results{Status: status, Body: body}, nil
		}

		return Results{Status: http.StatusOK, Body: res.Document}, nil
	}

	lambda.Start(fn)
}
