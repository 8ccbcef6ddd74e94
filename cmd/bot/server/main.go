package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"configbot"
	"configbot/llm"
	"configbot/llm/ollama"
	"configbot/orchestrator"
	"configbot/server"
	"configbot/slack"
	"configbot/storeclient"
)

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Info("SETUP: Loaded .env")
	}

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

	pflag.StringVar(&botConfig.Listen, "listen", botConfig.Listen, "Host:Port to listen on")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracerProvider, meterProvider, otelShutdown, err := configbot.InitOtel(ctx)
	if err != nil {
		log.Fatalf("SETUP: Failed to initialize OpenTelemetry: %s", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	if llm.IsOllama(modelConfig.Provider) {
		provisionOllama(ctx, modelConfig, botConfig)
	}

	completer, err := llm.New(ctx, llm.Deps{Model: modelConfig, Bot: botConfig, OpenAI: openAIConfig})
	if err != nil {
		log.Fatalf("SETUP: Failed to create completion provider: %s", err)
	}

	requestLogger, cleanup, err := newRequestLogger(botConfig.RequestLogPath, modelConfig.ModelID)
	if err != nil {
		log.Fatalf("SETUP: Failed to create request logger: %s", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to close request log", "error", err)
		}
	}()

	bot := orchestrator.New(
		completer,
		storeclient.New("schema", botConfig.SchemaServiceURL, botConfig.StoreTimeout),
		storeclient.New("values", botConfig.ValuesServiceURL, botConfig.StoreTimeout),
		orchestrator.OptionsFromConfig(modelConfig, botConfig),
		requestLogger,
		tracerProvider,
		meterProvider,
	)

	var opts []server.Option
	if botConfig.SlackWebhookURL != "" {
		opts = append(opts, server.WithSlack(slack.NewClient(botConfig.SlackWebhookURL, http.DefaultClient), botConfig.SlackChannel))
	}

	gin.SetMode(gin.ReleaseMode)
	engine := server.NewEngine("BOT_SERVER")
	server.New(bot, opts...).Register(engine)

	srv := &http.Server{Addr: botConfig.Listen, Handler: engine}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("BOT_SERVER: Shutdown failed", "error", err)
		}
	}()

	slog.Info("BOT_SERVER: Starting Bot Service", "listen", botConfig.Listen, "provider", modelConfig.Provider, "model", modelConfig.ModelID)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("BOT_SERVER: Server failed", "error", err)
	}
}

// provisionOllama waits for the server and pulls the model. Failures are
// logged only; requests will fail with a provider error until Ollama is up.
func provisionOllama(ctx context.Context, modelConfig configbot.ModelConfig, botConfig configbot.BotConfig) {
	p, err := ollama.NewProvisioner(ollama.ProvisionerOpts{
		BaseEndpoint: botConfig.BaseOllamaEndpoint,
		ModelID:      modelConfig.ModelID,
		Attempts:     botConfig.ReadinessRetries,
		Delay:        botConfig.ReadinessDelay,
		PullTimeout:  botConfig.PullTimeout,
	})
	if err != nil {
		slog.Warn("SETUP: Failed to create Ollama provisioner", "error", err)
		return
	}
	if err := p.WaitReady(ctx); err != nil {
		slog.Warn("SETUP: Ollama not ready, continuing without model check", "error", err)
		return
	}
	if err := p.EnsureModel(ctx); err != nil {
		slog.Warn("SETUP: Failed to ensure model", "model", modelConfig.ModelID, "error", err)
	}
}

func newRequestLogger(dir, modelID string) (configbot.RequestLogger, func() error, error) {
	if dir == "" {
		return configbot.NewNoOpRequestLogger(), func() error { return nil }, nil
	}

	logFilePath := configbot.NewRequestLogFilePath(dir, modelID)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	slog.Info("SETUP: Writing request log", "path", logFilePath)
	return configbot.NewStreamRequestLogger(logFile), logFile.Close, nil
}
