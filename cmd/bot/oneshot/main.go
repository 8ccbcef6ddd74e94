package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"configbot"
	"configbot/llm"
	"configbot/orchestrator"
	"configbot/server"
	"configbot/store"
	"configbot/storeclient"
)

// oneshot runs a single request and prints the result. With --local the
// schema and values are read from the store directories directly.
func main() {
	_ = godotenv.Load()

	var modelConfig configbot.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var botConfig configbot.BotConfig
	if err := envdecode.Decode(&botConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var storeConfig configbot.StoreConfig
	if err := envdecode.Decode(&storeConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var openAIConfig configbot.OpenAIConfig
	if err := envdecode.Decode(&openAIConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	local := pflag.Bool("local", false, "Read documents from the store directories instead of the store services")
	pflag.StringVar(&modelConfig.Provider, "provider", modelConfig.Provider, "Completion provider: ollama, bedrock, openai or mock")
	pflag.StringVar(&modelConfig.MockApp, "mock-app", modelConfig.MockApp, "Application named by the mock provider: chat, matchmaking or tournament")
	pflag.StringVar(&storeConfig.SchemaDir, "schema-dir", storeConfig.SchemaDir, "Schema directory (with --local)")
	pflag.StringVar(&storeConfig.ValuesDir, "values-dir", storeConfig.ValuesDir, "Values directory (with --local)")
	pflag.Parse()

	input := argOr(0, "set chat memory to 1024")

	ctx := context.Background()
	completer, err := llm.New(ctx, llm.Deps{Model: modelConfig, Bot: botConfig, OpenAI: openAIConfig})
	if err != nil {
		log.Fatalf("SETUP: Failed to create completion provider: %s", err)
	}

	var schemas, values orchestrator.Fetcher
	if *local {
		schemas = store.NewLocal(store.Schema, store.NewFileStore(storeConfig.SchemaDir, store.Schema))
		values = store.NewLocal(store.Values, store.NewFileStore(storeConfig.ValuesDir, store.Values))
	} else {
		schemas = storeclient.New("schema", botConfig.SchemaServiceURL, botConfig.StoreTimeout)
		values = storeclient.New("values", botConfig.ValuesServiceURL, botConfig.StoreTimeout)
	}

	bot := orchestrator.New(completer, schemas, values,
		orchestrator.OptionsFromConfig(modelConfig, botConfig),
		configbot.NewStdoutRequestLogger(), nil, nil)

	res, err := bot.Handle(ctx, input)
	if err != nil {
		status, body := server.ErrorBody(err)
		slog.Error("FAILURE: Error handling request", "status", status)
		configbot.Dump(body)
		os.Exit(1)
	}

	configbot.Dump(res.App.String(), res.Method, res.SchemaViolations)
	fmt.Println(string(res.Document))
}

func argOr(i int, def string) string {
	if pflag.NArg() > i {
		return pflag.Arg(i)
	}
	return def
}
