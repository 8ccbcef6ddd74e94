package configbot

import "time"

// ModelConfig selects the completion backend and the sampling options used
// for the two model calls made per request.
type ModelConfig struct {
	Provider            string  `env:"MODEL_PROVIDER,default=ollama"`
	ModelID             string  `env:"MODEL_ID,default=llama3.2"`
	ClassifyTemperature float64 `env:"CLASSIFY_TEMPERATURE,default=0.0"`
	ClassifyMaxTokens   int     `env:"CLASSIFY_MAX_TOKENS,default=10"`
	EditTemperature     float64 `env:"EDIT_TEMPERATURE,default=0.1"`
	EditMaxTokens       int     `env:"EDIT_MAX_TOKENS,default=4096"`
	// MockApp is the application the mock provider names when classifying.
	MockApp             string  `env:"MODEL_MOCK_APP,default=chat"`
}

type BotConfig struct {
	Listen             string        `env:"BOT_LISTEN,default=0.0.0.0:5003"`
	SchemaServiceURL   string        `env:"SCHEMA_SERVICE_URL,default=http://schema-service:5001"`
	ValuesServiceURL   string        `env:"VALUES_SERVICE_URL,default=http://values-service:5002"`
	BaseOllamaEndpoint string        `env:"BASE_OLLAMA_ENDPOINT,default=http://ollama:11434"`
	ModelTimeout       time.Duration `env:"MODEL_TIMEOUT,default=120s"`
	StoreTimeout       time.Duration `env:"STORE_TIMEOUT,default=10s"`
	ReadinessRetries   uint64        `env:"READINESS_RETRIES,default=30"`
	ReadinessDelay     time.Duration `env:"READINESS_DELAY,default=2s"`
	PullTimeout        time.Duration `env:"PULL_TIMEOUT,default=600s"`
	SlackWebhookURL    string        `env:"SLACK_WEBHOOK_URL"`
	SlackChannel       string        `env:"SLACK_CHANNEL,default=#config-changes"`
	RequestLogPath     string        `env:"REQUEST_LOG_PATH"`
}

// StoreConfig is shared by the schema and values store binaries. When
// S3Bucket is set documents are read from S3 instead of the local directories.
type StoreConfig struct {
	SchemaDir    string `env:"SCHEMA_DIR,default=/data/schemas"`
	ValuesDir    string `env:"VALUES_DIR,default=/data/values"`
	SchemaListen string `env:"SCHEMA_LISTEN,default=0.0.0.0:5001"`
	ValuesListen string `env:"VALUES_LISTEN,default=0.0.0.0:5002"`
	S3Bucket     string `env:"STORE_S3_BUCKET"`
	S3Prefix     string `env:"STORE_S3_PREFIX"`
}

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
}
