// Package ollama talks to a local Ollama server: text generation for the
// bot and model provisioning at startup.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"configbot"
)

// options carries sampling settings. Temperature is always sent, zero
// included, because the classification call relies on greedy decoding.
type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type Client struct {
	endpoint   string
	model      string
	httpClient configbot.HTTPClient
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   configbot.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.ModelID) == "" {
		return nil, fmt.Errorf("invalid model id")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/api/generate",
	}, nil
}

type wireRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type wireResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	// timing and context fields omitted but available
}

// Complete sends a single non-streaming generate call and returns the
// model's text verbatim.
func (c *Client) Complete(ctx context.Context, cr configbot.CompletionRequest) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.model, "prompt_len", len(cr.Prompt), "num_predict", cr.MaxTokens)

	reqBytes, err := json.Marshal(wireRequest{
		Model:  c.model,
		Prompt: cr.Prompt,
		Stream: false,
		Options: options{
			Temperature: cr.Temperature,
			NumPredict:  cr.MaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}

	slog.Info("LLM_CLIENT: Completed", "model", c.model, "response_len", len(wr.Response))
	return wr.Response, nil
}
