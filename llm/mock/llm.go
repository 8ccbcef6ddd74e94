// Package mock provides a deterministic completer for offline runs and
// tests. Real LLMs may not be so kind.
package mock

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"configbot"
)

// LLMClient is safe for concurrent use.
type LLMClient struct {
	app configbot.App

	mu    sync.Mutex
	calls []configbot.CompletionRequest
}

// NewLLMClient returns a completer that names app when asked to classify.
func NewLLMClient(app configbot.App) *LLMClient {
	if app == configbot.AppUnknown {
		app = configbot.AppChat
	}
	return &LLMClient{app: app}
}

// Complete answers edit prompts by echoing the first JSON object found in the
// prompt (the current configuration) wrapped in prose. Any other prompt is
// treated as classification and gets a noisy one-word answer.
func (m *LLMClient) Complete(ctx context.Context, req configbot.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	slog.Info("LLM_CLIENT: Invoked", "prompt_len", len(req.Prompt))

	if doc, ok := firstObject(req.Prompt); ok {
		slog.Info("LLM_CLIENT: Returning unchanged configuration")
		return "Here is the modified configuration:\n" + string(doc) + "\nLet me know if you need anything else.", nil
	}

	slog.Info("LLM_CLIENT: Returning classification", "app", m.app.String())
	return " " + strings.ToUpper(m.app.String()[:1]) + m.app.String()[1:] + ".", nil
}

// Calls returns a copy of the requests received so far.
func (m *LLMClient) Calls() []configbot.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]configbot.CompletionRequest(nil), m.calls...)
}

func firstObject(s string) (json.RawMessage, bool) {
	i := strings.IndexByte(s, '{')
	if i < 0 {
		return nil, false
	}
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&raw); err != nil {
		return nil, false
	}
	return raw, true
}
