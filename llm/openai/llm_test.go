package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"configbot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(configbot.OpenAIConfig{}, "gpt-4o-mini")
	assert.Error(t, err)
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"tournament"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":1}}`,
			want:   "tournament",
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"id":"c2","object":"chat.completion","choices":[]}`,
			wantErr: true,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"message":"boom","type":"server_error"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &sent)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) // nolint: errcheck
			}))
			defer srv.Close()

			c, err := NewClient(configbot.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, "gpt-4o-mini")
			require.NoError(t, err)

			got, err := c.Complete(context.Background(), configbot.CompletionRequest{Prompt: "which app?", Temperature: 0, MaxTokens: 10})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "gpt-4o-mini", sent["model"])
			assert.Equal(t, float64(10), sent["max_tokens"])
			assert.Greater(t, sent["temperature"], float64(0), "zero temperature is not dropped")
		})
	}
}
