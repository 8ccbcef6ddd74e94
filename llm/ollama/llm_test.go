package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"configbot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient implements the HTTPClient interface for testing
type mockHTTPClient struct {
	response *http.Response
	err      error
	request  *http.Request
	body     []byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.request = req
	if req.Body != nil {
		m.body, _ = io.ReadAll(req.Body)
	}
	return m.response, m.err
}

// createMockResponse creates a mock HTTP response
func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name         string
		opts         ClientOpts
		wantEndpoint string
		wantErr      bool
	}{
		{
			name:         "valid client creation",
			opts:         ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: &mockHTTPClient{}},
			wantEndpoint: "http://localhost:11434/api/generate",
		},
		{
			name:         "trailing slash",
			opts:         ClientOpts{BaseEndpoint: "http://ollama:11434/", ModelID: "llama3.2"},
			wantEndpoint: "http://ollama:11434/api/generate",
		},
		{
			name:    "missing model",
			opts:    ClientOpts{BaseEndpoint: "http://localhost:11434"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewClient(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEndpoint, got.endpoint)
			assert.NotNil(t, got.httpClient)
		})
	}
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name        string
		response    *http.Response
		err         error
		want        string
		wantErr     bool
		errContains string
	}{
		{
			name:     "success",
			response: createMockResponse(http.StatusOK, `{"model":"llama3.2","response":"chat","done":true}`),
			want:     "chat",
		},
		{
			name:        "non-200",
			response:    createMockResponse(http.StatusNotFound, `{"error":"model 'llama3.2' not found"}`),
			wantErr:     true,
			errContains: "not found",
		},
		{
			name:        "transport error",
			err:         errors.New("connection refused"),
			wantErr:     true,
			errContains: "connection refused",
		},
		{
			name:     "undecodable body",
			response: createMockResponse(http.StatusOK, `<html>`),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := &mockHTTPClient{response: tt.response, err: tt.err}
			c, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: hc})
			require.NoError(t, err)

			got, err := c.Complete(context.Background(), configbot.CompletionRequest{Prompt: "hi", Temperature: 0.1, MaxTokens: 4096})
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_CompleteWireFormat(t *testing.T) {
	hc := &mockHTTPClient{response: createMockResponse(http.StatusOK, `{"response":"ok"}`)}
	c, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434", ModelID: "llama3.2", HTTPClient: hc})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), configbot.CompletionRequest{Prompt: "classify", Temperature: 0, MaxTokens: 10})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, hc.request.Method)
	assert.Equal(t, "/api/generate", hc.request.URL.Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(hc.body, &sent))
	assert.Equal(t, "llama3.2", sent["model"])
	assert.Equal(t, "classify", sent["prompt"])
	assert.Equal(t, false, sent["stream"])
	opts := sent["options"].(map[string]any)
	assert.Equal(t, float64(0), opts["temperature"], "zero temperature is sent explicitly")
	assert.Equal(t, float64(10), opts["num_predict"])
}
