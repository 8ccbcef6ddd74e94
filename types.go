package configbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// CompletionRequest is a single non-streaming text generation call.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer turns a prompt into free text. Implementations return an error
// for transport failures and non-success responses alike.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// StoreError is returned when a schema or values store answers with a
// non-success status. Payload holds the store's response body.
type StoreError struct {
	Store      string
	App        string
	StatusCode int
	Payload    json.RawMessage
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store returned %d for %s", e.Store, e.StatusCode, e.App)
}
