// Package storeclient fetches schema and values documents from the store
// services on behalf of the bot.
package storeclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"configbot"

	"github.com/go-resty/resty/v2"
)

// ErrInvalidDocument is returned when a store answers 200 with a body that is
// not JSON.
var ErrInvalidDocument = errors.New("store returned invalid JSON")

type Client struct {
	store string
	rc    *resty.Client
}

// New returns a client for the store named store (used in errors and logs)
// served at baseURL.
func New(store, baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{store: store, rc: rc}
}

// Fetch returns the document stored for app. Any status other than 200
// yields a *configbot.StoreError carrying the store's payload; any other
// error means the store could not be reached.
func (c *Client) Fetch(ctx context.Context, app configbot.App) (json.RawMessage, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("app", app.String()).
		Get("/{app}")
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s store: %w", c.store, err)
	}

	body := resp.Body()
	slog.Info("STORE_CLIENT: Response received",
		"store", c.store,
		"app", app.String(),
		"status", resp.StatusCode(),
		"bytes", len(body),
		"duration_ms", resp.Time().Milliseconds(),
	)

	if resp.StatusCode() != http.StatusOK {
		return nil, &configbot.StoreError{
			Store:      c.store,
			App:        app.String(),
			StatusCode: resp.StatusCode(),
			Payload:    payloadOf(body),
		}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%s store, %s: %w", c.store, app, ErrInvalidDocument)
	}
	return json.RawMessage(body), nil
}

// payloadOf keeps JSON bodies as-is and turns anything else into a JSON string.
func payloadOf(body []byte) json.RawMessage {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
