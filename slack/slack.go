// Package slack posts bot notifications to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultUsername = "config-bot"

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	username   string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		username:   defaultUsername,
		httpClient: httpClient,
	}
}

type payload struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text"`
	Mrkdwn   bool   `json:"mrkdwn"`
}

// PostMessage sends message to channel. An empty channel uses the
// webhook's default.
func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	body, err := json.Marshal(payload{
		Channel:  channel,
		Username: c.username,
		Text:     message,
		Mrkdwn:   true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("failed to post message: %s: %s", resp.Status, bytes.TrimSpace(detail))
	}

	return nil
}
