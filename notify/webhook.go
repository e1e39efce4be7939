// Package notify posts finished plan text to an external webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type WebhookClient struct {
	webhookURL string
	httpClient doer
}

func NewWebhookClient(webhookURL string, httpClient doer) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

// PostPlan delivers the normalized plan text. Delivery is best-effort; the
// caller decides whether a failure matters.
func (c *WebhookClient) PostPlan(ctx context.Context, planText string) error {
	payload, err := json.Marshal(map[string]any{
		"text": planText,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
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
		return fmt.Errorf("failed to post plan: %s", resp.Status)
	}

	return nil
}
