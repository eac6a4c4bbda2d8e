package secops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/tool"
)

// WebhookOptions configures the notify_webhook tool.
type WebhookOptions struct {
	// HTTPClient used for requests. Defaults to a 30s-timeout client.
	HTTPClient *http.Client
}

// WebhookNotify posts a text notification to a Teams-style incoming webhook.
// The payload is {"text": "<message>"}.
type WebhookNotify struct {
	client     *http.Client
	webhookURL string
}

// NewWebhookNotify constructs the notify_webhook tool for the given webhook
// URL.
func NewWebhookNotify(webhookURL string, optFns ...func(o *WebhookOptions)) *WebhookNotify {
	opts := WebhookOptions{
		HTTPClient: defaultHTTPClient(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &WebhookNotify{
		client:     opts.HTTPClient,
		webhookURL: webhookURL,
	}
}

// Name implements tool.Tool.
func (t *WebhookNotify) Name() string { return "notify_webhook" }

// Description implements tool.Tool.
func (t *WebhookNotify) Description() string {
	return "Send a text notification to the team channel webhook. Use for alerting analysts about findings that need attention."
}

// Parameters implements tool.Tool.
func (t *WebhookNotify) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The notification text to post",
			},
		},
		"required": []string{"message"},
	}
}

// Execute implements tool.Tool.
func (t *WebhookNotify) Execute(ctx context.Context, _ core.ExecContext, args map[string]any) (any, error) {
	message := stringArg(args, "message")
	if message == "" {
		return nil, tool.NewError(t.Name(), "message is required", tool.CodeValidation)
	}

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return nil, tool.NewError(t.Name(), err.Error(), tool.CodeExecution)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, tool.NewError(t.Name(), err.Error(), tool.CodeExecution)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("webhook request failed: %v", err), tool.CodeExecution)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(t.Name(), resp)
	}
	drainBody(resp.Body, 512)

	return "notification sent", nil
}
