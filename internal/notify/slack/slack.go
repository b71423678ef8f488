// Package slack sends high-risk arrival notifications to Slack via
// incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/medqueue/internal/model"
)

const (
	maxComplaintLen = 500
	httpTimeout     = 10 * time.Second
)

// Notifier posts queue arrivals to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Notify is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Notify posts a high-risk arrival to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Notify(ctx context.Context, department string, item *model.QueueItem) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(department, item)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(department string, item *model.QueueItem) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(item),
			{"type": "divider"},
			fieldsBlock(department, item),
			complaintBlock(item),
			{"type": "divider"},
			contextBlock(item),
		},
	}
}

func headerBlock(item *model.QueueItem) map[string]any {
	patient := item.Prediction.Visit.Patient
	text := fmt.Sprintf("\U0001f534 High Risk Arrival: %s", patient.FullName)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(department string, item *model.QueueItem) map[string]any {
	patient := item.Prediction.Visit.Patient
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Department:* %s", department),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Status:* %s", item.Status),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Risk:* %s (%.2f)", item.Prediction.RiskLevel, item.Prediction.RiskScore),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Priority:* %.2f", item.PriorityScore),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Patient:* %d • %s", patient.Age, patient.Gender),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func complaintBlock(item *model.QueueItem) map[string]any {
	text := truncate(item.Prediction.Visit.ChiefComplaint, maxComplaintLen)
	if text == "" {
		text = "_No chief complaint recorded._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Chief Complaint*\n\n%s", text),
		},
	}
}

func contextBlock(item *model.QueueItem) map[string]any {
	ts := item.Prediction.Visit.Timestamp
	if t, ok := item.VisitTime(); ok {
		ts = t.Format("2006-01-02 15:04 UTC")
	}

	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("medqueue • queue item %d • %s", item.QueueID, ts),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
