// Package claude generates triage explanations directly from the
// Claude API, for deployments where the store's explain endpoint is
// unavailable or undesired.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/medqueue/internal/model"
)

const responseTokens = 512

// Provider implements explain.Provider against the Claude API.
type Provider struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a Claude-backed explanation provider.
func New(apiKey, modelName string) *Provider {
	return &Provider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(modelName),
	}
}

// Explain asks the model for a short clinical explanation of the item's
// risk classification.
func (p *Provider) Explain(ctx context.Context, item *model.QueueItem) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: responseTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(item))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude explain: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("claude explain: empty response")
	}
	return sb.String(), nil
}

const systemPrompt = `You are an explainable AI medical triage assistant.
Explanations accompany, not replace, clinical judgment. Base every
statement only on the data given; avoid assumptions or hallucinations.`

func buildPrompt(item *model.QueueItem) string {
	visit := item.Prediction.Visit
	patient := visit.Patient

	return fmt.Sprintf(`Patient Details:
Age: %d
Gender: %s
Chief Complaint: %s

Model Prediction:
Risk Level: %s
Risk Score: %.2f
Queue Priority: %.2f

Provide a concise explanation (MAX 3 lines - strictly do not exceed):
- Key contributing clinical factors
- Reason for predicted risk level
- Confidence explanation based only on given data`,
		patient.Age,
		patient.Gender,
		visit.ChiefComplaint,
		item.Prediction.RiskLevel,
		item.Prediction.RiskScore,
		item.PriorityScore,
	)
}
