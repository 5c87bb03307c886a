package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pkgerrors "atlasworker/pkg/errors"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// cataloguerPreamble keeps the model conservative and JSON-only
const cataloguerPreamble = `You are an expert antique cataloguer.

Guidelines:
- Base conclusions only on the provided information.
- Avoid exact dates unless they are clearly stated.
- Prefer broad ranges when uncertainty exists.
- Use "unknown" when attribution is not possible.
- Do not invent provenance, makers, or materials.
- Respond using valid JSON only.`

const itemPromptTemplate = `Generate the following attributes for the item below.

Fields to generate:
- era_or_time_period
- estimated_year_range
- region_of_origin
- functional_use
- material
- style
- short_summary
- confidence_score (0-1)

Confidence guidance:
- 0.9-1.0: clearly stated
- 0.6-0.8: strong supporting clues
- 0.3-0.5: weak inference
- <0.3: largely uncertain

Item information:
Title: %s
Category: %s
Description: %s`

// CohereInferencer implements Inferencer using the Cohere chat API
type CohereInferencer struct {
	client  *cohereclient.Client
	model   string
	timeout time.Duration
}

// NewCohereInferencer creates an inferencer for the given API key and model
func NewCohereInferencer(apiKey, model string, timeout time.Duration) *CohereInferencer {
	return &CohereInferencer{
		client:  cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		model:   model,
		timeout: timeout,
	}
}

// InferAttributes sends a single item prompt for attribute derivation
// and returns the parsed JSON response.
func (c *CohereInferencer) InferAttributes(ctx context.Context, title, category, description string) (*Attributes, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(itemPromptTemplate, title, category, description)

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Model:       cohere.String(c.model),
		Preamble:    cohere.String(cataloguerPreamble),
		Message:     prompt,
		Temperature: cohere.Float64(0.2),
	})
	if err != nil {
		return nil, pkgerrors.NewEnrichment("infer", "chat request failed", err)
	}
	if resp == nil || resp.Text == "" {
		return nil, pkgerrors.NewEnrichment("infer", "empty chat response", nil)
	}

	var attrs Attributes
	if err := json.Unmarshal([]byte(stripJSONFences(resp.Text)), &attrs); err != nil {
		return nil, pkgerrors.NewEnrichment("infer", "malformed attribute JSON", err)
	}

	// Confidence is a score in [0,1]
	if attrs.ConfidenceScore < 0 {
		attrs.ConfidenceScore = 0
	}
	if attrs.ConfidenceScore > 1 {
		attrs.ConfidenceScore = 1
	}

	return &attrs, nil
}

// stripJSONFences removes a surrounding markdown code fence, which chat
// models sometimes wrap around JSON output.
func stripJSONFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
