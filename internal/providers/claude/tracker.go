package claude

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/metrics"
	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers/common"
)

// Tracker implements providers.Tracker with the Anthropic Messages API
type Tracker struct {
	client   *anthropic.Client
	name     string
	model    string
	costs    common.CostCalculator
	fallback common.FallbackTemplate
	now      func() time.Time
}

func New(tc config.TrackerConfig, costs common.CostCalculator, fallback common.FallbackTemplate, opts ...option.RequestOption) *Tracker {
	reqOpts := append([]option.RequestOption{option.WithAPIKey(tc.APIKey)}, opts...)
	client := anthropic.NewClient(reqOpts...)

	return &Tracker{
		client:   &client,
		name:     tc.Name,
		model:    tc.Model,
		costs:    costs,
		fallback: fallback,
		now:      time.Now,
	}
}

func (t *Tracker) Name() string  { return t.name }
func (t *Tracker) Model() string { return t.model }

func (t *Tracker) TrackPrompt(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error) {
	trackingPrompt := common.BuildTrackingPrompt(prompt, identity, t.now()) +
		"\n\nRemember: Return ONLY the JSON object, no other text."

	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: trackingPrompt},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(t.model),
		MaxTokens:   1024,
		Messages:    messages,
		Temperature: anthropic.Float(1),
	})
	if err != nil {
		return nil, metrics.UpstreamFailure(t.name, fmt.Errorf("message request failed: %w", err))
	}

	content := extractResponseText(*response)
	raw, err := common.ParseJSONObject(content)
	if err != nil {
		log := logging.Component("tracker")
		log.Debug().Str("backend", t.name).Str("content", content).Msg("unparseable answer")
		return nil, metrics.UpstreamFailure(t.name, err)
	}

	inputTokens := int(response.Usage.InputTokens)
	outputTokens := int(response.Usage.OutputTokens)
	result := &common.AIResponse{
		Response:     content,
		Raw:          raw,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}
	if t.costs != nil {
		result.Cost = t.costs.CalculateCost(t.name, t.model, inputTokens, outputTokens)
	}
	return result, nil
}

func (t *Tracker) Fallback(prompt string, identity models.BrandIdentity) models.PromptResult {
	res := t.fallback.Render(prompt, identity, t.now())
	res.Model = t.name
	return res
}

func extractResponseText(response anthropic.Message) string {
	var textParts []string

	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
		}
	}

	return strings.Join(textParts, "")
}
