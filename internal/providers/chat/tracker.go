// Package chat tracks prompts against any OpenAI-compatible chat completions API:
// OpenAI itself, Groq and Mistral.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/metrics"
	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers/common"
)

// Tracker implements providers.Tracker over the chat completions endpoint
type Tracker struct {
	client   *openai.Client
	name     string
	model    string
	costs    common.CostCalculator
	fallback common.FallbackTemplate
	now      func() time.Time
}

// New creates a tracker for one backend. Extra request options are appended
// after the config-derived ones, so tests can point the client at a fake server.
func New(tc config.TrackerConfig, costs common.CostCalculator, fallback common.FallbackTemplate, opts ...option.RequestOption) *Tracker {
	reqOpts := []option.RequestOption{option.WithAPIKey(tc.APIKey)}
	if tc.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(tc.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	client := openai.NewClient(reqOpts...)

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

// TrackPrompt asks the model for its ranked brand list in JSON mode.
// Transport failures and unparseable answers are both reported as upstream failures.
func (t *Tracker) TrackPrompt(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error) {
	log := logging.Component("tracker").With().Str("backend", t.name).Str("model", t.model).Logger()

	response, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(common.BuildTrackingPrompt(prompt, identity, t.now())),
		},
		Model: openai.ChatModel(t.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(1),
		MaxTokens:   openai.Int(1024),
	})
	if err != nil {
		return nil, metrics.UpstreamFailure(t.name, fmt.Errorf("chat completion failed: %w", err))
	}
	if len(response.Choices) == 0 {
		return nil, metrics.UpstreamFailure(t.name, fmt.Errorf("no response choices returned"))
	}

	content := response.Choices[0].Message.Content
	raw, err := common.ParseJSONObject(content)
	if err != nil {
		log.Debug().Str("content", content).Msg("unparseable answer")
		return nil, metrics.UpstreamFailure(t.name, err)
	}

	inputTokens := int(response.Usage.PromptTokens)
	outputTokens := int(response.Usage.CompletionTokens)
	result := &common.AIResponse{
		Response:     content,
		Raw:          raw,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}
	if t.costs != nil {
		result.Cost = t.costs.CalculateCost(t.name, t.model, inputTokens, outputTokens)
	}

	log.Debug().Int("input_tokens", inputTokens).Int("output_tokens", outputTokens).Float64("cost", result.Cost).Msg("answer received")
	return result, nil
}

// Fallback returns this backend's canned answer for prompt
func (t *Tracker) Fallback(prompt string, identity models.BrandIdentity) models.PromptResult {
	res := t.fallback.Render(prompt, identity, t.now())
	res.Model = t.name
	return res
}
