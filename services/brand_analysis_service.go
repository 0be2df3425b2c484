// services/brand_analysis_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/net/publicsuffix"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers/common"
)

const maxScrapedChars = 8000

var boldRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)

type brandAnalysisService struct {
	cfg          *config.Config
	openAIClient *openai.Client
	firecrawl    FirecrawlService
	costService  CostService
}

// NewBrandAnalysisService talks to ANALYSIS_BASE_URL with the OpenAI SDK, which
// covers Mistral, Groq and OpenAI alike. firecrawl may be nil.
func NewBrandAnalysisService(cfg *config.Config, firecrawl FirecrawlService, costService CostService, opts ...option.RequestOption) BrandAnalysisService {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.AnalysisAPIKey)}
	if cfg.AnalysisBaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.AnalysisBaseURL))
	}
	client := openai.NewClient(append(reqOpts, opts...)...)

	return &brandAnalysisService{
		cfg:          cfg,
		openAIClient: &client,
		firecrawl:    firecrawl,
		costService:  costService,
	}
}

// Generate the JSON schema at initialization time
var BrandAnalysisSchema = GenerateSchema[models.BrandAnalysis]()

// AnalyzeBrand never fails on model trouble: the example analysis is returned
// with Fallback set instead. Only a missing URL is an error.
func (s *brandAnalysisService) AnalyzeBrand(ctx context.Context, brandURL, scrapedText string) (*BrandAnalysisResult, error) {
	log := logging.Component("brand_analysis")
	if strings.TrimSpace(brandURL) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	if scrapedText == "" && s.firecrawl != nil && s.cfg.Firecrawl.APIKey != "" {
		scrape, err := s.firecrawl.ScrapeURL(ctx, brandURL)
		var statusErr *ScrapeStatusError
		switch {
		case errors.As(err, &statusErr):
			log.Warn().Err(err).Str("url", brandURL).Int("status", statusErr.StatusCode).
				Bool("retryable", statusErr.Retryable()).Msg("scrape rejected, analyzing from url only")
		case err != nil:
			log.Warn().Err(err).Str("url", brandURL).Msg("scrape failed, analyzing from url only")
		default:
			scrapedText = scrape.Data.Markdown
		}
	}

	result, err := s.callModel(ctx, brandURL, scrapedText)
	if err != nil {
		log.Warn().Err(err).Str("url", brandURL).Msg("falling back to example analysis")
		return &BrandAnalysisResult{Analysis: ExampleBrandAnalysis(), Fallback: true}, nil
	}

	result.Analysis.NameVariants = ensureVariants(result.Analysis.BrandName, brandURL, result.Analysis.NameVariants)
	log.Info().Str("brand", result.Analysis.BrandName).Int("variants", len(result.Analysis.NameVariants)).
		Int("prompts", len(result.Analysis.Prompts)).Float64("cost", result.Cost).Msg("brand analyzed")
	return result, nil
}

func (s *brandAnalysisService) callModel(ctx context.Context, brandURL, scrapedText string) (*BrandAnalysisResult, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "brand_analysis",
		Description: openai.String("Brand identity and AI search prompts for visibility tracking"),
		Schema:      BrandAnalysisSchema,
		Strict:      openai.Bool(true),
	}

	response, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildBrandAnalysisPrompt(brandURL, scrapedText)),
		},
		Model: openai.ChatModel(s.cfg.AnalysisModel),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(1024),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	analysis, err := ParseBrandAnalysis(response.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if err := analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid response structure: %w", err)
	}

	result := &BrandAnalysisResult{
		Analysis:     analysis,
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
	}
	if s.costService != nil {
		result.Cost = s.costService.CalculateCost("analysis", s.cfg.AnalysisModel, result.InputTokens, result.OutputTokens)
	}
	return result, nil
}

// ParseBrandAnalysis decodes model output in stages: as-is after light cleanup,
// then trimmed to the outermost object, then by pulling fields out with regexes.
// Only a missing brand_name makes it give up.
func ParseBrandAnalysis(content string) (*models.BrandAnalysis, error) {
	for _, candidate := range []string{common.CleanJSON(content), common.ExtractObject(content)} {
		var analysis models.BrandAnalysis
		if err := json.Unmarshal([]byte(candidate), &analysis); err == nil && analysis.BrandName != "" {
			analysis.Description = cleanDescription(analysis.Description)
			return &analysis, nil
		}
	}

	name, ok := common.ExtractStringField(content, "brand_name")
	if !ok {
		return nil, fmt.Errorf("could not extract brand name from response")
	}
	description, _ := common.ExtractStringField(content, "description")
	return &models.BrandAnalysis{
		BrandName:    name,
		NameVariants: common.ExtractStringArrayField(content, "name_variants"),
		Description:  cleanDescription(description),
		Prompts:      common.ExtractStringArrayField(content, "prompts"),
	}, nil
}

func cleanDescription(s string) string {
	return boldRe.ReplaceAllString(common.CollapseWhitespace(s), "$1")
}

// ensureVariants makes sure the brand name and the registrable domain label
// are matchable, keeping the model's order and dropping case-insensitive duplicates.
func ensureVariants(brandName, brandURL string, variants []string) []string {
	candidates := append([]string{brandName}, variants...)
	if label := domainLabel(brandURL); label != "" {
		candidates = append(candidates, label)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, v := range candidates {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// domainLabel returns "acme" for https://www.shop.acme.co.uk/path.
func domainLabel(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil {
		return ""
	}
	label, _, _ := strings.Cut(etld1, ".")
	return label
}

// ExampleBrandAnalysis is served when the analysis model is unavailable
func ExampleBrandAnalysis() *models.BrandAnalysis {
	return &models.BrandAnalysis{
		BrandName:    "Example Brand",
		NameVariants: []string{"Example Brand", "Example", "ExampleCorp", "Example.com"},
		Description:  "Example Brand is a leading technology company that provides innovative solutions for businesses worldwide. The company specializes in digital transformation services, helping organizations streamline their operations and enhance customer experiences.",
		Prompts: []string{
			"Top 10 digital transformation companies",
			"Best technology solutions for business modernization",
			"Leading platforms for enterprise digital services",
			"Top companies for business process automation",
			"Best technology consulting services for enterprises",
		},
	}
}

func buildBrandAnalysisPrompt(brandURL, scrapedText string) string {
	content := ""
	if scrapedText != "" {
		if len(scrapedText) > maxScrapedChars {
			scrapedText = scrapedText[:maxScrapedChars]
		}
		content = "\n\nScraped content:\n" + scrapedText
	}

	return fmt.Sprintf(`You are analyzing a brand based on the following scraped content and/or the webpage's url input: %s%s

1. Extract the formal brand name: What is the official name of the brand based on the content provided?
2. Suggest name variants: Identify 3-4 potential name variants for this brand that users or AI systems might use. Variants may include abbreviations, common misspellings, or common usage names.
3. Write a brand description: Based on the scraped content, write a description that succinctly describes the brand, its services, or its value proposition. It should be 6 lines or more. Do not use markdown, just plain text.
4. Generate 5 search-friendly visibility prompts: Create exactly 5 AI search queries that users might use to discover brands similar to this one. These should be general, industry-relevant search queries, such as "Top 10 AI-based services for healthcare" or "What are the leading data annotation services for AI in 2025?"

Respond ONLY with valid JSON in the following format, with no text before or after it:

{
  "brand_name": "...",
  "name_variants": ["...", "...", "..."],
  "description": "...",
  "prompts": ["...", "...", "...", "...", "..."]
}`, brandURL, content)
}
