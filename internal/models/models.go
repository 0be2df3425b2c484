// internal/models/models.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// BrandIdentity identifies the brand under analysis
type BrandIdentity struct {
	Name        string   `json:"brand_name"`
	Variants    []string `json:"name_variants"`
	Description string   `json:"description,omitempty"`
}

// Sentiment is the tone a model used when ranking a brand
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment coerces any value to a Sentiment. Unknown or missing values are neutral.
func ParseSentiment(v any) Sentiment {
	s, ok := v.(string)
	if !ok {
		return SentimentNeutral
	}
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Score maps the sentiment onto -1, 0 or +1
func (s Sentiment) Score() float64 {
	switch s {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}

// MaxRank caps model-supplied ranks so rank arithmetic cannot overflow
const MaxRank = 1000

// RankedBrandEntry is one brand's appearance within one prompt's answer
type RankedBrandEntry struct {
	Brand string `json:"brand"`
	// Rank is 1-based and at most MaxRank. 0 means no usable rank: a missing
	// rank and a literal 0 from the model are indistinguishable after
	// normalization, and both count as unranked.
	Rank        int       `json:"rank,omitempty"`
	Mentions    int       `json:"mentions"`
	Explanation string    `json:"explanation,omitempty"`
	Sentiment   Sentiment `json:"sentiment"`
}

// HasRank reports whether the model supplied a usable rank
func (e RankedBrandEntry) HasRank() bool {
	return e.Rank > 0
}

// RankOr returns the rank capped at MaxRank, or def when the entry carries none
func (e RankedBrandEntry) RankOr(def int) int {
	if e.Rank > 0 {
		return min(e.Rank, MaxRank)
	}
	return def
}

// PromptResult is the canonical answer of one model to one tracking prompt
type PromptResult struct {
	Prompt           string             `json:"prompt"`
	Model            string             `json:"model,omitempty"`
	AnalysisDate     string             `json:"analysis_date,omitempty"`
	RankedBrands     []RankedBrandEntry `json:"ranked_brands"`
	TotalBrandsFound int                `json:"total_brands_found"`
	TargetBrandFound bool               `json:"target_brand_found"`
	TargetBrandRank  *int               `json:"target_brand_rank"`
	Fallback         bool               `json:"fallback,omitempty"`
}

// GeneralizedMetrics summarises the target brand's visibility across a set of answers
type GeneralizedMetrics struct {
	VisibilityScore  int      `json:"visibility_score"`
	PresenceScore    int      `json:"presence_score"`
	AverageRank      *float64 `json:"average_rank"`
	TotalMentions    int      `json:"total_mentions"`
	ResponsesFoundIn int      `json:"responses_found_in"`
	TotalPrompts     int      `json:"total_prompts"`
}

// SpecificMetrics counts every matching entry rather than the first per answer
type SpecificMetrics struct {
	Mentions    int      `json:"mentions"`
	AverageRank *float64 `json:"rank_LLM"`
}

type PromptPerformance struct {
	Prompt           string `json:"prompt"`
	VisibilityScore  int    `json:"visibility_score"`
	TargetBrandRank  *int   `json:"target_brand_rank"`
	TargetBrandFound bool   `json:"target_brand_found"`
	TotalMentions    int    `json:"total_mentions"`
}

// CompetitorStat is one row of the competitor leaderboard
type CompetitorStat struct {
	Brand              string    `json:"brand"`
	TotalMentions      int       `json:"total_mentions"`
	AverageRank        *float64  `json:"average_rank"`
	OverlapsWithTarget int       `json:"overlaps_with_target"`
	OverlapRate        int       `json:"overlap_rate"`
	AvgSentiment       float64   `json:"avg_sentiment"`
	SentimentLabel     Sentiment `json:"sentiment_label"`
	Appearances        int       `json:"appearances"`
}

// ModelPerformance is the per-backend row of a report
type ModelPerformance struct {
	Model           string   `json:"model"`
	VisibilityScore int      `json:"visibility_score"`
	PresenceScore   int      `json:"presence_score"`
	AverageRank     *float64 `json:"average_rank"`
	TotalMentions   int      `json:"total_mentions"`
	AvgRankLLM      *float64 `json:"avgRank_LLM"`
	MentionsLLM     int      `json:"mentions_LLM"`
}

// BrandInfo is the brand snapshot stored with a report
type BrandInfo struct {
	BrandName    string    `json:"brand_name"`
	NameVariants []string  `json:"name_variants"`
	Description  string    `json:"description,omitempty"`
	AnalysisDate time.Time `json:"analysis_date"`
}

// TrackingReport is the output of one tracking run
type TrackingReport struct {
	ID                 string              `json:"id,omitempty"`
	BrandID            string              `json:"brand_id"`
	BrandInfo          BrandInfo           `json:"brand_info"`
	GeneralizedMetrics GeneralizedMetrics  `json:"generalized_metrics"`
	PromptPerformance  []PromptPerformance `json:"prompt_performance"`
	CompetitorAnalysis []CompetitorStat    `json:"competitor_analysis"`
	AIModelPerformance []ModelPerformance  `json:"ai_model_performance"`
	RawResponses       []PromptResult      `json:"raw_responses"`
	UsedMockData       bool                `json:"used_mock_data"`
	Insights           []string            `json:"insights,omitempty"`
	GeneratedAt        time.Time           `json:"generated_at"`
	SavedAt            *time.Time          `json:"saved_at,omitempty"`
}

// Brand is a saved brand belonging to a user
type Brand struct {
	ID           string    `json:"id" db:"id"`
	UserEmail    string    `json:"user_email" db:"user_email"`
	BrandURL     string    `json:"brand_url" db:"brand_url"`
	BrandName    string    `json:"brand_name" db:"brand_name"`
	NameVariants []string  `json:"name_variants" db:"-"`
	Description  string    `json:"description" db:"description"`
	Prompts      []string  `json:"prompts" db:"-"`
	BrandCount   int       `json:"brand_count" db:"brand_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Identity returns the identity used for matching. A brand saved without
// variants is matched on its name.
func (b *Brand) Identity() BrandIdentity {
	variants := b.NameVariants
	if len(variants) == 0 && b.BrandName != "" {
		variants = []string{b.BrandName}
	}
	return BrandIdentity{
		Name:        b.BrandName,
		Variants:    variants,
		Description: b.Description,
	}
}

// BrandAnalysis is what the analysis model extracts from a brand URL
type BrandAnalysis struct {
	BrandName    string   `json:"brand_name" jsonschema_description:"The official name of the brand"`
	NameVariants []string `json:"name_variants" jsonschema_description:"3-4 name variants users or AI systems might use"`
	Description  string   `json:"description" jsonschema_description:"Plain-text description of the brand, six lines or more"`
	Prompts      []string `json:"prompts" jsonschema_description:"Exactly 5 general, industry-relevant AI search queries"`
}

// Validate checks the fields a brand needs before tracking
func (a *BrandAnalysis) Validate() error {
	switch {
	case strings.TrimSpace(a.BrandName) == "":
		return fmt.Errorf("brand_name is empty")
	case len(a.NameVariants) == 0:
		return fmt.Errorf("name_variants is empty")
	case strings.TrimSpace(a.Description) == "":
		return fmt.Errorf("description is empty")
	case len(a.Prompts) == 0:
		return fmt.Errorf("prompts is empty")
	}
	return nil
}

// ModelResponses groups the answers of one backend
type ModelResponses struct {
	Model     string         `json:"model"`
	Responses []PromptResult `json:"responses"`
}

// User is a signed-up email address
type User struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
