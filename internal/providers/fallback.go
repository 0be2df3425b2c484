package providers

import (
	"strings"

	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers/common"
)

func mock(brand string, rank, mentions int, sentiment models.Sentiment) models.RankedBrandEntry {
	explanation := "Mock data"
	if brand == common.TargetBrand {
		explanation = "Target brand"
	}
	return models.RankedBrandEntry{Brand: brand, Rank: rank, Mentions: mentions, Explanation: explanation, Sentiment: sentiment}
}

var (
	MistralFallback = common.FallbackTemplate{
		mock("Mock Brand A", 1, 8, models.SentimentPositive),
		mock(common.TargetBrand, 4, 5, models.SentimentPositive),
		mock("Mock Brand B", 2, 7, models.SentimentNeutral),
		mock("Mock Brand C", 3, 6, models.SentimentNegative),
	}

	GroqFallback = common.FallbackTemplate{
		mock("Mock Brand X", 2, 6, models.SentimentPositive),
		mock(common.TargetBrand, 5, 4, models.SentimentPositive),
		mock("Mock Brand Y", 1, 9, models.SentimentNeutral),
	}

	OpenAIFallback = common.FallbackTemplate{
		mock(common.TargetBrand, 2, 7, models.SentimentPositive),
		mock("Mock Brand Z", 1, 8, models.SentimentPositive),
		mock("Mock Brand W", 3, 5, models.SentimentNeutral),
	}
)

// fallbackFor picks the canned answer for a backend display name.
func fallbackFor(name string) common.FallbackTemplate {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "mistral"):
		return MistralFallback
	case strings.Contains(lower, "groq"), strings.Contains(lower, "llama"):
		return GroqFallback
	default:
		return OpenAIFallback
	}
}
