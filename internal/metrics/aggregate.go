// Package metrics reduces ranked-brand answers from several language models into
// comparable visibility, presence, rank and competitor statistics.
//
// Every function is pure: inputs are fully materialised slices and nothing is
// shared between calls, so reports for different brands can be computed in parallel.
package metrics

import (
	"math"

	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/models"
)

const (
	// generalRankDefault is the rank assumed when a matched entry has none.
	generalRankDefault = 9
	// specificRankDefault is the same default for the all-matches path.
	specificRankDefault = 10
)

// VisibilityForRank scores one appearance: rank 1 is 100, rank 10 is 10, rank 11+ is 0.
func VisibilityForRank(rank int) int {
	if rank >= 11 {
		return 0
	}
	v := 110 - rank*10
	if v < 0 {
		return 0
	}
	return v
}

// Aggregate computes the generalized metrics of the target brand over responses.
//
// Only the first matching entry of each response counts. Mention and rank sums
// accumulate over every response (so the same prompt asked of three models counts
// three times), while presence is measured over unique prompt strings.
func Aggregate(responses []models.PromptResult, identity models.BrandIdentity) (models.GeneralizedMetrics, error) {
	matcher, err := NewMatcher(identity)
	if err != nil {
		return models.GeneralizedMetrics{}, err
	}
	if len(responses) == 0 {
		log := logging.Component("metrics")
		log.Debug().Str("kind", KindEmptyInput.String()).Msg("no responses, returning zero metrics")
		return models.GeneralizedMetrics{}, nil
	}

	foundPrompts := make(map[string]struct{})
	var (
		totalVisibility int
		totalMentions   int
		totalRankSum    int
		foundCount      int
	)

	for _, resp := range responses {
		if len(resp.RankedBrands) == 0 {
			continue
		}
		entry, ok := matcher.FirstMatch(resp.RankedBrands)
		if !ok {
			continue
		}
		rank := entry.RankOr(generalRankDefault)

		foundPrompts[resp.Prompt] = struct{}{}
		foundCount++
		totalMentions += entry.Mentions
		totalRankSum += rank
		totalVisibility += VisibilityForRank(rank)
	}

	totalPrompts := countUniquePrompts(responses)
	metrics := models.GeneralizedMetrics{
		TotalMentions:    max(0, totalMentions),
		ResponsesFoundIn: len(foundPrompts),
		TotalPrompts:     totalPrompts,
		PresenceScore:    percent(len(foundPrompts), totalPrompts),
	}
	if foundCount > 0 {
		metrics.VisibilityScore = clamp(roundHalfUp(float64(totalVisibility)/float64(foundCount)), 0, 100)
		avg := round1(float64(totalRankSum) / float64(foundCount))
		metrics.AverageRank = &avg
	}

	return metrics, nil
}

// AggregateSpecific counts every matching entry in every response, not just the
// first per response. It backs the mentions_LLM / avgRank_LLM columns of the
// per-model table and deliberately does not share code with Aggregate.
func AggregateSpecific(responses []models.PromptResult, identity models.BrandIdentity) (models.SpecificMetrics, error) {
	matcher, err := NewMatcher(identity)
	if err != nil {
		return models.SpecificMetrics{}, err
	}

	var (
		mentions int
		rankSum  int
	)
	for _, resp := range responses {
		for _, entry := range resp.RankedBrands {
			if !matcher.Match(entry.Brand) {
				continue
			}
			mentions++
			rankSum += entry.RankOr(specificRankDefault)
		}
	}

	out := models.SpecificMetrics{Mentions: mentions}
	if mentions > 0 {
		avg := round1(float64(rankSum) / float64(mentions))
		out.AverageRank = &avg
	}
	return out, nil
}

func countUniquePrompts(responses []models.PromptResult) int {
	seen := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		seen[r.Prompt] = struct{}{}
	}
	return len(seen)
}

// percent returns round(100*num/den) clamped to [0,100]; 0 when den is 0.
func percent(num, den int) int {
	if den == 0 {
		return 0
	}
	return clamp(roundHalfUp(100*float64(num)/float64(den)), 0, 100)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// roundHalfUp rounds .5 towards +Inf.
func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
