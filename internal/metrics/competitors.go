package metrics

import (
	"sort"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// MaxCompetitors caps the leaderboard length.
const MaxCompetitors = 30

const sentimentThreshold = 0.33

type competitorAccumulator struct {
	brand           string
	totalMentions   int
	ranks           []int
	overlaps        int
	sentimentScores []float64
	appearances     int
}

// RankCompetitors builds the leaderboard of every brand label that does not match
// the target. Labels are kept verbatim, so "Globex" and "Globex Inc" are distinct
// rows, and a label repeated inside one answer counts once per occurrence.
func RankCompetitors(responses []models.PromptResult, identity models.BrandIdentity) ([]models.CompetitorStat, error) {
	matcher, err := NewMatcher(identity)
	if err != nil {
		return nil, err
	}

	byBrand := make(map[string]*competitorAccumulator)
	var order []*competitorAccumulator

	for _, resp := range responses {
		if len(resp.RankedBrands) == 0 {
			continue
		}
		targetFound := matcher.AnyMatch(resp.RankedBrands)

		for _, entry := range resp.RankedBrands {
			if matcher.Match(entry.Brand) {
				continue
			}
			acc, ok := byBrand[entry.Brand]
			if !ok {
				acc = &competitorAccumulator{brand: entry.Brand}
				byBrand[entry.Brand] = acc
				order = append(order, acc)
			}
			acc.totalMentions += entry.Mentions
			if entry.HasRank() {
				acc.ranks = append(acc.ranks, entry.RankOr(0))
			}
			acc.appearances++
			if targetFound {
				acc.overlaps++
			}
			acc.sentimentScores = append(acc.sentimentScores, entry.Sentiment.Score())
		}
	}

	totalPrompts := countUniquePrompts(responses)
	stats := make([]models.CompetitorStat, 0, len(order))
	for _, acc := range order {
		stats = append(stats, acc.finalize(totalPrompts))
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalMentions > stats[j].TotalMentions
	})
	if len(stats) > MaxCompetitors {
		stats = stats[:MaxCompetitors]
	}
	return stats, nil
}

func (a *competitorAccumulator) finalize(totalPrompts int) models.CompetitorStat {
	stat := models.CompetitorStat{
		Brand:              a.brand,
		TotalMentions:      max(0, a.totalMentions),
		OverlapsWithTarget: a.overlaps,
		OverlapRate:        percent(a.overlaps, totalPrompts),
		Appearances:        a.appearances,
	}

	if len(a.ranks) > 0 {
		sum := 0
		for _, r := range a.ranks {
			sum += r
		}
		avg := round1(float64(sum) / float64(len(a.ranks)))
		stat.AverageRank = &avg
	}

	if len(a.sentimentScores) > 0 {
		var sum float64
		for _, s := range a.sentimentScores {
			sum += s
		}
		stat.AvgSentiment = round2(sum / float64(len(a.sentimentScores)))
	}
	stat.SentimentLabel = SentimentLabel(stat.AvgSentiment)

	return stat
}

// SentimentLabel classifies an average sentiment score.
func SentimentLabel(avg float64) models.Sentiment {
	switch {
	case avg > sentimentThreshold:
		return models.SentimentPositive
	case avg < -sentimentThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
