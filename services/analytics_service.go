// services/analytics_service.go
package services

import (
	"fmt"

	"github.com/AI-Template-SDK/trakkr/internal/metrics"
	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// maxOpportunityInsights caps how many missed prompts are listed
const maxOpportunityInsights = 3

type analyticsService struct{}

func NewAnalyticsService() AnalyticsService {
	return &analyticsService{}
}

// GenerateInsights turns a report into short human-readable lines.
// The lines only restate numbers already in the report.
func (s *analyticsService) GenerateInsights(report *models.TrackingReport) []string {
	if report == nil {
		return nil
	}

	gm := report.GeneralizedMetrics
	brand := report.BrandInfo.BrandName
	if brand == "" {
		brand = "Your brand"
	}

	insights := []string{}
	if gm.TotalPrompts == 0 {
		return append(insights, "No AI responses were collected for this report.")
	}

	insights = append(insights, fmt.Sprintf("%s has a visibility score of %d/100 (%s).",
		brand, gm.VisibilityScore, visibilityBand(gm.VisibilityScore)))
	insights = append(insights, fmt.Sprintf("%s appeared in %d of %d prompts (%d%% presence).",
		brand, gm.ResponsesFoundIn, gm.TotalPrompts, gm.PresenceScore))

	if gm.AverageRank != nil {
		insights = append(insights, fmt.Sprintf("Average rank when mentioned: #%.1f.", *gm.AverageRank))
	}

	if top, ok := topCompetitor(report.CompetitorAnalysis); ok {
		line := fmt.Sprintf("%s is the most mentioned competitor with %d mentions", top.Brand, top.TotalMentions)
		if top.OverlapRate > 0 {
			line += fmt.Sprintf(", appearing alongside %s in %d%% of prompts", brand, top.OverlapRate)
		}
		insights = append(insights, line+".")
	}

	missed := metrics.Opportunities(report.PromptPerformance)
	for i, row := range missed {
		if i == maxOpportunityInsights {
			insights = append(insights, fmt.Sprintf("%d more prompts did not mention %s.", len(missed)-i, brand))
			break
		}
		insights = append(insights, fmt.Sprintf("Opportunity: %s was not mentioned for %q.", brand, row.Prompt))
	}

	if best, ok := bestModel(report.AIModelPerformance); ok {
		insights = append(insights, fmt.Sprintf("%s gives %s the highest visibility (%d/100).",
			best.Model, brand, best.VisibilityScore))
	}

	if report.UsedMockData {
		insights = append(insights, "Some AI models were unavailable, so sample data was used for part of this report.")
	}
	return insights
}

func visibilityBand(score int) string {
	switch {
	case score >= 70:
		return "strong"
	case score >= 40:
		return "moderate"
	case score > 0:
		return "weak"
	default:
		return "not visible"
	}
}

// topCompetitor relies on the leaderboard already being sorted by mentions
func topCompetitor(stats []models.CompetitorStat) (models.CompetitorStat, bool) {
	if len(stats) == 0 || stats[0].TotalMentions == 0 {
		return models.CompetitorStat{}, false
	}
	return stats[0], true
}

// bestModel picks the first model with the highest visibility; it is only
// reported when at least two models were compared and one scored above zero.
func bestModel(rows []models.ModelPerformance) (models.ModelPerformance, bool) {
	if len(rows) < 2 {
		return models.ModelPerformance{}, false
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if r.VisibilityScore > best.VisibilityScore {
			best = r
		}
	}
	return best, best.VisibilityScore > 0
}
