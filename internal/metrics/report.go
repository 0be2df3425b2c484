package metrics

import (
	"time"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// BuildReport assembles a TrackingReport from the answers of each backend.
//
// The per-model lists are concatenated in order for the generalized, competitor
// and prompt views; each model also gets its own ModelPerformance row.
func BuildReport(brandID string, identity models.BrandIdentity, perModel []models.ModelResponses, now time.Time) (*models.TrackingReport, error) {
	var all []models.PromptResult
	for _, mr := range perModel {
		all = append(all, mr.Responses...)
	}

	general, err := Aggregate(all, identity)
	if err != nil {
		return nil, err
	}
	competitors, err := RankCompetitors(all, identity)
	if err != nil {
		return nil, err
	}
	prompts, err := AnalyzePrompts(all, identity)
	if err != nil {
		return nil, err
	}

	perf := make([]models.ModelPerformance, 0, len(perModel))
	for _, mr := range perModel {
		row, err := modelPerformance(mr, identity)
		if err != nil {
			return nil, err
		}
		perf = append(perf, row)
	}

	usedMock := false
	for _, r := range all {
		if r.Fallback {
			usedMock = true
			break
		}
	}

	if all == nil {
		all = []models.PromptResult{}
	}

	return &models.TrackingReport{
		BrandID: brandID,
		BrandInfo: models.BrandInfo{
			BrandName:    identity.Name,
			NameVariants: identity.Variants,
			Description:  identity.Description,
			AnalysisDate: now,
		},
		GeneralizedMetrics: general,
		PromptPerformance:  prompts,
		CompetitorAnalysis: competitors,
		AIModelPerformance: perf,
		RawResponses:       all,
		UsedMockData:       usedMock,
		GeneratedAt:        now,
	}, nil
}

func modelPerformance(mr models.ModelResponses, identity models.BrandIdentity) (models.ModelPerformance, error) {
	general, err := Aggregate(mr.Responses, identity)
	if err != nil {
		return models.ModelPerformance{}, err
	}
	specific, err := AggregateSpecific(mr.Responses, identity)
	if err != nil {
		return models.ModelPerformance{}, err
	}
	return models.ModelPerformance{
		Model:           mr.Model,
		VisibilityScore: general.VisibilityScore,
		PresenceScore:   general.PresenceScore,
		AverageRank:     general.AverageRank,
		TotalMentions:   general.TotalMentions,
		AvgRankLLM:      specific.AverageRank,
		MentionsLLM:     specific.Mentions,
	}, nil
}
