package metrics

import (
	"sort"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// AnalyzePrompts returns one row per unique prompt, sorted by visibility descending.
//
// When the same prompt was asked of several models only the first response in
// input order is kept; rows show a representative answer, not a cross-model average.
func AnalyzePrompts(responses []models.PromptResult, identity models.BrandIdentity) ([]models.PromptPerformance, error) {
	matcher, err := NewMatcher(identity)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(responses))
	rows := make([]models.PromptPerformance, 0, len(responses))

	for _, resp := range responses {
		if _, dup := seen[resp.Prompt]; dup {
			continue
		}
		seen[resp.Prompt] = struct{}{}

		row := models.PromptPerformance{Prompt: resp.Prompt}
		if entry, ok := matcher.FirstMatch(resp.RankedBrands); ok {
			row.TargetBrandFound = true
			row.VisibilityScore = VisibilityForRank(entry.RankOr(generalRankDefault))
			row.TotalMentions = entry.Mentions
			if entry.HasRank() {
				rank := entry.RankOr(0)
				row.TargetBrandRank = &rank
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].VisibilityScore > rows[j].VisibilityScore
	})
	return rows, nil
}

// Opportunities are the prompts where the target brand never showed up.
func Opportunities(rows []models.PromptPerformance) []models.PromptPerformance {
	var out []models.PromptPerformance
	for _, r := range rows {
		if !r.TargetBrandFound {
			out = append(out, r)
		}
	}
	return out
}
