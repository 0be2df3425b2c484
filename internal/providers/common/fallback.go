package common

import (
	"time"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// TargetBrand marks the entry of a FallbackTemplate that stands for the tracked brand.
const TargetBrand = "$target"

// FallbackTemplate is the canned answer a backend contributes when its call fails.
type FallbackTemplate []models.RankedBrandEntry

// Render fills in the prompt and the target brand. The result is flagged as a fallback.
func (t FallbackTemplate) Render(prompt string, identity models.BrandIdentity, now time.Time) models.PromptResult {
	target := identity.Name
	if target == "" && len(identity.Variants) > 0 {
		target = identity.Variants[0]
	}

	result := models.PromptResult{
		Prompt:           prompt,
		AnalysisDate:     now.UTC().Format(time.RFC3339),
		RankedBrands:     make([]models.RankedBrandEntry, 0, len(t)),
		TotalBrandsFound: len(t),
		Fallback:         true,
	}
	for _, e := range t {
		if e.Brand == TargetBrand {
			e.Brand = target
			rank := e.Rank
			result.TargetBrandFound = true
			result.TargetBrandRank = &rank
		}
		result.RankedBrands = append(result.RankedBrands, e)
	}
	return result
}
