package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// BuildTrackingPrompt asks a model for the top 10 brands it would surface for prompt,
// answered as a single JSON object.
func BuildTrackingPrompt(prompt string, identity models.BrandIdentity, now time.Time) string {
	return fmt.Sprintf(`You are analyzing brand visibility and ranking for the following prompt: "%[1]s"

Target Brand Information:
- Brand Name: %[2]s
- Name Variants: %[3]s
- Description: %[4]s

Please provide a ranked list of the top 10 brands/companies that would appear for this search query. Include the target brand if it's relevant to this query.

For each brand in your response, provide:
1. Brand name
2. Rank position (1-10)
3. Number of times mentioned/relevance score (1-10)
4. Brief explanation of why it ranks at this position
5. Sentiment towards the brand (positive/neutral/negative)

Respond ONLY in the following JSON format:
{
  "prompt": "%[1]s",
  "analysis_date": "%[5]s",
  "ranked_brands": [
    {
      "brand": "Brand Name",
      "rank": 1,
      "mentions": 8,
      "explanation": "Brief explanation of ranking",
      "sentiment": "positive"
    }
  ],
  "total_brands_found": 10,
  "target_brand_found": true,
  "target_brand_rank": 1
}`,
		prompt,
		identity.Name,
		strings.Join(identity.Variants, ", "),
		identity.Description,
		now.UTC().Format(time.RFC3339),
	)
}
