package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// Normalize turns one decoded model answer into a PromptResult.
//
// Only a non-object top-level value is an error (ErrMalformedResponse).
// A missing or non-array ranked_brands becomes an empty list, and entries
// without a brand are dropped one at a time.
func Normalize(raw any) (models.PromptResult, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return models.PromptResult{}, &Error{
			Kind: KindMalformedResponse,
			Op:   "normalize",
			Err:  fmt.Errorf("top-level value is %T, want object", raw),
		}
	}

	result := models.PromptResult{
		Prompt:           stringOf(obj["prompt"]),
		Model:            stringOf(obj["model"]),
		AnalysisDate:     stringOf(obj["analysis_date"]),
		RankedBrands:     []models.RankedBrandEntry{},
		TotalBrandsFound: max(0, intOf(obj["total_brands_found"])),
		TargetBrandFound: boolOf(obj["target_brand_found"]),
	}
	if fb, ok := obj["fallback"].(bool); ok {
		result.Fallback = fb
	}
	if r := intOf(obj["target_brand_rank"]); r > 0 {
		r = min(r, models.MaxRank)
		result.TargetBrandRank = &r
	}

	list, ok := obj["ranked_brands"].([]any)
	if !ok {
		log := logging.Component("metrics")
		log.Warn().Str("prompt", result.Prompt).Msg("answer has no ranked_brands list, skipping its entries")
		return result, nil
	}

	dropped := 0
	for _, item := range list {
		entry, ok := normalizeEntry(item)
		if !ok {
			dropped++
			continue
		}
		result.RankedBrands = append(result.RankedBrands, entry)
	}
	if dropped > 0 {
		log := logging.Component("metrics")
		log.Debug().Str("prompt", result.Prompt).Int("dropped", dropped).Msg("dropped ranked entries without a brand")
	}

	return result, nil
}

// NormalizeAll normalizes a batch, skipping malformed answers.
func NormalizeAll(raws []any) []models.PromptResult {
	out := make([]models.PromptResult, 0, len(raws))
	for i, raw := range raws {
		res, err := Normalize(raw)
		if err != nil {
			log := logging.Component("metrics")
			log.Warn().Err(err).Int("index", i).Msg("skipping malformed answer")
			continue
		}
		out = append(out, res)
	}
	return out
}

// DecodeAll decodes a JSON array of answers and normalizes each element.
func DecodeAll(data []byte) ([]models.PromptResult, error) {
	var raws []any
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Op: "decode", Err: err}
	}
	return NormalizeAll(raws), nil
}

func normalizeEntry(item any) (models.RankedBrandEntry, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		return models.RankedBrandEntry{}, false
	}
	brandRaw, present := obj["brand"]
	if !present || brandRaw == nil {
		return models.RankedBrandEntry{}, false
	}
	brand, ok := scalarString(brandRaw)
	if !ok {
		return models.RankedBrandEntry{}, false
	}

	entry := models.RankedBrandEntry{
		Brand:       brand,
		Rank:        intOf(obj["rank"]),
		Mentions:    intOf(obj["mentions"]),
		Explanation: stringOf(obj["explanation"]),
		Sentiment:   models.ParseSentiment(obj["sentiment"]),
	}
	entry.Rank = clamp(entry.Rank, 0, models.MaxRank)
	return entry, true
}

// scalarString stringifies strings, numbers and booleans. Objects and arrays are rejected.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func stringOf(v any) string {
	s, _ := scalarString(v)
	return s
}

// maxCount bounds counts such as mentions so sums over many answers stay in range
const maxCount = 1_000_000

// intOf accepts JSON numbers and numeric strings. Anything else is 0.
// Values are clamped to ±maxCount before conversion.
func intOf(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Max(-maxCount, math.Min(maxCount, f)))
}

func boolOf(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	default:
		return false
	}
}
