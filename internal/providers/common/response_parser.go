package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	lineCommentRe   = regexp.MustCompile(`(?m)^\s*//.*$|\s//[^"\n]*$`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// StripCodeFences removes a surrounding ```json ... ``` block, if any.
func StripCodeFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	if len(cleaned) >= 4 && strings.EqualFold(cleaned[:4], "json") {
		cleaned = cleaned[4:]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// CleanJSON applies the light repairs: code fences, // comments and trailing commas.
func CleanJSON(content string) string {
	cleaned := StripCodeFences(content)
	cleaned = lineCommentRe.ReplaceAllString(cleaned, "")
	cleaned = trailingCommaRe.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}

// ExtractObject trims content to its outermost {...} and drops /* */ comments
// before applying CleanJSON.
func ExtractObject(content string) string {
	s := strings.TrimSpace(content)
	if start := strings.Index(s, "{"); start > 0 {
		s = s[start:]
	}
	if end := strings.LastIndex(s, "}"); end > 0 {
		s = s[:end+1]
	}
	s = blockCommentRe.ReplaceAllString(s, "")
	return CleanJSON(s)
}

// ParseJSONObject decodes model output that should be a JSON value, repairing
// the usual damage in stages. The decoded value is returned as-is: callers decide
// whether a non-object is acceptable.
func ParseJSONObject(content string) (any, error) {
	var firstErr error
	for _, candidate := range []string{StripCodeFences(content), CleanJSON(content), ExtractObject(content)} {
		var v any
		err := json.Unmarshal([]byte(candidate), &v)
		if err == nil {
			return v, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("response is not valid JSON: %w", firstErr)
}

// ExtractStringField pulls "field": "value" out of text that failed to parse.
func ExtractStringField(content, field string) (string, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return CollapseWhitespace(m[1]), true
}

// ExtractStringArrayField pulls "field": ["a", "b"] out of text that failed to parse.
func ExtractStringArrayField(content, field string) []string {
	re := regexp.MustCompile(`(?s)"` + regexp.QuoteMeta(field) + `"\s*:\s*\[(.*?)\]`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	items := regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`).FindAllStringSubmatch(m[1], -1)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it[1])
	}
	return out
}

// CollapseWhitespace turns runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
