package metrics

import (
	"strings"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// Matcher decides whether a free-text brand label refers to the target brand.
//
// Matching is case-insensitive substring containment: "Acme Inc." and
// "acme.com" both match the variant "Acme". Short variants can produce false
// positives ("AI" matches "OpenAI"); callers control that through the variant list.
type Matcher struct {
	variants []string
}

// NewMatcher lower-cases the identity's variants once. Blank variants are ignored
// since they would match every label.
func NewMatcher(identity models.BrandIdentity) (*Matcher, error) {
	m := &Matcher{variants: make([]string, 0, len(identity.Variants))}
	for _, v := range identity.Variants {
		if strings.TrimSpace(v) == "" {
			continue
		}
		m.variants = append(m.variants, strings.ToLower(v))
	}
	if len(m.variants) == 0 {
		return nil, ErrNoVariants
	}
	return m, nil
}

// Match reports whether label contains any variant.
func (m *Matcher) Match(label string) bool {
	lower := strings.ToLower(label)
	for _, v := range m.variants {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

// FirstMatch returns the first entry in list order whose brand matches.
func (m *Matcher) FirstMatch(entries []models.RankedBrandEntry) (models.RankedBrandEntry, bool) {
	for _, e := range entries {
		if m.Match(e.Brand) {
			return e, true
		}
	}
	return models.RankedBrandEntry{}, false
}

// AnyMatch reports whether any entry matches.
func (m *Matcher) AnyMatch(entries []models.RankedBrandEntry) bool {
	_, ok := m.FirstMatch(entries)
	return ok
}

// Matches is the lenient one-shot form of Matcher.Match: an identity without
// usable variants never matches and ErrNoVariants is not reported. Callers that
// must surface that error build a Matcher with NewMatcher, as the aggregators do.
func Matches(label string, identity models.BrandIdentity) bool {
	m, err := NewMatcher(identity)
	if err != nil {
		return false
	}
	return m.Match(label)
}
