package extract

import (
	"strings"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// Extractor runs a fixed rule table over free text.
type Extractor struct {
	rules []Rule
}

// NewExtractor creates an extractor with the built-in rule table.
func NewExtractor() *Extractor {
	return &Extractor{rules: DefaultRules()}
}

// NewExtractorWithRules creates an extractor with a custom rule table,
// typically the output of LoadRules.
func NewExtractorWithRules(rules []Rule) *Extractor {
	return &Extractor{rules: rules}
}

// Extract returns every candidate field matched anywhere in text, in rule
// order then match order. Duplicate matches are returned as-is; the caller
// picks a winner per field. Empty or whitespace-only text yields an empty
// list, never an error.
func (e *Extractor) Extract(text string) []models.CandidateField {
	candidates := []models.CandidateField{}
	if strings.TrimSpace(text) == "" {
		return candidates
	}

	for _, rule := range e.rules {
		matches := rule.Pattern.FindAllStringSubmatch(text, -1)
		for _, m := range matches {
			if rule.Group >= len(m) {
				continue
			}
			value := strings.TrimSpace(m[rule.Group])
			if value == "" {
				continue
			}
			candidates = append(candidates, models.CandidateField{
				Field:      rule.Field,
				Value:      value,
				Confidence: rule.Weight,
				Rule:       rule.Name,
			})
		}
	}

	return candidates
}
