// Package fuzzy ranks approximate name matches for human-facing correction
// suggestions. Output is advisory only and is never applied to a record.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// DefaultLimit is the suggestion count used when the caller passes limit <= 0.
const DefaultLimit = 5

// minSimilarity filters out population names too far from the candidate to
// be a plausible typo.
const minSimilarity = 0.3

// substringFloor is the minimum similarity credited when one name contains
// the other, so prefix/suffix matches rank ahead of distant edits.
const substringFloor = 0.75

type scoredMatch struct {
	name       string
	similarity float64
}

// Suggest returns up to limit names from population nearest to candidate,
// best match first. Matching is case-insensitive; ranking is deterministic
// for identical inputs (similarity descending, then name ascending).
// Returns an empty slice when the population is empty or nothing is close.
func Suggest(candidate string, population []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	needle := strings.ToLower(strings.TrimSpace(candidate))
	if needle == "" || len(population) == 0 {
		return []string{}
	}

	matches := make([]scoredMatch, 0, len(population))
	for _, name := range population {
		haystack := strings.ToLower(strings.TrimSpace(name))
		if haystack == "" {
			continue
		}

		sim := similarity(needle, haystack)
		if sim < minSimilarity {
			continue
		}
		matches = append(matches, scoredMatch{name: name, similarity: sim})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].similarity != matches[j].similarity {
			return matches[i].similarity > matches[j].similarity
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, m.name)
	}
	return result
}

// similarity maps edit distance into [0,1], with a floor for containment.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}

	dist := levenshtein.Distance(a, b, nil)
	sim := 1.0 - float64(dist)/float64(longest)

	if strings.Contains(a, b) || strings.Contains(b, a) {
		if sim < substringFloor {
			sim = substringFloor
		}
	}

	return sim
}
