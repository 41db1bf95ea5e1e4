package census

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/dhamidi/gfcedit/express"
)

// DefaultSuggestThreshold is the minimum Jaro-Winkler similarity for a
// "did you mean" suggestion.
const DefaultSuggestThreshold = 0.8

// UnknownClass groups the instances of one unresolved class name.
type UnknownClass struct {
	Name       string // upper-cased raw name
	Count      int
	Suggestion string // closest canonical class, or ""
}

// UnknownClasses groups the unresolved refs by name, most frequent first.
func (c *Census) UnknownClasses(h *express.Hierarchy, minSimilarity float32) []UnknownClass {
	counts := make(map[string]int)
	for _, ref := range c.Unknown {
		counts[strings.ToUpper(ref.Class)]++
	}

	out := make([]UnknownClass, 0, len(counts))
	for name, n := range counts {
		out = append(out, UnknownClass{
			Name:       name,
			Count:      n,
			Suggestion: Suggest(h, name, minSimilarity),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Suggest returns the canonical class most similar to raw, compared case
// insensitively, if its similarity reaches minSimilarity.
func Suggest(h *express.Hierarchy, raw string, minSimilarity float32) string {
	target := strings.ToLower(raw)
	best := ""
	var bestScore float32
	for _, name := range h.Names() {
		score, err := edlib.StringsSimilarity(target, strings.ToLower(name), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	if bestScore < minSimilarity {
		return ""
	}
	return best
}
