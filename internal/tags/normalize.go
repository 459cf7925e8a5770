package tags

import (
	"strings"

	"curator/internal/core"
)

// tagAliases maps common shorthand to canonical tag names.
var tagAliases = map[string]string{
	"js":      "javascript",
	"ts":      "typescript",
	"golang":  "go",
	"k8s":     "kubernetes",
	"py":      "python",
	"ml":      "machine-learning",
	"ai":      "artificial-intelligence",
	"node":    "nodejs",
	"node.js": "nodejs",
	"postgres": "postgresql",
}

// technicalTerms is the fixed term list used for keyword extraction. Each
// occurrence in the text raises the extracted tag's relevance.
var technicalTerms = []struct {
	term string
	typ  core.TagType
}{
	{"go", core.TagTechnology},
	{"python", core.TagTechnology},
	{"rust", core.TagTechnology},
	{"javascript", core.TagTechnology},
	{"typescript", core.TagTechnology},
	{"react", core.TagTechnology},
	{"kubernetes", core.TagTechnology},
	{"docker", core.TagTechnology},
	{"postgresql", core.TagTechnology},
	{"redis", core.TagTechnology},
	{"graphql", core.TagTechnology},
	{"grpc", core.TagTechnology},
	{"llm", core.TagTopic},
	{"machine-learning", core.TagTopic},
	{"security", core.TagTopic},
	{"performance", core.TagTopic},
	{"testing", core.TagTopic},
	{"architecture", core.TagTopic},
	{"observability", core.TagTopic},
	{"tutorial", core.TagContentType},
	{"beginner", core.TagDifficulty},
	{"advanced", core.TagDifficulty},
}

// commonTags are too generic to keep unless strongly relevant.
var commonTags = map[string]bool{
	"programming": true,
	"software":    true,
	"technology":  true,
	"development": true,
	"coding":      true,
	"tech":        true,
	"engineering": true,
}

// NormalizeTag lowercases a tag, unifies hyphen/underscore separators,
// and resolves canonical aliases.
func NormalizeTag(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, " ", "-")
	if canonical, ok := tagAliases[name]; ok {
		return canonical
	}
	return name
}

// normalizeAndDedup normalizes every tag name and keeps the highest
// relevance when duplicates collapse onto the same canonical name.
func normalizeAndDedup(suggestions []core.TagSuggestion) []core.TagSuggestion {
	byName := make(map[string]int)
	var out []core.TagSuggestion

	for _, s := range suggestions {
		s.Name = NormalizeTag(s.Name)
		if s.Name == "" {
			continue
		}
		if idx, seen := byName[s.Name]; seen {
			if s.Relevance > out[idx].Relevance {
				out[idx].Relevance = s.Relevance
			}
			continue
		}
		byName[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}

// filterCommon drops tags from the generic set unless their relevance
// exceeds 0.7.
func filterCommon(suggestions []core.TagSuggestion) []core.TagSuggestion {
	var out []core.TagSuggestion
	for _, s := range suggestions {
		if commonTags[s.Name] && s.Relevance <= 0.7 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ExtractKeywordTags scans text for the fixed technical-term list and
// scores each found term by its in-text frequency. This is the whole of
// the deterministic fallback, and also the augmentation source when the
// model succeeds.
func ExtractKeywordTags(text string) []core.TagSuggestion {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '-' || r == '.')
	})

	counts := make(map[string]int)
	for _, w := range words {
		counts[NormalizeTag(w)]++
	}

	var out []core.TagSuggestion
	for _, t := range technicalTerms {
		n := counts[t.term]
		if n == 0 && strings.Contains(t.term, "-") && strings.Contains(lower, strings.ReplaceAll(t.term, "-", " ")) {
			n = strings.Count(lower, strings.ReplaceAll(t.term, "-", " "))
		}
		if n == 0 {
			continue
		}
		// Frequency maps onto relevance with diminishing returns.
		relevance := 0.4 + 0.15*float64(n)
		out = append(out, core.TagSuggestion{
			Name:      t.term,
			Relevance: core.ClampConfidence(relevance),
			Type:      t.typ,
		})
	}
	return out
}
