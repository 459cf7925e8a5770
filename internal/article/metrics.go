package article

import (
	"fmt"
	"strings"

	"curator/internal/core"
)

// Metrics is a deterministic quality rubric for a generated article.
// It needs no model call and is meant for quick sanity checks and
// batch reporting.
type Metrics struct {
	LengthScore    float64 `json:"length_score"`
	TitleScore     float64 `json:"title_score"`
	StructureScore float64 `json:"structure_score"`
	CoverageScore  float64 `json:"coverage_score"`
	TagScore       float64 `json:"tag_score"`
	Overall        float64 `json:"overall"`
	Issues         []string `json:"issues,omitempty"`
}

// AssessMetrics scores an article against the rubric. Each component
// is 0.0 to 1.0; Overall is their mean.
func AssessMetrics(a *core.GeneratedArticle) Metrics {
	var m Metrics
	if a == nil {
		m.Issues = append(m.Issues, "article is nil")
		return m
	}

	m.LengthScore = lengthScore(a.WordCount)
	if m.LengthScore < 0.5 {
		m.Issues = append(m.Issues, fmt.Sprintf("word count %d outside comfortable range", a.WordCount))
	}

	m.TitleScore = titleScore(a.Title)
	if m.TitleScore < 0.5 {
		m.Issues = append(m.Issues, "title too short or too long")
	}

	m.StructureScore = structureScore(a.Content)
	if m.StructureScore < 0.5 {
		m.Issues = append(m.Issues, "content lacks section structure")
	}

	m.CoverageScore = coverageScore(a.Content, len(a.SourceRefs))
	if m.CoverageScore < 0.5 {
		m.Issues = append(m.Issues, "few source citations appear in the text")
	}

	m.TagScore = tagScore(len(a.Tags))
	if m.TagScore < 0.5 {
		m.Issues = append(m.Issues, fmt.Sprintf("tag count %d outside expected range", len(a.Tags)))
	}

	m.Overall = (m.LengthScore + m.TitleScore + m.StructureScore + m.CoverageScore + m.TagScore) / 5
	return m
}

// lengthScore peaks between 400 and 1500 words and tapers outside.
func lengthScore(words int) float64 {
	switch {
	case words >= 400 && words <= 1500:
		return 1.0
	case words >= 200 && words < 400:
		return 0.5 + 0.5*float64(words-200)/200
	case words > 1500 && words <= 3000:
		return 1.0 - 0.5*float64(words-1500)/1500
	case words > 0 && words < 200:
		return 0.5 * float64(words) / 200
	default:
		return 0
	}
}

// titleScore rewards headlines between 20 and 80 characters.
func titleScore(title string) float64 {
	n := len(strings.TrimSpace(title))
	switch {
	case n == 0:
		return 0
	case n >= 20 && n <= 80:
		return 1.0
	case n < 20:
		return float64(n) / 20
	default:
		if n >= 160 {
			return 0.25
		}
		return 1.0 - 0.75*float64(n-80)/80
	}
}

// structureScore counts markdown headings and list markers.
func structureScore(body string) float64 {
	headings := 0
	lists := 0
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			headings++
		}
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			lists++
		}
	}
	score := 0.25 * float64(headings)
	if lists > 0 {
		score += 0.25
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// coverageScore checks what fraction of the numbered source references
// are actually cited in the body.
func coverageScore(body string, refCount int) float64 {
	if refCount == 0 {
		return 0
	}
	cited := 0
	for i := 1; i <= refCount; i++ {
		if strings.Contains(body, fmt.Sprintf("[%d]", i)) {
			cited++
		}
	}
	return float64(cited) / float64(refCount)
}

// tagScore rewards 3 to 8 tags.
func tagScore(n int) float64 {
	switch {
	case n >= 3 && n <= 8:
		return 1.0
	case n > 0 && n < 3:
		return float64(n) / 3
	case n > 8:
		return 0.5
	default:
		return 0
	}
}
