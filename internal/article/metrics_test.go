package article

import (
	"math"
	"strings"
	"testing"

	"curator/internal/core"
)

func wellFormedArticle() *core.GeneratedArticle {
	body := `## Overview

Recent work on connection pooling [1] and scheduler fairness [2] converges.

## Details

- pooling changes [1]
- fairness changes [2]

` + strings.Repeat("word ", 500)
	return &core.GeneratedArticle{
		Title:      "Connection Pooling Meets Scheduler Fairness",
		Content:    body,
		Tags:       []string{"go", "scheduling", "networking"},
		SourceRefs: []string{"https://a.example", "https://b.example"},
		WordCount:  CountWords(body),
	}
}

func TestAssessMetricsWellFormed(t *testing.T) {
	m := AssessMetrics(wellFormedArticle())

	if m.Overall < 0.9 {
		t.Errorf("expected near-perfect overall, got %v (issues: %v)", m.Overall, m.Issues)
	}
	if len(m.Issues) != 0 {
		t.Errorf("expected no issues, got %v", m.Issues)
	}
}

func TestAssessMetricsNil(t *testing.T) {
	m := AssessMetrics(nil)
	if m.Overall != 0 || len(m.Issues) != 1 {
		t.Errorf("nil article should score 0 with one issue, got %+v", m)
	}
}

func TestLengthScore(t *testing.T) {
	cases := []struct {
		words int
		want  float64
	}{
		{0, 0},
		{100, 0.25},
		{300, 0.75},
		{400, 1.0},
		{1500, 1.0},
		{2250, 0.75},
		{4000, 0},
	}
	for _, tc := range cases {
		if got := lengthScore(tc.words); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("lengthScore(%d) = %v, want %v", tc.words, got, tc.want)
		}
	}
}

func TestTitleScore(t *testing.T) {
	if titleScore("") != 0 {
		t.Error("empty title should score 0")
	}
	if titleScore("Go 1.25 Scheduler Changes") != 1.0 {
		t.Error("mid-length title should score 1.0")
	}
	if got := titleScore("Short"); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("5-char title should score 0.25, got %v", got)
	}
	if got := titleScore(strings.Repeat("x", 200)); got != 0.25 {
		t.Errorf("very long title should floor at 0.25, got %v", got)
	}
}

func TestCoverageScore(t *testing.T) {
	body := "Changes landed [1] and were benchmarked [3]."
	if got := coverageScore(body, 4); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("2 of 4 refs cited should score 0.5, got %v", got)
	}
	if coverageScore(body, 0) != 0 {
		t.Error("no refs should score 0")
	}
}

func TestStructureScore(t *testing.T) {
	flat := "One paragraph with no structure at all."
	if got := structureScore(flat); got != 0 {
		t.Errorf("flat text should score 0, got %v", got)
	}

	structured := "# Title\n\n## Section\n\n- a list item\n"
	if got := structureScore(structured); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("2 headings plus a list should score 0.75, got %v", got)
	}
}

func TestTagScore(t *testing.T) {
	if tagScore(0) != 0 || tagScore(5) != 1.0 || tagScore(12) != 0.5 {
		t.Error("tag score rubric mismatch")
	}
	if got := tagScore(1); math.Abs(got-1.0/3.0) > 1e-9 {
		t.Errorf("1 tag should score 1/3, got %v", got)
	}
}
