// Package queries turns a user profile into ranked, source-specific
// search queries for the upstream collectors.
package queries

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"curator/internal/core"
	"curator/internal/llm"
	"curator/internal/logger"
)

// LLMClient defines the model operations the generator needs.
type LLMClient interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any, options llm.Options) error
}

// GeneratorOptions configures query generation.
type GeneratorOptions struct {
	ModelName          string
	Temperature        float32
	MaxQueriesPerSource int
}

// DefaultGeneratorOptions returns sensible defaults.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Temperature:         0.6,
		MaxQueriesPerSource: 3,
	}
}

// Generator produces search queries for a profile. Queries are ephemeral
// and never cached.
type Generator struct {
	client  LLMClient
	options GeneratorOptions
	now     func() time.Time
}

// NewGenerator creates a query generator with the given LLM client.
func NewGenerator(client LLMClient, options GeneratorOptions) *Generator {
	if options.MaxQueriesPerSource <= 0 {
		options.MaxQueriesPerSource = DefaultGeneratorOptions().MaxQueriesPerSource
	}
	return &Generator{client: client, options: options, now: time.Now}
}

// NewGeneratorWithDefaults creates a generator with default options.
func NewGeneratorWithDefaults(client LLMClient) *Generator {
	return NewGenerator(client, DefaultGeneratorOptions())
}

// Plan is the result of query generation: queries grouped by target
// source, each group truncated by priority.
type Plan struct {
	Queries   map[string][]core.SearchQuery `json:"queries"`
	Reasoning string                        `json:"reasoning"`
}

// GenerateQueries builds a ranked query plan for the given sources. On
// model failure it degrades to generic profile-derived queries, two per
// source.
func (g *Generator) GenerateQueries(ctx context.Context, profile core.UserProfile, targetSources []string) Plan {
	plan, err := g.generateWithModel(ctx, profile, targetSources)
	if err != nil {
		logger.Warn("query generation fell back to profile heuristic", "user", profile.ID, "reason", err.Error())
		plan = g.fallbackPlan(profile, targetSources)
	}

	for source, qs := range plan.Queries {
		for i := range qs {
			qs[i] = g.adaptForSource(qs[i], source, profile)
			qs[i].Priority = core.ClampScore(qs[i].Priority)
		}
		sort.SliceStable(qs, func(i, j int) bool { return qs[i].Priority > qs[j].Priority })
		if len(qs) > g.options.MaxQueriesPerSource {
			qs = qs[:g.options.MaxQueriesPerSource]
		}
		plan.Queries[source] = qs
	}
	return plan
}

type queryResponse struct {
	Queries []struct {
		Query              string   `json:"query"`
		Category           string   `json:"category"`
		Priority           float64  `json:"priority"`
		Reasoning          string   `json:"reasoning"`
		RecommendedSources []string `json:"recommended_sources"`
	} `json:"queries"`
	Reasoning string `json:"reasoning"`
}

func querySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"queries": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query":     {Type: genai.TypeString},
						"category":  {Type: genai.TypeString, Description: "Interest category the query serves"},
						"priority":  {Type: genai.TypeNumber, Description: "Rank weight from 1 to 10"},
						"reasoning": {Type: genai.TypeString},
						"recommended_sources": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
					},
					Required: []string{"query", "category", "priority"},
				},
			},
			"reasoning": {Type: genai.TypeString, Description: "Overall strategy behind the query set"},
		},
		Required: []string{"queries"},
	}
}

func (g *Generator) generateWithModel(ctx context.Context, profile core.UserProfile, targetSources []string) (Plan, error) {
	prompt := fmt.Sprintf(`Generate search queries to discover technical content for this reader.

READER PROFILE:
Technical level: %s
Interest categories: %s
Interest keywords: %s
Recently read: %s

TARGET SOURCES: %s

Produce %d queries per target source. Each query should be specific enough
to find high-quality sources, diverse in angle, and rated 1-10 by priority.
Recommend which of the target sources each query suits best.`,
		profile.TechLevel,
		strings.Join(profile.Interests.Categories, ", "),
		strings.Join(profile.Interests.Keywords, ", "),
		strings.Join(profile.RecentActivity, "; "),
		strings.Join(targetSources, ", "),
		g.options.MaxQueriesPerSource)

	var resp queryResponse
	err := g.client.GenerateStructured(ctx, prompt, querySchema(), &resp, llm.Options{
		Model:       g.options.ModelName,
		Temperature: g.options.Temperature,
	})
	if err != nil {
		return Plan{}, err
	}
	if len(resp.Queries) == 0 {
		return Plan{}, fmt.Errorf("model returned no queries")
	}

	plan := Plan{Queries: make(map[string][]core.SearchQuery), Reasoning: resp.Reasoning}
	for _, q := range resp.Queries {
		sq := core.SearchQuery{
			Query:              q.Query,
			Category:           q.Category,
			Priority:           q.Priority,
			Reasoning:          q.Reasoning,
			RecommendedSources: q.RecommendedSources,
		}
		for _, source := range targetSources {
			if recommendedFor(sq, source) {
				plan.Queries[source] = append(plan.Queries[source], sq)
			}
		}
	}
	return plan, nil
}

// fallbackPlan emits generic queries built directly from the profile's
// top interests and keywords, two per target source.
func (g *Generator) fallbackPlan(profile core.UserProfile, targetSources []string) Plan {
	terms := topProfileTerms(profile, 2)
	if len(terms) == 0 {
		terms = []string{"software engineering"}
	}

	plan := Plan{
		Queries:   make(map[string][]core.SearchQuery),
		Reasoning: "generic queries derived from profile interests",
	}
	for _, source := range targetSources {
		for i, term := range terms {
			plan.Queries[source] = append(plan.Queries[source], core.SearchQuery{
				Query:              term,
				Category:           firstOrDefault(profile.Interests.Categories, "General"),
				Priority:           float64(8 - i),
				Reasoning:          "top profile interest",
				RecommendedSources: []string{source},
			})
		}
	}
	return plan
}

// adaptForSource applies the per-source query conventions: Reddit queries
// get a site restriction, GitHub queries get a language filter when one
// is absent, news queries get the current year.
func (g *Generator) adaptForSource(q core.SearchQuery, source string, profile core.UserProfile) core.SearchQuery {
	switch source {
	case "reddit":
		if !strings.Contains(q.Query, "site:reddit.com") {
			q.Query += " site:reddit.com"
		}
	case "github":
		if !strings.Contains(q.Query, "language:") {
			if lang := primaryLanguage(profile); lang != "" {
				q.Query += " language:" + lang
			}
		}
	case "news":
		year := fmt.Sprintf("%d", g.now().Year())
		if !strings.Contains(q.Query, year) {
			q.Query += " " + year
		}
	}
	return q
}

// knownLanguages maps profile keywords to GitHub language qualifiers.
var knownLanguages = map[string]string{
	"go": "go", "golang": "go",
	"python": "python",
	"rust":   "rust",
	"javascript": "javascript", "js": "javascript",
	"typescript": "typescript", "ts": "typescript",
	"java":  "java",
	"kotlin": "kotlin",
	"swift": "swift",
	"c++":   "cpp", "cpp": "cpp",
	"ruby": "ruby",
}

func primaryLanguage(profile core.UserProfile) string {
	for _, kw := range profile.Interests.Keywords {
		if lang, ok := knownLanguages[strings.ToLower(strings.TrimSpace(kw))]; ok {
			return lang
		}
	}
	for _, tag := range profile.Interests.Tags {
		if lang, ok := knownLanguages[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return lang
		}
	}
	return ""
}

func recommendedFor(q core.SearchQuery, source string) bool {
	if len(q.RecommendedSources) == 0 {
		return true
	}
	for _, s := range q.RecommendedSources {
		if strings.EqualFold(s, source) {
			return true
		}
	}
	return false
}

// topProfileTerms returns the highest-signal interest terms: weighted
// keywords by descending weight first, then plain keywords.
func topProfileTerms(profile core.UserProfile, n int) []string {
	weighted := make([]core.WeightedKeyword, len(profile.WeightedKeywords))
	copy(weighted, profile.WeightedKeywords)
	sort.SliceStable(weighted, func(i, j int) bool { return weighted[i].Weight > weighted[j].Weight })

	var terms []string
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			return
		}
		seen[strings.ToLower(t)] = true
		terms = append(terms, t)
	}

	for _, wk := range weighted {
		add(wk.Keyword)
	}
	for _, kw := range profile.Interests.Keywords {
		add(kw)
	}
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func firstOrDefault(values []string, def string) string {
	if len(values) > 0 {
		return values[0]
	}
	return def
}
