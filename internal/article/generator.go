// Package article synthesizes a new article from a prioritized set of
// source items via the model client.
package article

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"curator/internal/content"
	"curator/internal/core"
	"curator/internal/llm"
)

// LLMClient defines the model operations the generator needs.
type LLMClient interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any, options llm.Options) error
	GetModelName() string
}

// GeneratorOptions configures article generation.
type GeneratorOptions struct {
	ModelName   string
	Temperature float32
	MaxTokens   int32

	MaxSources int // Sources kept after prioritization

	// Priority heuristics. Empirically chosen; kept configurable rather
	// than derived.
	RecencyHalfLifeHours  float64
	SourceTypeMultipliers map[string]float64
}

// DefaultGeneratorOptions returns sensible defaults.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Temperature:          0.7,
		MaxTokens:            8192,
		MaxSources:           5,
		RecencyHalfLifeHours: 72,
		SourceTypeMultipliers: map[string]float64{
			"github": 1.2,
			"news":   1.1,
			"rss":    1.0,
			"reddit": 0.9,
		},
	}
}

// GenerateOptions configures one generation call.
type GenerateOptions struct {
	TargetLength int    // Approximate words; 0 means the model decides
	Style        string // e.g. "technical", "conversational"
	Language     string // Output language; empty means English
}

// Generator synthesizes articles. Generation failures surface as errors;
// there is no deterministic fallback for writing prose.
type Generator struct {
	client  LLMClient
	options GeneratorOptions
}

// NewGenerator creates an article generator with the given LLM client.
func NewGenerator(client LLMClient, options GeneratorOptions) *Generator {
	if options.MaxSources <= 0 {
		options.MaxSources = DefaultGeneratorOptions().MaxSources
	}
	if options.RecencyHalfLifeHours <= 0 {
		options.RecencyHalfLifeHours = DefaultGeneratorOptions().RecencyHalfLifeHours
	}
	if options.SourceTypeMultipliers == nil {
		options.SourceTypeMultipliers = DefaultGeneratorOptions().SourceTypeMultipliers
	}
	return &Generator{client: client, options: options}
}

// NewGeneratorWithDefaults creates a generator with default options.
func NewGeneratorWithDefaults(client LLMClient) *Generator {
	return NewGenerator(client, DefaultGeneratorOptions())
}

// Generate synthesizes one article from the given sources for the given
// reader. Sources are prioritized by recency, source type, and interest
// keyword overlap; only the top MaxSources feed the prompt.
func (g *Generator) Generate(ctx context.Context, sources []core.ContentItem, profile core.UserProfile, opts GenerateOptions) (*core.GeneratedArticle, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources to generate from")
	}

	selected := g.PrioritizeSources(sources, profile)

	draft, err := g.generateWithModel(ctx, selected, profile, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate article: %w", err)
	}

	g.finalize(draft, selected)
	return draft, nil
}

// PrioritizeSources ranks sources by generation priority and keeps the
// top MaxSources. Ties keep input order.
func (g *Generator) PrioritizeSources(sources []core.ContentItem, profile core.UserProfile) []core.ContentItem {
	type prioritized struct {
		item     core.ContentItem
		priority float64
	}

	ranked := make([]prioritized, len(sources))
	for i, item := range sources {
		ranked[i] = prioritized{item: item, priority: g.sourcePriority(item, profile)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].priority > ranked[j].priority })

	n := g.options.MaxSources
	if n > len(ranked) {
		n = len(ranked)
	}
	selected := make([]core.ContentItem, n)
	for i := 0; i < n; i++ {
		selected[i] = ranked[i].item
	}
	return selected
}

// sourcePriority combines recency decay, a source-type multiplier, and
// the count of profile keywords appearing in the source text.
func (g *Generator) sourcePriority(item core.ContentItem, profile core.UserProfile) float64 {
	hours := time.Since(item.PublishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	recency := math.Exp(-hours / g.options.RecencyHalfLifeHours)

	multiplier, ok := g.options.SourceTypeMultipliers[item.SourceType]
	if !ok {
		multiplier = 1.0
	}

	text := strings.ToLower(item.Title + " " + item.Summary)
	overlap := 0
	for _, kw := range profile.Interests.Keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			overlap++
		}
	}

	return recency*multiplier + 0.3*float64(overlap)
}

// ImproveAxis names a requested improvement dimension for ImproveArticle.
type ImproveAxis string

const (
	ImproveClarity   ImproveAxis = "clarity"
	ImproveDepth     ImproveAxis = "depth"
	ImproveExamples  ImproveAxis = "examples"
	ImproveStructure ImproveAxis = "structure"
)

// ImproveArticle re-prompts with the existing article and the requested
// improvement axes and returns a full replacement article. The original
// source references carry over.
func (g *Generator) ImproveArticle(ctx context.Context, existing *core.GeneratedArticle, axes []ImproveAxis) (*core.GeneratedArticle, error) {
	if existing == nil {
		return nil, fmt.Errorf("article is nil")
	}
	if len(axes) == 0 {
		axes = []ImproveAxis{ImproveClarity}
	}

	axisNames := make([]string, len(axes))
	for i, a := range axes {
		axisNames[i] = string(a)
	}

	prompt := fmt.Sprintf(`Revise the following article. Return a complete replacement, not a diff.

IMPROVE THESE ASPECTS: %s

Keep everything that already works; change only what the requested
improvements demand. Keep the same category.

CURRENT ARTICLE:
Title: %s
Summary: %s

%s`,
		strings.Join(axisNames, ", "), existing.Title, existing.Summary, existing.Content)

	var resp articleResponse
	err := g.client.GenerateStructured(ctx, prompt, articleSchema(), &resp, llm.Options{
		Model:       g.options.ModelName,
		Temperature: g.options.Temperature,
		MaxTokens:   g.options.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to improve article: %w", err)
	}

	revised := resp.toArticle()
	revised.SourceRefs = existing.SourceRefs
	g.finalizeRefs(revised)
	return revised, nil
}

type articleResponse struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Content    string   `json:"content"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
	Difficulty string   `json:"difficulty"`
}

func articleSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":      {Type: genai.TypeString, Description: "Headline under 80 characters"},
			"summary":    {Type: genai.TypeString, Description: "Lead paragraph, 2-3 sentences"},
			"content":    {Type: genai.TypeString, Description: "Full article body in markdown"},
			"category":   {Type: genai.TypeString, Description: "Single best-fitting category"},
			"tags":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"confidence": {Type: genai.TypeNumber, Description: "Confidence in factual grounding, 0.0 to 1.0"},
			"difficulty": {Type: genai.TypeString, Description: "beginner, intermediate, or advanced (optional)"},
		},
		Required: []string{"title", "summary", "content", "category", "tags", "confidence"},
	}
}

func (r articleResponse) toArticle() *core.GeneratedArticle {
	return &core.GeneratedArticle{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(r.Title),
		Summary:    strings.TrimSpace(r.Summary),
		Content:    strings.TrimSpace(r.Content),
		Category:   strings.TrimSpace(r.Category),
		Tags:       r.Tags,
		Confidence: core.ClampConfidence(r.Confidence),
		Difficulty: strings.ToLower(strings.TrimSpace(r.Difficulty)),
	}
}

func (g *Generator) generateWithModel(ctx context.Context, sources []core.ContentItem, profile core.UserProfile, opts GenerateOptions) (*core.GeneratedArticle, error) {
	var sourceBlock strings.Builder
	for i, item := range sources {
		title, summary := content.Normalize(item.Title, item.Summary)
		sourceBlock.WriteString(fmt.Sprintf("[%d] %s\n    Source: %s (%s), published %s\n    %s\n\n",
			i+1, title, item.SourceName, item.SourceType, item.PublishedAt.Format("2006-01-02"), summary))
	}

	length := "a length appropriate to the material"
	if opts.TargetLength > 0 {
		length = fmt.Sprintf("approximately %d words", opts.TargetLength)
	}
	style := opts.Style
	if style == "" {
		style = profile.PreferredStyle
	}
	if style == "" {
		style = "technical but approachable"
	}
	language := opts.Language
	if language == "" {
		language = "English"
	}

	prompt := fmt.Sprintf(`Write an original article synthesizing the source items below for one reader.

READER:
Technical level: %s
Interests: %s

REQUIREMENTS:
- Length: %s
- Style: %s
- Language: %s
- Synthesize across sources; do not summarize them one by one
- Cite sources inline as [1], [2] matching the numbering below
- Use markdown section headings

SOURCES:
%s`,
		profile.TechLevel,
		strings.Join(profile.Interests.Keywords, ", "),
		length, style, language, sourceBlock.String())

	var resp articleResponse
	err := g.client.GenerateStructured(ctx, prompt, articleSchema(), &resp, llm.Options{
		Model:       g.options.ModelName,
		Temperature: g.options.Temperature,
		MaxTokens:   g.options.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return resp.toArticle(), nil
}

// finalize recomputes derived fields the model cannot be trusted with
// and records provenance.
func (g *Generator) finalize(a *core.GeneratedArticle, sources []core.ContentItem) {
	a.SourceRefs = make([]string, len(sources))
	for i, s := range sources {
		a.SourceRefs[i] = s.URL
	}
	g.finalizeRefs(a)
}

func (g *Generator) finalizeRefs(a *core.GeneratedArticle) {
	a.WordCount = CountWords(a.Content)
	a.ReadingTime = readingTime(a.WordCount)
	if a.Difficulty == "" {
		a.Difficulty = inferDifficulty(a.Content)
	}
	if len(a.Tags) > 8 {
		a.Tags = a.Tags[:8]
	}
	a.GeneratedAt = time.Now().UTC()
	a.ModelUsed = g.options.ModelName
	if a.ModelUsed == "" {
		a.ModelUsed = g.client.GetModelName()
	}
}
