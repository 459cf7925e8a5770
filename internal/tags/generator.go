// Package tags extracts typed, relevance-scored tags from content items,
// with normalization, deduplication, and a keyword-extraction fallback.
package tags

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"curator/internal/cache"
	"curator/internal/content"
	"curator/internal/core"
	"curator/internal/llm"
	"curator/internal/logger"
)

// LLMClient defines the model operations the generator needs.
type LLMClient interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any, options llm.Options) error
}

// GeneratorOptions configures tag generation.
type GeneratorOptions struct {
	ModelName   string
	Temperature float32
	CacheTTL    time.Duration

	MaxTags          int
	AugmentKeywords  bool // Add tags extracted from the fixed technical-term list
	FilterCommonTags bool // Drop too-generic tags unless relevance > 0.7
}

// DefaultGeneratorOptions returns sensible defaults.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Temperature:      0.4,
		CacheTTL:         12 * time.Hour,
		MaxTags:          8,
		AugmentKeywords:  true,
		FilterCommonTags: true,
	}
}

// Generator produces tags for content items. It owns its TTL cache keyed
// by (url, title prefix).
type Generator struct {
	client  LLMClient
	cache   *cache.TTLCache[[]core.TagSuggestion]
	options GeneratorOptions
}

// NewGenerator creates a tag generator with the given LLM client.
func NewGenerator(client LLMClient, options GeneratorOptions) *Generator {
	if options.MaxTags <= 0 {
		options.MaxTags = DefaultGeneratorOptions().MaxTags
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = DefaultGeneratorOptions().CacheTTL
	}
	return &Generator{
		client:  client,
		cache:   cache.NewTTLCache[[]core.TagSuggestion](options.CacheTTL),
		options: options,
	}
}

// NewGeneratorWithDefaults creates a generator with default options.
func NewGeneratorWithDefaults(client LLMClient) *Generator {
	return NewGenerator(client, DefaultGeneratorOptions())
}

// GenerateTags returns just the tag names for an item.
func (g *Generator) GenerateTags(ctx context.Context, item core.ContentItem) []string {
	detailed := g.GenerateTagsDetailed(ctx, item)
	names := make([]string, len(detailed))
	for i, t := range detailed {
		names[i] = t.Name
	}
	return names
}

// GenerateTagsDetailed returns typed, relevance-scored tags. Model output
// flows through normalization, deduplication, keyword augmentation, and
// common-tag filtering before truncation to MaxTags by relevance. On
// model failure the result is keyword extraction alone.
func (g *Generator) GenerateTagsDetailed(ctx context.Context, item core.ContentItem) []core.TagSuggestion {
	key := item.URL + "|" + titlePrefix(item.Title)
	if cached, ok := g.cache.Get(key); ok {
		return cached
	}

	title, summary := content.Normalize(item.Title, item.Summary)
	text := title + " " + summary

	suggestions, err := g.generateWithModel(ctx, item, title, summary)
	if err != nil {
		logger.Warn("tag generation fell back to keyword extraction", "url", item.URL, "reason", err.Error())
		suggestions = ExtractKeywordTags(text)
	} else if g.options.AugmentKeywords {
		suggestions = append(suggestions, ExtractKeywordTags(text)...)
	}

	suggestions = normalizeAndDedup(suggestions)
	if g.options.FilterCommonTags {
		suggestions = filterCommon(suggestions)
	}

	sort.SliceStable(suggestions, func(i, j int) bool { return suggestions[i].Relevance > suggestions[j].Relevance })
	if len(suggestions) > g.options.MaxTags {
		suggestions = suggestions[:g.options.MaxTags]
	}

	g.cache.Set(key, suggestions)
	return suggestions
}

// CacheSize reports the number of cached tag sets, for diagnostics.
func (g *Generator) CacheSize() int {
	return g.cache.Len()
}

type tagResponse struct {
	Tags []struct {
		Name      string  `json:"name"`
		Relevance float64 `json:"relevance"`
		Type      string  `json:"type"`
	} `json:"tags"`
}

func tagSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tags": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":      {Type: genai.TypeString, Description: "Short lowercase tag"},
						"relevance": {Type: genai.TypeNumber, Description: "Relevance from 0.0 to 1.0"},
						"type":      {Type: genai.TypeString, Description: "One of technology, topic, difficulty, content-type"},
					},
					Required: []string{"name", "relevance", "type"},
				},
			},
		},
		Required: []string{"tags"},
	}
}

func (g *Generator) generateWithModel(ctx context.Context, item core.ContentItem, title, summary string) ([]core.TagSuggestion, error) {
	prompt := fmt.Sprintf(`Extract up to 10 tags from this content item.

ITEM:
Title: %s
Source: %s (%s)
Summary: %s

Each tag needs a relevance from 0.0 to 1.0 and a type: "technology" for
languages/frameworks/tools, "topic" for subject areas, "difficulty" for
audience level, "content-type" for the format (tutorial, announcement,
analysis). Prefer specific tags over generic ones.`,
		title, item.SourceName, item.SourceType, summary)

	var resp tagResponse
	err := g.client.GenerateStructured(ctx, prompt, tagSchema(), &resp, llm.Options{
		Model:       g.options.ModelName,
		Temperature: g.options.Temperature,
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]core.TagSuggestion, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		suggestions = append(suggestions, core.TagSuggestion{
			Name:      t.Name,
			Relevance: core.ClampConfidence(t.Relevance),
			Type:      parseTagType(t.Type),
		})
	}
	return suggestions, nil
}

func parseTagType(s string) core.TagType {
	switch core.TagType(strings.ToLower(strings.TrimSpace(s))) {
	case core.TagTechnology:
		return core.TagTechnology
	case core.TagDifficulty:
		return core.TagDifficulty
	case core.TagContentType:
		return core.TagContentType
	default:
		return core.TagTopic
	}
}

func titlePrefix(title string) string {
	const n = 50
	runes := []rune(title)
	if len(runes) <= n {
		return title
	}
	return string(runes[:n])
}
