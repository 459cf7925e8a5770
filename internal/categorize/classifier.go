// Package categorize assigns one taxonomy label to content, with
// confidence, alternatives, and a deterministic keyword fallback.
package categorize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"curator/internal/cache"
	"curator/internal/content"
	"curator/internal/core"
	"curator/internal/llm"
	"curator/internal/logger"
)

// LLMClient defines the model operations the classifier needs.
type LLMClient interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any, options llm.Options) error
}

// ClassifierOptions configures the classifier.
type ClassifierOptions struct {
	ModelName   string
	Temperature float32
	CacheTTL    time.Duration
}

// DefaultClassifierOptions returns sensible defaults.
func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{
		Temperature: 0.1,
		CacheTTL:    24 * time.Hour,
	}
}

// Classifier assigns taxonomy categories. It owns its TTL cache keyed by
// (title prefix, taxonomy version).
type Classifier struct {
	client     LLMClient
	categories []Category
	cache      *cache.TTLCache[core.CategoryClassification]
	options    ClassifierOptions
}

// NewClassifier creates a classifier over the given taxonomy.
func NewClassifier(client LLMClient, categories []Category, options ClassifierOptions) *Classifier {
	if len(categories) == 0 {
		categories = DefaultTaxonomy()
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = DefaultClassifierOptions().CacheTTL
	}
	return &Classifier{
		client:     client,
		categories: categories,
		cache:      cache.NewTTLCache[core.CategoryClassification](options.CacheTTL),
		options:    options,
	}
}

// NewClassifierWithDefaults creates a classifier with the default taxonomy
// and options.
func NewClassifierWithDefaults(client LLMClient) *Classifier {
	return NewClassifier(client, DefaultTaxonomy(), DefaultClassifierOptions())
}

// Classify returns just the category label for an item.
func (c *Classifier) Classify(ctx context.Context, item core.ContentItem) string {
	return c.ClassifyDetailed(ctx, item).Category
}

// ClassifyDetailed returns the category with confidence and alternatives.
// Model failure is absorbed by the keyword fallback.
func (c *Classifier) ClassifyDetailed(ctx context.Context, item core.ContentItem) core.CategoryClassification {
	key := titlePrefix(item.Title) + "|" + TaxonomyVersion
	if cached, ok := c.cache.Get(key); ok {
		return cached
	}

	result, err := c.classifyWithModel(ctx, item)
	if err != nil {
		logger.Warn("classification fell back to keyword lookup", "url", item.URL, "reason", err.Error())
		result = c.Fallback(item)
	}

	c.cache.Set(key, result)
	return result
}

// Fallback classifies by keyword-table lookup against the taxonomy,
// defaulting to Other with confidence 0.3.
func (c *Classifier) Fallback(item core.ContentItem) core.CategoryClassification {
	title, summary := content.Normalize(item.Title, item.Summary)
	text := strings.ToLower(title + " " + summary)

	best := CategoryOther
	bestHits := 0
	for _, cat := range c.categories {
		hits := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = cat.Name
			bestHits = hits
		}
	}

	confidence := 0.3
	if bestHits > 0 {
		// More keyword hits, more confidence, topping out at 0.8.
		confidence = core.ClampConfidence(0.4 + 0.1*float64(bestHits))
		if confidence > 0.8 {
			confidence = 0.8
		}
	}

	return core.CategoryClassification{
		Category:   best,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("keyword lookup (%d matches)", bestHits),
	}
}

// CacheSize reports the number of cached classifications, for diagnostics.
func (c *Classifier) CacheSize() int {
	return c.cache.Len()
}

type classifyResponse struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
	Alternatives []struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	} `json:"alternatives"`
}

func classifySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category":   {Type: genai.TypeString, Description: "The single best-fitting category name"},
			"confidence": {Type: genai.TypeNumber, Description: "Confidence from 0.0 to 1.0"},
			"reasoning":  {Type: genai.TypeString, Description: "One sentence explaining the choice"},
			"alternatives": {
				Type:        genai.TypeArray,
				Description: "Up to two runner-up categories",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category":   {Type: genai.TypeString},
						"confidence": {Type: genai.TypeNumber},
					},
					Required: []string{"category", "confidence"},
				},
			},
		},
		Required: []string{"category", "confidence", "reasoning"},
	}
}

func (c *Classifier) classifyWithModel(ctx context.Context, item core.ContentItem) (core.CategoryClassification, error) {
	title, summary := content.Normalize(item.Title, item.Summary)

	var catLines []string
	for _, cat := range c.categories {
		catLines = append(catLines, fmt.Sprintf("- %s: %s", cat.Name, cat.Description))
	}

	prompt := fmt.Sprintf(`Classify this content item into ONE of the following categories.

AVAILABLE CATEGORIES:
%s

ITEM:
Title: %s
Source: %s (%s)
Summary: %s

Choose the single best category, rate your confidence 0.0-1.0, and list up
to two alternatives. If unsure, prefer '%s'.`,
		strings.Join(catLines, "\n"), title, item.SourceName, item.SourceType, summary, CategoryOther)

	var resp classifyResponse
	err := c.client.GenerateStructured(ctx, prompt, classifySchema(), &resp, llm.Options{
		Model:       c.options.ModelName,
		Temperature: c.options.Temperature,
	})
	if err != nil {
		return core.CategoryClassification{}, err
	}

	result := core.CategoryClassification{
		Category:   c.validateCategory(resp.Category),
		Confidence: core.ClampConfidence(resp.Confidence),
		Reasoning:  resp.Reasoning,
	}
	for _, alt := range resp.Alternatives {
		result.Alternatives = append(result.Alternatives, core.CategoryAlternative{
			Category:   c.validateCategory(alt.Category),
			Confidence: core.ClampConfidence(alt.Confidence),
		})
	}
	return result, nil
}

// validateCategory maps a model-chosen label onto the taxonomy: exact
// match passes through, then a case-insensitive substring match, then the
// reserved Other bucket.
func (c *Classifier) validateCategory(name string) string {
	name = strings.TrimSpace(strings.Trim(name, "\"'`"))

	for _, cat := range c.categories {
		if strings.EqualFold(name, cat.Name) {
			return cat.Name
		}
	}

	nameLower := strings.ToLower(name)
	if nameLower != "" {
		for _, cat := range c.categories {
			catLower := strings.ToLower(cat.Name)
			if strings.Contains(nameLower, catLower) || strings.Contains(catLower, nameLower) {
				return cat.Name
			}
		}
	}

	return CategoryOther
}

func titlePrefix(title string) string {
	const n = 50
	runes := []rune(title)
	if len(runes) <= n {
		return title
	}
	return string(runes[:n])
}
