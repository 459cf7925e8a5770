// Package quality scores collected items 1-10 against a content-quality
// rubric (accuracy, relevance, freshness, depth, readability).
package quality

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"curator/internal/cache"
	"curator/internal/content"
	"curator/internal/core"
	"curator/internal/llm"
	"curator/internal/logger"
)

// LLMClient defines the model operations the evaluator needs.
type LLMClient interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any, options llm.Options) error
}

// EvaluatorOptions configures the evaluator behavior.
type EvaluatorOptions struct {
	ModelName   string
	Temperature float32

	// Batch scheduling
	MaxConcurrent     int           // Concurrent model calls per slice
	BatchPause        time.Duration // Pause between slices (provider politeness)
	PriorityThreshold float64       // Items below this priority are skipped

	// Caching
	CacheTTL time.Duration

	// Priority heuristics. Empirically chosen; kept configurable rather
	// than derived.
	FreshnessHalfLifeHours float64
	SourceTypeMultipliers  map[string]float64
}

// DefaultEvaluatorOptions returns sensible defaults.
func DefaultEvaluatorOptions() EvaluatorOptions {
	return EvaluatorOptions{
		Temperature:            0.2,
		MaxConcurrent:          4,
		BatchPause:             1500 * time.Millisecond,
		PriorityThreshold:      0,
		CacheTTL:               24 * time.Hour,
		FreshnessHalfLifeHours: 48,
		SourceTypeMultipliers: map[string]float64{
			"github": 1.2,
			"news":   1.1,
			"rss":    1.0,
			"reddit": 0.9,
		},
	}
}

// Evaluator scores content items against the quality rubric. It owns its
// TTL cache; results for the same (url, title prefix) within the TTL are
// served without a second model call.
type Evaluator struct {
	client  LLMClient
	cache   *cache.TTLCache[core.QualityScore]
	options EvaluatorOptions
	pause   func(context.Context, time.Duration)
}

// NewEvaluator creates an evaluator with the given LLM client.
func NewEvaluator(client LLMClient, options EvaluatorOptions) *Evaluator {
	if options.MaxConcurrent <= 0 {
		options.MaxConcurrent = DefaultEvaluatorOptions().MaxConcurrent
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = DefaultEvaluatorOptions().CacheTTL
	}
	if options.SourceTypeMultipliers == nil {
		options.SourceTypeMultipliers = DefaultEvaluatorOptions().SourceTypeMultipliers
	}
	if options.FreshnessHalfLifeHours <= 0 {
		options.FreshnessHalfLifeHours = DefaultEvaluatorOptions().FreshnessHalfLifeHours
	}
	return &Evaluator{
		client:  client,
		cache:   cache.NewTTLCache[core.QualityScore](options.CacheTTL),
		options: options,
		pause:   sleepContext,
	}
}

// NewEvaluatorWithDefaults creates an evaluator with default options.
func NewEvaluatorWithDefaults(client LLMClient) *Evaluator {
	return NewEvaluator(client, DefaultEvaluatorOptions())
}

// Evaluate returns the 1-10 quality score for an item.
func (e *Evaluator) Evaluate(ctx context.Context, item core.ContentItem) float64 {
	return e.EvaluateDetailed(ctx, item).Value
}

// EvaluateDetailed returns the full rubric breakdown for an item. Model
// failure never propagates: an unparsable or failed response yields the
// midpoint score so the item stays in consideration.
func (e *Evaluator) EvaluateDetailed(ctx context.Context, item core.ContentItem) core.QualityScore {
	key := cacheKey(item)
	if cached, ok := e.cache.Get(key); ok {
		return cached
	}

	score, err := e.evaluateWithModel(ctx, item)
	if err != nil {
		logger.Warn("quality evaluation fell back to midpoint", "url", item.URL, "reason", err.Error())
		score = midpointScore()
	}

	e.cache.Set(key, score)
	return score
}

// BatchOptions configures EvaluateBatch.
type BatchOptions struct {
	MaxConcurrent     int     // Overrides the evaluator's slice size when > 0
	PriorityThreshold float64 // Items whose priority falls below this are skipped
}

// EvaluateBatch scores many items, most time-sensitive first. Items are
// ordered by priority (freshness decay weighted by source type), items
// below the priority threshold are skipped entirely, and each slice of
// maxConcurrent items runs concurrently followed by a fixed pause.
// The result maps item URL to score; skipped items are absent.
func (e *Evaluator) EvaluateBatch(ctx context.Context, items []core.ContentItem, opts BatchOptions) map[string]float64 {
	maxConcurrent := e.options.MaxConcurrent
	if opts.MaxConcurrent > 0 {
		maxConcurrent = opts.MaxConcurrent
	}
	threshold := e.options.PriorityThreshold
	if opts.PriorityThreshold > 0 {
		threshold = opts.PriorityThreshold
	}

	type prioritized struct {
		item     core.ContentItem
		priority float64
	}

	ranked := make([]prioritized, 0, len(items))
	for _, item := range items {
		p := e.Priority(item)
		if p < threshold {
			logger.Debug("skipping low-priority item", "url", item.URL, "priority", p)
			continue
		}
		ranked = append(ranked, prioritized{item: item, priority: p})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].priority > ranked[j].priority })

	results := resultMap{m: make(map[string]float64, len(ranked))}

	for start := 0; start < len(ranked); start += maxConcurrent {
		end := start + maxConcurrent
		if end > len(ranked) {
			end = len(ranked)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, p := range ranked[start:end] {
			item := p.item
			g.Go(func() error {
				score := e.EvaluateDetailed(gctx, item)
				results.set(item.URL, score.Value)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(ranked) && e.options.BatchPause > 0 {
			e.pause(ctx, e.options.BatchPause)
		}
	}

	return results.m
}

// Priority computes the batch-ordering priority of an item: exponential
// freshness decay over hours since publication, weighted by a source-type
// multiplier, on a 0-10 scale.
func (e *Evaluator) Priority(item core.ContentItem) float64 {
	hours := time.Since(item.PublishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	decay := math.Exp(-hours / e.options.FreshnessHalfLifeHours)

	multiplier, ok := e.options.SourceTypeMultipliers[item.SourceType]
	if !ok {
		multiplier = 1.0
	}

	return decay * multiplier * 10
}

// CacheSize reports the number of cached scores, for diagnostics.
func (e *Evaluator) CacheSize() int {
	return e.cache.Len()
}

type qualityResponse struct {
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
	Factors   struct {
		Accuracy    float64 `json:"accuracy"`
		Relevance   float64 `json:"relevance"`
		Freshness   float64 `json:"freshness"`
		Depth       float64 `json:"depth"`
		Readability float64 `json:"readability"`
	} `json:"factors"`
	Flags []string `json:"flags"`
}

func qualitySchema() *genai.Schema {
	factor := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":     factor("Overall quality score from 1 to 10"),
			"reasoning": {Type: genai.TypeString, Description: "One or two sentences explaining the score"},
			"factors": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"accuracy":    factor("Factual accuracy, 1-10"),
					"relevance":   factor("Relevance to a technical audience, 1-10"),
					"freshness":   factor("Timeliness of the topic, 1-10"),
					"depth":       factor("Depth of treatment, 1-10"),
					"readability": factor("Clarity and structure, 1-10"),
				},
				Required: []string{"accuracy", "relevance", "freshness", "depth", "readability"},
			},
			"flags": {
				Type:        genai.TypeArray,
				Description: "Quality concerns such as clickbait-title or thin-content",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"score", "reasoning", "factors"},
	}
}

func (e *Evaluator) evaluateWithModel(ctx context.Context, item core.ContentItem) (core.QualityScore, error) {
	title, summary := content.Normalize(item.Title, item.Summary)

	prompt := fmt.Sprintf(`Evaluate the quality of this technical content item on a scale of 1 to 10.

Judge five factors, each 1-10: accuracy, relevance to a technical audience,
freshness of the topic, depth of treatment, and readability.

ITEM:
Title: %s
Source: %s (%s)
Published: %s
Summary: %s

Score conservatively; reserve 9-10 for exceptional content.`,
		title, item.SourceName, item.SourceType, item.PublishedAt.Format(time.RFC3339), summary)

	var resp qualityResponse
	err := e.client.GenerateStructured(ctx, prompt, qualitySchema(), &resp, llm.Options{
		Model:       e.options.ModelName,
		Temperature: e.options.Temperature,
	})
	if err != nil {
		return core.QualityScore{}, err
	}

	return core.QualityScore{
		Value:     core.ClampScore(resp.Score),
		Reasoning: resp.Reasoning,
		FactorBreakdown: map[string]float64{
			"accuracy":    core.ClampScore(resp.Factors.Accuracy),
			"relevance":   core.ClampScore(resp.Factors.Relevance),
			"freshness":   core.ClampScore(resp.Factors.Freshness),
			"depth":       core.ClampScore(resp.Factors.Depth),
			"readability": core.ClampScore(resp.Factors.Readability),
		},
		Flags: resp.Flags,
	}, nil
}

func midpointScore() core.QualityScore {
	return core.QualityScore{
		Value:           5,
		Reasoning:       "evaluation unavailable, midpoint assumed",
		FactorBreakdown: map[string]float64{},
		Flags:           []string{"evaluation-failed"},
	}
}

func cacheKey(item core.ContentItem) string {
	return item.URL + "|" + titlePrefix(item.Title)
}

func titlePrefix(title string) string {
	const n = 50
	runes := []rune(title)
	if len(runes) <= n {
		return title
	}
	return string(runes[:n])
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// resultMap is a minimal mutex-guarded map for batch result collection.
type resultMap struct {
	mu sync.Mutex
	m  map[string]float64
}

func (c *resultMap) set(k string, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[k] = v
}
