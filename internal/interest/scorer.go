// Package interest scores how well collected items match one reader's
// declared interests, and selects the best candidates for generation.
package interest

import (
	"context"
	"fmt"
	"sort"
	"strings"
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

// LLMClient defines the model operations the scorer needs.
type LLMClient interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any, options llm.Options) error
}

// ScorerOptions configures the interest scorer.
type ScorerOptions struct {
	ModelName   string
	Temperature float32

	MaxConcurrent int
	BatchPause    time.Duration

	CacheTTL time.Duration

	// Fallback heuristics. Empirically chosen; kept configurable rather
	// than derived.
	KeywordBonus     float64            // Per matched interest keyword
	MaxKeywordBonus  float64            // Cap on total keyword bonus
	SourceTypeBonus  map[string]float64 // Flat bonus per source type
	FreshBonusWindow time.Duration      // Items newer than this get +0.5
	StaleAfter       time.Duration      // Items older than this get -0.5
}

// DefaultScorerOptions returns sensible defaults.
func DefaultScorerOptions() ScorerOptions {
	return ScorerOptions{
		Temperature:     0.3,
		MaxConcurrent:   4,
		BatchPause:      1500 * time.Millisecond,
		CacheTTL:        12 * time.Hour,
		KeywordBonus:    0.5,
		MaxKeywordBonus: 3.0,
		SourceTypeBonus: map[string]float64{
			"github": 0.5,
			"news":   0.3,
			"rss":    0.2,
			"reddit": 0.1,
		},
		FreshBonusWindow: 24 * time.Hour,
		StaleAfter:       168 * time.Hour,
	}
}

// Scorer calculates interest scores for one user at a time. It owns its
// TTL cache keyed by (user, url, title prefix).
type Scorer struct {
	client  LLMClient
	cache   *cache.TTLCache[core.InterestScore]
	options ScorerOptions
	pause   func(context.Context, time.Duration)
}

// NewScorer creates an interest scorer with the given LLM client.
func NewScorer(client LLMClient, options ScorerOptions) *Scorer {
	defaults := DefaultScorerOptions()
	if options.MaxConcurrent <= 0 {
		options.MaxConcurrent = defaults.MaxConcurrent
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = defaults.CacheTTL
	}
	if options.SourceTypeBonus == nil {
		options.SourceTypeBonus = defaults.SourceTypeBonus
	}
	if options.KeywordBonus == 0 {
		options.KeywordBonus = defaults.KeywordBonus
	}
	if options.MaxKeywordBonus == 0 {
		options.MaxKeywordBonus = defaults.MaxKeywordBonus
	}
	if options.FreshBonusWindow == 0 {
		options.FreshBonusWindow = defaults.FreshBonusWindow
	}
	if options.StaleAfter == 0 {
		options.StaleAfter = defaults.StaleAfter
	}
	return &Scorer{
		client:  client,
		cache:   cache.NewTTLCache[core.InterestScore](options.CacheTTL),
		options: options,
		pause:   sleepContext,
	}
}

// NewScorerWithDefaults creates a scorer with default options.
func NewScorerWithDefaults(client LLMClient) *Scorer {
	return NewScorer(client, DefaultScorerOptions())
}

// Calculate returns the 1-10 interest score for an item and profile.
func (s *Scorer) Calculate(ctx context.Context, item core.ContentItem, profile core.UserProfile) float64 {
	return s.CalculateDetailed(ctx, item, profile).Value
}

// CalculateDetailed returns the full interest breakdown. Model failure is
// absorbed by the deterministic fallback; callers always get a score.
func (s *Scorer) CalculateDetailed(ctx context.Context, item core.ContentItem, profile core.UserProfile) core.InterestScore {
	key := cacheKey(profile.ID, item)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	score, err := s.scoreWithModel(ctx, item, profile)
	if err != nil {
		logger.Warn("interest scoring fell back to heuristic", "url", item.URL, "user", profile.ID, "reason", err.Error())
		score = s.Fallback(item, profile)
	}

	s.cache.Set(key, score)
	return score
}

// RankedItem is one batch result with its 1-based rank.
type RankedItem struct {
	Item  core.ContentItem
	Score core.InterestScore
	Rank  int
}

// CalculateBatch scores all items for one profile and returns them ranked
// by descending score, Rank starting at 1. Ties keep input order.
func (s *Scorer) CalculateBatch(ctx context.Context, items []core.ContentItem, profile core.UserProfile) []RankedItem {
	ranked := make([]RankedItem, len(items))

	var mu sync.Mutex
	for start := 0; start < len(items); start += s.options.MaxConcurrent {
		end := start + s.options.MaxConcurrent
		if end > len(items) {
			end = len(items)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			idx := i
			g.Go(func() error {
				score := s.CalculateDetailed(gctx, items[idx], profile)
				mu.Lock()
				ranked[idx] = RankedItem{Item: items[idx], Score: score}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		if end < len(items) && s.options.BatchPause > 0 {
			s.pause(ctx, s.options.BatchPause)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score.Value > ranked[j].Score.Value })
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Fallback computes the deterministic non-model score: base 5, +0.5 per
// matched interest keyword (capped at +3), a flat source-type bonus, and
// a recency adjustment, clamped to [1,10].
func (s *Scorer) Fallback(item core.ContentItem, profile core.UserProfile) core.InterestScore {
	title, summary := content.Normalize(item.Title, item.Summary)
	text := strings.ToLower(title + " " + summary)

	matched := matchKeywords(text, profile)
	keywordBonus := float64(len(matched)) * s.options.KeywordBonus
	if keywordBonus > s.options.MaxKeywordBonus {
		keywordBonus = s.options.MaxKeywordBonus
	}

	sourceBonus := s.options.SourceTypeBonus[item.SourceType]

	var recencyBonus float64
	age := time.Since(item.PublishedAt)
	switch {
	case age < s.options.FreshBonusWindow:
		recencyBonus = 0.5
	case age > s.options.StaleAfter:
		recencyBonus = -0.5
	}

	value := core.ClampScore(5 + keywordBonus + sourceBonus + recencyBonus)

	return core.InterestScore{
		Value:     value,
		Reasoning: "heuristic score: keyword, source and recency signals",
		FactorBreakdown: map[string]float64{
			"keyword_bonus": keywordBonus,
			"source_bonus":  sourceBonus,
			"recency_bonus": recencyBonus,
		},
		MatchedKeywords: matched,
	}
}

// CacheSize reports the number of cached scores, for diagnostics.
func (s *Scorer) CacheSize() int {
	return s.cache.Len()
}

type interestResponse struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
	Factors   struct {
		TopicRelevance  float64 `json:"topic_relevance"`
		DifficultyMatch float64 `json:"difficulty_match"`
		Novelty         float64 `json:"novelty"`
		Actionability   float64 `json:"actionability"`
	} `json:"factors"`
	MatchedKeywords []string `json:"matched_keywords"`
}

func interestSchema() *genai.Schema {
	factor := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":     factor("Overall interest fit from 1 to 10"),
			"reasoning": {Type: genai.TypeString, Description: "One or two sentences explaining the fit"},
			"factors": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic_relevance":  factor("Match to declared topics, 1-10"),
					"difficulty_match": factor("Match to the reader's technical level, 1-10"),
					"novelty":          factor("Novelty versus recent activity, 1-10"),
					"actionability":    factor("Practical usefulness to the reader, 1-10"),
				},
				Required: []string{"topic_relevance", "difficulty_match", "novelty", "actionability"},
			},
			"matched_keywords": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"score", "reasoning", "factors"},
	}
}

func (s *Scorer) scoreWithModel(ctx context.Context, item core.ContentItem, profile core.UserProfile) (core.InterestScore, error) {
	title, summary := content.Normalize(item.Title, item.Summary)

	var weighted []string
	for _, wk := range profile.WeightedKeywords {
		weighted = append(weighted, fmt.Sprintf("%s (weight %.1f)", wk.Keyword, wk.Weight))
	}

	prompt := fmt.Sprintf(`Rate how well this content item matches the reader's interests, 1 to 10.

READER PROFILE:
Technical level: %s
Interest categories: %s
Interest tags: %s
Interest keywords: %s
Weighted keywords: %s
Recently read: %s

ITEM:
Title: %s
Source: %s (%s)
Published: %s
Summary: %s

Judge four factors, each 1-10: topic relevance, difficulty match, novelty
relative to the reader's recent activity, and actionability. List the
reader keywords that actually appear in or apply to the item.`,
		profile.TechLevel,
		strings.Join(profile.Interests.Categories, ", "),
		strings.Join(profile.Interests.Tags, ", "),
		strings.Join(profile.Interests.Keywords, ", "),
		strings.Join(weighted, ", "),
		strings.Join(profile.RecentActivity, "; "),
		title, item.SourceName, item.SourceType, item.PublishedAt.Format(time.RFC3339), summary)

	var resp interestResponse
	err := s.client.GenerateStructured(ctx, prompt, interestSchema(), &resp, llm.Options{
		Model:       s.options.ModelName,
		Temperature: s.options.Temperature,
	})
	if err != nil {
		return core.InterestScore{}, err
	}

	return core.InterestScore{
		Value:     core.ClampScore(resp.Score),
		Reasoning: resp.Reasoning,
		FactorBreakdown: map[string]float64{
			"topic_relevance":  core.ClampScore(resp.Factors.TopicRelevance),
			"difficulty_match": core.ClampScore(resp.Factors.DifficultyMatch),
			"novelty":          core.ClampScore(resp.Factors.Novelty),
			"actionability":    core.ClampScore(resp.Factors.Actionability),
		},
		MatchedKeywords: resp.MatchedKeywords,
	}, nil
}

// matchKeywords returns the profile keywords present in the item text.
// Interest keywords, tags and weighted keywords all count; each keyword
// counts once.
func matchKeywords(lowerText string, profile core.UserProfile) []string {
	seen := make(map[string]bool)
	var matched []string

	consider := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			return
		}
		if strings.Contains(lowerText, kw) {
			seen[kw] = true
			matched = append(matched, kw)
		}
	}

	for _, kw := range profile.Interests.Keywords {
		consider(kw)
	}
	for _, tag := range profile.Interests.Tags {
		consider(tag)
	}
	for _, wk := range profile.WeightedKeywords {
		consider(wk.Keyword)
	}
	return matched
}

func cacheKey(userID string, item core.ContentItem) string {
	return userID + "|" + item.URL + "|" + titlePrefix(item.Title)
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
