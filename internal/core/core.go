package core

import "time"

// ContentItem represents one collected candidate (article, repo, post)
// before scoring. Items are immutable once collected; identity is the URL.
type ContentItem struct {
	Title       string            `json:"title"`        // Title of the item
	URL         string            `json:"url"`          // Canonical URL, used as identity
	Summary     string            `json:"summary"`      // Short description or excerpt
	PublishedAt time.Time         `json:"published_at"` // Publication timestamp
	SourceName  string            `json:"source_name"`  // Human-readable source name (e.g., "Hacker News")
	SourceType  string            `json:"source_type"`  // One of "github", "rss", "news", "reddit"
	Metadata    map[string]string `json:"metadata"`     // Collector-specific extras (stars, score, author)
}

// Interests captures a user's declared interest surface.
type Interests struct {
	Categories []string `json:"categories"` // Preferred taxonomy categories
	Tags       []string `json:"tags"`       // Preferred tags
	Keywords   []string `json:"keywords"`   // Free-form interest keywords
}

// WeightedKeyword is a keyword with a relative importance weight.
type WeightedKeyword struct {
	Keyword string  `json:"keyword"`
	Weight  float64 `json:"weight"`
}

// UserProfile is the read-only per-invocation description of the reader.
type UserProfile struct {
	ID               string            `json:"id"`                // Profile identifier
	TechLevel        string            `json:"tech_level"`        // "beginner", "intermediate", "advanced"
	PreferredStyle   string            `json:"preferred_style"`   // Writing style preference
	Interests        Interests         `json:"interests"`         // Declared interests
	WeightedKeywords []WeightedKeyword `json:"weighted_keywords"` // Keywords with explicit weights
	RecentActivity   []string          `json:"recent_activity"`   // Recently read titles/topics
}

// QualityScore is a rubric-based 1-10 assessment of intrinsic content merit.
type QualityScore struct {
	Value           float64            `json:"value"`            // Overall score, clamped to [1,10]
	Reasoning       string             `json:"reasoning"`        // Model or fallback explanation
	FactorBreakdown map[string]float64 `json:"factor_breakdown"` // accuracy/relevance/freshness/depth/readability
	Flags           []string           `json:"flags"`            // Quality concerns (e.g., "clickbait-title")
}

// InterestScore is a 1-10 assessment of fit to one user's declared interests.
type InterestScore struct {
	Value           float64            `json:"value"`            // Overall score, clamped to [1,10]
	Reasoning       string             `json:"reasoning"`        // Model or fallback explanation
	FactorBreakdown map[string]float64 `json:"factor_breakdown"` // topic/difficulty/novelty/actionability
	MatchedKeywords []string           `json:"matched_keywords"` // Profile keywords found in the item
}

// SearchQuery is one ranked, source-targeted query produced for a profile.
// Queries are ephemeral and never cached.
type SearchQuery struct {
	Query              string   `json:"query"`
	Category           string   `json:"category"`            // Interest category the query serves
	Priority           float64  `json:"priority"`            // Rank weight, clamped to [1,10]
	Reasoning          string   `json:"reasoning"`           // Why this query was generated
	RecommendedSources []string `json:"recommended_sources"` // Source types the query suits
}

// GeneratedArticle is the synthesized output of one pipeline run.
type GeneratedArticle struct {
	ID          string    `json:"id"`           // Unique identifier
	Title       string    `json:"title"`        // Generated headline
	Summary     string    `json:"summary"`      // Lead paragraph / abstract
	Content     string    `json:"content"`      // Full article body (markdown)
	Category    string    `json:"category"`     // Assigned taxonomy category
	Tags        []string  `json:"tags"`         // Assigned tags, at most 8
	SourceRefs  []string  `json:"source_refs"`  // URLs of the source items used
	Confidence  float64   `json:"confidence"`   // Model confidence, clamped to [0,1]
	WordCount   int       `json:"word_count"`   // Recomputed mixed-script word count
	ReadingTime int       `json:"reading_time"` // Minutes at 200 words/minute, minimum 1
	Difficulty  string    `json:"difficulty"`   // "beginner", "intermediate", "advanced"
	GeneratedAt time.Time `json:"generated_at"` // Generation timestamp
	ModelUsed   string    `json:"model_used"`   // LLM model that produced the draft
}

// CategoryAlternative is a runner-up category with its confidence.
type CategoryAlternative struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// CategoryClassification assigns one taxonomy label with confidence.
type CategoryClassification struct {
	Category     string                `json:"category"`
	Confidence   float64               `json:"confidence"` // Clamped to [0,1]
	Alternatives []CategoryAlternative `json:"alternatives"`
	Reasoning    string                `json:"reasoning"`
}

// TagType partitions tags by what they describe.
type TagType string

const (
	TagTechnology  TagType = "technology"
	TagTopic       TagType = "topic"
	TagDifficulty  TagType = "difficulty"
	TagContentType TagType = "content-type"
)

// TagSuggestion is one typed, relevance-scored tag.
type TagSuggestion struct {
	Name      string  `json:"name"`
	Relevance float64 `json:"relevance"` // Clamped to [0,1]
	Type      TagType `json:"type"`
}

// PipelineMetadata reports what a pipeline run did.
type PipelineMetadata struct {
	SourcesProcessed int      `json:"sources_processed"` // Raw items received
	SourcesUsed      int      `json:"sources_used"`      // Items that reached generation
	StagesExecuted   []string `json:"stages_executed"`   // Stage names in execution order
	ExecutionTimeMs  int64    `json:"execution_time_ms"`

	// Final-evaluation scores of the generated text, reporting only.
	FinalQualityScore  float64 `json:"final_quality_score,omitempty"`
	FinalInterestScore float64 `json:"final_interest_score,omitempty"`
}

// PipelineResult is the structured outcome of one pipeline run.
// Invariant: Success == false implies Article == nil. Warnings may be
// non-empty even on success.
type PipelineResult struct {
	Success  bool              `json:"success"`
	Article  *GeneratedArticle `json:"article,omitempty"`
	Error    string            `json:"error,omitempty"`
	Warnings []string          `json:"warnings"`
	Metadata PipelineMetadata  `json:"metadata"`
}

// ClampScore forces a 1-10 scale score into its declared range. Model
// output occasionally wanders out of range; every scored entity passes
// through here before anything downstream reads it.
func ClampScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// ClampConfidence forces a confidence or relevance value into [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
