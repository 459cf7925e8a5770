package pipeline

import (
	"context"

	"curator/internal/article"
	"curator/internal/core"
	"curator/internal/interest"
	"curator/internal/quality"
)

// QualityEvaluator scores intrinsic content merit on the 1-10 scale.
type QualityEvaluator interface {
	EvaluateBatch(ctx context.Context, items []core.ContentItem, opts quality.BatchOptions) map[string]float64
	EvaluateDetailed(ctx context.Context, item core.ContentItem) core.QualityScore
}

// InterestScorer scores fit to one user's declared interests.
type InterestScorer interface {
	CalculateBatch(ctx context.Context, items []core.ContentItem, profile core.UserProfile) []interest.RankedItem
	CalculateDetailed(ctx context.Context, item core.ContentItem, profile core.UserProfile) core.InterestScore
}

// Classifier assigns a taxonomy category.
type Classifier interface {
	ClassifyDetailed(ctx context.Context, item core.ContentItem) core.CategoryClassification
}

// Tagger suggests typed, relevance-scored tags.
type Tagger interface {
	GenerateTagsDetailed(ctx context.Context, item core.ContentItem) []core.TagSuggestion
}

// ArticleGenerator synthesizes an article from selected sources.
type ArticleGenerator interface {
	Generate(ctx context.Context, sources []core.ContentItem, profile core.UserProfile, opts article.GenerateOptions) (*core.GeneratedArticle, error)
}

// ArticleStore persists finished articles. The pipeline only writes
// through it.
type ArticleStore interface {
	SaveArticle(a *core.GeneratedArticle, userID string, meta core.PipelineMetadata) (string, error)
}
