// Package pipeline sequences the scoring and generation stages into
// one sources-to-article transformation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"curator/internal/article"
	"curator/internal/core"
	"curator/internal/interest"
	"curator/internal/logger"
	"curator/internal/quality"
)

// Stage names a step of the run, in execution order.
type Stage string

const (
	StageQualityFiltering  Stage = "QualityFiltering"
	StageInterestFiltering Stage = "InterestFiltering"
	StageSourceSelection   Stage = "SourceSelection"
	StageGeneration        Stage = "Generation"
	StageClassification    Stage = "Classification"
	StageTagging           Stage = "Tagging"
	StageFinalEvaluation   Stage = "FinalEvaluation"
	StageDone              Stage = "Done"
)

// Config holds orchestration thresholds and limits.
type Config struct {
	QualityThreshold     float64
	InterestThreshold    float64
	MaxSourcesPerArticle int
	MaxConcurrent        int

	TargetLength int
	Style        string
	Language     string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		QualityThreshold:     6.0,
		InterestThreshold:    5.0,
		MaxSourcesPerArticle: 5,
		MaxConcurrent:        4,
		TargetLength:         800,
	}
}

// Pipeline orchestrates the end-to-end article generation workflow.
type Pipeline struct {
	evaluator  QualityEvaluator
	scorer     InterestScorer
	generator  ArticleGenerator
	classifier Classifier
	tagger     Tagger
	store      ArticleStore // Optional

	config *Config
	log    *slog.Logger
}

// NewPipeline creates a pipeline with all stage dependencies. store
// may be nil; finished articles are then not persisted.
func NewPipeline(
	evaluator QualityEvaluator,
	scorer InterestScorer,
	generator ArticleGenerator,
	classifier Classifier,
	tagger Tagger,
	store ArticleStore,
	config *Config,
) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pipeline{
		evaluator:  evaluator,
		scorer:     scorer,
		generator:  generator,
		classifier: classifier,
		tagger:     tagger,
		store:      store,
		config:     config,
		log:        logger.Get(),
	}
}

// GenerateArticle runs the full stage sequence over the given sources
// for one user. Every failure mode, threshold gates included, comes
// back as a Success=false result rather than an error.
func (p *Pipeline) GenerateArticle(ctx context.Context, items []core.ContentItem, profile core.UserProfile) core.PipelineResult {
	started := time.Now()
	result := core.PipelineResult{
		Warnings: []string{},
		Metadata: core.PipelineMetadata{SourcesProcessed: len(items)},
	}
	executed := func(s Stage) {
		result.Metadata.StagesExecuted = append(result.Metadata.StagesExecuted, string(s))
	}
	finish := func() core.PipelineResult {
		result.Metadata.ExecutionTimeMs = time.Since(started).Milliseconds()
		return result
	}

	if len(items) == 0 {
		result.Error = "no sources provided"
		return finish()
	}

	// QualityFiltering
	executed(StageQualityFiltering)
	scores := p.evaluator.EvaluateBatch(ctx, items, quality.BatchOptions{MaxConcurrent: p.config.MaxConcurrent})
	var passed []core.ContentItem
	for _, item := range items {
		score, ok := scores[item.URL]
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("no quality score for %s", item.URL))
			continue
		}
		if score >= p.config.QualityThreshold {
			passed = append(passed, item)
		}
	}
	if len(passed) == 0 {
		result.Error = fmt.Sprintf("no source passed the quality threshold %.1f", p.config.QualityThreshold)
		result.Warnings = append(result.Warnings, fmt.Sprintf("all %d sources scored below quality threshold", len(items)))
		return finish()
	}

	// InterestFiltering
	executed(StageInterestFiltering)
	ranked := p.scorer.CalculateBatch(ctx, passed, profile)
	var interesting []interest.RankedItem
	for _, r := range ranked {
		if r.Score.Value >= p.config.InterestThreshold {
			interesting = append(interesting, r)
		}
	}
	if len(interesting) == 0 {
		result.Error = fmt.Sprintf("no source passed the interest threshold %.1f", p.config.InterestThreshold)
		result.Warnings = append(result.Warnings, fmt.Sprintf("all %d quality-filtered sources scored below interest threshold", len(passed)))
		return finish()
	}

	// SourceSelection. CalculateBatch returns a stable descending order,
	// so ties keep input order.
	executed(StageSourceSelection)
	n := p.config.MaxSourcesPerArticle
	if n > len(interesting) {
		n = len(interesting)
	}
	selected := make([]core.ContentItem, n)
	for i := 0; i < n; i++ {
		selected[i] = interesting[i].Item
	}
	result.Metadata.SourcesUsed = n

	// Generation
	executed(StageGeneration)
	generated, err := p.generator.Generate(ctx, selected, profile, article.GenerateOptions{
		TargetLength: p.config.TargetLength,
		Style:        p.config.Style,
		Language:     p.config.Language,
	})
	if err != nil {
		p.log.Error("Article generation failed", "user", profile.ID, "error", err)
		result.Error = fmt.Sprintf("article generation failed: %v", err)
		return finish()
	}

	generatedAsItem := core.ContentItem{
		Title:       generated.Title,
		URL:         "generated://" + generated.ID,
		Summary:     generated.Summary,
		PublishedAt: generated.GeneratedAt,
		SourceName:  "AI Generated",
		SourceType:  "generated",
	}

	// Classification
	executed(StageClassification)
	classification := p.classifier.ClassifyDetailed(ctx, generatedAsItem)
	generated.Category = classification.Category
	if classification.Confidence < 0.5 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("low classification confidence %.2f for category %q", classification.Confidence, classification.Category))
	}

	// Tagging
	executed(StageTagging)
	suggestions := p.tagger.GenerateTagsDetailed(ctx, generatedAsItem)
	if len(suggestions) > 0 {
		names := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			names = append(names, s.Name)
		}
		if len(names) > 8 {
			names = names[:8]
		}
		generated.Tags = names
	}

	// FinalEvaluation, reporting only. Low scores become warnings.
	executed(StageFinalEvaluation)
	finalQuality := p.evaluator.EvaluateDetailed(ctx, generatedAsItem)
	finalInterest := p.scorer.CalculateDetailed(ctx, generatedAsItem, profile)
	result.Metadata.FinalQualityScore = finalQuality.Value
	result.Metadata.FinalInterestScore = finalInterest.Value
	if finalQuality.Value < p.config.QualityThreshold {
		result.Warnings = append(result.Warnings, fmt.Sprintf("generated article quality %.1f below threshold %.1f", finalQuality.Value, p.config.QualityThreshold))
	}
	if finalInterest.Value < p.config.InterestThreshold {
		result.Warnings = append(result.Warnings, fmt.Sprintf("generated article interest %.1f below threshold %.1f", finalInterest.Value, p.config.InterestThreshold))
	}

	executed(StageDone)
	result.Success = true
	result.Article = generated
	result.Metadata.ExecutionTimeMs = time.Since(started).Milliseconds()

	if p.store != nil {
		if id, err := p.store.SaveArticle(generated, profile.ID, result.Metadata); err != nil {
			p.log.Error("Failed to persist article", "article", generated.ID, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("article not persisted: %v", err))
		} else {
			p.log.Info("Article persisted", "record", id)
		}
	}

	p.log.Info("Pipeline run completed",
		"user", profile.ID,
		"sources_processed", result.Metadata.SourcesProcessed,
		"sources_used", result.Metadata.SourcesUsed,
		"warnings", len(result.Warnings),
		"duration_ms", result.Metadata.ExecutionTimeMs,
	)

	return result
}
