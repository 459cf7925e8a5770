// Package handlers implements the CLI subcommands.
package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"curator/internal/article"
	"curator/internal/categorize"
	"curator/internal/config"
	"curator/internal/core"
	"curator/internal/interest"
	"curator/internal/llm"
	"curator/internal/logger"
	"curator/internal/pipeline"
	"curator/internal/quality"
	"curator/internal/store"
	"curator/internal/tags"
)

// runtime bundles the wired pipeline and the resources behind it.
type runtime struct {
	pipeline *pipeline.Pipeline
	client   *llm.Client
	store    *store.Store
}

func (r *runtime) close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			logger.Error("Failed to close store", err)
		}
	}
	if r.client != nil {
		r.client.Close()
	}
}

// buildRuntime constructs one model client and injects it into every
// stage. persist controls whether finished articles are written to the
// local database.
func buildRuntime(persist bool) (*runtime, error) {
	cfg := config.Get()

	client, err := llm.NewClient(cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	evaluatorOpts := quality.DefaultEvaluatorOptions()
	evaluatorOpts.ModelName = cfg.Gemini.Model
	evaluatorOpts.MaxConcurrent = cfg.Pipeline.MaxConcurrent
	evaluatorOpts.CacheTTL = config.TTLOrDefault(cfg.Cache.TTL.Quality, evaluatorOpts.CacheTTL)

	scorerOpts := interest.DefaultScorerOptions()
	scorerOpts.ModelName = cfg.Gemini.Model
	scorerOpts.MaxConcurrent = cfg.Pipeline.MaxConcurrent
	scorerOpts.CacheTTL = config.TTLOrDefault(cfg.Cache.TTL.Interest, scorerOpts.CacheTTL)

	classifierOpts := categorize.DefaultClassifierOptions()
	classifierOpts.ModelName = cfg.Gemini.Model
	classifierOpts.CacheTTL = config.TTLOrDefault(cfg.Cache.TTL.Category, classifierOpts.CacheTTL)

	tagOpts := tags.DefaultGeneratorOptions()
	tagOpts.ModelName = cfg.Gemini.Model
	tagOpts.CacheTTL = config.TTLOrDefault(cfg.Cache.TTL.Tags, tagOpts.CacheTTL)

	articleOpts := article.DefaultGeneratorOptions()
	articleOpts.ModelName = cfg.Gemini.Model
	articleOpts.MaxSources = cfg.Pipeline.MaxSourcesPerArticle

	var articleStore *store.Store
	if persist {
		articleStore, err = store.NewStore(cfg.App.DataDir)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
	}

	pipelineConfig := &pipeline.Config{
		QualityThreshold:     cfg.Pipeline.QualityThreshold,
		InterestThreshold:    cfg.Pipeline.InterestThreshold,
		MaxSourcesPerArticle: cfg.Pipeline.MaxSourcesPerArticle,
		MaxConcurrent:        cfg.Pipeline.MaxConcurrent,
		TargetLength:         cfg.Pipeline.TargetLength,
		Style:                cfg.Pipeline.Style,
		Language:             cfg.App.Language,
	}

	var storeIface pipeline.ArticleStore
	if articleStore != nil {
		storeIface = articleStore
	}

	p := pipeline.NewPipeline(
		quality.NewEvaluator(client, evaluatorOpts),
		interest.NewScorer(client, scorerOpts),
		article.NewGenerator(client, articleOpts),
		categorize.NewClassifier(client, categorize.DefaultTaxonomy(), classifierOpts),
		tags.NewGenerator(client, tagOpts),
		storeIface,
		pipelineConfig,
	)

	return &runtime{pipeline: p, client: client, store: articleStore}, nil
}

// loadJSON reads a JSON file into out.
func loadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadProfile reads a user profile JSON file.
func loadProfile(path string) (core.UserProfile, error) {
	var profile core.UserProfile
	if err := loadJSON(path, &profile); err != nil {
		return profile, err
	}
	if profile.ID == "" {
		return profile, fmt.Errorf("profile %s has no id", path)
	}
	return profile, nil
}

// printResult writes a human-readable pipeline result to stdout.
func printResult(result core.PipelineResult) {
	if !result.Success {
		fmt.Printf("❌ Generation failed: %s\n", result.Error)
	} else {
		a := result.Article
		fmt.Printf("✅ %s\n", a.Title)
		fmt.Printf("   Category: %s | Difficulty: %s | %d words (~%d min read)\n",
			a.Category, a.Difficulty, a.WordCount, a.ReadingTime)
		if len(a.Tags) > 0 {
			fmt.Printf("   Tags: %v\n", a.Tags)
		}
		fmt.Printf("   Sources used: %d of %d\n", result.Metadata.SourcesUsed, result.Metadata.SourcesProcessed)
	}
	for _, w := range result.Warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
}

// writeArticle writes the generated article as markdown.
func writeArticle(a *core.GeneratedArticle, path string) error {
	var refs string
	for i, ref := range a.SourceRefs {
		refs += fmt.Sprintf("%d. %s\n", i+1, ref)
	}
	doc := fmt.Sprintf("# %s\n\n> %s\n\n%s\n\n## Sources\n\n%s", a.Title, a.Summary, a.Content, refs)
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write article: %w", err)
	}
	return nil
}
