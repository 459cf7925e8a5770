package pipeline

import (
	"context"
	"testing"

	"curator/internal/core"
)

func batchPipeline(failURL string) *Pipeline {
	qualityScores := map[string]float64{"u://a": 8, "u://b": 8, "u://c": 8}
	interestScores := map[string]float64{"u://a": 7, "u://b": 7, "u://c": 7}
	generator := &stubGenerator{failURLs: map[string]bool{}}
	if failURL != "" {
		generator.failURLs[failURL] = true
	}
	return healthyPipeline(
		&stubEvaluator{scores: qualityScores, finalScore: 8},
		&stubScorer{scores: interestScores, finalScore: 7, finalModel: true},
		generator, nil, nil,
	)
}

func TestBatchSettlesAllGroupsOnContinue(t *testing.T) {
	p := batchPipeline("u://b")
	groups := [][]core.ContentItem{
		{item("u://a")},
		{item("u://b")},
		{item("u://c")},
	}

	result := p.GenerateArticlesBatch(context.Background(), groups, core.UserProfile{}, BatchOptions{
		MaxConcurrent:   2,
		ContinueOnError: true,
	})

	if len(result.Successful) != 2 || len(result.Failed) != 1 {
		t.Fatalf("expected 2 successes and 1 failure, got %d/%d", len(result.Successful), len(result.Failed))
	}
	if result.AvgQuality != 8 || result.AvgInterest != 7 {
		t.Errorf("unexpected averages: quality %v interest %v", result.AvgQuality, result.AvgInterest)
	}
	for _, failed := range result.Failed {
		if failed.Article != nil {
			t.Error("failed group must not carry an article")
		}
	}
}

func TestBatchStopsDispatchingAfterFailure(t *testing.T) {
	p := batchPipeline("u://a")
	groups := [][]core.ContentItem{
		{item("u://a")},
		{item("u://b")},
		{item("u://c")},
	}

	result := p.GenerateArticlesBatch(context.Background(), groups, core.UserProfile{}, BatchOptions{
		MaxConcurrent:   1,
		ContinueOnError: false,
	})

	if len(result.Failed) != 1 {
		t.Fatalf("expected exactly 1 failure, got %d", len(result.Failed))
	}
	// The failing group aborts dispatch; at most one already-queued
	// group may still settle.
	settled := len(result.Successful) + len(result.Failed)
	if settled == len(groups) {
		t.Errorf("expected at least one group to be skipped, all %d settled", settled)
	}
}

func TestBatchEmptyGroups(t *testing.T) {
	p := batchPipeline("")

	result := p.GenerateArticlesBatch(context.Background(), nil, core.UserProfile{}, BatchOptions{ContinueOnError: true})

	if len(result.Successful) != 0 || len(result.Failed) != 0 {
		t.Errorf("empty batch should settle nothing, got %+v", result)
	}
	if result.AvgQuality != 0 || result.AvgInterest != 0 {
		t.Errorf("empty batch should report zero averages, got %+v", result)
	}
}

func TestBatchDefaultsConcurrencyFromConfig(t *testing.T) {
	p := batchPipeline("")
	groups := [][]core.ContentItem{{item("u://a")}, {item("u://b")}}

	result := p.GenerateArticlesBatch(context.Background(), groups, core.UserProfile{}, BatchOptions{ContinueOnError: true})

	if len(result.Successful) != 2 {
		t.Errorf("expected both groups to succeed, got %+v", result)
	}
}
