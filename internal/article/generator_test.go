package article

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"google.golang.org/genai"

	"curator/internal/core"
	"curator/internal/llm"
)

// MockLLMClient implements LLMClient for testing
type MockLLMClient struct {
	mu         sync.Mutex
	response   any
	callCount  int
	shouldFail bool
}

func (m *MockLLMClient) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any, options llm.Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if m.shouldFail {
		return errors.New("mock model error")
	}

	data, err := json.Marshal(m.response)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (m *MockLLMClient) GetModelName() string { return "mock-model" }

func mockArticle() articleResponse {
	return articleResponse{
		Title:      "Schedulers and Pools, Converging",
		Summary:    "Two recent changes point the same direction.",
		Content:    "## Overview\n\nBoth changes [1] reduce tail latency [2].",
		Category:   "Backend",
		Tags:       []string{"go", "scheduling"},
		Confidence: 0.8,
	}
}

func sourceItem(url, sourceType string, age time.Duration) core.ContentItem {
	return core.ContentItem{
		Title:       "Item " + url,
		URL:         url,
		SourceName:  "src",
		SourceType:  sourceType,
		PublishedAt: time.Now().Add(-age),
	}
}

func TestGenerateFillsDerivedFields(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{response: mockArticle()})
	sources := []core.ContentItem{
		sourceItem("https://a.example", "github", time.Hour),
		sourceItem("https://b.example", "rss", 2*time.Hour),
	}

	article, err := generator.Generate(context.Background(), sources, core.UserProfile{}, GenerateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if article.ID == "" {
		t.Error("expected generated ID")
	}
	if article.WordCount == 0 || article.ReadingTime < 1 {
		t.Errorf("derived length fields missing: %d words, %d min", article.WordCount, article.ReadingTime)
	}
	if article.Difficulty == "" {
		t.Error("difficulty should be inferred when the model omits it")
	}
	if article.ModelUsed != "mock-model" {
		t.Errorf("expected model name from client, got %q", article.ModelUsed)
	}
	if len(article.SourceRefs) != 2 || article.SourceRefs[0] != "https://a.example" {
		t.Errorf("source refs should follow prioritized order, got %v", article.SourceRefs)
	}
	if article.GeneratedAt.IsZero() {
		t.Error("expected GeneratedAt to be set")
	}
}

func TestGenerateNoSources(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{response: mockArticle()})

	if _, err := generator.Generate(context.Background(), nil, core.UserProfile{}, GenerateOptions{}); err == nil {
		t.Error("expected error for empty source set")
	}
}

func TestGenerateModelFailure(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{shouldFail: true})
	sources := []core.ContentItem{sourceItem("https://a.example", "rss", time.Hour)}

	if _, err := generator.Generate(context.Background(), sources, core.UserProfile{}, GenerateOptions{}); err == nil {
		t.Error("expected generation error to surface, not a fallback")
	}
}

func TestPrioritizeSourcesKeepsTopMax(t *testing.T) {
	opts := DefaultGeneratorOptions()
	opts.MaxSources = 2
	generator := NewGenerator(&MockLLMClient{}, opts)

	sources := []core.ContentItem{
		sourceItem("https://old-reddit.example", "reddit", 400*time.Hour),
		sourceItem("https://fresh-github.example", "github", time.Hour),
		sourceItem("https://fresh-news.example", "news", time.Hour),
		sourceItem("https://old-rss.example", "rss", 500*time.Hour),
	}

	selected := generator.PrioritizeSources(sources, core.UserProfile{})

	if len(selected) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(selected))
	}
	if selected[0].URL != "https://fresh-github.example" || selected[1].URL != "https://fresh-news.example" {
		t.Errorf("expected fresh github then fresh news, got %v and %v", selected[0].URL, selected[1].URL)
	}
}

func TestPrioritizeSourcesKeywordOverlapBreaksRecency(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{})
	profile := core.UserProfile{}
	profile.Interests.Keywords = []string{"kubernetes", "scheduling"}

	plain := sourceItem("https://plain.example", "rss", time.Hour)
	matching := sourceItem("https://match.example", "rss", 6*time.Hour)
	matching.Title = "Kubernetes scheduling deep dive"

	selected := generator.PrioritizeSources([]core.ContentItem{plain, matching}, profile)

	if selected[0].URL != "https://match.example" {
		t.Errorf("keyword overlap should outweigh a few hours of recency, got %v first", selected[0].URL)
	}
}

func TestPrioritizeSourcesTiesKeepInputOrder(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{})
	now := time.Now()

	a := sourceItem("https://a.example", "rss", 0)
	b := sourceItem("https://b.example", "rss", 0)
	a.PublishedAt = now
	b.PublishedAt = now

	selected := generator.PrioritizeSources([]core.ContentItem{a, b}, core.UserProfile{})

	if selected[0].URL != "https://a.example" {
		t.Errorf("equal priorities should keep input order, got %v first", selected[0].URL)
	}
}

func TestImproveArticleCarriesSourceRefs(t *testing.T) {
	revised := mockArticle()
	revised.Title = "Schedulers and Pools, Revisited"
	revised.Tags = []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10"}
	generator := NewGeneratorWithDefaults(&MockLLMClient{response: revised})

	existing := &core.GeneratedArticle{
		Title:      "Schedulers and Pools, Converging",
		Summary:    "Old summary.",
		Content:    "Old body.",
		SourceRefs: []string{"https://a.example", "https://b.example"},
	}

	improved, err := generator.ImproveArticle(context.Background(), existing, []ImproveAxis{ImproveClarity, ImproveDepth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if improved.Title != "Schedulers and Pools, Revisited" {
		t.Errorf("expected replacement title, got %q", improved.Title)
	}
	if len(improved.SourceRefs) != 2 {
		t.Errorf("source refs should carry over, got %v", improved.SourceRefs)
	}
	if len(improved.Tags) != 8 {
		t.Errorf("tags should cap at 8, got %d", len(improved.Tags))
	}
}

func TestImproveArticleNil(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{})
	if _, err := generator.ImproveArticle(context.Background(), nil, nil); err == nil {
		t.Error("expected error for nil article")
	}
}

func TestGenerateClampsConfidence(t *testing.T) {
	resp := mockArticle()
	resp.Confidence = 2.3
	generator := NewGeneratorWithDefaults(&MockLLMClient{response: resp})
	sources := []core.ContentItem{sourceItem("https://a.example", "rss", time.Hour)}

	article, err := generator.Generate(context.Background(), sources, core.UserProfile{}, GenerateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if article.Confidence != 1.0 {
		t.Errorf("expected clamped confidence 1.0, got %v", article.Confidence)
	}
}
