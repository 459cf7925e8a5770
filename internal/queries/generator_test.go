package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
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

func mockQueries(queries ...core.SearchQuery) queryResponse {
	var resp queryResponse
	resp.Reasoning = "mock strategy"
	for _, q := range queries {
		resp.Queries = append(resp.Queries, struct {
			Query              string   `json:"query"`
			Category           string   `json:"category"`
			Priority           float64  `json:"priority"`
			Reasoning          string   `json:"reasoning"`
			RecommendedSources []string `json:"recommended_sources"`
		}{Query: q.Query, Category: q.Category, Priority: q.Priority, Reasoning: q.Reasoning, RecommendedSources: q.RecommendedSources})
	}
	return resp
}

func goProfile() core.UserProfile {
	p := core.UserProfile{ID: "u1", TechLevel: "advanced"}
	p.Interests.Categories = []string{"Backend"}
	p.Interests.Keywords = []string{"go", "distributed systems"}
	return p
}

func TestGenerateQueriesAdaptsPerSource(t *testing.T) {
	client := &MockLLMClient{response: mockQueries(
		core.SearchQuery{Query: "goroutine scheduler internals", Category: "Backend", Priority: 8},
	)}
	generator := NewGeneratorWithDefaults(client)

	plan := generator.GenerateQueries(context.Background(), goProfile(), []string{"reddit", "github", "news"})

	reddit := plan.Queries["reddit"][0].Query
	if !strings.Contains(reddit, "site:reddit.com") {
		t.Errorf("reddit query missing site restriction: %q", reddit)
	}
	github := plan.Queries["github"][0].Query
	if !strings.Contains(github, "language:go") {
		t.Errorf("github query missing language filter: %q", github)
	}
	news := plan.Queries["news"][0].Query
	year := fmt.Sprintf("%d", time.Now().Year())
	if !strings.Contains(news, year) {
		t.Errorf("news query missing current year: %q", news)
	}
}

func TestGenerateQueriesRespectsRecommendedSources(t *testing.T) {
	client := &MockLLMClient{response: mockQueries(
		core.SearchQuery{Query: "raft implementations", Category: "Backend", Priority: 9, RecommendedSources: []string{"github"}},
		core.SearchQuery{Query: "scaling war stories", Category: "Backend", Priority: 7, RecommendedSources: []string{"reddit"}},
	)}
	generator := NewGeneratorWithDefaults(client)

	plan := generator.GenerateQueries(context.Background(), goProfile(), []string{"reddit", "github"})

	if len(plan.Queries["github"]) != 1 || !strings.HasPrefix(plan.Queries["github"][0].Query, "raft implementations") {
		t.Errorf("github group wrong: %+v", plan.Queries["github"])
	}
	if len(plan.Queries["reddit"]) != 1 || !strings.HasPrefix(plan.Queries["reddit"][0].Query, "scaling war stories") {
		t.Errorf("reddit group wrong: %+v", plan.Queries["reddit"])
	}
}

func TestGenerateQueriesTruncatesByPriority(t *testing.T) {
	client := &MockLLMClient{response: mockQueries(
		core.SearchQuery{Query: "q-low", Priority: 3},
		core.SearchQuery{Query: "q-top", Priority: 9},
		core.SearchQuery{Query: "q-mid", Priority: 6},
		core.SearchQuery{Query: "q-floor", Priority: 2},
	)}
	opts := DefaultGeneratorOptions()
	opts.MaxQueriesPerSource = 2
	generator := NewGenerator(client, opts)

	plan := generator.GenerateQueries(context.Background(), goProfile(), []string{"rss"})

	qs := plan.Queries["rss"]
	if len(qs) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(qs))
	}
	if qs[0].Query != "q-top" || qs[1].Query != "q-mid" {
		t.Errorf("expected [q-top q-mid], got %+v", qs)
	}
}

func TestGenerateQueriesClampsPriority(t *testing.T) {
	client := &MockLLMClient{response: mockQueries(
		core.SearchQuery{Query: "overrated", Priority: 25},
	)}
	generator := NewGeneratorWithDefaults(client)

	plan := generator.GenerateQueries(context.Background(), goProfile(), []string{"rss"})

	if got := plan.Queries["rss"][0].Priority; got != 10 {
		t.Errorf("expected clamped priority 10, got %v", got)
	}
}

func TestGenerateQueriesFallbackTwoPerSource(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{shouldFail: true})
	profile := goProfile()
	profile.WeightedKeywords = []core.WeightedKeyword{
		{Keyword: "kubernetes", Weight: 0.9},
		{Keyword: "observability", Weight: 0.7},
	}

	plan := generator.GenerateQueries(context.Background(), profile, []string{"rss", "news"})

	for _, source := range []string{"rss", "news"} {
		if len(plan.Queries[source]) != 2 {
			t.Fatalf("expected 2 fallback queries for %s, got %+v", source, plan.Queries[source])
		}
	}
	// Weighted keywords outrank plain ones.
	if !strings.HasPrefix(plan.Queries["rss"][0].Query, "kubernetes") {
		t.Errorf("expected top weighted keyword first, got %q", plan.Queries["rss"][0].Query)
	}
	if plan.Queries["rss"][0].Category != "Backend" {
		t.Errorf("fallback should use the first interest category, got %q", plan.Queries["rss"][0].Category)
	}
}

func TestGenerateQueriesFallbackEmptyProfile(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{shouldFail: true})

	plan := generator.GenerateQueries(context.Background(), core.UserProfile{}, []string{"rss"})

	if len(plan.Queries["rss"]) != 1 {
		t.Fatalf("empty profile should still yield a generic query, got %+v", plan.Queries["rss"])
	}
	if !strings.HasPrefix(plan.Queries["rss"][0].Query, "software engineering") {
		t.Errorf("expected generic term, got %q", plan.Queries["rss"][0].Query)
	}
}

func TestGenerateQueriesModelReturningNothingFallsBack(t *testing.T) {
	generator := NewGeneratorWithDefaults(&MockLLMClient{response: queryResponse{}})

	plan := generator.GenerateQueries(context.Background(), goProfile(), []string{"rss"})

	if plan.Reasoning != "generic queries derived from profile interests" {
		t.Errorf("empty model output should trigger the fallback, got %+v", plan)
	}
}
