package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"curator/internal/core"
)

type fakeCollector struct {
	name        string
	sourceType  string
	items       []core.ContentItem
	err         error
	rateLimited bool
	nextAt      time.Time
	collected   int
}

func (f *fakeCollector) Name() string               { return f.name }
func (f *fakeCollector) SourceType() string         { return f.sourceType }
func (f *fakeCollector) IsRateLimited() bool        { return f.rateLimited }
func (f *fakeCollector) NextAvailableAt() time.Time { return f.nextAt }

func (f *fakeCollector) Collect(ctx context.Context, queries []core.SearchQuery) ([]core.ContentItem, error) {
	f.collected++
	return f.items, f.err
}

func items(urls ...string) []core.ContentItem {
	out := make([]core.ContentItem, len(urls))
	for i, u := range urls {
		out[i] = core.ContentItem{URL: u, SourceType: "rss"}
	}
	return out
}

func plan(sourceTypes ...string) map[string][]core.SearchQuery {
	p := make(map[string][]core.SearchQuery)
	for _, st := range sourceTypes {
		p[st] = []core.SearchQuery{{Query: "q", Priority: 5}}
	}
	return p
}

func TestCollectAllAggregates(t *testing.T) {
	rss := &fakeCollector{name: "hn-rss", sourceType: "rss", items: items("u://1", "u://2")}
	gh := &fakeCollector{name: "github-trending", sourceType: "github", items: items("u://3")}
	m := NewManager([]Collector{rss, gh}, DefaultManagerOptions())

	result, err := m.CollectAll(context.Background(), plan("rss", "github"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(result.Items))
	}
	if result.CollectorsQueried != 2 || result.CollectorsSkipped != 0 || result.CollectorsFailed != 0 {
		t.Errorf("unexpected stats: %+v", result)
	}
}

func TestCollectAllSkipsRateLimited(t *testing.T) {
	limited := &fakeCollector{name: "reddit", sourceType: "reddit", rateLimited: true, nextAt: time.Now().Add(time.Hour)}
	open := &fakeCollector{name: "hn-rss", sourceType: "rss", items: items("u://1")}
	m := NewManager([]Collector{limited, open}, DefaultManagerOptions())

	result, err := m.CollectAll(context.Background(), plan("rss", "reddit"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if limited.collected != 0 {
		t.Error("rate-limited collector must not be queried")
	}
	if result.CollectorsSkipped != 1 || result.CollectorsQueried != 1 {
		t.Errorf("unexpected stats: %+v", result)
	}
}

func TestCollectAllSkipsCollectorsWithoutQueries(t *testing.T) {
	rss := &fakeCollector{name: "hn-rss", sourceType: "rss", items: items("u://1")}
	gh := &fakeCollector{name: "github-trending", sourceType: "github", items: items("u://2")}
	m := NewManager([]Collector{rss, gh}, DefaultManagerOptions())

	result, err := m.CollectAll(context.Background(), plan("rss"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gh.collected != 0 {
		t.Error("collector without queries must not run")
	}
	if result.CollectorsSkipped != 1 {
		t.Errorf("unexpected stats: %+v", result)
	}
}

func TestCollectAllRecordsFailuresAndContinues(t *testing.T) {
	broken := &fakeCollector{name: "news-api", sourceType: "news", err: errors.New("upstream 500")}
	open := &fakeCollector{name: "hn-rss", sourceType: "rss", items: items("u://1")}
	m := NewManager([]Collector{broken, open}, DefaultManagerOptions())

	result, err := m.CollectAll(context.Background(), plan("rss", "news"))
	if err != nil {
		t.Fatalf("collector failure must not fail aggregation: %v", err)
	}

	if result.CollectorsFailed != 1 || len(result.Errors) != 1 {
		t.Errorf("unexpected stats: %+v", result)
	}
	if len(result.Items) != 1 {
		t.Errorf("healthy collector's items should survive, got %d", len(result.Items))
	}
}

func TestCollectAllCapsItemsPerCollector(t *testing.T) {
	opts := DefaultManagerOptions()
	opts.MaxItemsPerKind = 2
	big := &fakeCollector{name: "hn-rss", sourceType: "rss", items: items("u://1", "u://2", "u://3", "u://4")}
	m := NewManager([]Collector{big}, opts)

	result, err := m.CollectAll(context.Background(), plan("rss"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Items) != 2 {
		t.Errorf("expected per-collector cap of 2, got %d items", len(result.Items))
	}
}

func TestAvailableAndNextAvailableAt(t *testing.T) {
	soon := time.Now().Add(10 * time.Minute)
	later := time.Now().Add(time.Hour)
	m := NewManager([]Collector{
		&fakeCollector{name: "a", sourceType: "rss"},
		&fakeCollector{name: "b", sourceType: "reddit", rateLimited: true, nextAt: later},
		&fakeCollector{name: "c", sourceType: "news", rateLimited: true, nextAt: soon},
	}, DefaultManagerOptions())

	if got := len(m.Available()); got != 1 {
		t.Errorf("expected 1 available collector, got %d", got)
	}
	if got := m.NextAvailableAt(); !got.Equal(soon) {
		t.Errorf("expected earliest recovery %v, got %v", soon, got)
	}
}

func TestStaticProfileProvider(t *testing.T) {
	provider := NewStaticProfileProvider([]core.UserProfile{{ID: "u1", TechLevel: "advanced"}})

	profile, err := provider.GetProfile(context.Background(), "u1")
	if err != nil || profile.TechLevel != "advanced" {
		t.Errorf("expected stored profile, got %+v err %v", profile, err)
	}

	if _, err := provider.GetProfile(context.Background(), "nobody"); err == nil {
		t.Error("expected error for unknown user")
	}
}
