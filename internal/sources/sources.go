// Package sources defines the collection-side collaborators of the
// pipeline and a manager that aggregates across them.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"curator/internal/core"
	"curator/internal/logger"
)

// Collector fetches content items from one external source. Collectors
// own their transport details; the pipeline only sees ContentItems.
type Collector interface {
	// Name identifies the collector, e.g. "hn-rss" or "github-trending".
	Name() string

	// SourceType reports the source type its items carry
	// ("rss", "github", "reddit", "news").
	SourceType() string

	// Collect fetches items matching the given queries.
	Collect(ctx context.Context, queries []core.SearchQuery) ([]core.ContentItem, error)

	// IsRateLimited reports whether the collector is currently backing off.
	IsRateLimited() bool

	// NextAvailableAt reports when a rate-limited collector can be
	// used again. Zero time when not rate limited.
	NextAvailableAt() time.Time
}

// ProfileProvider loads user profiles for the pipeline.
type ProfileProvider interface {
	GetProfile(ctx context.Context, userID string) (*core.UserProfile, error)
}

// ManagerOptions configures aggregation across collectors.
type ManagerOptions struct {
	MaxConcurrency  int
	MaxItemsPerKind int           // Per-collector cap, 0 = no limit
	Timeout         time.Duration // Whole-aggregation deadline
}

// DefaultManagerOptions returns sensible defaults.
func DefaultManagerOptions() ManagerOptions {
	return ManagerOptions{
		MaxConcurrency:  4,
		MaxItemsPerKind: 50,
		Timeout:         5 * time.Minute,
	}
}

// CollectResult contains aggregation statistics.
type CollectResult struct {
	Items              []core.ContentItem
	CollectorsQueried  int
	CollectorsSkipped  int
	CollectorsFailed   int
	Errors             []error
}

// Manager fans queries out to registered collectors, skipping any that
// report rate limiting.
type Manager struct {
	collectors []Collector
	options    ManagerOptions
	log        *slog.Logger
}

// NewManager creates a manager over the given collectors.
func NewManager(collectors []Collector, options ManagerOptions) *Manager {
	if options.MaxConcurrency <= 0 {
		options.MaxConcurrency = DefaultManagerOptions().MaxConcurrency
	}
	return &Manager{
		collectors: collectors,
		options:    options,
		log:        logger.Get(),
	}
}

// Register adds a collector. Not safe for concurrent use with CollectAll.
func (m *Manager) Register(c Collector) {
	m.collectors = append(m.collectors, c)
}

// Available returns the collectors that are not currently rate limited.
func (m *Manager) Available() []Collector {
	var out []Collector
	for _, c := range m.collectors {
		if !c.IsRateLimited() {
			out = append(out, c)
		}
	}
	return out
}

// NextAvailableAt returns the earliest time any rate-limited collector
// becomes usable again. Zero time when none are limited.
func (m *Manager) NextAvailableAt() time.Time {
	var earliest time.Time
	for _, c := range m.collectors {
		if !c.IsRateLimited() {
			continue
		}
		t := c.NextAvailableAt()
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}

// CollectAll queries every available collector with its source's slice
// of the query plan. Rate-limited collectors are skipped, not waited
// for; failures are recorded and the rest proceed.
func (m *Manager) CollectAll(ctx context.Context, plan map[string][]core.SearchQuery) (*CollectResult, error) {
	if m.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.options.Timeout)
		defer cancel()
	}

	result := &CollectResult{}
	sem := make(chan struct{}, m.options.MaxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, c := range m.collectors {
		if c.IsRateLimited() {
			m.log.Warn("Skipping rate-limited collector",
				"collector", c.Name(), "next_available", c.NextAvailableAt())
			result.CollectorsSkipped++
			continue
		}

		queries := plan[c.SourceType()]
		if len(queries) == 0 {
			result.CollectorsSkipped++
			continue
		}

		select {
		case <-ctx.Done():
			m.log.Warn("Collection cancelled", "reason", ctx.Err())
			return result, ctx.Err()
		default:
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(c Collector, queries []core.SearchQuery) {
			defer wg.Done()
			defer func() { <-sem }()

			items, err := c.Collect(ctx, queries)

			mu.Lock()
			defer mu.Unlock()
			result.CollectorsQueried++
			if err != nil {
				m.log.Error("Collector failed", "collector", c.Name(), "error", err)
				result.CollectorsFailed++
				result.Errors = append(result.Errors, fmt.Errorf("collector %s: %w", c.Name(), err))
				return
			}
			if m.options.MaxItemsPerKind > 0 && len(items) > m.options.MaxItemsPerKind {
				items = items[:m.options.MaxItemsPerKind]
			}
			result.Items = append(result.Items, items...)
		}(c, queries)
	}

	wg.Wait()

	m.log.Info("Collection completed",
		"queried", result.CollectorsQueried,
		"skipped", result.CollectorsSkipped,
		"failed", result.CollectorsFailed,
		"items", len(result.Items),
	)

	return result, nil
}

// StaticProfileProvider serves profiles from a fixed map. Useful for
// CLI runs driven by config files and for tests.
type StaticProfileProvider struct {
	profiles map[string]core.UserProfile
}

// NewStaticProfileProvider creates a provider over the given profiles,
// keyed by profile ID.
func NewStaticProfileProvider(profiles []core.UserProfile) *StaticProfileProvider {
	m := make(map[string]core.UserProfile, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	return &StaticProfileProvider{profiles: m}
}

// GetProfile returns the profile for userID.
func (p *StaticProfileProvider) GetProfile(_ context.Context, userID string) (*core.UserProfile, error) {
	profile, ok := p.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("unknown user profile: %s", userID)
	}
	return &profile, nil
}
