package pipeline

import (
	"context"
	"sync"

	"curator/internal/core"
)

// BatchOptions configures GenerateArticlesBatch.
type BatchOptions struct {
	MaxConcurrent int
	// ContinueOnError false stops dispatching new groups at the first
	// failure; true settles every group and collects all outcomes.
	ContinueOnError bool
}

// BatchResult aggregates the outcomes of a batch run.
type BatchResult struct {
	Successful []core.PipelineResult
	Failed     []core.PipelineResult

	// Averages over the successful articles' final-evaluation scores.
	AvgQuality  float64
	AvgInterest float64
}

// GenerateArticlesBatch runs the pipeline once per source group with
// bounded concurrency. Each group's outcome is captured; nothing
// panics through.
func (p *Pipeline) GenerateArticlesBatch(ctx context.Context, groups [][]core.ContentItem, profile core.UserProfile, opts BatchOptions) BatchResult {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = p.config.MaxConcurrent
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}

	outcomes := make([]core.PipelineResult, len(groups))
	done := make([]bool, len(groups))

	sem := make(chan struct{}, opts.MaxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	aborted := false

	for i, group := range groups {
		mu.Lock()
		stop := aborted
		mu.Unlock()
		if stop {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(i int, group []core.ContentItem) {
			defer wg.Done()
			defer func() { <-sem }()

			result := p.GenerateArticle(ctx, group, profile)

			mu.Lock()
			defer mu.Unlock()
			outcomes[i] = result
			done[i] = true
			if !result.Success && !opts.ContinueOnError {
				aborted = true
			}
		}(i, group)
	}

	wg.Wait()

	var out BatchResult
	var qualitySum, interestSum float64
	for i := range outcomes {
		if !done[i] {
			continue
		}
		if outcomes[i].Success {
			out.Successful = append(out.Successful, outcomes[i])
			qualitySum += outcomes[i].Metadata.FinalQualityScore
			interestSum += outcomes[i].Metadata.FinalInterestScore
		} else {
			out.Failed = append(out.Failed, outcomes[i])
		}
	}
	if n := len(out.Successful); n > 0 {
		out.AvgQuality = qualitySum / float64(n)
		out.AvgInterest = interestSum / float64(n)
	}

	p.log.Info("Batch run completed",
		"groups", len(groups),
		"successful", len(out.Successful),
		"failed", len(out.Failed),
		"avg_quality", out.AvgQuality,
		"avg_interest", out.AvgInterest,
	)

	return out
}
