package interest

import (
	"math"
	"sort"
)

// SelectionStrategy names how FilterByInterest picks items.
type SelectionStrategy string

const (
	// StrategyTopN keeps the N highest-scoring items.
	StrategyTopN SelectionStrategy = "top-n"
	// StrategyThreshold keeps items at or above an absolute score.
	StrategyThreshold SelectionStrategy = "threshold"
	// StrategyPercentile keeps items at or above a score percentile.
	StrategyPercentile SelectionStrategy = "percentile"
)

// FilterOptions configures FilterByInterest.
type FilterOptions struct {
	Strategy   SelectionStrategy
	TopN       int     // For StrategyTopN
	Threshold  float64 // For StrategyThreshold, on the 1-10 scale
	Percentile float64 // For StrategyPercentile, in (0,100)
}

// FilterByInterest selects ranked items according to the chosen strategy.
// The result is always sorted descending by score; ties keep the order in
// which items were ranked.
func FilterByInterest(ranked []RankedItem, opts FilterOptions) []RankedItem {
	sorted := make([]RankedItem, len(ranked))
	copy(sorted, ranked)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score.Value > sorted[j].Score.Value })

	switch opts.Strategy {
	case StrategyTopN:
		n := opts.TopN
		if n < 0 {
			n = 0
		}
		if n > len(sorted) {
			n = len(sorted)
		}
		return sorted[:n]

	case StrategyPercentile:
		cutoff := percentileScore(sorted, opts.Percentile)
		return keepAtOrAbove(sorted, cutoff)

	case StrategyThreshold:
		fallthrough
	default:
		return keepAtOrAbove(sorted, opts.Threshold)
	}
}

// FilterStats summarizes a selection for logging and batch reporting.
type FilterStats struct {
	TotalItems    int     `json:"total_items"`
	SelectedItems int     `json:"selected_items"`
	AvgScore      float64 `json:"avg_score"`
	MaxScore      float64 `json:"max_score"`
	MinScore      float64 `json:"min_score"`
}

// Stats computes summary statistics over ranked items.
func Stats(ranked []RankedItem, selected int) FilterStats {
	stats := FilterStats{TotalItems: len(ranked), SelectedItems: selected}
	if len(ranked) == 0 {
		return stats
	}

	stats.MinScore = math.MaxFloat64
	var sum float64
	for _, r := range ranked {
		v := r.Score.Value
		sum += v
		if v > stats.MaxScore {
			stats.MaxScore = v
		}
		if v < stats.MinScore {
			stats.MinScore = v
		}
	}
	stats.AvgScore = sum / float64(len(ranked))
	return stats
}

func keepAtOrAbove(sorted []RankedItem, cutoff float64) []RankedItem {
	var kept []RankedItem
	for _, r := range sorted {
		if r.Score.Value >= cutoff {
			kept = append(kept, r)
		}
	}
	return kept
}

// percentileScore computes the score at the given percentile using the
// nearest-rank method over descending-sorted items.
func percentileScore(sorted []RankedItem, percentile float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if percentile <= 0 {
		return sorted[len(sorted)-1].Score.Value
	}
	if percentile >= 100 {
		return sorted[0].Score.Value
	}

	// sorted is descending; the p-th percentile counts from the bottom.
	rank := int(math.Ceil(percentile / 100 * float64(len(sorted))))
	idx := len(sorted) - rank
	if idx < 0 {
		idx = 0
	}
	return sorted[idx].Score.Value
}
