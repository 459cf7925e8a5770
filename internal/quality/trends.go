package quality

import (
	"sort"
	"time"

	"curator/internal/core"
)

// ScoredItem pairs an item with its quality score for trend analysis.
type ScoredItem struct {
	Item  core.ContentItem
	Score float64
}

// TrendDirection classifies how quality moves across a window.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// TrendAnalysis reports the quality trend over a set of scored items.
type TrendAnalysis struct {
	Direction     TrendDirection `json:"direction"`
	FirstHalfAvg  float64        `json:"first_half_avg"`
	SecondHalfAvg float64        `json:"second_half_avg"`
	Delta         float64        `json:"delta"`
	Periods       int            `json:"periods"`
}

// AnalyzeTrend buckets scored items into calendar days, then compares the
// average score of the chronologically first half of the buckets against
// the second half. A difference above 0.1 on the 10-point scale counts as
// a trend; anything smaller is stable.
func (e *Evaluator) AnalyzeTrend(scored []ScoredItem) TrendAnalysis {
	buckets := make(map[time.Time][]float64)
	for _, s := range scored {
		day := s.Item.PublishedAt.UTC().Truncate(24 * time.Hour)
		buckets[day] = append(buckets[day], s.Score)
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	analysis := TrendAnalysis{Direction: TrendStable, Periods: len(days)}
	if len(days) < 2 {
		return analysis
	}

	mid := len(days) / 2
	analysis.FirstHalfAvg = averageOverDays(buckets, days[:mid])
	analysis.SecondHalfAvg = averageOverDays(buckets, days[mid:])
	analysis.Delta = analysis.SecondHalfAvg - analysis.FirstHalfAvg

	switch {
	case analysis.Delta > 0.1:
		analysis.Direction = TrendImproving
	case analysis.Delta < -0.1:
		analysis.Direction = TrendDeclining
	}
	return analysis
}

func averageOverDays(buckets map[time.Time][]float64, days []time.Time) float64 {
	var sum float64
	var n int
	for _, day := range days {
		for _, v := range buckets[day] {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
