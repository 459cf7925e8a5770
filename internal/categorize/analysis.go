package categorize

import (
	"fmt"
	"sort"
)

// Distribution summarizes how a corpus spreads across the taxonomy.
type Distribution struct {
	Percentages     map[string]float64 `json:"percentages"`     // Category -> share in percent
	Trending        []string           `json:"trending"`        // Top 3 categories by share
	Recommendations []string           `json:"recommendations"` // Rebalancing advice
	Total           int                `json:"total"`
}

// AnalyzeDistribution computes category shares over labeled items and
// flags imbalance: one category above 50% share, or three or more
// categories below 5% share.
func AnalyzeDistribution(labels []string) Distribution {
	dist := Distribution{
		Percentages: make(map[string]float64),
		Total:       len(labels),
	}
	if len(labels) == 0 {
		return dist
	}

	counts := make(map[string]int)
	for _, label := range labels {
		counts[label]++
	}
	for label, n := range counts {
		dist.Percentages[label] = float64(n) / float64(len(labels)) * 100
	}

	type share struct {
		label string
		pct   float64
	}
	shares := make([]share, 0, len(counts))
	for label, pct := range dist.Percentages {
		shares = append(shares, share{label, pct})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].pct > shares[j].pct })

	for i := 0; i < len(shares) && i < 3; i++ {
		dist.Trending = append(dist.Trending, shares[i].label)
	}

	if shares[0].pct > 50 {
		dist.Recommendations = append(dist.Recommendations,
			fmt.Sprintf("category %q dominates at %.0f%%; diversify sources or split the category", shares[0].label, shares[0].pct))
	}
	under := 0
	for _, s := range shares {
		if s.pct < 5 {
			under++
		}
	}
	if under >= 3 {
		dist.Recommendations = append(dist.Recommendations,
			fmt.Sprintf("%d categories sit under 5%% share; consider merging rarely used categories", under))
	}

	return dist
}

// LabeledExample pairs an expected category with the predicted one.
type LabeledExample struct {
	Expected  string
	Predicted string
}

// ConfusedPair is a category pair misclassified more than the report
// threshold.
type ConfusedPair struct {
	Expected  string  `json:"expected"`
	Predicted string  `json:"predicted"`
	Rate      float64 `json:"rate"` // Share of the expected category's examples
}

// AccuracyReport is the outcome of evaluating classifications against
// labeled test data.
type AccuracyReport struct {
	Accuracy        float64                   `json:"accuracy"`
	ConfusionMatrix map[string]map[string]int `json:"confusion_matrix"` // expected -> predicted -> count
	ConfusedPairs   []ConfusedPair            `json:"confused_pairs"`   // Pairs confused >30% of the time
	Total           int                       `json:"total"`
}

// EvaluateAccuracy builds a confusion matrix from labeled examples and
// flags category pairs confused more than 30% of the time.
func EvaluateAccuracy(examples []LabeledExample) AccuracyReport {
	report := AccuracyReport{
		ConfusionMatrix: make(map[string]map[string]int),
		Total:           len(examples),
	}
	if len(examples) == 0 {
		return report
	}

	correct := 0
	expectedTotals := make(map[string]int)
	for _, ex := range examples {
		row := report.ConfusionMatrix[ex.Expected]
		if row == nil {
			row = make(map[string]int)
			report.ConfusionMatrix[ex.Expected] = row
		}
		row[ex.Predicted]++
		expectedTotals[ex.Expected]++
		if ex.Expected == ex.Predicted {
			correct++
		}
	}
	report.Accuracy = float64(correct) / float64(len(examples))

	for expected, row := range report.ConfusionMatrix {
		for predicted, n := range row {
			if predicted == expected {
				continue
			}
			rate := float64(n) / float64(expectedTotals[expected])
			if rate > 0.3 {
				report.ConfusedPairs = append(report.ConfusedPairs, ConfusedPair{
					Expected:  expected,
					Predicted: predicted,
					Rate:      rate,
				})
			}
		}
	}
	sort.SliceStable(report.ConfusedPairs, func(i, j int) bool {
		return report.ConfusedPairs[i].Rate > report.ConfusedPairs[j].Rate
	})

	return report
}
