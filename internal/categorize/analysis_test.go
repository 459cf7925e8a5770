package categorize

import "testing"

func TestAnalyzeDistributionPercentagesAndTrending(t *testing.T) {
	labels := []string{
		"Backend", "Backend", "Backend", "Backend",
		"Frontend", "Frontend",
		"DevOps",
		"AI/ML",
	}

	dist := AnalyzeDistribution(labels)

	if dist.Total != 8 {
		t.Errorf("expected total 8, got %d", dist.Total)
	}
	if dist.Percentages["Backend"] != 50 {
		t.Errorf("expected Backend at 50%%, got %v", dist.Percentages["Backend"])
	}
	if len(dist.Trending) != 3 || dist.Trending[0] != "Backend" {
		t.Errorf("unexpected trending list: %v", dist.Trending)
	}
}

func TestAnalyzeDistributionFlagsDominantCategory(t *testing.T) {
	labels := []string{"Backend", "Backend", "Backend", "Frontend"}

	dist := AnalyzeDistribution(labels)

	if len(dist.Recommendations) == 0 {
		t.Fatal("expected a dominance recommendation")
	}
}

func TestAnalyzeDistributionFlagsManyTinyCategories(t *testing.T) {
	// 30 items: one big category plus three 1-item categories under 5%.
	labels := make([]string, 0, 30)
	for i := 0; i < 27; i++ {
		labels = append(labels, "Backend")
	}
	labels = append(labels, "Frontend", "Mobile", "DevOps")

	dist := AnalyzeDistribution(labels)

	if len(dist.Recommendations) < 2 {
		t.Errorf("expected dominance and merge recommendations, got %v", dist.Recommendations)
	}
}

func TestAnalyzeDistributionEmpty(t *testing.T) {
	dist := AnalyzeDistribution(nil)
	if dist.Total != 0 || len(dist.Trending) != 0 {
		t.Errorf("unexpected distribution for empty input: %+v", dist)
	}
}

func TestEvaluateAccuracy(t *testing.T) {
	examples := []LabeledExample{
		{Expected: "Backend", Predicted: "Backend"},
		{Expected: "Backend", Predicted: "Backend"},
		{Expected: "Backend", Predicted: "DevOps"},
		{Expected: "Frontend", Predicted: "Frontend"},
	}

	report := EvaluateAccuracy(examples)

	if report.Accuracy != 0.75 {
		t.Errorf("expected accuracy 0.75, got %v", report.Accuracy)
	}
	if report.ConfusionMatrix["Backend"]["DevOps"] != 1 {
		t.Errorf("unexpected confusion matrix: %v", report.ConfusionMatrix)
	}
	// 1/3 of Backend examples misread as DevOps, above the 30% bar.
	if len(report.ConfusedPairs) != 1 || report.ConfusedPairs[0].Predicted != "DevOps" {
		t.Errorf("unexpected confused pairs: %v", report.ConfusedPairs)
	}
}

func TestEvaluateAccuracyIgnoresRareConfusion(t *testing.T) {
	examples := []LabeledExample{
		{Expected: "Backend", Predicted: "Backend"},
		{Expected: "Backend", Predicted: "Backend"},
		{Expected: "Backend", Predicted: "Backend"},
		{Expected: "Backend", Predicted: "DevOps"},
	}

	report := EvaluateAccuracy(examples)

	// 25% confusion stays below the 30% reporting threshold.
	if len(report.ConfusedPairs) != 0 {
		t.Errorf("expected no confused pairs, got %v", report.ConfusedPairs)
	}
}
