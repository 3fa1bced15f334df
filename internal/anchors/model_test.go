package anchors_test

import (
	"math"
	"testing"

	"syncorbit/internal/anchors"
)

func TestAnalyzeRobustToOutlier(t *testing.T) {
	samples := []anchors.Sample{
		{T: 0, Delta: 0.1},
		{T: 10, Delta: 0.12},
		{T: 20, Delta: 9.0},
		{T: 30, Delta: 0.11},
	}

	result := anchors.Analyze(samples, anchors.DefaultThresholds())

	if result.AnchorCount != 3 {
		t.Fatalf("expected 3 clean anchors, got %d", result.AnchorCount)
	}
	if len(result.Outliers) != 1 || result.Outliers[0].Delta != 9.0 {
		t.Fatalf("expected the 9.0 spike as the only outlier, got %#v", result.Outliers)
	}
	if math.Abs(result.AvgOffset-0.11) > 1e-9 {
		t.Fatalf("expected robust avg offset 0.11, got %f", result.AvgOffset)
	}
	if result.Decision != anchors.DecisionSynced {
		t.Fatalf("expected synced decision, got %s", result.Decision)
	}
	if result.MaxOffset != 9.0 {
		t.Fatalf("raw max offset should include the outlier, got %f", result.MaxOffset)
	}
}

func TestAnalyzeEmptyIsUnknown(t *testing.T) {
	result := anchors.Analyze(nil, anchors.DefaultThresholds())
	if result.Decision != anchors.DecisionUnknown {
		t.Fatalf("expected unknown decision for empty input, got %s", result.Decision)
	}
	if result.AnchorCount != 0 {
		t.Fatalf("expected zero anchors, got %d", result.AnchorCount)
	}
}

func TestAnalyzeSortsSamplesByTime(t *testing.T) {
	samples := []anchors.Sample{
		{T: 30, Delta: 0.3},
		{T: 10, Delta: 0.1},
		{T: 20, Delta: 0.2},
	}
	result := anchors.Analyze(samples, anchors.DefaultThresholds())
	for i := 1; i < len(result.Samples); i++ {
		if result.Samples[i].T < result.Samples[i-1].T {
			t.Fatalf("samples not ordered by time: %#v", result.Samples)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	samples := []anchors.Sample{
		{T: 0, Delta: -0.4},
		{T: 60, Delta: -0.42},
		{T: 120, Delta: -0.38},
		{T: 180, Delta: -0.41},
		{T: 240, Delta: 5.5},
	}
	th := anchors.DefaultThresholds()
	first := anchors.Analyze(samples, th)
	second := anchors.Analyze(samples, th)

	if first.AvgOffset != second.AvgOffset || first.DriftSpan != second.DriftSpan {
		t.Fatalf("repeated analysis diverged: %#v vs %#v", first, second)
	}
	if first.Decision != second.Decision || first.AnchorCount != second.AnchorCount {
		t.Fatalf("repeated analysis diverged: %#v vs %#v", first, second)
	}
}

func TestClassifyTotality(t *testing.T) {
	th := anchors.DefaultThresholds()
	cases := []struct {
		name     string
		count    int
		avg      float64
		span     float64
		expected anchors.Decision
	}{
		{"empty", 0, 0, 0, anchors.DecisionUnknown},
		{"too_few", 2, 0.1, 0.1, anchors.DecisionUnknown},
		{"synced", 25, 0.3, 1.2, anchors.DecisionSynced},
		{"synced_negative_offset", 25, -0.9, 1.9, anchors.DecisionSynced},
		{"drift_too_wide", 25, 0.3, 4.0, anchors.DecisionBad},
		{"offset_too_large", 25, 5.1, 1.0, anchors.DecisionBad},
		{"offset_too_negative", 25, -5.1, 1.0, anchors.DecisionBad},
		{"between", 25, 2.5, 1.5, anchors.DecisionNeedsAdjustment},
		{"span_between", 25, 0.2, 3.0, anchors.DecisionNeedsAdjustment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := th.Classify(tc.count, tc.avg, tc.span)
			if got != tc.expected {
				t.Fatalf("Classify(%d, %f, %f) = %s, expected %s", tc.count, tc.avg, tc.span, got, tc.expected)
			}
		})
	}
}

func TestParseDecision(t *testing.T) {
	if d, ok := anchors.ParseDecision(" Synced "); !ok || d != anchors.DecisionSynced {
		t.Fatalf("expected synced, got %q ok=%v", d, ok)
	}
	if _, ok := anchors.ParseDecision("perfect"); ok {
		t.Fatal("expected unknown decision string to be rejected")
	}
	if _, ok := anchors.ParseDecision(""); ok {
		t.Fatal("expected empty string to be rejected")
	}
}
