package engine

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMaxEffort(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  float64
	}{
		{"empty batch floors at one", nil, 1},
		{"all below one floors at one", []Item{{Effort: 0.2}, {Effort: 0.5}}, 1},
		{"picks the largest", []Item{{Effort: 3}, {Effort: 12}, {Effort: 7}}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxEffort(tt.items); got != tt.want {
				t.Errorf("MaxEffort() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreFormula(t *testing.T) {
	weights := Weights{Risk: 1.0, Crit: 0.5, Coverage: 0.2, Effort: 0.1}

	item := Item{
		ID:             "a",
		Risk:           0.8,
		Effort:         10,
		Criticite:      floatPtr(2.0),
		CoverageGap:    floatPtr(0.5),
		RiskConfidence: floatPtr(1.0),
	}

	// base = 0.8*1.0 + (2.0-1.0)*0.5 = 1.3
	// confidence = 0.5 + 0.5*1.0 = 1.0
	// coverage bonus = 0.5*0.2 = 0.1
	// effort penalty = 0.1 * 10/20 = 0.05
	got := Score(item, weights, 20)
	want := 1.3*1.0 + 0.1 - 0.05
	if !almostEqual(got, want) {
		t.Errorf("Score() = %v, want %v", got, want)
	}
}

func TestScoreNeutralDefaults(t *testing.T) {
	weights := Weights{Risk: 1.0, Crit: 0.5, Coverage: 0.2}

	// Missing criticite, coverage_gap, and risk_confidence default to
	// 1.0, 0.0, and 0.5 respectively.
	item := Item{ID: "a", Risk: 0.6, Effort: 5}

	// base = 0.6, confidence = 0.75, no bonus, no penalty.
	got := Score(item, weights, 10)
	if !almostEqual(got, 0.6*0.75) {
		t.Errorf("Score() = %v, want %v", got, 0.6*0.75)
	}
}

func TestScoreClampsRisk(t *testing.T) {
	weights := Weights{Risk: 1.0}

	over := Item{ID: "a", Risk: 1.7, Effort: 1, RiskConfidence: floatPtr(1.0)}
	under := Item{ID: "b", Risk: -0.3, Effort: 1, RiskConfidence: floatPtr(1.0)}

	if got := Score(over, weights, 1); !almostEqual(got, 1.0) {
		t.Errorf("Score(risk>1) = %v, want 1.0", got)
	}
	if got := Score(under, weights, 1); !almostEqual(got, 0.0) {
		t.Errorf("Score(risk<0) = %v, want 0.0", got)
	}
}

func TestConfidenceDownweightsWithoutZeroing(t *testing.T) {
	weights := Weights{Risk: 1.0}

	// A half-confidence high-risk item must still outrank a fully-confident
	// low-risk item.
	uncertainHighRisk := Item{ID: "a", Risk: 0.9, Effort: 1, RiskConfidence: floatPtr(0.5)}
	certainLowRisk := Item{ID: "b", Risk: 0.4, Effort: 1, RiskConfidence: floatPtr(1.0)}

	sa := Score(uncertainHighRisk, weights, 1)
	sb := Score(certainLowRisk, weights, 1)
	if sa <= sb {
		t.Errorf("uncertain high risk (%v) should outrank certain low risk (%v)", sa, sb)
	}
}

func TestCoverageBonusIsIndependent(t *testing.T) {
	weights := Weights{Risk: 1.0, Coverage: 0.5}

	covered := Item{ID: "a", Risk: 0.5, Effort: 1, CoverageGap: floatPtr(0.0)}
	uncovered := Item{ID: "b", Risk: 0.5, Effort: 1, CoverageGap: floatPtr(1.0)}

	diff := Score(uncovered, weights, 1) - Score(covered, weights, 1)
	if !almostEqual(diff, 0.5) {
		t.Errorf("coverage bonus = %v, want 0.5", diff)
	}
}

func TestEffortPenaltyIsNormalized(t *testing.T) {
	weights := Weights{Risk: 1.0, Effort: 1.0}

	small := Item{ID: "a", Risk: 0.5, Effort: 10}
	large := Item{ID: "b", Risk: 0.5, Effort: 1000}

	maxEffort := MaxEffort([]Item{small, large})

	// The penalty is bounded by the weight itself: even the largest item in
	// the batch loses at most w_effort.
	diff := Score(small, weights, maxEffort) - Score(large, weights, maxEffort)
	if diff <= 0 || diff > 1.0 {
		t.Errorf("normalized effort penalty spread = %v, want in (0, 1]", diff)
	}
}
