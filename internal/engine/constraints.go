package engine

import (
	"fmt"
	"math"

	"prio/internal/errors"
)

// ValidateWeights rejects negative or non-finite weights before any scoring
// happens. A nil Weights is valid; callers substitute DefaultWeights.
func ValidateWeights(w Weights) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"risk", w.Risk},
		{"crit", w.Crit},
		{"effort", w.Effort},
		{"coverage", w.Coverage},
		{"recency", w.Recency},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return errors.Validation("weights."+c.name, "weight must be a finite number")
		}
		if c.value < 0 {
			return errors.Validation("weights."+c.name, "weight must be >= 0, got %v", c.value)
		}
	}
	return nil
}

// ValidateItems rejects malformed items: empty or duplicate ids, non-positive
// or non-finite effort, and non-finite or negative criticality. Risk outside
// [0,1] is clamped at scoring time rather than rejected, so slightly
// out-of-range classifier outputs remain usable; NaN risk is a caller bug and
// fails here. The whole request fails atomically on the first bad item.
func ValidateItems(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		if it.ID == "" {
			return errors.Validation(field("id"), "item id must not be empty")
		}
		if _, dup := seen[it.ID]; dup {
			return errors.Validation(field("id"), "duplicate item id %q", it.ID)
		}
		seen[it.ID] = struct{}{}

		if math.IsNaN(it.Risk) || math.IsInf(it.Risk, 0) {
			return errors.Validation(field("risk"), "risk must be a finite number")
		}
		if math.IsNaN(it.Effort) || math.IsInf(it.Effort, 0) || it.Effort <= 0 {
			return errors.Validation(field("effort"), "effort must be > 0, got %v", it.Effort)
		}
		if it.Criticite != nil {
			c := *it.Criticite
			if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
				return errors.Validation(field("criticite"), "criticite must be a finite number >= 0, got %v", c)
			}
		}
		if it.CoverageGap != nil {
			g := *it.CoverageGap
			if math.IsNaN(g) || math.IsInf(g, 0) {
				return errors.Validation(field("coverage_gap"), "coverage_gap must be a finite number")
			}
		}
		if it.RiskConfidence != nil {
			c := *it.RiskConfidence
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return errors.Validation(field("risk_confidence"), "risk_confidence must be a finite number")
			}
		}
	}
	return nil
}

// partition splits items into excluded, mandatory, and free sets according
// to the sprint context. Exclusion wins when an id appears in both lists;
// ids that match no item are ignored.
func partition(items []Item, sc *SprintContext) (excluded, mandatory, free []Item) {
	var mandatorySet, excludedSet map[string]struct{}
	if sc != nil {
		excludedSet = idSet(sc.ExcludedIDs)
		mandatorySet = idSet(sc.MandatoryIDs)
	}

	for _, it := range items {
		if _, ok := excludedSet[it.ID]; ok {
			excluded = append(excluded, it)
			continue
		}
		if _, ok := mandatorySet[it.ID]; ok {
			mandatory = append(mandatory, it)
			continue
		}
		free = append(free, it)
	}
	return excluded, mandatory, free
}

// maxItemsCap returns the selected-count cap and whether one is set.
// A cap of zero is honored: it means nothing may be selected.
func maxItemsCap(sc *SprintContext) (int, bool) {
	if sc == nil || sc.MaxItems == nil || *sc.MaxItems < 0 {
		return 0, false
	}
	return *sc.MaxItems, true
}

func idSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
