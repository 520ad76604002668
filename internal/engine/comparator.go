package engine

import (
	"math/rand"
	"sync"
)

// Strategy names, in the fixed order results are reported.
const (
	HeuristicEffortAware  = "effort_aware"
	HeuristicRiskOnly     = "risk_only"
	HeuristicCoverageOnly = "coverage_only"
	HeuristicRandom       = "random"
)

// DefaultSeed seeds the random baseline when the caller does not supply one,
// keeping comparison tables reproducible across runs.
const DefaultSeed int64 = 42

// CompareHeuristics runs the selector under the real weights and under
// degenerate single-criterion configurations, plus a seeded random baseline,
// over the same items and budget. The four runs are independent and execute
// concurrently; results are merged in a fixed order once all complete.
func CompareHeuristics(req Request, seed int64) (*CompareResult, error) {
	weights := DefaultWeights()
	if req.Weights != nil {
		weights = *req.Weights
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if err := ValidateItems(req.Items); err != nil {
		return nil, err
	}

	budget := req.EffectiveBudget()
	items := req.Items

	runs := []struct {
		name string
		fn   func() HeuristicResult
	}{
		{HeuristicEffortAware, func() HeuristicResult {
			return runSelector(items, budget, weights)
		}},
		{HeuristicRiskOnly, func() HeuristicResult {
			// Confidence is neutralized so the ordering degenerates to pure
			// risk-per-effort density.
			return runSelector(fullConfidence(items), budget, Weights{Risk: 1})
		}},
		{HeuristicCoverageOnly, func() HeuristicResult {
			return runSelector(items, budget, Weights{Coverage: 1})
		}},
		{HeuristicRandom, func() HeuristicResult {
			return runRandom(items, budget, seed)
		}},
	}

	comparisons := make([]HeuristicResult, len(runs))
	var wg sync.WaitGroup
	for i, run := range runs {
		wg.Add(1)
		go func(slot int, name string, fn func() HeuristicResult) {
			defer wg.Done()
			result := fn()
			result.Heuristic = name
			comparisons[slot] = result
		}(i, run.name, run.fn)
	}
	wg.Wait()

	return &CompareResult{
		Budget:      budget,
		ItemsTotal:  len(items),
		Seed:        seed,
		Comparisons: comparisons,
	}, nil
}

// runSelector executes the selector with the given weights and tallies the
// selected entries. Inputs were validated by the caller, so a selector error
// here cannot happen; an empty result is returned defensively anyway.
func runSelector(items []Item, budget float64, w Weights) HeuristicResult {
	resp, err := Prioritize(Request{Items: items, Budget: budget, Weights: &w})
	if err != nil {
		return HeuristicResult{}
	}

	var result HeuristicResult
	for _, entry := range resp.Plan {
		if !entry.Selected {
			continue
		}
		result.ItemsSelected++
		result.EffortUsed += entry.Effort
		result.TotalRiskCovered += entry.Risk
	}
	result.Efficiency = efficiency(result.TotalRiskCovered, result.EffortUsed)
	return result
}

// runRandom shuffles the items with a seeded generator and greedily admits
// them in that order until the budget is exhausted. No scoring is involved.
func runRandom(items []Item, budget float64, seed int64) HeuristicResult {
	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(len(items))

	var result HeuristicResult
	var effortUsed float64
	for _, idx := range order {
		it := items[idx]
		if effortUsed+it.Effort > budget {
			continue
		}
		effortUsed += it.Effort
		result.ItemsSelected++
		result.TotalRiskCovered += it.Risk
	}
	result.EffortUsed = effortUsed
	result.Efficiency = efficiency(result.TotalRiskCovered, effortUsed)
	return result
}

// fullConfidence returns a copy of items with risk confidence pinned to 1.0.
func fullConfidence(items []Item) []Item {
	one := 1.0
	copied := make([]Item, len(items))
	for i, it := range items {
		it.RiskConfidence = &one
		copied[i] = it
	}
	return copied
}

func efficiency(riskCovered, effortUsed float64) float64 {
	if effortUsed == 0 {
		return 0
	}
	return riskCovered / effortUsed
}
