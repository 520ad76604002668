package engine

// The scoring model turns each item's raw signals into a single comparable
// priority score:
//
//	base             = risk*w_risk + (criticite-1.0)*w_crit
//	confidence       = 0.5 + 0.5*risk_confidence        // maps [0,1] -> [0.5,1.0]
//	coverage_bonus   = coverage_gap * w_coverage
//	effort_penalty   = w_effort * effort/max_effort_in_batch
//	priority_score   = base*confidence + coverage_bonus - effort_penalty
//
// Risk and criticality drive value; confidence down-weights uncertain
// predictions without zeroing them; the coverage gap is an independent bonus
// so under-tested code surfaces even at moderate risk; effort is a bounded
// penalty so it cannot dominate the ranking when w_effort is near zero.
//
// Items carry no recency signal in this version, so w_recency is accepted
// for policy compatibility but contributes nothing.

// MaxEffort returns the largest effort in the batch, used to normalize the
// effort penalty. Never below 1 so the penalty stays bounded.
func MaxEffort(items []Item) float64 {
	max := 1.0
	for _, it := range items {
		if it.Effort > max {
			max = it.Effort
		}
	}
	return max
}

// Score computes the priority score of a single item. Risk values outside
// [0,1] are clamped; optional signals fall back to neutral defaults.
// maxEffort must come from MaxEffort over the current batch.
func Score(it Item, w Weights, maxEffort float64) float64 {
	risk := clamp01(it.Risk)
	base := risk*w.Risk + (it.Criticality()-1.0)*w.Crit
	confidence := 0.5 + 0.5*it.Confidence()
	coverageBonus := it.Coverage() * w.Coverage
	effortPenalty := w.Effort * it.Effort / maxEffort
	return base*confidence + coverageBonus - effortPenalty
}

// Density is the greedy admission key: priority score per unit of effort.
// Effort is validated > 0 before scoring, so the division is safe.
func Density(score, effort float64) float64 {
	return score / effort
}
