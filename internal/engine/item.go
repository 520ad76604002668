// Package engine implements the effort-aware prioritization core: scoring,
// constraint handling, budgeted selection, and heuristic comparison. The
// engine is pure and stateless; every call derives its outputs from the
// request alone and holds nothing between calls.
package engine

// Neutral defaults applied when optional item signals are absent.
const (
	defaultCriticite      = 1.0
	defaultCoverageGap    = 0.0
	defaultRiskConfidence = 0.5
)

// Item is a unit of prospective test or remediation work. Items are
// immutable inputs; the engine never mutates them.
type Item struct {
	ID             string   `json:"id"`
	Risk           float64  `json:"risk"`
	Effort         float64  `json:"effort"`
	Criticite      *float64 `json:"criticite,omitempty"`
	CoverageGap    *float64 `json:"coverage_gap,omitempty"`
	RiskConfidence *float64 `json:"risk_confidence,omitempty"`
	Module         string   `json:"module,omitempty"`
	Deps           []string `json:"deps,omitempty"`
}

// Criticality returns the business-importance multiplier, defaulting to 1.0.
func (it Item) Criticality() float64 {
	if it.Criticite == nil {
		return defaultCriticite
	}
	return *it.Criticite
}

// Coverage returns the coverage gap, defaulting to 0.0.
func (it Item) Coverage() float64 {
	if it.CoverageGap == nil {
		return defaultCoverageGap
	}
	return clamp01(*it.CoverageGap)
}

// Confidence returns the risk-prediction confidence, defaulting to 0.5.
func (it Item) Confidence() float64 {
	if it.RiskConfidence == nil {
		return defaultRiskConfidence
	}
	return clamp01(*it.RiskConfidence)
}

// Weights configures the scoring model. Risk and Crit are the primary
// criteria; Effort, Coverage, and Recency are optional policy-supplied
// multipliers that default to neutral.
type Weights struct {
	Risk     float64 `json:"risk"`
	Crit     float64 `json:"crit"`
	Effort   float64 `json:"effort,omitempty"`
	Coverage float64 `json:"coverage,omitempty"`
	Recency  float64 `json:"recency,omitempty"`
}

// DefaultWeights returns the effort-aware default preset.
func DefaultWeights() Weights {
	return Weights{Risk: 1.0, Crit: 0.5, Coverage: 0.2}
}

// SprintContext carries optional selection constraints. Capacity, when
// present, overrides the request budget; TimeRemaining is informational.
type SprintContext struct {
	Capacity      *float64 `json:"capacity,omitempty"`
	TimeRemaining *float64 `json:"time_remaining,omitempty"`
	MaxItems      *int     `json:"max_items,omitempty"`
	MandatoryIDs  []string `json:"mandatory_ids,omitempty"`
	ExcludedIDs   []string `json:"excluded_ids,omitempty"`
}

// Request is the input of a prioritization run.
type Request struct {
	RepoID        *int64         `json:"repo_id,omitempty"`
	Items         []Item         `json:"items"`
	Budget        float64        `json:"budget"`
	Weights       *Weights       `json:"weights,omitempty"`
	SprintContext *SprintContext `json:"sprint_context,omitempty"`
}

// EffectiveBudget resolves the budget for a request: sprint capacity, when
// supplied and positive, overrides the request budget.
func (r Request) EffectiveBudget() float64 {
	if r.SprintContext != nil && r.SprintContext.Capacity != nil && *r.SprintContext.Capacity > 0 {
		return *r.SprintContext.Capacity
	}
	return r.Budget
}

// Reason explains why a plan entry was selected or skipped.
type Reason string

const (
	// ReasonSelected marks a free item admitted by the selector
	ReasonSelected Reason = "selected"
	// ReasonMandatory marks a mandatory item admitted within budget
	ReasonMandatory Reason = "mandatory"
	// ReasonMandatoryOverBudget marks a mandatory item force-included past the budget
	ReasonMandatoryOverBudget Reason = "mandatory_over_budget"
	// ReasonBudgetExceeded marks an item skipped because it did not fit the budget
	ReasonBudgetExceeded Reason = "budget_exceeded"
	// ReasonMaxItemsReached marks an item skipped by the max-items cap
	ReasonMaxItemsReached Reason = "max_items_reached"
	// ReasonExcluded marks an item barred by excluded_ids
	ReasonExcluded Reason = "excluded"
)

// PlanEntry is one row of the ranked plan. The plan is a total ordering of
// all input items, selected or not.
type PlanEntry struct {
	Rank            int     `json:"rank"`
	ID              string  `json:"id"`
	Module          string  `json:"module,omitempty"`
	Selected        bool    `json:"selected"`
	Risk            float64 `json:"risk"`
	Effort          float64 `json:"effort"`
	Criticite       float64 `json:"criticite"`
	PriorityScore   float64 `json:"priority_score"`
	SelectionReason Reason  `json:"selection_reason"`
}

// PlanSummary aggregates a plan. EffortSelected may exceed Budget only when
// a mandatory item alone does not fit; that overflow is surfaced via the
// mandatory_over_budget reason, never silently.
type PlanSummary struct {
	Budget         float64 `json:"budget"`
	EffortSelected float64 `json:"effort_selected"`
	ItemsSelected  int     `json:"items_selected"`
	ItemsTotal     int     `json:"items_total"`
}

// Response is the output of a prioritization run.
type Response struct {
	Summary PlanSummary `json:"summary"`
	Plan    []PlanEntry `json:"plan"`
}

// HeuristicResult reports how one selection strategy performed on a given
// item set and budget.
type HeuristicResult struct {
	Heuristic        string  `json:"heuristic"`
	ItemsSelected    int     `json:"items_selected"`
	EffortUsed       float64 `json:"effort_used"`
	TotalRiskCovered float64 `json:"total_risk_covered"`
	Efficiency       float64 `json:"efficiency"`
}

// CompareResult is the output of a heuristic comparison.
type CompareResult struct {
	Budget      float64           `json:"budget"`
	ItemsTotal  int               `json:"items_total"`
	Seed        int64             `json:"seed"`
	Comparisons []HeuristicResult `json:"comparisons"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
