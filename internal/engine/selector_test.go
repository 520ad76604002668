package engine

import (
	"encoding/json"
	"testing"

	"prio/internal/errors"
)

func intPtr(v int) *int { return &v }

func mustPrioritize(t *testing.T, req Request) *Response {
	t.Helper()
	resp, err := Prioritize(req)
	if err != nil {
		t.Fatalf("Prioritize() error = %v", err)
	}
	return resp
}

func selectedIDs(resp *Response) []string {
	var ids []string
	for _, e := range resp.Plan {
		if e.Selected {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func findEntry(t *testing.T, resp *Response, id string) PlanEntry {
	t.Helper()
	for _, e := range resp.Plan {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("entry %q not found in plan", id)
	return PlanEntry{}
}

// Scenario A: greedy-by-density picks the cheap item first, the exchange
// pass corrects to the single higher-value item that fills the budget.
func TestExchangePrefersHigherValueItem(t *testing.T) {
	resp := mustPrioritize(t, Request{
		Items: []Item{
			{ID: "a", Risk: 0.9, Effort: 100},
			{ID: "b", Risk: 0.5, Effort: 50},
		},
		Budget:  100,
		Weights: &Weights{Risk: 1, Crit: 0},
	})

	ids := selectedIDs(resp)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("selected = %v, want [a]", ids)
	}
	if resp.Summary.EffortSelected != 100 {
		t.Errorf("effort_selected = %v, want 100", resp.Summary.EffortSelected)
	}

	a := findEntry(t, resp, "a")
	if a.Rank != 1 || a.SelectionReason != ReasonSelected {
		t.Errorf("entry a = rank %d reason %q, want rank 1 reason selected", a.Rank, a.SelectionReason)
	}
	b := findEntry(t, resp, "b")
	if b.Selected || b.SelectionReason != ReasonBudgetExceeded {
		t.Errorf("entry b = selected %v reason %q, want skipped budget_exceeded", b.Selected, b.SelectionReason)
	}
}

// Scenario B: empty input is valid and yields an empty plan, not an error.
func TestEmptyItems(t *testing.T) {
	resp := mustPrioritize(t, Request{Items: nil, Budget: 1000})

	want := PlanSummary{Budget: 1000}
	if resp.Summary != want {
		t.Errorf("summary = %+v, want %+v", resp.Summary, want)
	}
	if len(resp.Plan) != 0 {
		t.Errorf("plan length = %d, want 0", len(resp.Plan))
	}
	// The plan must serialize as [], not null.
	data, err := json.Marshal(resp.Plan)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("plan serializes as %s, want []", data)
	}
}

// Scenario C: zero budget leaves everything unselected with an explicit
// reason.
func TestZeroBudget(t *testing.T) {
	resp := mustPrioritize(t, Request{
		Items:  []Item{{ID: "a", Risk: 0.5, Effort: 10}},
		Budget: 0,
	})

	a := findEntry(t, resp, "a")
	if a.Selected {
		t.Error("nothing should be selected with budget 0")
	}
	if a.SelectionReason != ReasonBudgetExceeded {
		t.Errorf("reason = %q, want budget_exceeded", a.SelectionReason)
	}
	if resp.Summary.EffortSelected != 0 || resp.Summary.ItemsSelected != 0 {
		t.Errorf("summary = %+v, want zero selection", resp.Summary)
	}
}

// Scenario D: a mandatory item that alone exceeds the budget is still
// selected, flagged, and visible in the summary overflow.
func TestMandatoryOverBudget(t *testing.T) {
	resp := mustPrioritize(t, Request{
		Items:  []Item{{ID: "x", Risk: 0.8, Effort: 500}},
		Budget: 100,
		SprintContext: &SprintContext{
			MandatoryIDs: []string{"x"},
		},
	})

	x := findEntry(t, resp, "x")
	if !x.Selected {
		t.Fatal("mandatory item must be selected")
	}
	if x.SelectionReason != ReasonMandatoryOverBudget {
		t.Errorf("reason = %q, want mandatory_over_budget", x.SelectionReason)
	}
	if resp.Summary.EffortSelected != 500 {
		t.Errorf("effort_selected = %v, want 500 (documented invariant exception)", resp.Summary.EffortSelected)
	}
}

func TestMandatoryWithinBudget(t *testing.T) {
	resp := mustPrioritize(t, Request{
		Items: []Item{
			{ID: "m", Risk: 0.1, Effort: 30},
			{ID: "a", Risk: 0.9, Effort: 30},
			{ID: "b", Risk: 0.8, Effort: 30},
		},
		Budget: 60,
		SprintContext: &SprintContext{
			MandatoryIDs: []string{"m"},
		},
	})

	m := findEntry(t, resp, "m")
	if !m.Selected || m.SelectionReason != ReasonMandatory {
		t.Errorf("mandatory entry = selected %v reason %q, want selected mandatory", m.Selected, m.SelectionReason)
	}

	// The mandatory item consumes budget ahead of higher-scored free items.
	ids := selectedIDs(resp)
	if len(ids) != 2 {
		t.Fatalf("selected = %v, want two items", ids)
	}
	if resp.Summary.EffortSelected != 60 {
		t.Errorf("effort_selected = %v, want 60", resp.Summary.EffortSelected)
	}
}

func TestExclusionEnforcement(t *testing.T) {
	resp := mustPrioritize(t, Request{
		Items: []Item{
			{ID: "a", Risk: 0.9, Effort: 10},
			{ID: "b", Risk: 0.8, Effort: 10},
		},
		Budget: 100,
		SprintContext: &SprintContext{
			ExcludedIDs: []string{"a"},
		},
	})

	a := findEntry(t, resp, "a")
	if a.Selected {
		t.Error("excluded item must never be selected")
	}
	if a.SelectionReason != ReasonExcluded {
		t.Errorf("reason = %q, want excluded", a.SelectionReason)
	}
	// Excluded items rank last.
	if a.Rank != len(resp.Plan) {
		t.Errorf("excluded rank = %d, want %d", a.Rank, len(resp.Plan))
	}
}

func TestMaxItemsEnforcement(t *testing.T) {
	resp := mustPrioritize(t, Request{
		Items: []Item{
			{ID: "a", Risk: 0.9, Effort: 10},
			{ID: "b", Risk: 0.8, Effort: 10},
			{ID: "c", Risk: 0.7, Effort: 10},
		},
		Budget: 100,
		SprintContext: &SprintContext{
			MaxItems: intPtr(2),
		},
	})

	if resp.Summary.ItemsSelected != 2 {
		t.Fatalf("items_selected = %d, want 2", resp.Summary.ItemsSelected)
	}
	c := findEntry(t, resp, "c")
	if c.Selected || c.SelectionReason != ReasonMaxItemsReached {
		t.Errorf("entry c = selected %v reason %q, want skipped max_items_reached", c.Selected, c.SelectionReason)
	}
}

func TestCapacityOverridesBudget(t *testing.T) {
	capacity := 10.0
	resp := mustPrioritize(t, Request{
		Items: []Item{
			{ID: "a", Risk: 0.9, Effort: 10},
			{ID: "b", Risk: 0.8, Effort: 10},
		},
		Budget: 100,
		SprintContext: &SprintContext{
			Capacity: &capacity,
		},
	})

	if resp.Summary.Budget != 10 {
		t.Errorf("summary budget = %v, want sprint capacity 10", resp.Summary.Budget)
	}
	if resp.Summary.ItemsSelected != 1 {
		t.Errorf("items_selected = %d, want 1", resp.Summary.ItemsSelected)
	}
}

func TestTotality(t *testing.T) {
	items := []Item{
		{ID: "a", Risk: 0.9, Effort: 30},
		{ID: "b", Risk: 0.5, Effort: 200},
		{ID: "c", Risk: 0.2, Effort: 5},
		{ID: "d", Risk: 0.7, Effort: 60},
		{ID: "e", Risk: 0.1, Effort: 9},
	}
	resp := mustPrioritize(t, Request{
		Items:  items,
		Budget: 70,
		SprintContext: &SprintContext{
			ExcludedIDs:  []string{"e"},
			MandatoryIDs: []string{"c"},
		},
	})

	if len(resp.Plan) != len(items) {
		t.Fatalf("plan length = %d, want %d", len(resp.Plan), len(items))
	}

	seen := make(map[string]bool)
	for i, e := range resp.Plan {
		if e.Rank != i+1 {
			t.Errorf("rank at position %d = %d, want dense 1-based ranks", i, e.Rank)
		}
		if seen[e.ID] {
			t.Errorf("id %q appears more than once", e.ID)
		}
		seen[e.ID] = true
	}
	for _, it := range items {
		if !seen[it.ID] {
			t.Errorf("input id %q missing from plan", it.ID)
		}
	}
}

func TestBudgetInvariant(t *testing.T) {
	// No mandatory overflow involved, so effort_selected <= budget must hold.
	items := []Item{
		{ID: "a", Risk: 0.9, Effort: 33},
		{ID: "b", Risk: 0.6, Effort: 21},
		{ID: "c", Risk: 0.4, Effort: 55},
		{ID: "d", Risk: 0.8, Effort: 13},
		{ID: "e", Risk: 0.3, Effort: 8},
		{ID: "f", Risk: 0.7, Effort: 89},
	}

	for _, budget := range []float64{0, 10, 25, 50, 75, 120, 300} {
		resp := mustPrioritize(t, Request{Items: items, Budget: budget})
		if resp.Summary.EffortSelected > budget {
			t.Errorf("budget %v: effort_selected %v exceeds budget", budget, resp.Summary.EffortSelected)
		}
	}
}

func TestBudgetMonotonicity(t *testing.T) {
	// Uniform efforts so greedy admission grows strictly with budget.
	items := []Item{
		{ID: "a", Risk: 0.9, Effort: 10},
		{ID: "b", Risk: 0.1, Effort: 10},
		{ID: "c", Risk: 0.5, Effort: 10},
		{ID: "d", Risk: 0.7, Effort: 10},
		{ID: "e", Risk: 0.3, Effort: 10},
	}

	prevSelected := -1
	prevEffort := -1.0
	for _, budget := range []float64{0, 10, 20, 30, 40, 50, 60} {
		resp := mustPrioritize(t, Request{Items: items, Budget: budget})
		if resp.Summary.ItemsSelected < prevSelected {
			t.Errorf("budget %v: items_selected decreased (%d -> %d)", budget, prevSelected, resp.Summary.ItemsSelected)
		}
		if resp.Summary.EffortSelected < prevEffort {
			t.Errorf("budget %v: effort_selected decreased (%v -> %v)", budget, prevEffort, resp.Summary.EffortSelected)
		}
		prevSelected = resp.Summary.ItemsSelected
		prevEffort = resp.Summary.EffortSelected
	}
}

func TestDeterminism(t *testing.T) {
	req := Request{
		Items: []Item{
			{ID: "k", Risk: 0.5, Effort: 10, Module: "core"},
			{ID: "a", Risk: 0.5, Effort: 10, Module: "api"},
			{ID: "z", Risk: 0.5, Effort: 10},
			{ID: "m", Risk: 0.7, Effort: 25, CoverageGap: floatPtr(0.4)},
			{ID: "b", Risk: 0.2, Effort: 8, RiskConfidence: floatPtr(0.9)},
		},
		Budget: 40,
		SprintContext: &SprintContext{
			MandatoryIDs: []string{"z"},
			ExcludedIDs:  []string{"b"},
		},
	}

	first, err := Prioritize(req)
	if err != nil {
		t.Fatal(err)
	}
	firstJSON, _ := json.Marshal(first)

	for i := 0; i < 10; i++ {
		next, err := Prioritize(req)
		if err != nil {
			t.Fatal(err)
		}
		nextJSON, _ := json.Marshal(next)
		if string(firstJSON) != string(nextJSON) {
			t.Fatalf("run %d produced a different plan:\n%s\nvs\n%s", i, firstJSON, nextJSON)
		}
	}
}

func TestTieBreakByID(t *testing.T) {
	// Identical score and effort: rank order must fall back to id ascending.
	resp := mustPrioritize(t, Request{
		Items: []Item{
			{ID: "c", Risk: 0.5, Effort: 10},
			{ID: "a", Risk: 0.5, Effort: 10},
			{ID: "b", Risk: 0.5, Effort: 10},
		},
		Budget: 30,
	})

	for i, want := range []string{"a", "b", "c"} {
		if resp.Plan[i].ID != want {
			t.Errorf("rank %d = %q, want %q", i+1, resp.Plan[i].ID, want)
		}
	}
}

func TestNegativeWeightRejected(t *testing.T) {
	_, err := Prioritize(Request{
		Items:   []Item{{ID: "a", Risk: 0.5, Effort: 1}},
		Budget:  10,
		Weights: &Weights{Risk: -1},
	})
	if err == nil {
		t.Fatal("expected a validation error for negative weight")
	}
	if !errors.IsValidation(err) {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestInvalidItemFailsAtomically(t *testing.T) {
	_, err := Prioritize(Request{
		Items: []Item{
			{ID: "a", Risk: 0.5, Effort: 1},
			{ID: "b", Risk: 0.5, Effort: -1},
		},
		Budget: 10,
	})
	if err == nil {
		t.Fatal("expected a validation error for non-positive effort")
	}
	if !errors.IsValidation(err) {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestSelectedRankAheadOfSkipped(t *testing.T) {
	resp := mustPrioritize(t, Request{
		Items: []Item{
			{ID: "cheap-low", Risk: 0.2, Effort: 5},
			{ID: "big-high", Risk: 0.9, Effort: 80},
			{ID: "mid", Risk: 0.6, Effort: 30},
		},
		Budget: 40,
	})

	lastSelected := 0
	firstSkipped := len(resp.Plan) + 1
	for _, e := range resp.Plan {
		if e.Selected && e.Rank > lastSelected {
			lastSelected = e.Rank
		}
		if !e.Selected && e.Rank < firstSkipped {
			firstSkipped = e.Rank
		}
	}
	if lastSelected > firstSkipped {
		t.Errorf("selected ranks (last %d) must precede skipped ranks (first %d)", lastSelected, firstSkipped)
	}
}
