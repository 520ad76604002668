package engine

import "sort"

// scoredItem pairs an item with its computed priority score for the
// duration of one prioritization call.
type scoredItem struct {
	item     Item
	score    float64
	selected bool
	reason   Reason
}

// Prioritize runs the full selection pipeline: validate, score, apply the
// mandatory/exclusion pre-pass, greedy density admission, exchange
// correction, and final ranking. Identical inputs always produce an
// identical plan; every tie-break falls back to the lexicographic item id.
func Prioritize(req Request) (*Response, error) {
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

	if len(req.Items) == 0 {
		return &Response{
			Summary: PlanSummary{Budget: budget},
			Plan:    []PlanEntry{},
		}, nil
	}

	excluded, mandatory, free := partition(req.Items, req.SprintContext)
	maxItems, capSet := maxItemsCap(req.SprintContext)
	maxEffort := MaxEffort(req.Items)

	score := func(it Item) float64 { return Score(it, weights, maxEffort) }

	// Mandatory pre-pass: always selected, ordered by score. Items that no
	// longer fit the remaining budget are force-included but flagged, so a
	// budget overflow is visible, never silent. Mandatory items bypass the
	// max-items cap but count toward it.
	mandatoryScored := scoreAll(mandatory, score)
	sortByScore(mandatoryScored)

	var effortSelected float64
	itemsSelected := 0
	for i := range mandatoryScored {
		m := &mandatoryScored[i]
		m.selected = true
		if effortSelected+m.item.Effort <= budget {
			m.reason = ReasonMandatory
		} else {
			m.reason = ReasonMandatoryOverBudget
		}
		effortSelected += m.item.Effort
		itemsSelected++
	}

	// Greedy walk over free items in value-density order.
	freeScored := scoreAll(free, score)
	sortByDensity(freeScored)

	for i := range freeScored {
		f := &freeScored[i]
		if capSet && itemsSelected >= maxItems {
			f.reason = ReasonMaxItemsReached
			continue
		}
		if effortSelected+f.item.Effort > budget {
			f.reason = ReasonBudgetExceeded
			continue
		}
		f.selected = true
		f.reason = ReasonSelected
		effortSelected += f.item.Effort
		itemsSelected++
	}

	// Exchange correction: a very cheap, mediocre item admitted early can
	// block a costlier but substantially higher-value one. Swap the
	// lowest-score selected free item for a higher-score unselected one
	// whenever the result still fits the budget. Each swap strictly
	// increases total selected score; the iteration cap guarantees
	// termination regardless.
	exchangePass(freeScored, budget, effortSelected)

	for _, e := range excluded {
		freeScored = append(freeScored, scoredItem{item: e, reason: ReasonExcluded})
	}

	plan := assemblePlan(mandatoryScored, freeScored)

	itemsSelected = 0
	effortSelected = 0
	for _, entry := range plan {
		if entry.Selected {
			itemsSelected++
			effortSelected += entry.Effort
		}
	}

	return &Response{
		Summary: PlanSummary{
			Budget:         budget,
			EffortSelected: effortSelected,
			ItemsSelected:  itemsSelected,
			ItemsTotal:     len(req.Items),
		},
		Plan: plan,
	}, nil
}

// exchangePass performs the one-pass local exchange correction over free
// items and returns the updated selected effort. Mandatory items are never
// swapped out and excluded items are not present in the slice.
func exchangePass(free []scoredItem, budget, effortSelected float64) float64 {
	for iter := 0; iter < len(free); iter++ {
		out := -1 // lowest-score selected
		for i := range free {
			if !free[i].selected {
				continue
			}
			if out == -1 || lessByScoreAsc(free[i], free[out]) {
				out = i
			}
		}
		if out == -1 {
			return effortSelected
		}

		// Best unselected candidate that beats the weakest selected item
		// and keeps the selection within budget after the swap. Swaps are
		// one-for-one, so a max-items cap stays satisfied.
		in := -1
		for i := range free {
			if free[i].selected {
				continue
			}
			if free[i].score <= free[out].score {
				continue
			}
			if effortSelected-free[out].item.Effort+free[i].item.Effort > budget {
				continue
			}
			if in == -1 || lessByScoreDesc(free[i], free[in]) {
				in = i
			}
		}
		if in == -1 {
			return effortSelected
		}

		effortSelected += free[in].item.Effort - free[out].item.Effort
		free[out].selected = false
		free[out].reason = ReasonBudgetExceeded
		free[in].selected = true
		free[in].reason = ReasonSelected
	}
	return effortSelected
}

// assemblePlan produces the total ordering: selected items by score
// descending, then unselected non-excluded items by score descending, then
// excluded items last. Ranks are dense and 1-based.
func assemblePlan(mandatory, free []scoredItem) []PlanEntry {
	var selected, skipped, excluded []scoredItem
	for _, s := range append(append([]scoredItem{}, mandatory...), free...) {
		switch {
		case s.selected:
			selected = append(selected, s)
		case s.reason == ReasonExcluded:
			excluded = append(excluded, s)
		default:
			skipped = append(skipped, s)
		}
	}

	sortByScore(selected)
	sortByScore(skipped)
	sort.Slice(excluded, func(i, j int) bool {
		return excluded[i].item.ID < excluded[j].item.ID
	})

	plan := make([]PlanEntry, 0, len(selected)+len(skipped)+len(excluded))
	rank := 1
	for _, group := range [][]scoredItem{selected, skipped, excluded} {
		for _, s := range group {
			plan = append(plan, PlanEntry{
				Rank:            rank,
				ID:              s.item.ID,
				Module:          s.item.Module,
				Selected:        s.selected,
				Risk:            s.item.Risk,
				Effort:          s.item.Effort,
				Criticite:       s.item.Criticality(),
				PriorityScore:   s.score,
				SelectionReason: s.reason,
			})
			rank++
		}
	}
	return plan
}

func scoreAll(items []Item, score func(Item) float64) []scoredItem {
	scored := make([]scoredItem, len(items))
	for i, it := range items {
		scored[i] = scoredItem{item: it, score: score(it)}
	}
	return scored
}

// sortByScore orders by priority score descending, ties by id ascending.
func sortByScore(items []scoredItem) {
	sort.Slice(items, func(i, j int) bool {
		return lessByScoreDesc(items[i], items[j])
	})
}

// sortByDensity orders by value density descending, ties by score
// descending, then id ascending for full determinism.
func sortByDensity(items []scoredItem) {
	sort.Slice(items, func(i, j int) bool {
		di := Density(items[i].score, items[i].item.Effort)
		dj := Density(items[j].score, items[j].item.Effort)
		if di != dj {
			return di > dj
		}
		return lessByScoreDesc(items[i], items[j])
	})
}

func lessByScoreDesc(a, b scoredItem) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.item.ID < b.item.ID
}

// lessByScoreAsc picks the weaker of two items for swap-out: lower score
// first, ties by id ascending.
func lessByScoreAsc(a, b scoredItem) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.item.ID < b.item.ID
}
