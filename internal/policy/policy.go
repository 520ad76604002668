// Package policy defines named weight presets for the scoring model. A
// policy bundles criterion weights and a default budget; the API and CLI
// resolve a policy name into concrete engine weights.
package policy

import (
	"prio/internal/engine"
	"prio/internal/errors"
)

// Policy is a named, persisted weight preset.
type Policy struct {
	ID            int64          `json:"id,omitempty"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Weights       engine.Weights `json:"weights"`
	DefaultBudget float64        `json:"default_budget"`
	IsDefault     bool           `json:"is_default"`
	IsActive      bool           `json:"is_active"`
}

// Validate checks a policy before it is stored or used.
func (p Policy) Validate() error {
	if p.Name == "" {
		return errors.Validation("policy.name", "policy name must not be empty")
	}
	if err := engine.ValidateWeights(p.Weights); err != nil {
		return err
	}
	if p.DefaultBudget < 0 {
		return errors.Validation("policy.default_budget", "default budget must be >= 0, got %v", p.DefaultBudget)
	}
	return nil
}

// Builtin returns the seed policies installed on first use. The effort-aware
// preset carries the engine's default weights and is the default policy.
func Builtin() []Policy {
	return []Policy{
		{
			Name:          "effort_aware",
			Description:   "Balanced effort-aware prioritization: risk and criticality drive value, coverage gaps earn a bonus.",
			Weights:       engine.DefaultWeights(),
			DefaultBudget: 100,
			IsDefault:     true,
			IsActive:      true,
		},
		{
			Name:          "risk_first",
			Description:   "Pure defect-risk ordering; ignores criticality and coverage.",
			Weights:       engine.Weights{Risk: 1.0},
			DefaultBudget: 100,
			IsActive:      true,
		},
		{
			Name:          "coverage_first",
			Description:   "Surfaces under-tested code regardless of predicted risk.",
			Weights:       engine.Weights{Coverage: 1.0},
			DefaultBudget: 100,
			IsActive:      true,
		},
	}
}

// Default returns the built-in default policy.
func Default() Policy {
	for _, p := range Builtin() {
		if p.IsDefault {
			return p
		}
	}
	// Builtin always carries a default; unreachable.
	return Builtin()[0]
}

// FindByName returns the policy with the given name from a list, or a
// POLICY_NOT_FOUND error.
func FindByName(policies []Policy, name string) (*Policy, error) {
	for i := range policies {
		if policies[i].Name == name {
			return &policies[i], nil
		}
	}
	return nil, errors.New(errors.PolicyNotFound, "no policy named "+name, nil)
}

// Merge overlays declared policies on top of base ones: a declared policy
// replaces a base policy with the same name, others are appended. At most
// one policy stays marked default; a declared default wins.
func Merge(base, overlay []Policy) []Policy {
	merged := make([]Policy, 0, len(base)+len(overlay))
	replaced := make(map[string]int, len(base))
	for _, p := range base {
		replaced[p.Name] = len(merged)
		merged = append(merged, p)
	}

	overlayHasDefault := false
	for _, p := range overlay {
		if p.IsDefault {
			overlayHasDefault = true
		}
		if idx, ok := replaced[p.Name]; ok {
			merged[idx] = p
			continue
		}
		merged = append(merged, p)
	}

	if overlayHasDefault {
		for i := range merged {
			if merged[i].IsDefault && !containsDefault(overlay, merged[i].Name) {
				merged[i].IsDefault = false
			}
		}
	}
	return merged
}

func containsDefault(policies []Policy, name string) bool {
	for _, p := range policies {
		if p.Name == name && p.IsDefault {
			return true
		}
	}
	return false
}
