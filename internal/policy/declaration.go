package policy

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"prio/internal/engine"
)

// PoliciesDeclarationFile is the default name of the operator-declared
// policy overrides file.
const PoliciesDeclarationFile = "POLICIES.toml"

// PolicyDeclaration represents a declared policy in POLICIES.toml
type PolicyDeclaration struct {
	// Name identifies the policy; a declared name matching a built-in
	// policy replaces it
	Name string `toml:"name"`

	// Description is shown in policy listings
	Description string `toml:"description,omitempty"`

	// Weights are the scoring criterion weights
	Weights WeightsDeclaration `toml:"weights"`

	// DefaultBudget is the effort budget applied when a request omits one
	DefaultBudget float64 `toml:"default_budget,omitempty"`

	// Default marks this policy as the preset used when no policy is named
	Default bool `toml:"default,omitempty"`
}

// WeightsDeclaration mirrors engine.Weights with TOML field names.
type WeightsDeclaration struct {
	Risk     float64 `toml:"risk"`
	Crit     float64 `toml:"crit,omitempty"`
	Effort   float64 `toml:"effort,omitempty"`
	Coverage float64 `toml:"coverage,omitempty"`
	Recency  float64 `toml:"recency,omitempty"`
}

// PoliciesFile represents the root structure of POLICIES.toml
type PoliciesFile struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Policies is the list of declared policies
	Policies []PolicyDeclaration `toml:"policy"`
}

// ParsePoliciesFile parses a POLICIES.toml file from the given path
func ParsePoliciesFile(filePath string) (*PoliciesFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", PoliciesDeclarationFile, err)
	}

	var policiesFile PoliciesFile
	if err := toml.Unmarshal(data, &policiesFile); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", PoliciesDeclarationFile, err)
	}

	if policiesFile.Version < 1 {
		policiesFile.Version = 1
	}

	return &policiesFile, nil
}

// LoadDeclaredPolicies loads declared policies from POLICIES.toml in dir if
// the file exists. A missing file is not an error; it simply yields nil.
func LoadDeclaredPolicies(dir, declarationFile string) ([]Policy, error) {
	if declarationFile == "" {
		declarationFile = PoliciesDeclarationFile
	}

	filePath := filepath.Join(dir, declarationFile)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	}

	policiesFile, err := ParsePoliciesFile(filePath)
	if err != nil {
		return nil, err
	}

	return convertDeclarations(policiesFile.Policies)
}

func convertDeclarations(declarations []PolicyDeclaration) ([]Policy, error) {
	policies := make([]Policy, 0, len(declarations))
	for _, decl := range declarations {
		p := Policy{
			Name:        decl.Name,
			Description: decl.Description,
			Weights: engine.Weights{
				Risk:     decl.Weights.Risk,
				Crit:     decl.Weights.Crit,
				Effort:   decl.Weights.Effort,
				Coverage: decl.Weights.Coverage,
				Recency:  decl.Weights.Recency,
			},
			DefaultBudget: decl.DefaultBudget,
			IsDefault:     decl.Default,
			IsActive:      true,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("declared policy %q: %w", decl.Name, err)
		}
		policies = append(policies, p)
	}
	return policies, nil
}
