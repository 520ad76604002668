package main

import (
	"fmt"

	"prio/internal/engine"
	"prio/internal/policy"

	"github.com/spf13/cobra"
)

var (
	planPolicy string
	planBudget float64
	planFormat string
)

var planCmd = &cobra.Command{
	Use:   "plan <request-file>",
	Short: "Compute a prioritized test plan from a request file",
	Long: `Compute a prioritized test plan without starting a server. The request
file (JSON or YAML) carries the candidate items, the effort budget, and
optionally weights or a sprint context. Policies are resolved from the
built-in presets plus any POLICIES.toml in the data directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planPolicy, "policy", "", "Policy name supplying the weights")
	planCmd.Flags().Float64Var(&planBudget, "budget", -1, "Effort budget (overrides the request file)")
	planCmd.Flags().StringVar(&planFormat, "format", "table", "Output format: json, table, csv")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req, err := loadRequestFile(args[0])
	if err != nil {
		return err
	}
	if planPolicy != "" {
		req.Policy = planPolicy
	}
	if planBudget >= 0 {
		req.Budget = planBudget
	}

	policies, err := localPolicies(cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	if err := resolveWeights(&req.Request, req.Policy, policies); err != nil {
		return err
	}

	resp, err := engine.Prioritize(req.Request)
	if err != nil {
		return err
	}

	out, err := formatPlan(resp, OutputFormat(planFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// resolveWeights fills in request weights from a named policy, or from
// the default policy when the request has none. Explicit request weights
// always win.
func resolveWeights(req *engine.Request, name string, policies []policy.Policy) error {
	if name == "" {
		if req.Weights == nil {
			def := policy.Default()
			req.Weights = &def.Weights
		}
		return nil
	}

	p, err := policy.FindByName(policies, name)
	if err != nil {
		return err
	}
	if req.Weights == nil {
		req.Weights = &p.Weights
	}
	return nil
}

// localPolicies returns the built-in presets merged with any POLICIES.toml
// declarations from the data directory.
func localPolicies(dataDir string) ([]policy.Policy, error) {
	declared, err := policy.LoadDeclaredPolicies(dataDir, policy.PoliciesDeclarationFile)
	if err != nil {
		return nil, err
	}
	return policy.Merge(policy.Builtin(), declared), nil
}
