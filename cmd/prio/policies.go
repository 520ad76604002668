package main

import (
	"fmt"
	"os"
	"path/filepath"

	"prio/internal/logging"
	"prio/internal/policy"
	"prio/internal/storage"

	"github.com/spf13/cobra"
)

var policiesFormat string

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List available prioritization policies",
	Long: `List the prioritization policies available to this installation. When a
server database exists in the data directory its stored policies are
shown; otherwise the built-in presets merged with POLICIES.toml are.`,
	RunE: runPolicies,
}

func init() {
	rootCmd.AddCommand(policiesCmd)

	policiesCmd.Flags().StringVar(&policiesFormat, "format", "table", "Output format: json, table")
}

func runPolicies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var policies []policy.Policy
	if databaseExists(cfg.Storage.DataDir) {
		logger := newLogger(cfg)
		db, err := storage.Open(cfg.Storage.DataDir, logger)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer db.Close()

		policies, err = storage.NewPolicyStore(db).ListActive()
		if err != nil {
			return err
		}
	} else {
		policies, err = localPolicies(cfg.Storage.DataDir)
		if err != nil {
			return err
		}
	}

	out, err := formatPolicies(policies, OutputFormat(policiesFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// syncDeclaredPolicies upserts POLICIES.toml declarations into the policy
// store so the API serves them alongside the seeded presets.
func syncDeclaredPolicies(dataDir string, db *storage.DB, logger *logging.Logger) error {
	declared, err := policy.LoadDeclaredPolicies(dataDir, policy.PoliciesDeclarationFile)
	if err != nil {
		return err
	}
	if len(declared) == 0 {
		return nil
	}

	store := storage.NewPolicyStore(db)
	for _, p := range declared {
		if err := store.Upsert(p); err != nil {
			return fmt.Errorf("failed to store declared policy %q: %w", p.Name, err)
		}
	}

	logger.Info("Loaded declared policies", map[string]interface{}{
		"count": len(declared),
		"file":  policy.PoliciesDeclarationFile,
	})
	return nil
}

func databaseExists(dataDir string) bool {
	_, err := os.Stat(filepath.Join(dataDir, storage.DBFileName))
	return err == nil
}
