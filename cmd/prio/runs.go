package main

import (
	"fmt"
	"strconv"

	"prio/internal/storage"

	"github.com/spf13/cobra"
)

var (
	runsLimit  int
	runsFormat string
)

var runsCmd = &cobra.Command{
	Use:   "runs <repo-id>",
	Short: "Show recent prioritization runs for a repo",
	Long: `Show the most recent persisted prioritization runs for a repo, newest
first. Runs are recorded by the server whenever a prioritize request
names a repo_id.`,
	Args: cobra.ExactArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum number of runs to show")
	runsCmd.Flags().StringVar(&runsFormat, "format", "table", "Output format: json, table")
}

func runRuns(cmd *cobra.Command, args []string) error {
	repoID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("repo id must be an integer, got %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !databaseExists(cfg.Storage.DataDir) {
		return fmt.Errorf("no database in %s; start the server first", cfg.Storage.DataDir)
	}

	logger := newLogger(cfg)
	db, err := storage.Open(cfg.Storage.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer db.Close()

	store, err := storage.NewRunStore(db)
	if err != nil {
		return err
	}

	runs, err := store.ListRuns(repoID, runsLimit)
	if err != nil {
		return err
	}

	out, err := formatRuns(runs, OutputFormat(runsFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
