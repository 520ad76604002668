package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prio/internal/api"
	"prio/internal/storage"

	"github.com/spf13/cobra"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the prio HTTP API server. The server exposes REST endpoints for
prioritization, heuristic comparison, policy listing, and run history,
backed by a local SQLite database.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger := newLogger(cfg)
	addr := cfg.ListenAddr()

	db, err := storage.Open(cfg.Storage.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer db.Close()

	if err := syncDeclaredPolicies(cfg.Storage.DataDir, db, logger); err != nil {
		return err
	}

	var runs api.RunRecorder
	if cfg.Storage.PersistRuns {
		store, err := storage.NewRunStore(db)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
		runs = store
	}

	opts := api.Options{
		ComparatorSeed: cfg.Engine.ComparatorSeed,
	}
	if cfg.Auth.Enabled {
		opts.TokenHash = cfg.Auth.TokenHash
	}

	server := api.NewServer(addr, storage.NewPolicyStore(db), runs, db, opts, logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("prio HTTP API server listening on http://%s\n", addr)
		fmt.Println("Press Ctrl+C to stop")
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}

		logger.Info("Server stopped gracefully", nil)
	}

	return nil
}
