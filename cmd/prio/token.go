package main

import (
	"fmt"

	"prio/internal/auth"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an API token",
	Long: `Generate a new API token and its bcrypt hash. Put the hash in the
config under auth.tokenHash and hand the token to API clients; the raw
token is shown only once and is not stored anywhere.`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	token, err := auth.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	fmt.Printf("Token:      %s\n", token)
	fmt.Printf("Token hash: %s\n", hash)
	fmt.Println("\nAdd to prio.json:")
	fmt.Printf("  \"auth\": {\"enabled\": true, \"tokenHash\": %q}\n", hash)
	return nil
}
