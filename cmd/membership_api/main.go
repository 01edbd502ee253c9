// Package main provides the entry point for the membership workflow HTTP API
// server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "membership_api",
	Short: "Membership Application Review & Interview Scheduling API",
	Long:  "Membership API manages candidate applications through their review lifecycle and schedules, confirms, and tracks interviews under time-windowed rules.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
