// Package main provides the entry point for the roster photo tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roster_photos",
	Short: "Player profile image resolver and downloader",
	Long:  "roster_photos finds each catalog player's profile image on a MediaWiki-style esports wiki, stores it under the asset directory and records its path in the catalog.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
