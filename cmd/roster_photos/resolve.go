package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-photos/internal/observability"
	"github.com/jonathan/roster-photos/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which image would be used for one player",
	Long:  "Runs the image lookup for a single player and prints the candidate titles, the matching page, the fallback tier and the image URL. Nothing is downloaded or saved.",
	RunE:  runResolve,
}

var (
	resolveID    string
	resolveNick  string
	resolveFlags configFlags
)

func init() {
	resolveCmd.Flags().StringVar(&resolveID, "id", "", "Player id (selects overrides and id aliases)")
	resolveCmd.Flags().StringVarP(&resolveNick, "nick", "n", "", "Player nick (required)")
	resolveFlags.register(resolveCmd)

	resolveCmd.MarkFlagRequired("nick")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveFlags.load(cmd)
	if err != nil {
		return err
	}

	resolver, _ := newResolver(cfg)
	printer := observability.NewPrinter(cmd.OutOrStdout())

	result, err := resolver.Resolve(context.Background(), resolveID, resolveNick)
	if err != nil && !errors.Is(err, resolve.ErrNotFound) {
		return fmt.Errorf("failed to resolve %s: %w", resolveNick, err)
	}

	printer.PrintResolution(resolveID, resolveNick, resolver.Candidates(resolveID, resolveNick), result)
	if result == nil {
		return fmt.Errorf("no image found for %s", resolveNick)
	}
	return nil
}
