package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-photos/internal/catalog"
	"github.com/jonathan/roster-photos/internal/observability"
)

var validateCatalogCmd = &cobra.Command{
	Use:   "validate-catalog",
	Short: "Check the catalog against its schema",
	Long:  "Validates the catalog JSON against the player schema and reports rows the photo run would skip and ids used by more than one player.",
	RunE:  runValidateCatalog,
}

var (
	validateStrict bool
	validateFlags  configFlags
)

func init() {
	validateCatalogCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail when rows would be skipped or ids are duplicated")
	validateFlags.register(validateCatalogCmd)

	rootCmd.AddCommand(validateCatalogCmd)
}

func runValidateCatalog(cmd *cobra.Command, _ []string) error {
	cfg, err := validateFlags.load(cmd)
	if err != nil {
		return err
	}

	players, err := catalog.Load(cfg.CatalogPath())
	if err != nil {
		return err
	}

	invalid := catalog.InvalidRows(players)
	duplicates := catalog.DuplicateIDs(players)
	observability.NewPrinter(cmd.OutOrStdout()).PrintCatalogReport(players, invalid, duplicates)

	if validateStrict && (len(invalid) > 0 || len(duplicates) > 0) {
		return fmt.Errorf("catalog has %d invalid rows and %d duplicate ids", len(invalid), len(duplicates))
	}
	return nil
}
