package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-photos/internal/catalog"
	"github.com/jonathan/roster-photos/internal/observability"
	"github.com/jonathan/roster-photos/internal/photos"
)

var fetchPhotosCmd = &cobra.Command{
	Use:   "fetch-photos",
	Short: "Download a profile image for every catalog player",
	Long: `Resolves each player's image on the wiki, stores it as <assets>/<id><ext> and writes the relative path into the player's "photo" field.

The catalog is saved once, after every player has been processed. Configuration can be loaded from a JSON or YAML file using --config; command-line flags override config file values.`,
	RunE: runFetchPhotos,
}

var fetchPhotosFlags configFlags

func init() {
	fetchPhotosFlags.register(fetchPhotosCmd)

	rootCmd.AddCommand(fetchPhotosCmd)
}

func runFetchPhotos(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := fetchPhotosFlags.load(cmd)
	if err != nil {
		return err
	}

	catalogPath := cfg.CatalogPath()
	players, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}

	resolver, fetcher := newResolver(cfg)
	printer := observability.NewPrinter(cmd.OutOrStdout())
	syncer := photos.NewSyncer(resolver, fetcher, printer, cfg.PhotosOptions())

	database, ledger := openLedger(ctx, cfg, len(players))
	if database != nil {
		defer database.Close()
		syncer.WithRecorder(ledger)
	}

	summary, runErr := syncer.Run(ctx, players)
	if ledger != nil {
		if err := ledger.Finish(ctx, summary, runErr); err != nil {
			log.Printf("[LEDGER] %v", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("run stopped after %d of %d players, catalog not saved: %w", summary.OK+summary.Fail, summary.Total, runErr)
	}

	if err := catalog.Save(catalogPath, players); err != nil {
		return err
	}

	printer.Summary(summary.Total, summary.OK, summary.Fail)
	return nil
}
