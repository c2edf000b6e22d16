package main

import (
	"context"
	"log"
	"slices"

	"github.com/jonathan/roster-photos/internal/config"
	"github.com/jonathan/roster-photos/internal/db"
	"github.com/jonathan/roster-photos/internal/fetch"
	"github.com/jonathan/roster-photos/internal/markup"
	"github.com/jonathan/roster-photos/internal/resolve"
	"github.com/jonathan/roster-photos/internal/wiki"
)

// newResolver wires the HTTP client, page source and markup extractor for cfg.
func newResolver(cfg *config.Config) (*resolve.Resolver, *fetch.Client) {
	fetcher := fetch.NewClient(cfg.FetchOptions())
	client := wiki.NewClient(fetcher, cfg.APIURL, cfg.ThumbSize)

	markupOpts := cfg.MarkupOptions()
	// Platform-specific selectors apply only while the generic defaults are in use.
	if slices.Equal(markupOpts.InfoboxSelectors, markup.DefaultInfoboxSelectors()) {
		markupOpts.InfoboxSelectors = wiki.PlatformInfoboxSelectors(wiki.DetectPlatform(cfg.APIURL))
	}
	extractor := markup.NewExtractor(markupOpts)

	var pages resolve.Wiki = client
	if cfg.UseBrowser {
		httpOpts := fetcher.Options()
		pages = wiki.NewBrowserPages(client, fetch.BrowserOptions{
			UserAgent: httpOpts.UserAgent,
			Insecure:  httpOpts.Insecure,
			Verbose:   cfg.Verbose,
		})
	}
	if cfg.Verbose {
		log.Printf("[CONFIG] wiki %s (%s), browser=%t", client.APIURL(), wiki.DetectPlatform(client.APIURL()), cfg.UseBrowser)
	}

	return resolve.New(pages, extractor, cfg.ResolveOptions()), fetcher
}

// openLedger connects to the run ledger when a database URL is configured. Failures are
// logged and yield a nil ledger; the run proceeds without one.
func openLedger(ctx context.Context, cfg *config.Config, total int) (*db.DB, *db.Ledger) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[LEDGER] disabled: %v", err)
		return nil, nil
	}
	if err := database.EnsureSchema(ctx); err != nil {
		log.Printf("[LEDGER] disabled: %v", err)
		database.Close()
		return nil, nil
	}

	ledger, err := database.StartLedger(ctx, &db.RunInput{
		APIURL:      cfg.APIURL,
		CatalogPath: cfg.CatalogPath(),
		Total:       total,
	})
	if err != nil {
		log.Printf("[LEDGER] disabled: %v", err)
		database.Close()
		return nil, nil
	}
	if cfg.Verbose {
		log.Printf("[LEDGER] recording run %s", ledger.RunID())
	}
	return database, ledger
}
