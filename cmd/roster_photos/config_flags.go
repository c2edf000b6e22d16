package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/roster-photos/internal/config"
)

// configFlags are the settings shared by every subcommand. Flags override the config
// file only when explicitly set.
type configFlags struct {
	path        string
	root        string
	catalog     string
	assets      string
	apiURL      string
	thumbSize   int
	delayMS     int
	failDelayMS int
	revision    string
	useBrowser  bool
	verifyTLS   bool
	databaseURL string
	verbose     bool
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&f.root, "root", "", "Project root; catalog, assets and photo paths are relative to it (default \".\")")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "Catalog JSON file (default \"data/players.json\")")
	cmd.Flags().StringVar(&f.assets, "assets", "", "Directory receiving player images (default \"assets/players\")")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Wiki api.php endpoint (default \"https://lol.fandom.com/api.php\")")
	cmd.Flags().IntVar(&f.thumbSize, "thumb-size", 0, "Thumbnail width in pixels (default 1200)")
	cmd.Flags().IntVar(&f.delayMS, "delay-ms", 0, "Pause after each player in milliseconds (default 50)")
	cmd.Flags().IntVar(&f.failDelayMS, "fail-delay-ms", 0, "Pause after a player without image in milliseconds (default 60)")
	cmd.Flags().StringVar(&f.revision, "revision-mode", "", "Image URL revision handling: keep-latest or strip (default \"keep-latest\")")
	cmd.Flags().BoolVar(&f.useBrowser, "browser", false, "Render pages in headless Chrome instead of the parse API (requires Chrome)")
	cmd.Flags().BoolVar(&f.verifyTLS, "verify-tls", false, "Verify TLS certificates")
	cmd.Flags().StringVar(&f.databaseURL, "database-url", "", "PostgreSQL URL for the run ledger (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// load builds the effective configuration: defaults, then the config file, then flags,
// then the environment. The result is validated.
func (f *configFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.path != "" {
		loaded, err := config.LoadConfig(f.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root = f.root
	}
	if flags.Changed("catalog") {
		cfg.Catalog = f.catalog
	}
	if flags.Changed("assets") {
		cfg.Assets = f.assets
	}
	if flags.Changed("api-url") {
		cfg.APIURL = f.apiURL
	}
	if flags.Changed("thumb-size") {
		cfg.ThumbSize = f.thumbSize
	}
	if flags.Changed("delay-ms") {
		cfg.DelayMS = f.delayMS
	}
	if flags.Changed("fail-delay-ms") {
		cfg.FailDelayMS = f.failDelayMS
	}
	if flags.Changed("revision-mode") {
		cfg.RevisionMode = f.revision
	}
	if flags.Changed("browser") {
		cfg.UseBrowser = f.useBrowser
	}
	if flags.Changed("verify-tls") {
		cfg.VerifyTLS = f.verifyTLS
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Verbose && f.path != "" {
		log.Printf("[CONFIG] loaded %s", f.path)
	}
	return &cfg, nil
}
