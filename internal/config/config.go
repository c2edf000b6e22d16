// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/roster-photos/internal/fetch"
	"github.com/jonathan/roster-photos/internal/markup"
	"github.com/jonathan/roster-photos/internal/photos"
	"github.com/jonathan/roster-photos/internal/resolve"
	"github.com/jonathan/roster-photos/internal/wiki"
)

// DatabaseURLEnv names the environment variable holding the run ledger DSN.
const DatabaseURLEnv = "DATABASE_URL"

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// Fields missing from the file keep their Default values.
type Config struct {
	// Paths, relative to Root unless absolute
	Root    string `json:"root" yaml:"root" validate:"required"`
	Catalog string `json:"catalog" yaml:"catalog" validate:"required"`
	Assets  string `json:"assets" yaml:"assets" validate:"required"`

	// Wiki access
	APIURL       string `json:"api_url" yaml:"api_url" validate:"required,url"`
	ThumbSize    int    `json:"thumb_size" yaml:"thumb_size" validate:"min=1,max=4096"`
	SearchLimit  int    `json:"search_limit" yaml:"search_limit" validate:"min=1,max=50"`
	UserAgent    string `json:"user_agent" yaml:"user_agent" validate:"required"`
	VerifyTLS    bool   `json:"verify_tls" yaml:"verify_tls"`
	UseBrowser   bool   `json:"use_browser" yaml:"use_browser"`
	TextTimeout  int    `json:"text_timeout_seconds" yaml:"text_timeout_seconds" validate:"min=1"`
	BytesTimeout int    `json:"bytes_timeout_seconds" yaml:"bytes_timeout_seconds" validate:"min=1"`

	// Matching heuristics
	RevisionMode     string            `json:"revision_mode" yaml:"revision_mode" validate:"oneof=keep-latest strip"`
	MinKeywordHits   int               `json:"min_keyword_hits" yaml:"min_keyword_hits" validate:"min=1"`
	Keywords         []string          `json:"keywords" yaml:"keywords" validate:"dive,required"`
	InfoboxSelectors []string          `json:"infobox_selectors" yaml:"infobox_selectors" validate:"dive,required"`
	BadImageTokens   []string          `json:"bad_image_tokens" yaml:"bad_image_tokens" validate:"dive,required"`
	Aliases          map[string]string `json:"aliases" yaml:"aliases" validate:"dive,keys,required,endkeys,required"`
	Overrides        map[string]string `json:"overrides" yaml:"overrides" validate:"dive,keys,required,endkeys,required"`
	NickSuffixes     []string          `json:"nick_suffixes" yaml:"nick_suffixes" validate:"dive,required"`
	TitleSuffix      string            `json:"title_suffix" yaml:"title_suffix" validate:"required"`

	// Pacing, in milliseconds
	DelayMS     int `json:"delay_ms" yaml:"delay_ms" validate:"min=0"`
	FailDelayMS int `json:"fail_delay_ms" yaml:"fail_delay_ms" validate:"min=0"`

	// Behavior
	Verbose     bool   `json:"verbose" yaml:"verbose"`
	DatabaseURL string `json:"database_url" yaml:"database_url"`
}

// DefaultAliases maps nicks to the titles the esports wiki files them under.
func DefaultAliases() map[string]string {
	return map[string]string{
		"PerfecT": "Perfect",
		"DuDu":    "Dudu",
		"Junjia":  "JunJia",
	}
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() Config {
	return Config{
		Root:             ".",
		Catalog:          filepath.Join("data", "players.json"),
		Assets:           filepath.Join("assets", "players"),
		APIURL:           wiki.DefaultAPIURL,
		ThumbSize:        wiki.DefaultThumbSize,
		SearchLimit:      wiki.DefaultSearchLimit,
		UserAgent:        fetch.DefaultUserAgent,
		TextTimeout:      int(fetch.DefaultTextTimeout / time.Second),
		BytesTimeout:     int(fetch.DefaultBytesTimeout / time.Second),
		RevisionMode:     string(markup.RevisionKeepLatest),
		MinKeywordHits:   markup.DefaultMinKeywordHits,
		Keywords:         markup.DefaultKeywords(),
		InfoboxSelectors: markup.DefaultInfoboxSelectors(),
		BadImageTokens:   markup.DefaultBadImageTokens(),
		Aliases:          DefaultAliases(),
		Overrides:        map[string]string{},
		TitleSuffix:      resolve.DefaultTitleSuffix,
		DelayMS:          int(photos.DefaultDelay / time.Millisecond),
		FailDelayMS:      int(photos.DefaultFailDelay / time.Millisecond),
	}
}

// LoadConfig loads configuration from a JSON or YAML file on top of Default.
// The format is chosen by extension: .yaml and .yml are YAML, anything else JSON.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.Struct(c); err != nil {
		return newValidationError(err)
	}
	return nil
}

// ApplyEnv fills DatabaseURL from the environment when it is not already set.
func (c *Config) ApplyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(DatabaseURLEnv)
	}
}

// CatalogPath returns the catalog file location.
func (c *Config) CatalogPath() string {
	return c.underRoot(c.Catalog)
}

// AssetDir returns the image directory.
func (c *Config) AssetDir() string {
	return c.underRoot(c.Assets)
}

func (c *Config) underRoot(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// FetchOptions returns the HTTP client settings.
func (c *Config) FetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.UserAgent = c.UserAgent
	opts.TextTimeout = time.Duration(c.TextTimeout) * time.Second
	opts.BytesTimeout = time.Duration(c.BytesTimeout) * time.Second
	opts.Insecure = !c.VerifyTLS
	return opts
}

// MarkupOptions returns the infobox extraction settings.
func (c *Config) MarkupOptions() markup.Options {
	return markup.Options{
		InfoboxSelectors: c.InfoboxSelectors,
		Keywords:         c.Keywords,
		MinKeywordHits:   c.MinKeywordHits,
		BadImageTokens:   c.BadImageTokens,
		RevisionMode:     markup.RevisionMode(c.RevisionMode),
	}
}

// ResolveOptions returns the resolver settings.
func (c *Config) ResolveOptions() resolve.Options {
	return resolve.Options{
		Candidates: resolve.CandidateBuilder{
			Aliases:      maps.Clone(c.Aliases),
			NickSuffixes: c.NickSuffixes,
			TitleSuffix:  c.TitleSuffix,
		},
		Overrides:   maps.Clone(c.Overrides),
		SearchLimit: c.SearchLimit,
		Verbose:     c.Verbose,
	}
}

// PhotosOptions returns the fetch-and-persist loop settings.
func (c *Config) PhotosOptions() photos.Options {
	return photos.Options{
		Root:      c.Root,
		AssetDir:  c.AssetDir(),
		Delay:     time.Duration(c.DelayMS) * time.Millisecond,
		FailDelay: time.Duration(c.FailDelayMS) * time.Millisecond,
		Verbose:   c.Verbose,
	}
}
