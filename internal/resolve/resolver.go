package resolve

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/jonathan/roster-photos/internal/markup"
	"github.com/jonathan/roster-photos/internal/wiki"
)

// Wiki is the knowledge-base surface the resolver needs.
type Wiki interface {
	ParsedPage(ctx context.Context, title string) (string, error)
	PageThumbnails(ctx context.Context, title string) ([]string, error)
	SearchTitles(ctx context.Context, term string, limit int) ([]string, error)
}

// Markup locates, classifies and mines infobox markup.
type Markup interface {
	Infobox(pageHTML string) string
	IsPlayerProfile(block string) bool
	Image(block string) string
	Clean(rawURL string) string
}

var (
	_ Wiki   = (*wiki.Client)(nil)
	_ Wiki   = (*wiki.BrowserPages)(nil)
	_ Markup = (*markup.Extractor)(nil)
)

// Tier names the fallback stage that produced an image.
type Tier string

const (
	// TierOverride is a forced per-player title.
	TierOverride Tier = "override"
	// TierCandidate is a title derived from the nick.
	TierCandidate Tier = "candidate"
	// TierSearch is a full-text search hit.
	TierSearch Tier = "search"
	// TierThumbnail is a page thumbnail taken without checking the infobox.
	TierThumbnail Tier = "thumbnail"
)

// Result is a resolved image reference.
type Result struct {
	URL   string
	Title string
	Tier  Tier
}

// Options configures a Resolver.
type Options struct {
	Candidates CandidateBuilder
	// Overrides maps a player id to the exact page title to try first.
	Overrides   map[string]string
	SearchLimit int
	Verbose     bool
}

// Resolver chains override, candidate, search and thumbnail lookups.
type Resolver struct {
	wiki   Wiki
	markup Markup
	opts   Options
}

// New creates a Resolver.
func New(w Wiki, m Markup, opts Options) *Resolver {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = wiki.DefaultSearchLimit
	}
	return &Resolver{wiki: w, markup: m, opts: opts}
}

// Candidates returns the titles tried for a player, in order.
func (r *Resolver) Candidates(id, nick string) []string {
	return r.opts.Candidates.Build(id, nick)
}

// Resolve returns the first acceptable image for the player. Individual lookup failures
// are skipped; ErrNotFound means every tier was exhausted. Context errors are returned as-is.
func (r *Resolver) Resolve(ctx context.Context, id, nick string) (*Result, error) {
	if forced := strings.TrimSpace(r.opts.Overrides[id]); forced != "" {
		src, err := r.infoboxImage(ctx, forced, true)
		if stop := r.skip(ctx, TierOverride, forced, err); stop != nil {
			return nil, stop
		}
		if src != "" {
			return &Result{URL: src, Title: forced, Tier: TierOverride}, nil
		}
	}

	candidates := r.Candidates(id, nick)
	for _, title := range candidates {
		src, err := r.infoboxImage(ctx, title, false)
		if stop := r.skip(ctx, TierCandidate, title, err); stop != nil {
			return nil, stop
		}
		if src != "" {
			return &Result{URL: src, Title: title, Tier: TierCandidate}, nil
		}
	}

	if term := strings.TrimSpace(nick); term != "" {
		titles, err := r.wiki.SearchTitles(ctx, term, r.opts.SearchLimit)
		if stop := r.skip(ctx, TierSearch, term, err); stop != nil {
			return nil, stop
		}
		for _, title := range titles {
			src, err := r.infoboxImage(ctx, title, true)
			if stop := r.skip(ctx, TierSearch, title, err); stop != nil {
				return nil, stop
			}
			if src != "" {
				return &Result{URL: src, Title: title, Tier: TierSearch}, nil
			}
		}
	}

	for _, title := range candidates {
		src, err := r.thumbnail(ctx, title)
		if stop := r.skip(ctx, TierThumbnail, title, err); stop != nil {
			return nil, stop
		}
		if src != "" {
			return &Result{URL: src, Title: title, Tier: TierThumbnail}, nil
		}
	}

	if r.opts.Verbose {
		log.Printf("[RESOLVE] %s (%s): no image after %d candidates", nick, id, len(candidates))
	}
	return nil, ErrNotFound
}

// infoboxImage fetches title and returns its infobox image when the infobox describes a
// player. With thumbFallback the page thumbnail is used when the infobox has no image.
func (r *Resolver) infoboxImage(ctx context.Context, title string, thumbFallback bool) (string, error) {
	page, err := r.wiki.ParsedPage(ctx, title)
	if err != nil {
		return "", err
	}

	block := r.markup.Infobox(page)
	if block == "" || !r.markup.IsPlayerProfile(block) {
		if r.opts.Verbose {
			log.Printf("[RESOLVE] %q: no player infobox", title)
		}
		return "", nil
	}

	if src := r.markup.Image(block); src != "" {
		return src, nil
	}
	if !thumbFallback {
		return "", nil
	}
	return r.thumbnail(ctx, title)
}

// thumbnail returns the first acceptable page thumbnail for title.
func (r *Resolver) thumbnail(ctx context.Context, title string) (string, error) {
	sources, err := r.wiki.PageThumbnails(ctx, title)
	if err != nil {
		return "", err
	}
	for _, raw := range sources {
		if src := r.markup.Clean(raw); src != "" {
			return src, nil
		}
	}
	return "", nil
}

// skip swallows a per-title lookup error unless the context is done.
func (r *Resolver) skip(ctx context.Context, tier Tier, title string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == nil || !r.opts.Verbose {
		return nil
	}
	var apiErr *wiki.APIError
	if errors.As(err, &apiErr) && apiErr.IsMissingPage() {
		log.Printf("[RESOLVE] %s %q: no such page", tier, title)
	} else {
		log.Printf("[RESOLVE] %s %q skipped: %v", tier, title, err)
	}
	return nil
}
