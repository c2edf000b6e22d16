package wiki

import (
	"context"
	"strings"

	"github.com/jonathan/roster-photos/internal/fetch"
)

// RenderFunc renders url in a browser and returns the outer HTML of selector.
type RenderFunc func(ctx context.Context, url, selector string, opts fetch.BrowserOptions) (string, error)

// BrowserPages serves rendered pages from a headless browser instead of the parse API.
// Thumbnails and search still go through the embedded API client.
type BrowserPages struct {
	*Client
	render  RenderFunc
	options fetch.BrowserOptions
}

// NewBrowserPages wraps client so ParsedPage renders the article in headless Chrome.
func NewBrowserPages(client *Client, opts fetch.BrowserOptions) *BrowserPages {
	return &BrowserPages{
		Client:  client,
		render:  fetch.RenderHTML,
		options: opts,
	}
}

// ParsedPage renders the article for title and returns its content HTML.
func (b *BrowserPages) ParsedPage(ctx context.Context, title string) (string, error) {
	pageURL := PageURL(b.apiURL, title)
	selectors := PlatformContentSelectors(DetectPlatform(b.apiURL))
	return b.render(ctx, pageURL, strings.Join(selectors, ", "), b.options)
}
