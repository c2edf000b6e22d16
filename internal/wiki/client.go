// Package wiki talks to a MediaWiki-style knowledge base: page thumbnails, rendered page
// content and full-text search.
package wiki

import (
	"context"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/jonathan/roster-photos/internal/fetch"
)

const (
	// DefaultAPIURL is the League of Legends esports wiki API endpoint.
	DefaultAPIURL = "https://lol.fandom.com/api.php"
	// DefaultThumbSize is the requested thumbnail width in pixels.
	DefaultThumbSize = 1200
	// DefaultSearchLimit is the number of search hits considered.
	DefaultSearchLimit = 10
)

// Fetcher is the subset of fetch.Client used by the wiki client.
type Fetcher interface {
	JSON(ctx context.Context, urlStr string, v any) error
}

var _ Fetcher = (*fetch.Client)(nil)

// Client queries the wiki API.
type Client struct {
	fetcher   Fetcher
	apiURL    string
	thumbSize int
}

// NewClient creates a client for apiURL. Zero values fall back to the defaults.
func NewClient(fetcher Fetcher, apiURL string, thumbSize int) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if thumbSize <= 0 {
		thumbSize = DefaultThumbSize
	}
	return &Client{
		fetcher:   fetcher,
		apiURL:    apiURL,
		thumbSize: thumbSize,
	}
}

// APIURL returns the endpoint this client queries.
func (c *Client) APIURL() string {
	return c.apiURL
}

type pageImagesResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			Thumbnail struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
	Error *apiErrorBody `json:"error"`
}

type parseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *apiErrorBody `json:"error"`
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
	Error *apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// PageThumbnails returns the raw thumbnail sources of the pages matching title, following redirects.
// Sources are not normalized or filtered.
func (c *Client) PageThumbnails(ctx context.Context, title string) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"titles":      {title},
		"prop":        {"pageimages"},
		"pithumbsize": {strconv.Itoa(c.thumbSize)},
		"redirects":   {"1"},
		"format":      {"json"},
		"origin":      {"*"},
	}

	var resp pageImagesResponse
	if err := c.fetcher.JSON(ctx, c.endpoint(params), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.toError("query", title)
	}

	sources := make([]string, 0, len(resp.Query.Pages))
	for _, key := range slices.Sorted(maps.Keys(resp.Query.Pages)) {
		if src := resp.Query.Pages[key].Thumbnail.Source; src != "" {
			sources = append(sources, src)
		}
	}
	return sources, nil
}

// ParsedPage returns the rendered HTML of a page. A missing page yields an *APIError.
func (c *Client) ParsedPage(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":        {"parse"},
		"page":          {title},
		"prop":          {"text"},
		"redirects":     {"1"},
		"formatversion": {"2"},
		"format":        {"json"},
		"origin":        {"*"},
	}

	var resp parseResponse
	if err := c.fetcher.JSON(ctx, c.endpoint(params), &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", resp.Error.toError("parse", title)
	}
	return resp.Parse.Text, nil
}

// SearchTitles runs a quoted full-text search and returns matching titles,
// de-duplicated and without disambiguation pages.
func (c *Client) SearchTitles(ctx context.Context, term string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {`"` + term + `"`},
		"srlimit":  {strconv.Itoa(limit)},
		"format":   {"json"},
		"origin":   {"*"},
	}

	var resp searchResponse
	if err := c.fetcher.JSON(ctx, c.endpoint(params), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.toError("search", term)
	}

	titles := make([]string, 0, len(resp.Query.Search))
	seen := make(map[string]bool)
	for _, hit := range resp.Query.Search {
		title := strings.TrimSpace(hit.Title)
		if title == "" || seen[title] {
			continue
		}
		if strings.Contains(strings.ToLower(title), "disambiguation") {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}
	return titles, nil
}

func (c *Client) endpoint(params url.Values) string {
	sep := "?"
	if strings.Contains(c.apiURL, "?") {
		sep = "&"
	}
	return c.apiURL + sep + params.Encode()
}

func (b *apiErrorBody) toError(action, subject string) error {
	return &APIError{
		Action:  action,
		Subject: subject,
		Code:    b.Code,
		Info:    b.Info,
	}
}
