// Package markup isolates all scraping of rendered wiki markup: locating the infobox,
// deciding whether it describes a player and pulling an image reference out of it.
package markup

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RevisionMode controls how revision segments are removed from image URLs.
type RevisionMode string

const (
	// RevisionKeepLatest keeps a trailing "/revision/latest" marker and drops specific revisions.
	RevisionKeepLatest RevisionMode = "keep-latest"
	// RevisionStrip always cuts the URL at "/revision/".
	RevisionStrip RevisionMode = "strip"
)

const revisionMarker = "/revision/"

// DefaultInfoboxSelectors returns the selectors tried, in order, to locate an infobox.
func DefaultInfoboxSelectors() []string {
	return []string{
		"aside.portable-infobox",
		"aside[class*='pi-theme']",
		"table[class*='infobox']",
	}
}

// DefaultKeywords returns the infobox vocabulary of a player profile.
func DefaultKeywords() []string {
	return []string{"role", "team", "residency", "real name", "status", "birthday", "country"}
}

// DefaultBadImageTokens returns substrings identifying logos and placeholder images.
func DefaultBadImageTokens() []string {
	return []string{
		"fandom-logo",
		"wiki.png",
		"favicon",
		"social-default-image",
		"site-logo",
	}
}

// DefaultMinKeywordHits is the number of distinct keywords a player infobox must contain.
const DefaultMinKeywordHits = 2

// imageAttributes are searched in priority order.
var imageAttributes = []string{"data-src", "srcset", "src"}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// Options configures an Extractor.
type Options struct {
	InfoboxSelectors []string
	Keywords         []string
	MinKeywordHits   int
	BadImageTokens   []string
	RevisionMode     RevisionMode
}

// DefaultOptions returns the settings tuned for Fandom player pages.
func DefaultOptions() Options {
	return Options{
		InfoboxSelectors: DefaultInfoboxSelectors(),
		Keywords:         DefaultKeywords(),
		MinKeywordHits:   DefaultMinKeywordHits,
		BadImageTokens:   DefaultBadImageTokens(),
		RevisionMode:     RevisionKeepLatest,
	}
}

// Extractor implements infobox location, classification and image extraction.
type Extractor struct {
	opts Options
}

// NewExtractor creates an Extractor. Empty option fields fall back to defaults.
func NewExtractor(opts Options) *Extractor {
	defaults := DefaultOptions()
	if len(opts.InfoboxSelectors) == 0 {
		opts.InfoboxSelectors = defaults.InfoboxSelectors
	}
	if len(opts.Keywords) == 0 {
		opts.Keywords = defaults.Keywords
	}
	if opts.MinKeywordHits <= 0 {
		opts.MinKeywordHits = defaults.MinKeywordHits
	}
	if opts.BadImageTokens == nil {
		opts.BadImageTokens = defaults.BadImageTokens
	}
	if opts.RevisionMode == "" {
		opts.RevisionMode = defaults.RevisionMode
	}
	lowered := make([]string, 0, len(opts.Keywords))
	for _, k := range opts.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	opts.Keywords = lowered
	return &Extractor{opts: opts}
}

// Infobox returns the outer HTML of the page's infobox, or "" if none is found.
func (e *Extractor) Infobox(pageHTML string) string {
	if strings.TrimSpace(pageHTML) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	for _, selector := range e.opts.InfoboxSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			block, err := goquery.OuterHtml(selection.First())
			if err != nil {
				return ""
			}
			return block
		}
	}
	return ""
}

// IsPlayerProfile reports whether an infobox block mentions enough distinct player keywords.
func (e *Extractor) IsPlayerProfile(block string) bool {
	text := PlainText(block)
	if text == "" {
		return false
	}
	hits := 0
	for _, keyword := range e.opts.Keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	return hits >= e.opts.MinKeywordHits
}

// Image returns the first acceptable image URL referenced in an infobox block.
func (e *Extractor) Image(block string) string {
	if strings.TrimSpace(block) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(block))
	if err != nil {
		return ""
	}
	for _, attr := range imageAttributes {
		raw, ok := doc.Find("[" + attr + "]").First().Attr(attr)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if attr == "srcset" {
			raw = firstSrcsetURL(raw)
		}
		if src := e.Clean(raw); src != "" {
			return src
		}
	}
	return ""
}

// Clean normalizes an image URL and returns "" when it is empty or a known placeholder.
func (e *Extractor) Clean(rawURL string) string {
	src := NormalizeImageURL(rawURL, e.opts.RevisionMode)
	if src == "" || e.IsBadImage(src) {
		return ""
	}
	return src
}

// IsBadImage reports whether url points at a logo, favicon or placeholder.
func (e *Extractor) IsBadImage(url string) bool {
	low := strings.ToLower(url)
	for _, token := range e.opts.BadImageTokens {
		if token != "" && strings.Contains(low, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// NormalizeImageURL makes protocol-relative URLs explicit and removes revision segments.
// Applying it twice yields the same result as applying it once.
func NormalizeImageURL(rawURL string, mode RevisionMode) string {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	idx := strings.Index(u, revisionMarker)
	if idx < 0 {
		return u
	}
	if mode != RevisionStrip {
		if latest := strings.Index(u, revisionMarker+"latest"); latest >= 0 {
			return u[:latest] + revisionMarker + "latest"
		}
	}
	return u[:idx]
}

// PlainText strips tags, unescapes entities, collapses whitespace and lower-cases.
func PlainText(markup string) string {
	text := tagRe.ReplaceAllString(markup, " ")
	text = html.UnescapeString(text)
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

func firstSrcsetURL(srcset string) string {
	first := strings.TrimSpace(strings.Split(srcset, ",")[0])
	if fields := strings.Fields(first); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
