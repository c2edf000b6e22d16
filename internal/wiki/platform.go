// Package wiki - platform.go provides wiki host detection and host-specific page locations.
package wiki

import (
	"net/url"
	"strings"

	"github.com/jonathan/roster-photos/internal/markup"
)

// Platform represents a known wiki hosting platform.
type Platform string

const (
	// PlatformFandom is a Fandom (formerly Gamepedia) wiki
	PlatformFandom Platform = "fandom"
	// PlatformLiquipedia is a Liquipedia wiki
	PlatformLiquipedia Platform = "liquipedia"
	// PlatformWikipedia is a Wikimedia project
	PlatformWikipedia Platform = "wikipedia"
	// PlatformUnknown is an unrecognized MediaWiki installation
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the wiki platform from its API URL.
func DetectPlatform(apiURL string) Platform {
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	switch {
	case strings.HasSuffix(host, "fandom.com") || strings.HasSuffix(host, "gamepedia.com"):
		return PlatformFandom
	case strings.HasSuffix(host, "liquipedia.net"):
		return PlatformLiquipedia
	case strings.HasSuffix(host, "wikipedia.org") || strings.HasSuffix(host, "wikimedia.org"):
		return PlatformWikipedia
	default:
		return PlatformUnknown
	}
}

// PageURL returns the human-facing URL of title for the wiki behind apiURL.
// Liquipedia serves articles next to api.php; the others serve them under /wiki/.
// Wikimedia keeps api.php under /w/, which is not part of the article path.
func PageURL(apiURL, title string) string {
	base := strings.TrimSuffix(strings.SplitN(apiURL, "?", 2)[0], "api.php")
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	platform := DetectPlatform(apiURL)
	if platform == PlatformWikipedia && strings.HasSuffix(base, "/w/") {
		base = strings.TrimSuffix(base, "w/")
	}
	if platform != PlatformLiquipedia {
		base += "wiki/"
	}
	return base + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// PlatformContentSelectors returns the selector wrapping rendered article content.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformFandom, PlatformWikipedia, PlatformLiquipedia:
		return []string{"#mw-content-text", ".mw-parser-output", "main"}
	default:
		return []string{"#mw-content-text", "body"}
	}
}

// PlatformInfoboxSelectors returns infobox selectors tuned for a platform, most specific first.
func PlatformInfoboxSelectors(platform Platform) []string {
	common := markup.DefaultInfoboxSelectors()

	switch platform {
	case PlatformLiquipedia:
		return append([]string{".fo-nttax-infobox"}, common...)
	case PlatformWikipedia:
		return append([]string{"table.infobox.vcard"}, common...)
	default:
		return common
	}
}
