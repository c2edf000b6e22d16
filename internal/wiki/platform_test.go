package wiki

import (
	"context"
	"testing"

	"github.com/jonathan/roster-photos/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://lol.fandom.com/api.php", PlatformFandom},
		{"https://lol.gamepedia.com/api.php", PlatformFandom},
		{"https://liquipedia.net/leagueoflegends/api.php", PlatformLiquipedia},
		{"https://en.wikipedia.org/w/api.php", PlatformWikipedia},
		{"http://127.0.0.1:8080/api.php", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://lol.fandom.com/wiki/Faker", PageURL("https://lol.fandom.com/api.php", "Faker"))
	assert.Equal(t, "https://lol.fandom.com/wiki/Faker_%28player%29", PageURL("https://lol.fandom.com/api.php", "Faker (player)"))
	assert.Equal(t, "https://liquipedia.net/leagueoflegends/Faker", PageURL("https://liquipedia.net/leagueoflegends/api.php", "Faker"))
	assert.Equal(t, "https://en.wikipedia.org/wiki/Faker", PageURL("https://en.wikipedia.org/w/api.php", "Faker"))
	assert.Equal(t, "https://ko.wikipedia.org/wiki/Faker", PageURL("https://ko.wikipedia.org/w/api.php?format=json", "Faker"))
}

func TestPlatformInfoboxSelectors(t *testing.T) {
	assert.Equal(t, ".fo-nttax-infobox", PlatformInfoboxSelectors(PlatformLiquipedia)[0])
	assert.Contains(t, PlatformInfoboxSelectors(PlatformFandom), "aside.portable-infobox")
	assert.Contains(t, PlatformInfoboxSelectors(PlatformUnknown), "table[class*='infobox']")
}

func TestBrowserPages_RendersArticleURL(t *testing.T) {
	client := NewClient(fetch.NewClient(nil), "https://lol.fandom.com/api.php", 0)
	pages := NewBrowserPages(client, fetch.BrowserOptions{})

	var gotURL, gotSelector string
	pages.render = func(_ context.Context, url, selector string, _ fetch.BrowserOptions) (string, error) {
		gotURL, gotSelector = url, selector
		return `<div id="mw-content-text">rendered</div>`, nil
	}

	html, err := pages.ParsedPage(context.Background(), "Gumayusi")
	require.NoError(t, err)
	assert.Contains(t, html, "rendered")
	assert.Equal(t, "https://lol.fandom.com/wiki/Gumayusi", gotURL)
	assert.Contains(t, gotSelector, "#mw-content-text")
	assert.Equal(t, client.APIURL(), pages.APIURL())
}
