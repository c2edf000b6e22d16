package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const playerPage = `
<div class="mw-parser-output">
	<p>Lead paragraph mentioning a team.</p>
	<aside class="portable-infobox pi-theme-player">
		<figure class="pi-item pi-image">
			<a href="https://static.wikia.nocookie.net/lolesports_gamepedia_en/images/a/ab/T1_Faker_2024.png/revision/latest?cb=2024">
				<img src="https://static.wikia.nocookie.net/lolesports_gamepedia_en/images/a/ab/T1_Faker_2024.png/revision/latest/scale-to-width-down/220?cb=2024">
			</a>
		</figure>
		<div class="pi-item"><h3>Real Name</h3><div>Lee Sang-hyeok</div></div>
		<div class="pi-item"><h3>Team</h3><div>T1</div></div>
		<div class="pi-item"><h3>Role</h3><div>Mid Laner</div></div>
	</aside>
</div>`

func TestInfobox_PrefersPortableInfobox(t *testing.T) {
	page := `<table class="infobox"><tr><td>fallback</td></tr></table>` + playerPage
	block := NewExtractor(DefaultOptions()).Infobox(page)
	assert.Contains(t, block, "<aside")
	assert.Contains(t, block, "Lee Sang-hyeok")
	assert.NotContains(t, block, "fallback")
}

func TestInfobox_FallsBackToTable(t *testing.T) {
	page := `<div><table class="wikitable infobox"><tr><th>Role</th><td>Support</td></tr></table></div>`
	block := NewExtractor(DefaultOptions()).Infobox(page)
	assert.Contains(t, block, "<table")
	assert.Contains(t, block, "Support")
}

func TestInfobox_ThemedAsideWithoutPortableClass(t *testing.T) {
	page := `<aside class="pi-background pi-theme-wikia"><h2>Team</h2></aside>`
	block := NewExtractor(DefaultOptions()).Infobox(page)
	assert.Contains(t, block, "Team")
}

func TestInfobox_NoneFound(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	assert.Empty(t, e.Infobox(""))
	assert.Empty(t, e.Infobox(`<p>Just an article.</p>`))
}

func TestIsPlayerProfile_KeywordThreshold(t *testing.T) {
	e := NewExtractor(DefaultOptions())

	tests := []struct {
		name     string
		block    string
		expected bool
	}{
		{"empty", "", false},
		{"no keywords", `<aside><p>Summoner's Rift is a map.</p></aside>`, false},
		{"one keyword", `<aside><h3>Team</h3><p>T1</p></aside>`, false},
		{"same keyword twice counts once", `<aside><h3>Team</h3><h3>TEAM</h3></aside>`, false},
		{"two keywords", `<aside><h3>Team</h3><h3>Role</h3></aside>`, true},
		{"mixed case", `<ASIDE><B>ReAl NaMe</B><I>BIRTHDAY</I></ASIDE>`, true},
		{"entities and whitespace", `<td>Real&nbsp;Name</td><td>Country:&#32;KR</td>`, true},
		{"whitespace collapsed", "<td>Real\n\t  Name</td><td>Country</td>", true},
		{"full player page", playerPage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.IsPlayerProfile(tt.block))
		})
	}
}

func TestIsPlayerProfile_CustomKeywords(t *testing.T) {
	e := NewExtractor(Options{Keywords: []string{" Position ", "Club"}, MinKeywordHits: 2})
	assert.True(t, e.IsPlayerProfile(`<div>position: forward, club: AC</div>`))
	assert.False(t, e.IsPlayerProfile(`<div>team and role</div>`))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "real name lee & co", PlainText("<h3>Real   Name</h3>\n<div>Lee &amp; Co</div>"))
	assert.Equal(t, "", PlainText("<br/>"))
}

func TestImage_DataSrcWithLatestRevision(t *testing.T) {
	block := `<aside><img data-src="https://example/img/revision/latest" src="https://example/other.png"></aside>`
	assert.Equal(t, "https://example/img/revision/latest", NewExtractor(DefaultOptions()).Image(block))
}

func TestImage_DataSrcWithNumberedRevision(t *testing.T) {
	block := `<aside><img data-src="https://example/img/revision/99"></aside>`
	assert.Equal(t, "https://example/img", NewExtractor(DefaultOptions()).Image(block))
}

func TestImage_AttributePriority(t *testing.T) {
	block := `<aside>
		<img src="https://example/src.png">
		<img srcset="//example/srcset.png 1x, //example/srcset@2x.png 2x">
		<img data-src="https://example/data.png">
	</aside>`
	assert.Equal(t, "https://example/data.png", NewExtractor(DefaultOptions()).Image(block))
}

func TestImage_SrcsetTakesFirstCandidate(t *testing.T) {
	block := `<aside><img srcset="//example/a.png/revision/latest?cb=1 1x, //example/b.png 2x"></aside>`
	assert.Equal(t, "https://example/a.png/revision/latest", NewExtractor(DefaultOptions()).Image(block))
}

func TestImage_UnescapesEntities(t *testing.T) {
	block := `<aside><img src="https://example/img.png?a=1&amp;b=2"></aside>`
	assert.Equal(t, "https://example/img.png?a=1&b=2", NewExtractor(DefaultOptions()).Image(block))
}

func TestImage_UnescapesEntitiesOnce(t *testing.T) {
	block := `<aside><img src="https://example/img.png?q=a&amp;amp;b"></aside>`
	assert.Equal(t, "https://example/img.png?q=a&amp;b", NewExtractor(DefaultOptions()).Image(block))
}

func TestImage_SkipsBadImageAndTriesNextAttribute(t *testing.T) {
	block := `<aside>
		<img data-src="https://example/Site-Logo.png">
		<img src="https://example/player.jpg">
	</aside>`
	assert.Equal(t, "https://example/player.jpg", NewExtractor(DefaultOptions()).Image(block))
}

func TestImage_OnlyBadImages(t *testing.T) {
	block := `<aside><img src="https://example/favicon.ico"></aside>`
	assert.Empty(t, NewExtractor(DefaultOptions()).Image(block))
}

func TestImage_NoImage(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	assert.Empty(t, e.Image(""))
	assert.Empty(t, e.Image(`<aside><h3>Team</h3></aside>`))
}

func TestImage_FromFullPage(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	block := e.Infobox(playerPage)
	assert.Equal(t,
		"https://static.wikia.nocookie.net/lolesports_gamepedia_en/images/a/ab/T1_Faker_2024.png/revision/latest",
		e.Image(block))
}

func TestNormalizeImageURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		mode     RevisionMode
		expected string
	}{
		{"empty", "  ", RevisionKeepLatest, ""},
		{"no revision", "https://example/a.png", RevisionKeepLatest, "https://example/a.png"},
		{"protocol relative", "//example/a.png", RevisionKeepLatest, "https://example/a.png"},
		{"latest kept", "https://example/a.png/revision/latest", RevisionKeepLatest, "https://example/a.png/revision/latest"},
		{"latest suffix dropped", "https://example/a.png/revision/latest/scale-to-width-down/220?cb=1", RevisionKeepLatest, "https://example/a.png/revision/latest"},
		{"numbered revision", "https://example/a.png/revision/99", RevisionKeepLatest, "https://example/a.png"},
		{"strip mode drops latest", "https://example/a.png/revision/latest?cb=2", RevisionStrip, "https://example/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeImageURL(tt.input, tt.mode))
		})
	}
}

func TestNormalizeImageURL_Idempotent(t *testing.T) {
	inputs := []string{
		"//example/a.png/revision/latest/scale-to-width-down/220?cb=1",
		"https://example/a.png/revision/123?cb=4",
		"https://example/plain.jpg",
	}
	for _, mode := range []RevisionMode{RevisionKeepLatest, RevisionStrip} {
		for _, in := range inputs {
			once := NormalizeImageURL(in, mode)
			assert.Equal(t, once, NormalizeImageURL(once, mode), "mode=%s input=%s", mode, in)
		}
	}
}

func TestIsBadImage(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	assert.True(t, e.IsBadImage("https://static.wikia.nocookie.net/Fandom-Logo.svg"))
	assert.True(t, e.IsBadImage("https://example/Wiki.png"))
	assert.True(t, e.IsBadImage("https://example/social-default-image.jpg"))
	assert.False(t, e.IsBadImage("https://example/Faker.png"))
}

func TestNewExtractor_EmptyBadTokensDisablesFilter(t *testing.T) {
	e := NewExtractor(Options{BadImageTokens: []string{}})
	assert.False(t, e.IsBadImage("https://example/favicon.ico"))
}
