package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jonathan/roster-photos/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(fetch.NewClient(nil), server.URL+"/api.php", 0)
}

func TestPageThumbnails_QueryParameters(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"query":{"pages":{
			"101":{"title":"Faker","thumbnail":{"source":"https://img/faker.png/revision/latest?cb=1"}},
			"-1":{"title":"Ghost","missing":""}
		}}}`))
	})

	sources, err := client.PageThumbnails(context.Background(), "Faker")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/faker.png/revision/latest?cb=1"}, sources)

	assert.Equal(t, "query", got.Get("action"))
	assert.Equal(t, "Faker", got.Get("titles"))
	assert.Equal(t, "pageimages", got.Get("prop"))
	assert.Equal(t, "1200", got.Get("pithumbsize"))
	assert.Equal(t, "1", got.Get("redirects"))
	assert.Equal(t, "json", got.Get("format"))
}

func TestPageThumbnails_CustomSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "800", r.URL.Query().Get("pithumbsize"))
		_, _ = w.Write([]byte(`{"query":{"pages":{}}}`))
	}))
	defer server.Close()

	client := NewClient(fetch.NewClient(nil), server.URL, 800)
	sources, err := client.PageThumbnails(context.Background(), "Chovy")
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestParsedPage_ReturnsText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "parse", q.Get("action"))
		assert.Equal(t, "Faker (player)", q.Get("page"))
		assert.Equal(t, "2", q.Get("formatversion"))
		_, _ = w.Write([]byte(`{"parse":{"title":"Faker","text":"<aside class=\"portable-infobox\">Team</aside>"}}`))
	})

	text, err := client.ParsedPage(context.Background(), "Faker (player)")
	require.NoError(t, err)
	assert.Contains(t, text, "portable-infobox")
}

func TestParsedPage_MissingPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`))
	})

	_, err := client.ParsedPage(context.Background(), "Nobody")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsMissingPage())
	assert.Contains(t, err.Error(), "Nobody")
}

func TestParsedPage_HTTPFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.ParsedPage(context.Background(), "Faker")
	require.Error(t, err)

	var fetchErr *fetch.Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestSearchTitles_FiltersAndDeduplicates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "search", q.Get("list"))
		assert.Equal(t, `"Keria"`, q.Get("srsearch"))
		assert.Equal(t, "10", q.Get("srlimit"))
		_, _ = w.Write([]byte(`{"query":{"search":[
			{"title":"Keria"},
			{"title":"Keria (Disambiguation)"},
			{"title":" Keria "},
			{"title":""},
			{"title":"T1/2024 Season"}
		]}}`))
	})

	titles, err := client.SearchTitles(context.Background(), "Keria", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keria", "T1/2024 Season"}, titles)
}

func TestSearchTitles_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":"ratelimited"}}`))
	})

	_, err := client.SearchTitles(context.Background(), "Zeus", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratelimited")
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(fetch.NewClient(nil), "", 0)
	assert.Equal(t, DefaultAPIURL, client.APIURL())
	assert.Equal(t, DefaultThumbSize, client.thumbSize)
}

func TestEndpoint_AppendsToExistingQuery(t *testing.T) {
	client := NewClient(fetch.NewClient(nil), "https://wiki.example/api.php?key=1", 0)
	endpoint := client.endpoint(url.Values{"action": {"parse"}})
	assert.Equal(t, "https://wiki.example/api.php?key=1&action=parse", endpoint)
}
