package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// executeCommand runs the root command in-process after resetting every flag, since
// cobra keeps flag values between executions.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")

	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func newProject(t *testing.T, catalogJSON string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "players.json"), []byte(catalogJSON), 0644))
	return root
}

func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/api.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		switch {
		case q.Get("action") == "parse" && q.Get("page") == "Faker":
			page := `<aside class="portable-infobox"><img data-src="` + server.URL + `/faker.png">` +
				`<h3>Team</h3><h3>Role</h3></aside>`
			_, _ = fmt.Fprintf(w, `{"parse":{"title":"Faker","text":%q}}`, page)
		case q.Get("action") == "parse":
			_, _ = w.Write([]byte(`{"error":{"code":"missingtitle","info":"missing"}}`))
		case q.Get("list") == "search":
			_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
		default:
			_, _ = w.Write([]byte(`{"query":{"pages":{"-1":{"missing":""}}}}`))
		}
	})
	mux.HandleFunc("/faker.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"fetch-photos", "resolve", "validate-catalog"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestFetchPhotos_MissingCatalog(t *testing.T) {
	root := t.TempDir()

	_, err := executeCommand(t, "fetch-photos", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog not found")
}

func TestFetchPhotos_InvalidConfig(t *testing.T) {
	root := newProject(t, `[]`)

	_, err := executeCommand(t, "fetch-photos", "--root", root, "--thumb-size", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thumb_size")
}

func TestFetchPhotos_EndToEnd(t *testing.T) {
	server := newWikiServer(t)
	root := newProject(t, `[
  {"id": "t1_faker", "nick": "Faker", "team": "T1"},
  {"id": "x_ghost", "nick": "Ghost"},
  {"id": "", "nick": "Nobody"}
]`)

	out, err := executeCommand(t, "fetch-photos",
		"--root", root,
		"--api-url", server.URL+"/api.php",
		"--delay-ms", "0",
		"--fail-delay-ms", "0",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "[OK] Faker -> assets/players/t1_faker.png")
	assert.Contains(t, out, "[FAIL] Ghost (x_ghost) - image not found")
	assert.Contains(t, out, "[SKIP] invalid row: id=, nick=Nobody")
	assert.Contains(t, out, "\n=== SUMMARY ===\ntotal: 3, ok: 1, fail: 2\n")

	assert.FileExists(t, filepath.Join(root, "assets", "players", "t1_faker.png"))

	saved, err := os.ReadFile(filepath.Join(root, "data", "players.json"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), `"team": "T1",
    "photo": "assets/players/t1_faker.png"`)
}

func TestResolve_PrintsResolution(t *testing.T) {
	server := newWikiServer(t)

	out, err := executeCommand(t, "resolve", "--id", "t1_faker", "--nick", "Faker", "--api-url", server.URL+"/api.php")
	require.NoError(t, err)
	assert.Contains(t, out, "RESOLVED IMAGE")
	assert.Contains(t, out, "candidate")
	assert.Contains(t, out, "/faker.png")
}

func TestResolve_NotFound(t *testing.T) {
	server := newWikiServer(t)

	out, err := executeCommand(t, "resolve", "--nick", "Ghost", "--api-url", server.URL+"/api.php")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image found for Ghost")
	assert.Contains(t, out, "image not found")
}

func TestValidateCatalog(t *testing.T) {
	root := newProject(t, `[{"id":"a","nick":"A"},{"id":"a","nick":"B"},{"nick":"C"}]`)

	out, err := executeCommand(t, "validate-catalog", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "CATALOG REPORT")
	assert.Contains(t, out, "Duplicate ids: a")

	_, err = executeCommand(t, "validate-catalog", "--root", root, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 invalid rows and 1 duplicate ids")
}

func TestValidateCatalog_SchemaViolation(t *testing.T) {
	root := newProject(t, `{"id": "a", "nick": "A"}`)

	_, err := executeCommand(t, "validate-catalog", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestValidateCatalog_ReportsNonStringFields(t *testing.T) {
	root := newProject(t, `[{"id":"a","nick":"A"},{"id":"b","nick":null},{"id":7,"nick":"C"}]`)

	out, err := executeCommand(t, "validate-catalog", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "CATALOG REPORT")

	_, err = executeCommand(t, "validate-catalog", "--root", root, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 invalid rows and 0 duplicate ids")
}

func TestFetchPhotos_NonStringFieldsAreSkipped(t *testing.T) {
	server := newWikiServer(t)
	root := newProject(t, `[
  {"id": "x_ghost", "nick": null},
  {"id": 7, "nick": "Num"},
  {"id": "t1_faker", "nick": "Faker"}
]`)

	out, err := executeCommand(t, "fetch-photos",
		"--root", root,
		"--api-url", server.URL+"/api.php",
		"--delay-ms", "0",
		"--fail-delay-ms", "0",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "[SKIP] invalid row: id=x_ghost, nick=\n")
	assert.Contains(t, out, "[SKIP] invalid row: id=, nick=Num\n")
	assert.Contains(t, out, "[OK] Faker -> assets/players/t1_faker.png")
	assert.Contains(t, out, "\n=== SUMMARY ===\ntotal: 3, ok: 1, fail: 2\n")

	saved, err := os.ReadFile(filepath.Join(root, "data", "players.json"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), `"nick": null`)
	assert.Contains(t, string(saved), `"id": 7`)
}
