package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonathan/roster-photos/internal/schemas"
	"github.com/jonathan/roster-photos/internal/types"
	rootschemas "github.com/jonathan/roster-photos/schemas"
)

// Load reads and validates the player catalog at path.
// A missing file yields *NotFoundError.
func Load(path string) ([]*types.Player, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}

	if err := schemas.ValidateBytes(rootschemas.Players, content); err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("catalog %s does not match schema", path),
			Cause:   err,
		}
	}

	var players []*types.Player
	if err := json.Unmarshal(content, &players); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}

	return players, nil
}

// Encode renders players as two-space indented JSON with a trailing newline.
// Non-ASCII text and HTML characters are written literally.
func Encode(players []*types.Player) ([]byte, error) {
	if players == nil {
		players = []*types.Player{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(players); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes players to path. The document is written to a temporary file in the
// same directory and renamed over path, so a failed write leaves the old catalog intact.
func Save(path string, players []*types.Player) error {
	data, err := Encode(players)
	if err != nil {
		return &SaveError{Message: "failed to marshal catalog", Cause: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &SaveError{Message: fmt.Sprintf("failed to create directory %s", dir), Cause: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &SaveError{Message: "failed to create temporary file", Cause: err}
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &SaveError{Message: "failed to write temporary file", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &SaveError{Message: "failed to close temporary file", Cause: err}
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return &SaveError{Message: "failed to set file mode", Cause: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &SaveError{Message: fmt.Sprintf("failed to replace %s", path), Cause: err}
	}
	return nil
}

// InvalidRows returns the players that lack an id or a nick and will be skipped.
func InvalidRows(players []*types.Player) []int {
	var rows []int
	for i, p := range players {
		if p == nil || p.ID == "" || p.Nick == "" {
			rows = append(rows, i)
		}
	}
	return rows
}

// DuplicateIDs returns ids that appear on more than one row.
func DuplicateIDs(players []*types.Player) []string {
	counts := make(map[string]int)
	var dupes []string
	for _, p := range players {
		if p == nil || p.ID == "" {
			continue
		}
		counts[p.ID]++
		if counts[p.ID] == 2 {
			dupes = append(dupes, p.ID)
		}
	}
	return dupes
}
