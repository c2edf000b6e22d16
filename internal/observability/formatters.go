// Package observability provides the console output of the photo tools.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/roster-photos/internal/resolve"
	"github.com/jonathan/roster-photos/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes per-player status lines, run summaries and report boxes.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Skip reports a catalog row without an id or nick.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Skip(nick, id string) {
	fmt.Fprintf(p.out, "[SKIP] invalid row: id=%s, nick=%s\n", id, nick)
}

// Fail reports a player for whom no image was found.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Fail(nick, id string) {
	fmt.Fprintf(p.out, "[FAIL] %s (%s) - image not found\n", nick, id)
}

// OK reports a stored image.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) OK(nick, rel string) {
	fmt.Fprintf(p.out, "[OK] %s -> %s\n", nick, rel)
}

// Err reports a download or storage failure.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Err(nick, id string, err error) {
	fmt.Fprintf(p.out, "[ERR] %s (%s) - %v\n", nick, id, err)
}

// Summary prints the end-of-run totals.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Summary(total, ok, fail int) {
	fmt.Fprintf(p.out, "\n=== SUMMARY ===\n")
	fmt.Fprintf(p.out, "total: %d, ok: %d, fail: %d\n", total, ok, fail)
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResolution outputs the candidate titles tried for a player and the resolved image.
// A nil result is shown as not found.
func (p *Printer) PrintResolution(id, nick string, candidates []string, result *resolve.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Player:   %s (%s)\n", nick, id))
	sb.WriteString("\n")

	if len(candidates) > 0 {
		sb.WriteString("Candidates:\n")
		count := min(len(candidates), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", candidates[i]))
		}
		if len(candidates) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(candidates)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if result == nil {
		sb.WriteString("⚠ image not found")
	} else {
		sb.WriteString(fmt.Sprintf("Tier:     %s\n", result.Tier))
		sb.WriteString(fmt.Sprintf("Title:    %s\n", result.Title))
		sb.WriteString(fmt.Sprintf("Image:    %s", result.URL))
	}

	p.printBox("RESOLVED IMAGE", sb.String())
}

// PrintCatalogReport outputs rows the photo loop would skip and ids used more than once.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCatalogReport(players []*types.Player, invalidRows []int, duplicateIDs []string) {
	if len(invalidRows) == 0 && len(duplicateIDs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("✅ CATALOG OK (%d players, %d with photo)", len(players), countWithPhoto(players)))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Players: %d (%d with photo)\n", len(players), countWithPhoto(players)))

	if len(invalidRows) > 0 {
		sb.WriteString(fmt.Sprintf("\nRows without id or nick: %d\n", len(invalidRows)))
		count := min(len(invalidRows), maxItemsToShow)
		for i := 0; i < count; i++ {
			row := invalidRows[i]
			var id, nick string
			if row >= 0 && row < len(players) && players[row] != nil {
				id, nick = players[row].ID, players[row].Nick
			}
			sb.WriteString(fmt.Sprintf("⚠ #%d id=%q nick=%q\n", row, id, nick))
		}
		if len(invalidRows) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(invalidRows)-maxItemsToShow))
		}
	}

	if len(duplicateIDs) > 0 {
		sb.WriteString(fmt.Sprintf("\nDuplicate ids: %s", strings.Join(duplicateIDs, ", ")))
	}

	p.printBox("CATALOG REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

func countWithPhoto(players []*types.Player) int {
	n := 0
	for _, p := range players {
		if p != nil && p.HasPhoto() {
			n++
		}
	}
	return n
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
