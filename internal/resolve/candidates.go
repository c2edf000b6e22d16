package resolve

import (
	"strings"
)

// DefaultTitleSuffix disambiguates player pages from same-named champions, items and teams.
const DefaultTitleSuffix = "(player)"

// CandidateBuilder derives wiki page titles from a player's display name.
type CandidateBuilder struct {
	// Aliases maps a player id or nick to the title the wiki actually uses.
	Aliases map[string]string
	// NickSuffixes are stripped from the end of a nick to form extra candidates (e.g. team tags).
	NickSuffixes []string
	// TitleSuffix is appended to every candidate to form the disambiguated variants.
	TitleSuffix string
}

// Build returns candidate titles for a player, most likely first, without duplicates.
// A blank nick yields no candidates.
func (b CandidateBuilder) Build(id, nick string) []string {
	n := strings.TrimSpace(nick)
	if n == "" {
		return nil
	}

	base := []string{n, strings.ReplaceAll(n, "_", " "), collapseSpaces(n)}
	if alias := b.alias(id, n); alias != "" {
		base = append(base, alias, strings.ReplaceAll(alias, "_", " "))
	}
	for _, suffix := range b.NickSuffixes {
		if suffix == "" {
			continue
		}
		if stripped, ok := cutSuffixFold(n, suffix); ok {
			base = append(base, stripped)
		}
	}

	out := make([]string, 0, len(base)*2)
	seen := make(map[string]bool)
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range base {
		add(c)
	}

	suffix := b.TitleSuffix
	if suffix == "" {
		suffix = DefaultTitleSuffix
	}
	for _, c := range append([]string(nil), out...) {
		add(c + " " + suffix)
	}
	return out
}

func (b CandidateBuilder) alias(id, nick string) string {
	if alias, ok := b.Aliases[id]; ok && id != "" {
		return strings.TrimSpace(alias)
	}
	return strings.TrimSpace(b.Aliases[nick])
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cutSuffixFold removes suffix from s, ignoring case, and reports whether anything is left.
func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) <= len(suffix) || !strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return "", false
	}
	stripped := strings.TrimSpace(s[:len(s)-len(suffix)])
	return stripped, stripped != ""
}
