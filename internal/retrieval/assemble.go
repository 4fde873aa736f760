package retrieval

import (
	"fmt"
	"strings"
)

// Assemble formats the matches scoring at least minScore into one context
// block, one labelled excerpt per match separated by a blank line. It
// reports false when no match qualifies.
func Assemble(matches []SearchMatch, minScore float64) (string, bool) {
	excerpts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Score < minScore {
			continue
		}
		excerpts = append(excerpts, fmt.Sprintf("[Excerpt (Similarity: %.4f)]\n%s", m.Score, m.Text))
	}
	if len(excerpts) == 0 {
		return "", false
	}
	return strings.Join(excerpts, "\n\n"), true
}

// FormatResults returns matches as shown to the caller, with the score
// prefixed to each text.
func FormatResults(matches []SearchMatch) []SearchMatch {
	out := make([]SearchMatch, len(matches))
	for i, m := range matches {
		out[i] = SearchMatch{
			Text:        fmt.Sprintf("[Similarity Score: %.4f]\n%s", m.Score, m.Text),
			Score:       m.Score,
			ChunkNumber: m.ChunkNumber,
		}
	}
	return out
}
