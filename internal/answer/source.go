package answer

import "strings"

// Source is the provenance declared on the first line of every answer.
type Source string

const (
	SourceDocument Source = "Document Reference"
	SourceNoInfo   Source = "GENERATED - NO RELEVANT INFORMATION"
	SourceError    Source = "ERROR"
)

// Sources lists every provenance an answer can carry.
var Sources = []Source{SourceDocument, SourceNoInfo, SourceError}

const tagPrefix = "SOURCE: "

// Tag returns the tag line, e.g. "SOURCE: Document Reference".
func (s Source) Tag() string {
	return tagPrefix + string(s)
}

// Tagged prefixes body with the tag line for s.
func Tagged(s Source, body string) string {
	return s.Tag() + "\n" + body
}

// Parse splits text into its provenance and body. The tag opens the first
// non-blank line and may be bracketed ("[SOURCE: ERROR]"). Text after the
// tag on the same line, past an optional ":" or "-" separator, starts the
// body. ok is false when the first non-blank line does not open with a
// known tag.
func Parse(text string) (src Source, body string, ok bool) {
	text = strings.TrimLeft(text, " \t\r\n")
	first, rest, _ := strings.Cut(text, "\n")
	line := strings.TrimSpace(first)
	line = strings.TrimSpace(strings.TrimPrefix(line, "["))

	prefix := strings.TrimSpace(tagPrefix)
	if len(line) < len(prefix) || !strings.EqualFold(line[:len(prefix)], prefix) {
		return "", "", false
	}
	line = strings.TrimLeft(line[len(prefix):], " \t")

	for _, s := range Sources {
		name := string(s)
		if len(line) < len(name) || !strings.EqualFold(line[:len(name)], name) {
			continue
		}
		inline, ok := tagRemainder(line[len(name):])
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		switch {
		case inline == "":
			return s, rest, true
		case rest == "":
			return s, inline, true
		default:
			return s, inline + "\n" + rest, true
		}
	}
	return "", "", false
}

// tagRemainder strips the closing bracket and separator that may follow a
// tag name. ok is false when the name runs on into another word.
func tagRemainder(s string) (string, bool) {
	if s != "" && !strings.ContainsAny(s[:1], "]:- \t\r") {
		return "", false
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "]"))
	if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "-") {
		s = strings.TrimSpace(s[1:])
	}
	return s, true
}
