package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// headerStart marks the beginning of any h1-h6 header line.
	headerStart = regexp.MustCompile(`(?m)^#{1,6}\s+`)

	// leadingHeader matches a header only at the start of a section.
	leadingHeader = regexp.MustCompile(`^(#{1,6})\s+(.+)`)

	// subHeaderLine matches h2-h6 anywhere, used to detect nested
	// structure inside an already header-scoped section.
	subHeaderLine = regexp.MustCompile(`(?m)^#{2,6}\s+\S`)

	bulletMarker   = regexp.MustCompile(`^[-*]\s+`)
	numberedMarker = regexp.MustCompile(`^\d+\.\s+`)
	horizontalRule = regexp.MustCompile(`^(-{3,}|\*{3,})$`)
)

// minBoldHeadingChars guards against short inline emphasis being read as
// a heading.
const minBoldHeadingChars = 6

// hasSubHeaders reports whether any h2-h6 header line occurs in text.
func hasSubHeaders(text string) bool {
	return subHeaderLine.MatchString(text)
}

// boldHeadingText extracts the inner text of a standalone bold heading
// line: the whole line is wrapped in a bold delimiter and the inner text
// is long enough to look like a heading.
func boldHeadingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, delim := range []string{"**", "__"} {
		if len(trimmed) <= 2*len(delim) {
			continue
		}
		if strings.HasPrefix(trimmed, delim) && strings.HasSuffix(trimmed, delim) {
			inner := strings.TrimSpace(trimmed[len(delim) : len(trimmed)-len(delim)])
			if utf8.RuneCountInString(inner) >= minBoldHeadingChars {
				return inner, true
			}
		}
	}
	return "", false
}

// hasBoldHeadings reports whether text contains at least minCount
// standalone bold heading lines.
func hasBoldHeadings(text string, minCount int) bool {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if _, ok := boldHeadingText(line); ok {
			count++
			if count >= minCount {
				return true
			}
		}
	}
	return false
}

// isStructuralMarker reports whether a line starts a bullet item, a
// numbered item, or is a horizontal rule.
func isStructuralMarker(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	return bulletMarker.MatchString(trimmed) ||
		numberedMarker.MatchString(trimmed) ||
		horizontalRule.MatchString(trimmed)
}
