package chunker

import (
	"strings"

	"github.com/studos/docchunk-mcp/pkg/types"
)

// section is transient splitter output: a text span plus the metadata
// extracted from its leading structure. Sections are owned by the caller
// and never shared across engine calls.
type section struct {
	text string
	meta types.Metadata
}

// extractHeaderInfo reads the leading header line of a section, if any.
func extractHeaderInfo(text string) types.Metadata {
	m := leadingHeader.FindStringSubmatch(text)
	if m == nil {
		return types.Metadata{}
	}
	return types.Metadata{
		Heading: strings.TrimSpace(m[2]),
		Section: types.HeaderSection(len(m[1])),
	}
}

// splitByHeaders splits text into ordered sections at h1-h6 header lines,
// keeping each header with the content that follows it. When no header is
// present the whole input becomes a single section with empty metadata,
// which is also how an empty document yields exactly one (empty) chunk.
func splitByHeaders(text string) []section {
	boundaries := headerStart.FindAllStringIndex(text, -1)

	starts := []int{0}
	for _, b := range boundaries {
		if b[0] != 0 {
			starts = append(starts, b[0])
		}
	}

	var sections []section
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		piece := strings.TrimSpace(text[start:end])
		if piece == "" {
			continue
		}
		sections = append(sections, section{text: piece, meta: extractHeaderInfo(piece)})
	}

	if len(sections) == 0 {
		return []section{{text: text}}
	}
	return sections
}

// splitByBoldHeadings splits text into ordered sections at standalone
// bold heading lines. The bold line stays at the start of its section;
// the extracted heading is the inner text without delimiters. A section
// that instead begins with a regular header keeps that header's level.
// Every section carries the bold_headings method tag.
func splitByBoldHeadings(text string) []section {
	lines := strings.Split(text, "\n")

	starts := []int{0}
	for i, line := range lines {
		if i == 0 {
			continue
		}
		if _, ok := boldHeadingText(line); ok {
			starts = append(starts, i)
		}
	}

	var sections []section
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		piece := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if piece == "" {
			continue
		}

		meta := types.Metadata{ChunkingMethod: types.MethodBoldHeadings}
		firstLine, _, _ := strings.Cut(piece, "\n")
		if heading, ok := boldHeadingText(firstLine); ok {
			meta.Heading = heading
			meta.Section = types.SectionBold
		} else if hdr := extractHeaderInfo(piece); !hdr.IsZero() {
			meta.Heading = hdr.Heading
			meta.Section = hdr.Section
		}
		sections = append(sections, section{text: piece, meta: meta})
	}
	return sections
}

// structuralHeadingLimit bounds the first-line heading extracted for
// structurally split sections.
const structuralHeadingLimit = 100

// splitByStructuralMarkers splits text immediately before lines that
// start a bullet item, a numbered item, or a horizontal rule. The marker
// line stays attached to the section it introduces.
func splitByStructuralMarkers(text string) []section {
	lines := strings.Split(text, "\n")

	starts := []int{0}
	for i, line := range lines {
		if i == 0 {
			continue
		}
		if isStructuralMarker(line) {
			starts = append(starts, i)
		}
	}

	var sections []section
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		piece := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if piece == "" {
			continue
		}

		heading, _, _ := strings.Cut(piece, "\n")
		if runes := []rune(heading); len(runes) > structuralHeadingLimit {
			heading = string(runes[:structuralHeadingLimit])
		}
		sections = append(sections, section{
			text: piece,
			meta: types.Metadata{
				Heading:        heading,
				Section:        types.SectionStructural,
				ChunkingMethod: types.MethodStructuralMarkers,
			},
		})
	}
	return sections
}
