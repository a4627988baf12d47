package chunker

import "github.com/studos/docchunk-mcp/pkg/types"

// splitStrategy is one heuristic pass of the adaptive cascade. attempt
// returns candidate sections and whether this pass accepts the input;
// rejected passes fall through to the next strategy in the chain.
type splitStrategy interface {
	attempt(text string) ([]section, bool)
}

// headerStrategy re-splits a section at markdown sub-headers. It applies
// only when h2-h6 structure is present and is always accepted once
// triggered, so it has the highest priority in the chain.
type headerStrategy struct{}

func (headerStrategy) attempt(text string) ([]section, bool) {
	if !hasSubHeaders(text) {
		return nil, false
	}
	sections := splitByHeaders(text)
	for i := range sections {
		sections[i].meta.ChunkingMethod = types.MethodMarkdownHeaders
	}
	return sections, true
}

// boldStrategy splits at standalone bold pseudo-headings. It applies when
// at least minBoldHeadings such lines exist and is accepted only if the
// split actually produced multiple sections.
type boldStrategy struct{}

func (boldStrategy) attempt(text string) ([]section, bool) {
	if !hasBoldHeadings(text, minBoldHeadings) {
		return nil, false
	}
	sections := splitByBoldHeadings(text)
	if len(sections) < 2 {
		return nil, false
	}
	return sections, true
}

// structuralStrategy splits at list items and horizontal rules, accepted
// only when it finds at least two sections.
type structuralStrategy struct{}

func (structuralStrategy) attempt(text string) ([]section, bool) {
	sections := splitByStructuralMarkers(text)
	if len(sections) < 2 {
		return nil, false
	}
	return sections, true
}

// splitSection expands one escalated section through the cascade: the
// first accepted strategy wins, each of its sections is kept whole when
// it fits the budget and packed otherwise. When every strategy rejects,
// the section is paragraph-packed with the doubled overlap budget to
// compensate for the absence of real structure at the cut points.
func (e *Engine) splitSection(sec section) []types.Chunk {
	for _, strat := range e.strategies {
		sections, ok := strat.attempt(sec.text)
		if !ok {
			continue
		}
		var chunks []types.Chunk
		for _, sub := range sections {
			if EstimateTokens(sub.text) <= e.maxTokens {
				chunks = append(chunks, types.Chunk{Content: sub.text, Metadata: sub.meta})
			} else {
				chunks = append(chunks, e.packParagraphs(sub.text, sub.meta, 0)...)
			}
		}
		return chunks
	}

	meta := sec.meta
	meta.ChunkingMethod = types.MethodParagraphSplit
	return e.packParagraphs(sec.text, meta, 2*e.overlapTokens)
}
