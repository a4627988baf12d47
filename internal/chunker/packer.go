package chunker

import (
	"strings"

	"github.com/studos/docchunk-mcp/pkg/types"
)

// packParagraphs greedily bins blank-line-delimited paragraphs into
// chunks whose token estimate stays within the budget. A paragraph that
// alone exceeds the budget is split into sentences and packed the same
// way. When overlapBudget > 0 and more than one chunk results, every
// chunk after the first is prefixed with a sentence window taken from the
// tail of its predecessor. All chunks inherit the metadata template.
func (e *Engine) packParagraphs(text string, meta types.Metadata, overlapBudget int) []types.Chunk {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []types.Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, types.Chunk{Content: strings.Join(current, "\n\n"), Metadata: meta})
		current = nil
		currentTokens = 0
	}

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)
		switch {
		case paraTokens > e.maxTokens:
			// Oversized paragraph: close what we have and pack its
			// sentences independently of the paragraph accumulator.
			flush()
			chunks = append(chunks, e.packSentences(para, meta)...)
		case currentTokens+paraTokens > e.maxTokens:
			flush()
			current = []string{para}
			currentTokens = paraTokens
		default:
			current = append(current, para)
			currentTokens += paraTokens
		}
	}
	flush()

	if overlapBudget > 0 && len(chunks) > 1 {
		chunks = injectOverlap(chunks, overlapBudget)
	}
	return chunks
}

// packSentences greedily bins the sentences of one oversized paragraph.
// A sentence that alone exceeds the budget becomes its own chunk, kept
// whole: it is the atomic unit and is not divided further.
func (e *Engine) packSentences(para string, meta types.Metadata) []types.Chunk {
	var chunks []types.Chunk
	var current []string
	currentTokens := 0

	for _, sentence := range splitSentences(para) {
		sentTokens := EstimateTokens(sentence)
		if currentTokens+sentTokens > e.maxTokens {
			if len(current) > 0 {
				chunks = append(chunks, types.Chunk{Content: strings.Join(current, " "), Metadata: meta})
			}
			current = []string{sentence}
			currentTokens = sentTokens
		} else {
			current = append(current, sentence)
			currentTokens += sentTokens
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, types.Chunk{Content: strings.Join(current, " "), Metadata: meta})
	}
	return chunks
}

// splitSentences cuts text at whitespace immediately following '.', '!'
// or '?'. The punctuation stays with its sentence and the separating
// whitespace is dropped. This is a deliberate simple heuristic, not
// language-aware segmentation.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			j := i + 1
			if j < len(text) && isASCIISpace(text[j]) {
				sentences = append(sentences, text[start:i+1])
				for j < len(text) && isASCIISpace(text[j]) {
					j++
				}
				start = j
				i = j - 1
			}
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// injectOverlap rebuilds every chunk after the first by prepending an
// overlap window selected from the tail of the original preceding chunk.
// Window and body are joined with a blank line.
func injectOverlap(chunks []types.Chunk, budget int) []types.Chunk {
	out := make([]types.Chunk, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		out[i] = chunks[i]
		window := overlapWindow(splitSentences(chunks[i-1].Content), budget)
		if window != "" {
			out[i].Content = window + "\n\n" + chunks[i].Content
		}
	}
	return out
}

// overlapWindow walks sentences from the end, accumulating whole
// sentences while the running estimate stays within budget, and returns
// them joined in document order. It stops before any sentence that would
// push the running estimate over budget.
func overlapWindow(sentences []string, budget int) string {
	var picked []string
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		sentTokens := EstimateTokens(sentences[i])
		if total+sentTokens > budget {
			break
		}
		picked = append(picked, sentences[i])
		total += sentTokens
	}
	// picked is in reverse document order
	for l, r := 0, len(picked)-1; l < r; l, r = l+1, r-1 {
		picked[l], picked[r] = picked[r], picked[l]
	}
	return strings.Join(picked, " ")
}
