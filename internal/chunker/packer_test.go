package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studos/docchunk-mcp/pkg/types"
)

func mustEngine(t *testing.T, maxTokens, overlapTokens int) *Engine {
	t.Helper()
	e, err := New(Config{MaxTokens: maxTokens, OverlapTokens: overlapTokens})
	require.NoError(t, err)
	return e
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "periods",
			text: "First one. Second one. Third one.",
			want: []string{"First one.", "Second one.", "Third one."},
		},
		{
			name: "mixed terminators",
			text: "Really? Yes! Fine then.",
			want: []string{"Really?", "Yes!", "Fine then."},
		},
		{
			name: "newline after period",
			text: "One sentence.\nAnother sentence.",
			want: []string{"One sentence.", "Another sentence."},
		},
		{
			name: "no trailing whitespace keeps sentence whole",
			text: "Version 1.2 of the tool",
			want: []string{"Version 1.2 of the tool"},
		},
		{
			name: "ellipsis cuts at final period",
			text: "Wait... done",
			want: []string{"Wait...", "done"},
		},
		{
			name: "no terminator",
			text: "no punctuation here",
			want: []string{"no punctuation here"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.text))
		})
	}
}

func TestOverlapWindow(t *testing.T) {
	// Five-word sentences estimate to 6 tokens each.
	sentences := []string{
		"alpha bravo charlie delta echo.",
		"foxtrot golf hotel india juliet.",
		"kilo lima mike november oscar.",
	}

	tests := []struct {
		name   string
		budget int
		want   string
	}{
		{
			name:   "budget fits one sentence",
			budget: 6,
			want:   "kilo lima mike november oscar.",
		},
		{
			name:   "budget fits two sentences in document order",
			budget: 12,
			want:   "foxtrot golf hotel india juliet. kilo lima mike november oscar.",
		},
		{
			name:   "budget fits everything",
			budget: 100,
			want:   strings.Join(sentences, " "),
		},
		{
			name:   "budget below last sentence yields empty window",
			budget: 5,
			want:   "",
		},
		{
			name:   "zero budget",
			budget: 0,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlapWindow(sentences, tt.budget))
		})
	}
}

func TestOverlapWindow_NoSentences(t *testing.T) {
	assert.Equal(t, "", overlapWindow(nil, 50))
}

func TestPackParagraphs_GreedyBinning(t *testing.T) {
	e := mustEngine(t, 26, 0)

	// 13 estimated tokens per paragraph: two fit exactly per chunk.
	para := "alpha bravo charlie delta echo foxtrot golf hotel india juliet"
	text := strings.Join([]string{para, para, para, para}, "\n\n")

	chunks := e.packParagraphs(text, types.Metadata{}, 0)

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Equal(t, para+"\n\n"+para, c.Content)
	}
}

func TestPackParagraphs_MetadataInherited(t *testing.T) {
	e := mustEngine(t, 10, 0)
	meta := types.Metadata{
		Heading:        "Setup",
		Section:        types.SectionH2,
		ChunkingMethod: types.MethodMarkdownHeaders,
	}

	text := "one two three four five six seven eight\n\nnine ten eleven twelve thirteen fourteen fifteen sixteen"
	chunks := e.packParagraphs(text, meta, 0)

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Equal(t, meta, c.Metadata)
	}
}

func TestPackParagraphs_OversizedParagraphFallsBackToSentences(t *testing.T) {
	e := mustEngine(t, 10, 0)

	// One paragraph, three sentences, far over budget together.
	text := "alpha bravo charlie delta echo foxtrot golf. " +
		"hotel india juliet kilo lima mike november. " +
		"oscar papa quebec romeo sierra tango uniform."
	chunks := e.packParagraphs(text, types.Metadata{}, 0)

	require.Len(t, chunks, 3)
	assert.Equal(t, "alpha bravo charlie delta echo foxtrot golf.", chunks[0].Content)
	assert.Equal(t, "hotel india juliet kilo lima mike november.", chunks[1].Content)
	assert.Equal(t, "oscar papa quebec romeo sierra tango uniform.", chunks[2].Content)
}

func TestPackParagraphs_OversizedParagraphFlushesPending(t *testing.T) {
	e := mustEngine(t, 10, 0)

	small := "one two three"
	big := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"
	chunks := e.packParagraphs(small+"\n\n"+big, types.Metadata{}, 0)

	require.Len(t, chunks, 2)
	assert.Equal(t, small, chunks[0].Content)
	assert.Equal(t, big, chunks[1].Content)
}

func TestPackParagraphs_SingleChunkGetsNoOverlap(t *testing.T) {
	e := mustEngine(t, 100, 10)

	text := "short paragraph. nothing to overlap."
	chunks := e.packParagraphs(text, types.Metadata{}, 20)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func TestPackParagraphs_OverlapJoinsWithBlankLine(t *testing.T) {
	e := mustEngine(t, 20, 5)

	text := "alpha bravo charlie delta echo foxtrot.\n\n" +
		"golf hotel india juliet kilo lima.\n\n" +
		"mike november oscar papa quebec romeo.\n\n" +
		"sierra tango uniform victor whiskey xray."
	chunks := e.packParagraphs(text, types.Metadata{}, 10)

	require.Len(t, chunks, 2)
	assert.Equal(t,
		"golf hotel india juliet kilo lima.\n\nmike november oscar papa quebec romeo.\n\nsierra tango uniform victor whiskey xray.",
		chunks[1].Content)
	// The first chunk is never rewritten.
	assert.Equal(t, "alpha bravo charlie delta echo foxtrot.\n\ngolf hotel india juliet kilo lima.", chunks[0].Content)
}
