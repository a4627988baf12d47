package chunker

import "strings"

// tokensPerWord approximates embedding-tokenizer density for prose.
const tokensPerWord = 1.3

// EstimateTokens approximates the token count of text as whitespace-split
// word count times 1.3, truncated. It is the sole sizing signal for the
// engine and is a proxy, not a tokenizer.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * tokensPerWord)
}
