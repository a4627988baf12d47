// Package chunker implements the adaptive multi-pass chunking engine.
//
// A document is first split at markdown headers. Sections that exceed the
// token budget (or sit near it while containing detectable sub-structure)
// are expanded through a cascade of splitting passes tried in priority
// order:
//
//  1. markdown sub-headers
//  2. standalone bold pseudo-headings
//  3. structural markers (bullets, numbered items, horizontal rules)
//  4. greedy paragraph/sentence packing with backward sentence overlap
//
// The engine is pure and synchronous: fixed configuration, no I/O, no
// state between calls, and identical output for identical input. Sizing
// uses a word-count token estimate rather than a real tokenizer.
package chunker
