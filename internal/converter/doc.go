// Package converter normalizes supported document formats to markdown
// text for the chunking engine. Markdown and plain text pass through
// unchanged; HTML is converted to ATX-heading markdown. Binary formats
// such as PDF are expected to be converted upstream.
package converter
