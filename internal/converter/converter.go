package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Format identifies a supported input document format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
)

// ErrUnsupportedFormat is returned for file types the converter cannot
// normalize to markdown.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DetectFormat maps a file name to its format by extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt", "":
		return FormatText, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}

// ToMarkdown normalizes raw document bytes of the given format into
// markdown text.
func ToMarkdown(data []byte, format Format) (string, error) {
	switch format {
	case FormatMarkdown, FormatText:
		return string(data), nil
	case FormatHTML:
		md, err := htmltomarkdown.ConvertString(string(data))
		if err != nil {
			return "", fmt.Errorf("html conversion failed: %w", err)
		}
		return md, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ReadFile loads a document from disk and normalizes it to markdown.
func ReadFile(path string) (string, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return ToMarkdown(data, format)
}
