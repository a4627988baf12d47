package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     Format
		wantErr  bool
	}{
		{name: "markdown", fileName: "notes.md", want: FormatMarkdown},
		{name: "markdown long extension", fileName: "notes.markdown", want: FormatMarkdown},
		{name: "plain text", fileName: "syllabus.txt", want: FormatText},
		{name: "no extension treated as text", fileName: "README", want: FormatText},
		{name: "html", fileName: "page.html", want: FormatHTML},
		{name: "htm", fileName: "page.htm", want: FormatHTML},
		{name: "uppercase extension", fileName: "NOTES.MD", want: FormatMarkdown},
		{name: "pdf unsupported", fileName: "doc.pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.fileName)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToMarkdown_Passthrough(t *testing.T) {
	text := "# Heading\n\nbody text"

	md, err := ToMarkdown([]byte(text), FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, text, md)

	md, err = ToMarkdown([]byte(text), FormatText)
	require.NoError(t, err)
	assert.Equal(t, text, md)
}

func TestToMarkdown_HTML(t *testing.T) {
	html := "<h1>Course Syllabus</h1><p>Welcome to the course.</p><h2>Schedule</h2><p>Weekly sessions.</p>"

	md, err := ToMarkdown([]byte(html), FormatHTML)
	require.NoError(t, err)

	assert.Contains(t, md, "# Course Syllabus")
	assert.Contains(t, md, "## Schedule")
	assert.Contains(t, md, "Welcome to the course.")
}

func TestToMarkdown_UnknownFormat(t *testing.T) {
	_, err := ToMarkdown([]byte("data"), Format("docx"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "doc.md")
	content := "# Title\n\nparagraph"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	md, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, md)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
