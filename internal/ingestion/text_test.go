package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/curriculum-builder/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReadContentFile_PlainText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "intro-to-go.txt", "  Go is a language.  \n")

	item, err := ReadContentFile(filepath.Join(dir, "intro-to-go.txt"))
	require.NoError(t, err)
	assert.Equal(t, types.ContentDocument, item.Kind)
	assert.Equal(t, "intro to go", item.Title)
	assert.Equal(t, "Go is a language.", item.SourceText)
	assert.Empty(t, item.Transcript)
	assert.NotEmpty(t, item.ID)
}

func TestReadContentFile_Transcript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lesson_one.transcript.txt", "Welcome to the course.\n")

	item, err := ReadContentFile(filepath.Join(dir, "lesson_one.transcript.txt"))
	require.NoError(t, err)
	assert.Equal(t, types.ContentVideo, item.Kind)
	assert.Equal(t, "lesson one", item.Title)
	assert.Equal(t, "Welcome to the course.", item.Transcript)
	assert.Equal(t, "Welcome to the course.", item.Text())
}

func TestReadContentFile_HTML(t *testing.T) {
	dir := t.TempDir()
	html := `<html><head><title>Channel Basics</title><script>var x = 1;</script></head>
<body><h1>Channels</h1><p>Channels carry values.</p><style>p { color: red }</style></body></html>`
	writeFile(t, dir, "channels.html", html)

	item, err := ReadContentFile(filepath.Join(dir, "channels.html"))
	require.NoError(t, err)
	assert.Equal(t, types.ContentDocument, item.Kind)
	assert.Equal(t, "Channel Basics", item.Title)
	assert.Contains(t, item.SourceText, "Channels carry values.")
	assert.NotContains(t, item.SourceText, "var x")
	assert.NotContains(t, item.SourceText, "color: red")
}

func TestReadContentFile_Missing(t *testing.T) {
	_, err := ReadContentFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-second.txt", "second")
	writeFile(t, dir, "a-first.txt", "first")
	writeFile(t, dir, "notes.md", "markdown notes")
	writeFile(t, dir, "ignored.pdf", "binary-ish")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	items, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Name order keeps runs reproducible.
	assert.Equal(t, "a first", items[0].Title)
	assert.Equal(t, "b second", items[1].Title)
	assert.Equal(t, "notes", items[2].Title)
}

func TestLoadDirectory_Missing(t *testing.T) {
	_, err := LoadDirectory(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "intro to go", titleFromFilename("intro_to-go.txt"))
	assert.Equal(t, "lesson 3", titleFromFilename("lesson 3.transcript.txt"))
	assert.Equal(t, "page", titleFromFilename("page.html"))
}
