// Package ingestion reads local content files into ContentItems for CLI
// runs. The HTTP path receives finalized items from the caller and never
// touches this package.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jordan/curriculum-builder/internal/types"
)

// ReadContentFile loads one file as a content item. HTML files are
// reduced to visible text; .txt and .md files are read as-is. Files with
// a .transcript.txt suffix become video items carrying a transcript.
func ReadContentFile(path string) (types.ContentItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ContentItem{}, fmt.Errorf("failed to read content file %s: %w", path, err)
	}

	base := filepath.Base(path)
	item := types.ContentItem{
		ID:    uuid.NewString(),
		Kind:  types.ContentDocument,
		Title: titleFromFilename(base),
	}

	switch {
	case strings.HasSuffix(base, ".transcript.txt"):
		item.Kind = types.ContentVideo
		item.Transcript = strings.TrimSpace(string(data))
	case strings.HasSuffix(base, ".html") || strings.HasSuffix(base, ".htm"):
		text, title, err := extractHTML(string(data))
		if err != nil {
			return types.ContentItem{}, fmt.Errorf("failed to parse HTML in %s: %w", path, err)
		}
		item.SourceText = text
		if title != "" {
			item.Title = title
		}
	default:
		item.SourceText = strings.TrimSpace(string(data))
	}

	return item, nil
}

// LoadDirectory reads every supported file in dir, in name order so runs
// are reproducible.
func LoadDirectory(dir string) ([]types.ContentItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".md") ||
			strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	items := make([]types.ContentItem, 0, len(names))
	for _, name := range names {
		item, err := ReadContentFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// extractHTML pulls the page title and visible text out of an HTML
// document, skipping script and style content.
func extractHTML(html string) (text, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript").Remove()
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	text = strings.Join(strings.Fields(body.Text()), " ")
	return text, title, nil
}

func titleFromFilename(name string) string {
	name = strings.TrimSuffix(name, ".transcript.txt")
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}
