package synthesis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jordan/curriculum-builder/internal/types"
)

func TestItemExcerpt_CapsLongText(t *testing.T) {
	item := types.ContentItem{
		ID:         "c1",
		Kind:       types.ContentDocument,
		Title:      "Long Lesson",
		SourceText: strings.Repeat("word ", 500),
	}

	excerpt := itemExcerpt(item)
	assert.LessOrEqual(t, len(excerpt), excerptLimit)
	assert.True(t, strings.HasPrefix(excerpt, "word word"))
}

func TestItemExcerpt_NeverSplitsRunes(t *testing.T) {
	item := types.ContentItem{
		ID:         "c1",
		Kind:       types.ContentVideo,
		Title:      "日本語のレッスン",
		Transcript: strings.Repeat("講義の文字起こし ", 200),
	}

	excerpt := itemExcerpt(item)
	assert.LessOrEqual(t, len(excerpt), excerptLimit)
	assert.True(t, utf8.ValidString(excerpt))
}

func TestItemExcerpt_ShortTextUntouched(t *testing.T) {
	item := types.ContentItem{ID: "c1", Kind: types.ContentDocument, SourceText: "a short  piece\nof text"}
	assert.Equal(t, "a short piece of text", itemExcerpt(item))
}
