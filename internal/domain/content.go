package domain

import (
	"strings"
	"time"
)

// EmptyParagraph is the markup a rich text editor leaves behind when cleared.
const EmptyParagraph = "<p><br></p>"

// ContentType names a content collection.
type ContentType string

// Content collections.
const (
	ContentLibrary ContentType = "content_library"
	RichContent    ContentType = "rich_content"
)

// ContentLibraryItem is a schema-less content record classified by section
// and category.
type ContentLibraryItem struct {
	ID        int64     `json:"id"`
	Data      Record    `json:"data"`
	Section   string    `json:"section"`
	Category  string    `json:"category"`
	Order     *int      `json:"order"`
	Tag       []string  `json:"tag"` // nil when untagged, never empty
	CreatedAt time.Time `json:"created_at"`
}

// RichContentItem is an HTML content record classified by section and category.
type RichContentItem struct {
	ID        int64     `json:"id"`
	HTML      string    `json:"html"`
	PlainText *string   `json:"plain_text"`
	Section   string    `json:"section"`
	Category  string    `json:"category"`
	Tag       []string  `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentFilter constrains a listing by equality on section and category.
// Empty fields do not constrain.
type ContentFilter struct {
	Section  string
	Category string
}

// IsZero reports whether the filter constrains nothing.
func (f ContentFilter) IsZero() bool {
	return f.Section == "" && f.Category == ""
}

// ContentLibraryInput is the full payload written on insert or update.
type ContentLibraryInput struct {
	Data     *Record
	Section  string
	Category string
	Order    *int
	Tag      []string
}

// RichContentInput is the full payload written on insert or update.
type RichContentInput struct {
	HTML      string
	PlainText *string
	Section   string
	Category  string
	Tag       []string
}

// NormalizeTags returns nil for an empty tag list so it is stored as null.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// HasClassification reports whether both section and category are set.
func HasClassification(section, category string) bool {
	return strings.TrimSpace(section) != "" && strings.TrimSpace(category) != ""
}

// IsBlankHTML reports whether html is empty or only the empty paragraph.
func IsBlankHTML(html string) bool {
	trimmed := strings.TrimSpace(html)
	return trimmed == "" || trimmed == EmptyParagraph
}
