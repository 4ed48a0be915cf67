// Package search provides full-text search over Arcana content. A local
// Bleve index is always maintained; Meilisearch serves queries when it is
// configured and healthy.
package search

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/richtext"
)

// titleKeys are the data keys used as a content library item's title, in
// order of preference.
var titleKeys = []string{"title", "titulo", "name", "nombre"}

// Document is the indexed form of a content item.
type Document struct {
	ID        string             `json:"id"` // "<type>-<item id>"
	Type      domain.ContentType `json:"type"`
	ItemID    int64              `json:"item_id"`
	Section   string             `json:"section"`
	Category  string             `json:"category"`
	Tags      []string           `json:"tags,omitempty"`
	Title     string             `json:"title"`
	Body      string             `json:"body"`
	CreatedAt int64              `json:"created_at"` // unix seconds
}

// DocumentID returns the index id of an item.
func DocumentID(t domain.ContentType, id int64) string {
	return string(t) + "-" + strconv.FormatInt(id, 10)
}

// FromLibrary builds the document for a content library item.
func FromLibrary(item domain.ContentLibraryItem) Document {
	var (
		title string
		body  []string
	)
	for _, k := range item.Data.Keys() {
		v, _ := item.Data.Get(k)
		body = append(body, k+": "+v.String())
	}
	for _, k := range titleKeys {
		if v, ok := item.Data.Get(k); ok {
			if s, ok := v.AsString(); ok && s != "" {
				title = s
				break
			}
		}
	}

	return Document{
		ID:        DocumentID(domain.ContentLibrary, item.ID),
		Type:      domain.ContentLibrary,
		ItemID:    item.ID,
		Section:   item.Section,
		Category:  item.Category,
		Tags:      item.Tag,
		Title:     norm.NFC.String(title),
		Body:      norm.NFC.String(strings.Join(body, "\n")),
		CreatedAt: item.CreatedAt.Unix(),
	}
}

// FromRich builds the document for a rich content item.
func FromRich(item domain.RichContentItem) Document {
	body := richtext.Markdown(item.HTML)
	if item.PlainText != nil && *item.PlainText != "" {
		body += "\n" + *item.PlainText
	}

	return Document{
		ID:        DocumentID(domain.RichContent, item.ID),
		Type:      domain.RichContent,
		ItemID:    item.ID,
		Section:   item.Section,
		Category:  item.Category,
		Tags:      item.Tag,
		Title:     norm.NFC.String(richtext.Truncate(item.HTML, richtext.PreviewLength)),
		Body:      norm.NFC.String(body),
		CreatedAt: item.CreatedAt.Unix(),
	}
}

// ToMap converts the document to the field map indexed by Bleve.
func (d Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"item_id":    float64(d.ItemID),
		"section":    d.Section,
		"category":   d.Category,
		"title":      d.Title,
		"body":       d.Body,
		"created_at": float64(d.CreatedAt),
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
