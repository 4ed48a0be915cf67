// Package richtext derives text from the HTML produced by the rich content editor.
package richtext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// PreviewLength is the number of characters shown in listing previews.
const PreviewLength = 100

var whitespaceRegex = regexp.MustCompile(`\s+`)

// StripTags returns the concatenated text content of s with entities
// decoded and no whitespace added or collapsed.
func StripTags(s string) string {
	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a read error; either way the text so far is all there is.
			return buf.String()
		case html.TextToken:
			buf.Write(z.Text())
		}
	}
}

// Truncate strips tags and caps the text at max characters, appending
// "..." when anything was cut.
func Truncate(s string, max int) string {
	text := StripTags(s)
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}

// PlainText extracts readable text, separating block elements with a
// space and collapsing whitespace.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(whitespaceRegex.ReplaceAllString(StripTags(s), " "))
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(buf.String(), " "))
}

func extractText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
		if isBlock(n.Data) {
			buf.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}

	if n.Type == html.ElementNode && isBlock(n.Data) {
		buf.WriteString(" ")
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "blockquote", "pre",
		"h1", "h2", "h3", "h4", "h5", "h6", "tr", "td", "th":
		return true
	}
	return false
}

// IsEmpty reports whether s renders nothing: no text beyond whitespace and
// no embedded media. The editor's empty paragraph is empty.
func IsEmpty(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return true
		case html.TextToken:
			if strings.TrimSpace(string(z.Text())) != "" {
				return false
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "img", "iframe", "video", "audio", "hr":
				return false
			}
		}
	}
}

// Markdown converts s to Markdown for search documents. It falls back to
// the plain text when conversion fails.
func Markdown(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return PlainText(s)
	}
	return strings.TrimSpace(md)
}
