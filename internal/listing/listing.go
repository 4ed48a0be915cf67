// Package listing implements the search, pagination and page-window logic
// shared by every paginated admin table. Everything here is pure.
package listing

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PageSize is the number of rows shown per page.
const PageSize = 10

// WindowSize is the maximum number of page buttons shown at once.
const WindowSize = 5

// Matcher reports whether item matches an already lowercased search term.
type Matcher[T any] func(item T, term string) bool

// Page is one visible slice of a filtered result set.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// Casers are stateful, so each goroutine borrows its own.
var casers = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

// Lower lowercases s with full Unicode case mapping.
func Lower(s string) string {
	c := casers.Get().(*cases.Caser)
	defer casers.Put(c)
	return c.String(s)
}

// Contains reports whether the lowercased form of field contains term.
// term must already be lowercased.
func Contains(field, term string) bool {
	return strings.Contains(Lower(field), term)
}

// AnyContains reports whether any of fields contains term.
func AnyContains(fields []string, term string) bool {
	for _, f := range fields {
		if Contains(f, term) {
			return true
		}
	}
	return false
}

// Filter returns the items matching term, in input order. An empty term
// matches everything.
func Filter[T any](items []T, term string, match Matcher[T]) []T {
	if term == "" || match == nil {
		return items
	}
	term = Lower(term)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item, term) {
			out = append(out, item)
		}
	}
	return out
}

// TotalPages returns ceil(count/size), never less than one.
func TotalPages(count, size int) int {
	if size <= 0 {
		size = PageSize
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage keeps page within [1, total].
func ClampPage(page, total int) int {
	if page > total && total > 0 {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the requested page of items, clamping the page number
// into range.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	total := TotalPages(len(items), size)
	page = ClampPage(page, total)

	start := (page - 1) * size
	end := min(start+size, len(items))
	visible := []T{}
	if start < end {
		visible = items[start:end]
	}

	return Page[T]{
		Items:      visible,
		Page:       page,
		TotalPages: total,
		TotalItems: len(items),
	}
}

// PageRange returns the page numbers to show as buttons: a window of up to
// WindowSize pages around current that never leaves [1, total].
func PageRange(current, total int) []int {
	start := max(1, current-2)
	end := min(total, start+WindowSize-1)
	start = max(1, end-WindowSize+1)

	pages := make([]int, 0, WindowSize)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
