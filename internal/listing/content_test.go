package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

func libraryItem(id int64, section, category string, tags []string, data map[string]string) domain.ContentLibraryItem {
	rec := domain.NewRecord()
	for k, v := range data {
		rec.Set(k, domain.NewString(v))
	}
	return domain.ContentLibraryItem{ID: id, Section: section, Category: category, Tag: tags, Data: *rec}
}

func TestMatchContentLibrary(t *testing.T) {
	item := libraryItem(42, "Tarot", "Arcanos Mayores", []string{"Amor"}, map[string]string{"titulo": "La Emperatriz"})

	for _, term := range []string{"tarot", "mayores", "42", "amor", "emperatriz", `"titulo"`} {
		assert.True(t, MatchContentLibrary(item, Lower(term)), term)
	}
	assert.False(t, MatchContentLibrary(item, "runas"))
}

func TestMatchRichContent(t *testing.T) {
	plain := "Ritual de luna llena"
	item := domain.RichContentItem{ID: 5, HTML: "<p><strong>Ritual</strong></p>", PlainText: &plain, Section: "rituales", Category: "luna"}

	assert.True(t, MatchRichContent(item, "<strong>"))
	assert.True(t, MatchRichContent(item, "llena"))
	assert.True(t, MatchRichContent(item, "5"))
	assert.False(t, MatchRichContent(item, "sol"))

	item.PlainText = nil
	assert.False(t, MatchRichContent(item, "llena"))
}

func TestFilterThenPaginate_LibraryItems(t *testing.T) {
	var items []domain.ContentLibraryItem
	for i := int64(1); i <= 23; i++ {
		section := "tarot"
		if i%2 == 0 {
			section = "runas"
		}
		items = append(items, libraryItem(i, section, "general", nil, nil))
	}

	filtered := Filter(items, "TAROT", MatchContentLibrary)
	assert.Len(t, filtered, 12)

	page := Paginate(filtered, 2, PageSize)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(21), page.Items[0].ID)
}
