package listing

import (
	"strconv"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

// MatchContentLibrary matches section, category, id, any tag or the JSON
// form of the item's data.
func MatchContentLibrary(item domain.ContentLibraryItem, term string) bool {
	return Contains(item.Section, term) ||
		Contains(item.Category, term) ||
		Contains(strconv.FormatInt(item.ID, 10), term) ||
		AnyContains(item.Tag, term) ||
		Contains(item.Data.JSON(), term)
}

// MatchRichContent matches section, category, id, any tag, the markup or
// the plain text.
func MatchRichContent(item domain.RichContentItem, term string) bool {
	if Contains(item.Section, term) ||
		Contains(item.Category, term) ||
		Contains(strconv.FormatInt(item.ID, 10), term) ||
		AnyContains(item.Tag, term) ||
		Contains(item.HTML, term) {
		return true
	}
	return item.PlainText != nil && Contains(*item.PlainText, term)
}

// MatchSubscriber matches first or last name.
func MatchSubscriber(s domain.Subscriber, term string) bool {
	return Contains(s.FirstName, term) || Contains(s.LastName, term)
}
