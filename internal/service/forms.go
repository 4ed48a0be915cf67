package service

import (
	"strings"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/editor"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
)

// Form messages shown to admins.
const (
	MsgClassificationRequired = "Section y Category son requeridos"
	MsgEmptyHTML              = "El contenido HTML no puede estar vacío"
)

// LibraryForm is a library write in either of two shapes: the modal shape
// (Fields, ExistingTags, NewTagInput) or a direct Data/Tag body. Fields
// wins when both are present.
type LibraryForm struct {
	Section      string
	Category     string
	Order        *int
	Fields       []editor.Row
	ExistingTags []string
	NewTagInput  string
	Data         *domain.Record
	Tag          []string
}

// Input validates the form and turns it into a store payload.
func (f LibraryForm) Input() (domain.ContentLibraryInput, error) {
	section, category := strings.TrimSpace(f.Section), strings.TrimSpace(f.Category)
	if !domain.HasClassification(section, category) {
		return domain.ContentLibraryInput{}, domainerrors.Validation(MsgClassificationRequired)
	}

	in := domain.ContentLibraryInput{Section: section, Category: category, Order: f.Order}
	if len(f.Fields) > 0 {
		rec, err := editor.RecordFromRows(f.Fields)
		if err != nil {
			return domain.ContentLibraryInput{}, err
		}
		in.Data = rec
		in.Tag = editor.MergeTags(f.ExistingTags, f.NewTagInput)
		return in, nil
	}

	if f.Data.Len() == 0 {
		return domain.ContentLibraryInput{}, editor.ErrNoDataFields
	}
	in.Data = f.Data
	in.Tag = editor.MergeTags(f.Tag, f.NewTagInput)
	return in, nil
}

// RichForm is a rich content write.
type RichForm struct {
	Section      string
	Category     string
	HTML         string
	PlainText    string
	ExistingTags []string
	NewTagInput  string
}

// Input validates the form and turns it into a store payload. A blank
// plain text is left for the service to derive.
func (f RichForm) Input() (domain.RichContentInput, error) {
	section, category := strings.TrimSpace(f.Section), strings.TrimSpace(f.Category)
	if !domain.HasClassification(section, category) {
		return domain.RichContentInput{}, domainerrors.Validation(MsgClassificationRequired)
	}
	if domain.IsBlankHTML(f.HTML) {
		return domain.RichContentInput{}, domainerrors.Validation(MsgEmptyHTML)
	}

	in := domain.RichContentInput{
		HTML:     f.HTML,
		Section:  section,
		Category: category,
		Tag:      editor.MergeTags(f.ExistingTags, f.NewTagInput),
	}
	if text := strings.TrimSpace(f.PlainText); text != "" {
		in.PlainText = &text
	}
	return in, nil
}
