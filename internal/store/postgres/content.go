package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

const (
	contentLibraryColumns = `id, data::text, section, category, "order", to_json(tag)::text, created_at`
	contentLibraryOrder   = ` ORDER BY "order" ASC NULLS LAST, created_at DESC, id DESC`

	richContentColumns = `id, html, plain_text, section, category, to_json(tag)::text, created_at`
	richContentOrder   = ` ORDER BY created_at DESC, id DESC`
)

func scanContentLibrary(scanner interface{ Scan(dest ...any) error }) (*domain.ContentLibraryItem, error) {
	var (
		item  domain.ContentLibraryItem
		data  string
		order sql.NullInt64
		tags  sql.NullString
	)
	if err := scanner.Scan(&item.ID, &data, &item.Section, &item.Category, &order, &tags, &item.CreatedAt); err != nil {
		return nil, err
	}
	rec, err := domain.ParseRecord([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode data of item %d: %w", item.ID, err)
	}
	item.Data = *rec
	if order.Valid {
		o := int(order.Int64)
		item.Order = &o
	}
	if item.Tag, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &item, nil
}

func scanRichContent(scanner interface{ Scan(dest ...any) error }) (*domain.RichContentItem, error) {
	var (
		item  domain.RichContentItem
		plain sql.NullString
		tags  sql.NullString
		err   error
	)
	if err = scanner.Scan(&item.ID, &item.HTML, &plain, &item.Section, &item.Category, &tags, &item.CreatedAt); err != nil {
		return nil, err
	}
	if plain.Valid {
		item.PlainText = &plain.String
	}
	if item.Tag, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListContentLibrary returns the items matching filter.
func (s *Store) ListContentLibrary(ctx context.Context, filter domain.ContentFilter) ([]domain.ContentLibraryItem, error) {
	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contentLibraryColumns+` FROM content_library`+where+contentLibraryOrder, args...)
	if err != nil {
		return nil, wrapErr("list content_library", err)
	}
	defer rows.Close()

	items := []domain.ContentLibraryItem{}
	for rows.Next() {
		item, err := scanContentLibrary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetContentLibrary returns one item or store.ErrNotFound.
func (s *Store) GetContentLibrary(ctx context.Context, id int64) (*domain.ContentLibraryItem, error) {
	item, err := scanContentLibrary(s.db.QueryRowContext(ctx,
		`SELECT `+contentLibraryColumns+` FROM content_library WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return item, err
}

// CreateContentLibrary inserts an item.
func (s *Store) CreateContentLibrary(ctx context.Context, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error) {
	if err := store.Validate(in.Section, in.Category, in.Tag); err != nil {
		return nil, err
	}
	item, err := scanContentLibrary(s.db.QueryRowContext(ctx, `
		INSERT INTO content_library (data, section, category, "order", tag)
		VALUES ($1::jsonb, $2, $3, $4, $5)
		RETURNING `+contentLibraryColumns,
		in.Data.JSON(), in.Section, in.Category, nullableInt(in.Order), tagsArg(in.Tag),
	))
	if err != nil {
		return nil, wrapErr("insert content_library", err)
	}
	return item, nil
}

// UpdateContentLibrary replaces the writable columns of id.
func (s *Store) UpdateContentLibrary(ctx context.Context, id int64, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error) {
	if err := store.Validate(in.Section, in.Category, in.Tag); err != nil {
		return nil, err
	}
	item, err := scanContentLibrary(s.db.QueryRowContext(ctx, `
		UPDATE content_library
		SET data = $1::jsonb, section = $2, category = $3, "order" = $4, tag = $5
		WHERE id = $6
		RETURNING `+contentLibraryColumns,
		in.Data.JSON(), in.Section, in.Category, nullableInt(in.Order), tagsArg(in.Tag), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUpdateTargetMissing
	}
	if err != nil {
		return nil, wrapErr("update content_library", err)
	}
	return item, nil
}

// DeleteContentLibrary removes id. Deleting a missing id is not an error.
func (s *Store) DeleteContentLibrary(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content_library WHERE id = $1`, id)
	return wrapErr("delete content_library", err)
}

// ContentLibrarySections returns the distinct sections.
func (s *Store) ContentLibrarySections(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, `SELECT DISTINCT section FROM content_library`)
}

// ContentLibraryCategories returns the distinct categories, optionally
// restricted to one section.
func (s *Store) ContentLibraryCategories(ctx context.Context, section string) ([]string, error) {
	if section == "" {
		return s.distinctColumn(ctx, `SELECT DISTINCT category FROM content_library`)
	}
	return s.distinctColumn(ctx, `SELECT DISTINCT category FROM content_library WHERE section = $1`, section)
}

// ListRichContent returns the items matching filter, newest first.
func (s *Store) ListRichContent(ctx context.Context, filter domain.ContentFilter) ([]domain.RichContentItem, error) {
	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+richContentColumns+` FROM rich_content`+where+richContentOrder, args...)
	if err != nil {
		return nil, wrapErr("list rich_content", err)
	}
	defer rows.Close()

	items := []domain.RichContentItem{}
	for rows.Next() {
		item, err := scanRichContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetRichContent returns one item or store.ErrNotFound.
func (s *Store) GetRichContent(ctx context.Context, id int64) (*domain.RichContentItem, error) {
	item, err := scanRichContent(s.db.QueryRowContext(ctx,
		`SELECT `+richContentColumns+` FROM rich_content WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return item, err
}

// CreateRichContent inserts an item.
func (s *Store) CreateRichContent(ctx context.Context, in domain.RichContentInput) (*domain.RichContentItem, error) {
	if err := store.Validate(in.Section, in.Category, in.Tag); err != nil {
		return nil, err
	}
	item, err := scanRichContent(s.db.QueryRowContext(ctx, `
		INSERT INTO rich_content (html, plain_text, section, category, tag)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+richContentColumns,
		in.HTML, nullableString(in.PlainText), in.Section, in.Category, tagsArg(in.Tag),
	))
	if err != nil {
		return nil, wrapErr("insert rich_content", err)
	}
	return item, nil
}

// UpdateRichContent replaces the writable columns of id.
func (s *Store) UpdateRichContent(ctx context.Context, id int64, in domain.RichContentInput) (*domain.RichContentItem, error) {
	if err := store.Validate(in.Section, in.Category, in.Tag); err != nil {
		return nil, err
	}
	item, err := scanRichContent(s.db.QueryRowContext(ctx, `
		UPDATE rich_content
		SET html = $1, plain_text = $2, section = $3, category = $4, tag = $5
		WHERE id = $6
		RETURNING `+richContentColumns,
		in.HTML, nullableString(in.PlainText), in.Section, in.Category, tagsArg(in.Tag), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUpdateTargetMissing
	}
	if err != nil {
		return nil, wrapErr("update rich_content", err)
	}
	return item, nil
}

// DeleteRichContent removes id.
func (s *Store) DeleteRichContent(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rich_content WHERE id = $1`, id)
	return wrapErr("delete rich_content", err)
}

// RichContentSections returns the distinct sections.
func (s *Store) RichContentSections(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, `SELECT DISTINCT section FROM rich_content`)
}

// RichContentCategories returns the distinct categories, optionally
// restricted to one section.
func (s *Store) RichContentCategories(ctx context.Context, section string) ([]string, error) {
	if section == "" {
		return s.distinctColumn(ctx, `SELECT DISTINCT category FROM rich_content`)
	}
	return s.distinctColumn(ctx, `SELECT DISTINCT category FROM rich_content WHERE section = $1`, section)
}
