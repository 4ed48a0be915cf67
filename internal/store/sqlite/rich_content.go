package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

const richContentColumns = `id, html, plain_text, section, category, tag, created_at`

func scanRichContent(scanner interface{ Scan(dest ...any) error }) (*domain.RichContentItem, error) {
	var (
		item      domain.RichContentItem
		plain     sql.NullString
		tags      sql.NullString
		createdAt string
		err       error
	)
	if err = scanner.Scan(&item.ID, &item.HTML, &plain, &item.Section, &item.Category, &tags, &createdAt); err != nil {
		return nil, err
	}
	if plain.Valid {
		item.PlainText = &plain.String
	}
	if item.Tag, err = decodeTags(tags); err != nil {
		return nil, err
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListRichContent returns the items matching filter, newest first.
func (s *Store) ListRichContent(ctx context.Context, filter domain.ContentFilter) ([]domain.RichContentItem, error) {
	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+richContentColumns+` FROM rich_content`+where+` ORDER BY created_at DESC, id DESC`, args...)
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
		`SELECT `+richContentColumns+` FROM rich_content WHERE id = ?`, id))
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
	tags, err := encodeTags(in.Tag)
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO rich_content (html, plain_text, section, category, tag, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		in.HTML, nullableString(in.PlainText), in.Section, in.Category, tags, formatTime(s.now()),
	).Scan(&id)
	if err != nil {
		return nil, wrapErr("insert rich_content", err)
	}
	return s.GetRichContent(ctx, id)
}

// UpdateRichContent replaces the writable columns of id.
func (s *Store) UpdateRichContent(ctx context.Context, id int64, in domain.RichContentInput) (*domain.RichContentItem, error) {
	if err := store.Validate(in.Section, in.Category, in.Tag); err != nil {
		return nil, err
	}
	tags, err := encodeTags(in.Tag)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rich_content
		SET html = ?, plain_text = ?, section = ?, category = ?, tag = ?
		WHERE id = ?`,
		in.HTML, nullableString(in.PlainText), in.Section, in.Category, tags, id,
	)
	if err != nil {
		return nil, wrapErr("update rich_content", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, store.ErrUpdateTargetMissing
	}
	return s.GetRichContent(ctx, id)
}

// DeleteRichContent removes id.
func (s *Store) DeleteRichContent(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rich_content WHERE id = ?`, id)
	return wrapErr("delete rich_content", err)
}

// RichContentSections returns the distinct sections.
func (s *Store) RichContentSections(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, `SELECT section FROM rich_content`)
}

// RichContentCategories returns the distinct categories, optionally
// restricted to one section.
func (s *Store) RichContentCategories(ctx context.Context, section string) ([]string, error) {
	if section == "" {
		return s.distinctColumn(ctx, `SELECT category FROM rich_content`)
	}
	return s.distinctColumn(ctx, `SELECT category FROM rich_content WHERE section = ?`, section)
}
