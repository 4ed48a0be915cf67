package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/store"
)

// contentLibraryColumns must match the scan order in scanContentLibrary.
const contentLibraryColumns = `id, data, section, category, "order", tag, created_at`

const contentLibraryOrder = ` ORDER BY "order" ASC NULLS LAST, created_at DESC, id DESC`

func scanContentLibrary(scanner interface{ Scan(dest ...any) error }) (*domain.ContentLibraryItem, error) {
	var (
		item      domain.ContentLibraryItem
		data      string
		order     sql.NullInt64
		tags      sql.NullString
		createdAt string
	)
	if err := scanner.Scan(&item.ID, &data, &item.Section, &item.Category, &order, &tags, &createdAt); err != nil {
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
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
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
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contentLibraryColumns+` FROM content_library WHERE id = ?`, id)

	item, err := scanContentLibrary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return item, err
}

// CreateContentLibrary inserts an item and returns it with its id and timestamp.
func (s *Store) CreateContentLibrary(ctx context.Context, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error) {
	if err := store.Validate(in.Section, in.Category, in.Tag); err != nil {
		return nil, err
	}
	tags, err := encodeTags(in.Tag)
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO content_library (data, section, category, "order", tag, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		in.Data.JSON(), in.Section, in.Category, nullableInt(in.Order), tags, formatTime(s.now()),
	).Scan(&id)
	if err != nil {
		return nil, wrapErr("insert content_library", err)
	}
	return s.GetContentLibrary(ctx, id)
}

// UpdateContentLibrary replaces the writable columns of id.
func (s *Store) UpdateContentLibrary(ctx context.Context, id int64, in domain.ContentLibraryInput) (*domain.ContentLibraryItem, error) {
	if err := store.Validate(in.Section, in.Category, in.Tag); err != nil {
		return nil, err
	}
	tags, err := encodeTags(in.Tag)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE content_library
		SET data = ?, section = ?, category = ?, "order" = ?, tag = ?
		WHERE id = ?`,
		in.Data.JSON(), in.Section, in.Category, nullableInt(in.Order), tags, id,
	)
	if err != nil {
		return nil, wrapErr("update content_library", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, store.ErrUpdateTargetMissing
	}
	return s.GetContentLibrary(ctx, id)
}

// DeleteContentLibrary removes id. Deleting a missing id is not an error.
func (s *Store) DeleteContentLibrary(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content_library WHERE id = ?`, id)
	return wrapErr("delete content_library", err)
}

// ContentLibrarySections returns the distinct sections.
func (s *Store) ContentLibrarySections(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, `SELECT section FROM content_library`)
}

// ContentLibraryCategories returns the distinct categories, optionally
// restricted to one section.
func (s *Store) ContentLibraryCategories(ctx context.Context, section string) ([]string, error) {
	if section == "" {
		return s.distinctColumn(ctx, `SELECT category FROM content_library`)
	}
	return s.distinctColumn(ctx, `SELECT category FROM content_library WHERE section = ?`, section)
}
