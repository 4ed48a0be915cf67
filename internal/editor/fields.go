// Package editor converts between stored content and the editable form
// state of the admin modals: data rows for schema-less records and the
// locked/new split of tags.
package editor

import (
	"strings"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	domainerrors "github.com/arcanaoficial/arcana-server/internal/errors"
)

// MsgNoDataFields is reported when a record would be saved without data.
const MsgNoDataFields = "Debes agregar al menos un campo de datos"

// ErrNoDataFields is returned by RecordFromRows when no row is complete.
var ErrNoDataFields = domainerrors.Validation(MsgNoDataFields)

// Row is one editable key/value pair. Rows loaded from a stored record have
// IsNew false; the admin UI locks their key.
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	IsNew bool   `json:"is_new,omitempty"`
}

// NewRow returns an empty editable row.
func NewRow() Row {
	return Row{IsNew: true}
}

// RowsFromRecord lists r's entries in insertion order. An empty record
// yields a single empty row so the form always has something to fill.
func RowsFromRecord(r *domain.Record) []Row {
	if r.Len() == 0 {
		return []Row{NewRow()}
	}
	rows := make([]Row, 0, r.Len())
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		rows = append(rows, Row{Key: k, Value: v.String()})
	}
	return rows
}

// RecordFromRows builds a record from the rows whose trimmed key and value
// are both non-blank. Values go through CoerceValue; a repeated key keeps
// the last value.
func RecordFromRows(rows []Row) (*domain.Record, error) {
	rec := domain.NewRecord()
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		value := strings.TrimSpace(row.Value)
		if key == "" || value == "" {
			continue
		}
		rec.Set(key, CoerceValue(value))
	}
	if rec.Len() == 0 {
		return nil, ErrNoDataFields
	}
	return rec, nil
}

// AddField appends an empty row.
func AddField(rows []Row) []Row {
	return append(rows, NewRow())
}

// RemoveField deletes the row at index. Out of range indexes are ignored.
func RemoveField(rows []Row, index int) []Row {
	if index < 0 || index >= len(rows) {
		return rows
	}
	out := make([]Row, 0, len(rows)-1)
	out = append(out, rows[:index]...)
	return append(out, rows[index+1:]...)
}
