package pgstore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"

	"github.com/jfoltran/envclone/internal/dbpair"
)

// Table is the record-shape-dependent half of the adapter: a thin generic
// wrapper over the shared Store, scoped to one entity's record type T.
// T's fields are mapped to columns via `db:"..."` struct tags, the same
// convention pgx.RowToStructByName uses for reads.
type Table[T any] struct {
	store   *Store
	name    string
	columns []string
}

// NewTable binds T to entity name on store. columns lists the destination
// column names in the order Write should insert them; it is also used to
// build the SELECT list for ReadChunk so that column order is explicit
// rather than relying on `SELECT *`.
func NewTable[T any](store *Store, entity string, columns []string) *Table[T] {
	return &Table[T]{store: store, name: entity, columns: columns}
}

func (t *Table[T]) ReadChunk(ctx context.Context, entity string, query Query, page dbpair.Pagination, opts dbpair.ReadOptions) ([]T, error) {
	sortField := opts.SortField
	if sortField == "" {
		sortField = "id"
	}
	order := "ASC"
	if opts.SortDescending {
		order = "DESC"
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY %s %s OFFSET $%d LIMIT $%d",
		selectList(t.columns), quoteIdent(entity), query.whereClause(), quoteIdent(sortField), order,
		len(query.Args)+1, len(query.Args)+2,
	)
	args := append(append([]any{}, query.Args...), int64(page.StartPosition), int64(page.Limit))

	rows, err := t.store.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("pgstore: read chunk from %s: %w", entity, err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("pgstore: decode rows from %s: %w", entity, err)
	}
	return records, nil
}

func (t *Table[T]) Write(ctx context.Context, entity string, records []T) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, len(records))
	for i := range records {
		row, err := structToRow(records[i], t.columns)
		if err != nil {
			return fmt.Errorf("pgstore: map record to row: %w", err)
		}
		rows[i] = row
	}

	n, err := t.store.pool.CopyFrom(ctx, pgx.Identifier{entity}, t.columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("pgstore: copy %d rows into %s: %w", len(records), entity, err)
	}
	if int(n) != len(records) {
		return fmt.Errorf("pgstore: copied %d of %d rows into %s", n, len(records), entity)
	}
	return nil
}

func selectList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	out := quoteIdent(columns[0])
	for _, c := range columns[1:] {
		out += ", " + quoteIdent(c)
	}
	return out
}

// structToRow reads one value per column off record by matching each
// column name against T's `db:"..."` struct tags, falling back to a
// case-insensitive field name match.
func structToRow(record any, columns []string) ([]any, error) {
	v := reflect.ValueOf(record)
	typ := v.Type()

	fieldByColumn := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Tag.Get("db")
		if name == "" {
			name = field.Name
		}
		fieldByColumn[name] = i
	}

	row := make([]any, len(columns))
	for i, col := range columns {
		idx, ok := fieldByColumn[col]
		if !ok {
			return nil, fmt.Errorf("no field mapped to column %q on %s", col, typ.Name())
		}
		row[i] = v.Field(idx).Interface()
	}
	return row, nil
}
