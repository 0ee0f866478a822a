package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"scout/internal/filter"
	"scout/internal/model"
)

// Model is implemented by every entity row: a surrogate id plus a natural key
// of type K.
type Model[K comparable] interface {
	PrimaryID() int64
	NaturalKey() K
}

// querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// schema maps one entity kind onto its table.
type schema[T Model[K], K comparable] struct {
	kind     model.Kind
	columns  []string // selected columns, in scan order
	keyWhere string   // predicate matching one natural key
	keyArgs  func(K) []any
	scan     func(scanner) (T, error)
}

func (s *schema[T, K]) table() string {
	return s.kind.String()
}

func (s *schema[T, K]) selectSQL() string {
	return "SELECT " + strings.Join(s.columns, ", ") + " FROM " + s.table()
}

// Table provides lookup, listing, filtering and deletion for one entity kind.
type Table[T Model[K], K comparable] struct {
	q      querier
	schema *schema[T, K]
}

func newTable[T Model[K], K comparable](q querier, s *schema[T, K]) *Table[T, K] {
	return &Table[T, K]{q: q, schema: s}
}

// Kind returns the entity kind stored in this table.
func (t *Table[T, K]) Kind() model.Kind {
	return t.schema.kind
}

// GetOpt returns the row with the given natural key, or nil if there is none.
func (t *Table[T, K]) GetOpt(key K) (*T, error) {
	query := t.schema.selectSQL() + " WHERE " + t.schema.keyWhere
	row := t.q.QueryRowContext(context.Background(), query, t.schema.keyArgs(key)...)

	obj, err := t.schema.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: finding %s by key: %w", ErrQuery, t.schema.kind, err)
	}
	return &obj, nil
}

// GetID returns the id of the row with the given natural key. A missing row
// is ErrNotFound.
func (t *Table[T, K]) GetID(key K) (int64, error) {
	id, ok, err := t.GetIDOpt(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s %v", ErrNotFound, t.schema.kind, key)
	}
	return id, nil
}

// GetIDOpt returns the id of the row with the given natural key; ok is false
// when there is none.
func (t *Table[T, K]) GetIDOpt(key K) (id int64, ok bool, err error) {
	query := "SELECT id FROM " + t.schema.table() + " WHERE " + t.schema.keyWhere
	err = t.q.QueryRowContext(context.Background(), query, t.schema.keyArgs(key)...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: finding %s id: %w", ErrQuery, t.schema.kind, err)
	}
	return id, true, nil
}

// Get returns the row with the given id, or nil if there is none.
func (t *Table[T, K]) Get(id int64) (*T, error) {
	row := t.q.QueryRowContext(context.Background(), t.schema.selectSQL()+" WHERE id = ?", id)

	obj, err := t.schema.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: finding %s by id: %w", ErrQuery, t.schema.kind, err)
	}
	return &obj, nil
}

// List returns every row, in no particular order.
func (t *Table[T, K]) List() ([]T, error) {
	return t.query(t.schema.selectSQL())
}

// Filter returns the rows matching f.
func (t *Table[T, K]) Filter(f filter.Filter) ([]T, error) {
	return t.query(t.schema.selectSQL() + " WHERE " + f.Query())
}

// Delete removes the rows matching f and returns how many were removed.
// Children are removed by the schema's cascading foreign keys.
func (t *Table[T, K]) Delete(f filter.Filter) (int64, error) {
	return t.exec("deleting "+t.schema.table(), "DELETE FROM "+t.schema.table()+" WHERE "+f.Query())
}

// Count returns the number of rows.
func (t *Table[T, K]) Count() (int64, error) {
	var n int64
	err := t.q.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+t.schema.table()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting %s: %w", ErrQuery, t.schema.kind, err)
	}
	return n, nil
}

// insert writes a new row from the given column values.
func (t *Table[T, K]) insert(values changeset) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	query := "INSERT INTO " + t.schema.table() +
		" (" + strings.Join(values.columns(), ", ") + ") VALUES (" + placeholders + ")"

	if _, err := t.q.ExecContext(context.Background(), query, values.args()...); err != nil {
		return fmt.Errorf("%w: inserting %s: %w", ErrQuery, t.schema.kind, err)
	}
	return nil
}

// update writes only the columns in cs to the row with the given id.
func (t *Table[T, K]) update(id int64, cs changeset) (int64, error) {
	if !cs.IsDirty() {
		return 0, ErrNoChanges
	}
	assignments := make([]string, len(cs))
	for i, c := range cs {
		assignments[i] = c.column + " = ?"
	}
	query := "UPDATE " + t.schema.table() + " SET " + strings.Join(assignments, ", ") + " WHERE id = ?"

	return t.exec("updating "+t.schema.table(), query, append(cs.args(), id)...)
}

func (t *Table[T, K]) query(query string, args ...any) ([]T, error) {
	rows, err := t.q.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrQuery, t.schema.kind, err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		obj, err := t.schema.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning %s: %w", ErrQuery, t.schema.kind, err)
		}
		result = append(result, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", ErrQuery, t.schema.kind, err)
	}
	return result, nil
}

func (t *Table[T, K]) exec(op, query string, args ...any) (int64, error) {
	res, err := t.q.ExecContext(context.Background(), query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrQuery, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrQuery, op, err)
	}
	return n, nil
}

// ScopableTable is a Table whose rows carry a scope marker.
type ScopableTable[T Model[K], K comparable] struct {
	*Table[T, K]
}

// Scope puts the rows matching f into the active investigation.
func (t *ScopableTable[T, K]) Scope(f filter.Filter) (int64, error) {
	return t.exec("scoping "+t.schema.table(), "UPDATE "+t.schema.table()+" SET unscoped = 0 WHERE "+f.Query())
}

// Noscope takes the rows matching f out of the active investigation.
func (t *ScopableTable[T, K]) Noscope(f filter.Filter) (int64, error) {
	return t.exec("unscoping "+t.schema.table(), "UPDATE "+t.schema.table()+" SET unscoped = 1 WHERE "+f.Query())
}
