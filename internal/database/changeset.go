package database

import "bytes"

// change is a single column assignment.
type change struct {
	column string
	value  any
}

// changeset is an ordered list of column assignments. For inserts it holds
// every column to write; for merges and updates only the dirty ones.
type changeset []change

// IsDirty reports whether there is anything to write.
func (cs changeset) IsDirty() bool {
	return len(cs) > 0
}

func (cs changeset) columns() []string {
	cols := make([]string, len(cs))
	for i, c := range cs {
		cols[i] = c.column
	}
	return cols
}

func (cs changeset) args() []any {
	args := make([]any, len(cs))
	for i, c := range cs {
		args[i] = c.value
	}
	return args
}

func (cs *changeset) set(column string, value any) {
	*cs = append(*cs, change{column: column, value: value})
}

// setOpt adds the column when the candidate value is present.
func setOpt[V any](cs *changeset, column string, value *V) {
	if value != nil {
		cs.set(column, *value)
	}
}

// setBytes adds the column when the candidate value is present.
func setBytes(cs *changeset, column string, value []byte) {
	if value != nil {
		cs.set(column, value)
	}
}

// diffOpt adds the column when the candidate value is present and differs
// from the stored one. An absent candidate never clears a stored value.
func diffOpt[V comparable](cs *changeset, column string, stored, candidate *V) {
	if candidate == nil {
		return
	}
	if stored != nil && *stored == *candidate {
		return
	}
	cs.set(column, *candidate)
}

func diffBytes(cs *changeset, column string, stored, candidate []byte) {
	if candidate == nil {
		return
	}
	if stored != nil && bytes.Equal(stored, candidate) {
		return
	}
	cs.set(column, candidate)
}
