package database

import (
	"scout/internal/model"
	"scout/internal/recon"
)

// candidate is an insertable row: its natural key, the columns for a fresh
// insert, and the dirty columns relative to a stored row with the same key.
type candidate[T Model[K], K comparable] struct {
	key    K
	values func() changeset
	diff   func(stored T) changeset
}

// store is the part of a Table the upsert needs.
type store[T Model[K], K comparable] interface {
	Kind() model.Kind
	GetOpt(key K) (*T, error)
	GetID(key K) (int64, error)
	insert(values changeset) error
	update(id int64, cs changeset) (int64, error)
}

// insertOrMerge stores c. A new key is inserted and its id looked up again.
// An existing key is updated with the candidate's dirty columns, or left
// alone when there are none.
//
// The lookup and the write are separate statements, so another writer can
// store the same key in between. The resulting uniqueness violation is
// retried once, which then takes the merge path.
func insertOrMerge[T Model[K], K comparable](s store[T, K], c candidate[T, K], log recon.Logger) (changed bool, id int64, err error) {
	for attempt := 0; ; attempt++ {
		existing, err := s.GetOpt(c.key)
		if err != nil {
			return false, 0, err
		}

		if existing == nil {
			if err := s.insert(c.values()); err != nil {
				if attempt == 0 && IsUniqueViolation(err) {
					log.Warn("key stored concurrently, retrying", "kind", s.Kind(), "key", c.key)
					continue
				}
				return false, 0, err
			}
			id, err := s.GetID(c.key)
			if err != nil {
				return false, 0, err
			}
			log.Debug("inserted", "kind", s.Kind(), "id", id)
			return true, id, nil
		}

		id := (*existing).PrimaryID()
		cs := c.diff(*existing)
		if !cs.IsDirty() {
			log.Debug("unchanged", "kind", s.Kind(), "id", id)
			return false, id, nil
		}
		if _, err := s.update(id, cs); err != nil {
			return false, 0, err
		}
		log.Debug("merged", "kind", s.Kind(), "id", id, "columns", cs.columns())
		return true, id, nil
	}
}
