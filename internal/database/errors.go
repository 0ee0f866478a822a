package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Error kinds. Returned errors wrap one of these together with the driver
// error and a description of the operation, so both errors.Is(err, ErrQuery)
// and errors.As(err, &sqlite3.Error{}) work.
var (
	ErrConnection           = errors.New("cannot connect to database")
	ErrMigration            = errors.New("cannot migrate database")
	ErrIntegrityEnforcement = errors.New("cannot enforce foreign keys")
	ErrNotFound             = errors.New("row not found")
	ErrQuery                = errors.New("query failed")
	ErrNoChanges            = errors.New("update has no fields to set")
	ErrInvalidName          = errors.New("invalid workspace name")
)

// IsUniqueViolation reports whether err was caused by a UNIQUE or PRIMARY KEY
// constraint. On the insert path this means a concurrent writer stored the
// same natural key first.
func IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// IsForeignKeyViolation reports whether err was caused by a FOREIGN KEY
// constraint, e.g. a URL pointing at a subdomain that does not exist.
func IsForeignKeyViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
