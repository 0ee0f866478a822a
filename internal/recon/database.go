package recon

import (
	"scout/internal/filter"
	"scout/internal/model"
)

// Database is the workspace store. Inserts are idempotent: they report
// changed=false when the natural key already existed with identical fields.
type Database interface {
	// Name returns the workspace name, or "" for ad-hoc databases.
	Name() string

	// Insert routes a tagged insert to the typed upsert for its kind.
	Insert(obj model.Insert) (changed bool, id int64, err error)

	// Update writes every field set on obj to the row with obj's ID.
	Update(obj model.Update) (int64, error)

	// InsertSubdomainWithDomain inserts a subdomain, creating its domain if
	// needed.
	InsertSubdomainWithDomain(subdomain, domain string) (changed bool, id int64, err error)

	// LookupID returns the id of the row of kind k whose natural key is value.
	// Not valid for the subdomain/ipaddr join.
	LookupID(k model.Kind, value string) (id int64, ok bool, err error)

	// Select returns the rows of kind k matching f.
	Select(k model.Kind, f filter.Filter) ([]model.Entity, error)

	// Scope and Noscope mark matching rows as in or out of scope and return
	// the number of rows affected.
	Scope(k model.Kind, f filter.Filter) (int64, error)
	Noscope(k model.Kind, f filter.Filter) (int64, error)

	// Delete removes matching rows and returns how many were removed.
	Delete(k model.Kind, f filter.Filter) (int64, error)

	// Count returns the number of rows of kind k.
	Count(k model.Kind) (int64, error)

	// BackupTo writes a consistent copy of the database to path.
	BackupTo(path string) error

	// RestoreFrom replaces the database contents with the database at path.
	RestoreFrom(path string) error

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	Close() error
}
