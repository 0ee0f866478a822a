package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"scout/internal/config"
	"scout/internal/database/migrations"
	"scout/internal/filter"
	"scout/internal/model"
	"scout/internal/recon"
)

// ErrUnsupported is returned for operations a kind does not have, such as
// scoping the subdomain/ipaddr join.
var ErrUnsupported = errors.New("operation not supported for kind")

// SQLiteDatabase implements recon.Database on a single SQLite connection.
type SQLiteDatabase struct {
	db     *sql.DB
	name   string
	path   string
	logger recon.Logger

	domains          *ScopableTable[model.Domain, string]
	subdomains       *ScopableTable[model.Subdomain, string]
	ipAddrs          *ScopableTable[model.IPAddr, string]
	subdomainIPAddrs *Table[model.SubdomainIPAddr, model.SubdomainIPAddrKey]
	urls             *ScopableTable[model.URL, string]
	emails           *ScopableTable[model.Email, string]
}

// NewSQLiteDatabase opens and bootstraps the database at path, which can be a
// file path or ":memory:".
func NewSQLiteDatabase(path string, logger recon.Logger) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := Bootstrap(db); err != nil {
		db.Close()
		return nil, err
	}

	s := NewSQLiteDatabaseFromDB(db, logger)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing, already bootstrapped connection.
func NewSQLiteDatabaseFromDB(db *sql.DB, logger recon.Logger) *SQLiteDatabase {
	if logger == nil {
		logger = recon.NewNopLogger()
	}
	return &SQLiteDatabase{
		db:               db,
		logger:           logger,
		domains:          &ScopableTable[model.Domain, string]{newTable(db, domainSchema)},
		subdomains:       &ScopableTable[model.Subdomain, string]{newTable(db, subdomainSchema)},
		ipAddrs:          &ScopableTable[model.IPAddr, string]{newTable(db, ipAddrSchema)},
		subdomainIPAddrs: newTable(db, subdomainIPAddrSchema),
		urls:             &ScopableTable[model.URL, string]{newTable(db, urlSchema)},
		emails:           &ScopableTable[model.Email, string]{newTable(db, emailSchema)},
	}
}

// Establish opens the database of the named workspace in dataDir, creating
// it on first use.
func Establish(name, dataDir string, logger recon.Logger) (*SQLiteDatabase, error) {
	if !config.ValidWorkspaceName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", ErrConnection, err)
	}

	s, err := NewSQLiteDatabase(filepath.Join(dataDir, name+".db"), logger)
	if err != nil {
		return nil, err
	}
	s.name = name
	return s, nil
}

// OpenConnection opens a SQLite database and verifies it can be reached. The
// pool is limited to one connection: ":memory:" databases live and die with
// their connection, and every operation runs on it in turn. Foreign keys are
// enabled in the DSN so a replacement connection enforces them too.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connectionString(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, path, err)
	}
	return db, nil
}

func connectionString(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// Bootstrap brings the schema up to date, then turns on foreign key
// enforcement (SQLite default is OFF for backward compatibility).
func Bootstrap(db *sql.DB) error {
	if err := migrations.Up(db); err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("%w: %w", ErrIntegrityEnforcement, err)
	}
	return nil
}

// Name returns the workspace name, or "" when opened by path.
func (s *SQLiteDatabase) Name() string {
	return s.name
}

// Tables

func (s *SQLiteDatabase) Domains() *ScopableTable[model.Domain, string]       { return s.domains }
func (s *SQLiteDatabase) Subdomains() *ScopableTable[model.Subdomain, string] { return s.subdomains }
func (s *SQLiteDatabase) IPAddrs() *ScopableTable[model.IPAddr, string]       { return s.ipAddrs }
func (s *SQLiteDatabase) URLs() *ScopableTable[model.URL, string]             { return s.urls }
func (s *SQLiteDatabase) Emails() *ScopableTable[model.Email, string]         { return s.emails }

func (s *SQLiteDatabase) SubdomainIPAddrs() *Table[model.SubdomainIPAddr, model.SubdomainIPAddrKey] {
	return s.subdomainIPAddrs
}

// Inserts

// Insert routes obj to the typed insert for its kind.
func (s *SQLiteDatabase) Insert(obj model.Insert) (bool, int64, error) {
	switch o := obj.(type) {
	case model.NewDomain:
		return s.InsertDomain(o)
	case model.NewSubdomain:
		return s.InsertSubdomain(o)
	case model.NewIPAddr:
		return s.InsertIPAddr(o)
	case model.NewSubdomainIPAddr:
		return s.InsertSubdomainIPAddr(o)
	case model.NewURL:
		return s.InsertURL(o)
	case model.NewEmail:
		return s.InsertEmail(o)
	default:
		return false, 0, fmt.Errorf("%w: insert %T", ErrUnsupported, obj)
	}
}

func (s *SQLiteDatabase) InsertDomain(n model.NewDomain) (bool, int64, error) {
	return insertOrMerge(s.domains, domainCandidate(n), s.logger)
}

func (s *SQLiteDatabase) InsertSubdomain(n model.NewSubdomain) (bool, int64, error) {
	return insertOrMerge(s.subdomains, subdomainCandidate(n), s.logger)
}

func (s *SQLiteDatabase) InsertIPAddr(n model.NewIPAddr) (bool, int64, error) {
	return insertOrMerge(s.ipAddrs, ipAddrCandidate(n), s.logger)
}

func (s *SQLiteDatabase) InsertSubdomainIPAddr(n model.NewSubdomainIPAddr) (bool, int64, error) {
	return insertOrMerge(s.subdomainIPAddrs, subdomainIPAddrCandidate(n), s.logger)
}

// InsertURL stores a URL. Its subdomain must already exist.
func (s *SQLiteDatabase) InsertURL(n model.NewURL) (bool, int64, error) {
	return insertOrMerge(s.urls, urlCandidate(n), s.logger)
}

func (s *SQLiteDatabase) InsertEmail(n model.NewEmail) (bool, int64, error) {
	return insertOrMerge(s.emails, emailCandidate(n), s.logger)
}

// InsertSubdomainWithDomain stores subdomain under domain, creating the
// domain first if it was never seen.
func (s *SQLiteDatabase) InsertSubdomainWithDomain(subdomain, domain string) (bool, int64, error) {
	domainID, ok, err := s.domains.GetIDOpt(domain)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		if _, domainID, err = s.InsertDomain(model.NewDomain{Value: domain}); err != nil {
			return false, 0, err
		}
	}
	return s.InsertSubdomain(model.NewSubdomain{DomainID: domainID, Value: subdomain})
}

// Updates

// Update writes every field set on u to the row with u's ID and returns that
// ID. An update with no fields set is ErrNoChanges; a missing row is
// ErrNotFound.
func (s *SQLiteDatabase) Update(u model.Update) (int64, error) {
	switch o := u.(type) {
	case model.SubdomainUpdate:
		return s.UpdateSubdomain(o)
	case model.IPAddrUpdate:
		return s.UpdateIPAddr(o)
	case model.URLUpdate:
		return s.UpdateURL(o)
	case model.EmailUpdate:
		return s.UpdateEmail(o)
	default:
		return 0, fmt.Errorf("%w: update %T", ErrUnsupported, u)
	}
}

func (s *SQLiteDatabase) UpdateSubdomain(u model.SubdomainUpdate) (int64, error) {
	return s.applyUpdate(u, s.subdomains.update, subdomainChanges(u))
}

func (s *SQLiteDatabase) UpdateIPAddr(u model.IPAddrUpdate) (int64, error) {
	return s.applyUpdate(u, s.ipAddrs.update, ipAddrChanges(u))
}

func (s *SQLiteDatabase) UpdateURL(u model.URLUpdate) (int64, error) {
	return s.applyUpdate(u, s.urls.update, urlChanges(u))
}

func (s *SQLiteDatabase) UpdateEmail(u model.EmailUpdate) (int64, error) {
	return s.applyUpdate(u, s.emails.update, emailChanges(u))
}

func (s *SQLiteDatabase) applyUpdate(u model.Update, update func(int64, changeset) (int64, error), cs changeset) (int64, error) {
	n, err := update(u.TargetID(), cs)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s id %d", ErrNotFound, u.Kind(), u.TargetID())
	}

	s.logger.Debug("updated", "kind", u.Kind(), "id", u.TargetID())
	return u.TargetID(), nil
}

// Queries

// LookupID returns the id of the row of kind k whose value is value.
func (s *SQLiteDatabase) LookupID(k model.Kind, value string) (int64, bool, error) {
	switch k {
	case model.KindDomain:
		return s.domains.GetIDOpt(value)
	case model.KindSubdomain:
		return s.subdomains.GetIDOpt(value)
	case model.KindIPAddr:
		return s.ipAddrs.GetIDOpt(value)
	case model.KindURL:
		return s.urls.GetIDOpt(value)
	case model.KindEmail:
		return s.emails.GetIDOpt(value)
	default:
		return 0, false, fmt.Errorf("%w: lookup by value on %s", ErrUnsupported, k)
	}
}

// Select returns the rows of kind k matching f.
func (s *SQLiteDatabase) Select(k model.Kind, f filter.Filter) ([]model.Entity, error) {
	switch k {
	case model.KindDomain:
		return entities(s.domains.Filter(f))
	case model.KindSubdomain:
		return entities(s.subdomains.Filter(f))
	case model.KindIPAddr:
		return entities(s.ipAddrs.Filter(f))
	case model.KindSubdomainIPAddr:
		return entities(s.subdomainIPAddrs.Filter(f))
	case model.KindURL:
		return entities(s.urls.Filter(f))
	case model.KindEmail:
		return entities(s.emails.Filter(f))
	default:
		return nil, fmt.Errorf("%w: select on %s", ErrUnsupported, k)
	}
}

func entities[T model.Entity](rows []T, err error) ([]model.Entity, error) {
	if err != nil {
		return nil, err
	}
	result := make([]model.Entity, len(rows))
	for i, r := range rows {
		result[i] = r
	}
	return result, nil
}

type kindTable interface {
	Delete(f filter.Filter) (int64, error)
	Count() (int64, error)
}

type scoper interface {
	kindTable
	Scope(f filter.Filter) (int64, error)
	Noscope(f filter.Filter) (int64, error)
}

func (s *SQLiteDatabase) scopable(k model.Kind) (scoper, error) {
	switch k {
	case model.KindDomain:
		return s.domains, nil
	case model.KindSubdomain:
		return s.subdomains, nil
	case model.KindIPAddr:
		return s.ipAddrs, nil
	case model.KindURL:
		return s.urls, nil
	case model.KindEmail:
		return s.emails, nil
	default:
		return nil, fmt.Errorf("%w: scope on %s", ErrUnsupported, k)
	}
}

func (s *SQLiteDatabase) table(k model.Kind) (kindTable, error) {
	if k == model.KindSubdomainIPAddr {
		return s.subdomainIPAddrs, nil
	}
	return s.scopable(k)
}

// Scope marks the rows of kind k matching f as in scope.
func (s *SQLiteDatabase) Scope(k model.Kind, f filter.Filter) (int64, error) {
	t, err := s.scopable(k)
	if err != nil {
		return 0, err
	}
	return t.Scope(f)
}

// Noscope marks the rows of kind k matching f as out of scope.
func (s *SQLiteDatabase) Noscope(k model.Kind, f filter.Filter) (int64, error) {
	t, err := s.scopable(k)
	if err != nil {
		return 0, err
	}
	return t.Noscope(f)
}

// Delete removes the rows of kind k matching f, together with their children.
func (s *SQLiteDatabase) Delete(k model.Kind, f filter.Filter) (int64, error) {
	t, err := s.table(k)
	if err != nil {
		return 0, err
	}
	return t.Delete(f)
}

// Count returns the number of rows of kind k.
func (s *SQLiteDatabase) Count(k model.Kind) (int64, error) {
	t, err := s.table(k)
	if err != nil {
		return 0, err
	}
	return t.Count()
}

// Maintenance

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("%w: backing up database: %w", ErrQuery, err)
	}
	return nil
}

// RestoreFrom replaces the contents of the database with the SQLite database
// at srcPath using the online backup API, then migrates it forward in case it
// was written by an older schema.
func (s *SQLiteDatabase) RestoreFrom(srcPath string) error {
	if _, err := os.Stat(srcPath); err != nil {
		return fmt.Errorf("%w: restore source: %w", ErrConnection, err)
	}

	src, err := OpenConnection(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx := context.Background()
	srcConn, err := src.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer srcConn.Close()

	dstConn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	err = dstConn.Raw(func(dst any) error {
		return srcConn.Raw(func(src any) error {
			return backup(dst, src)
		})
	})
	dstConn.Close()
	if err != nil {
		return fmt.Errorf("%w: restoring database: %w", ErrQuery, err)
	}

	return Bootstrap(s.db)
}

func backup(dst, src any) error {
	dstConn, ok := dst.(*sqlite3.SQLiteConn)
	if !ok {
		return fmt.Errorf("unexpected driver connection %T", dst)
	}
	srcConn, ok := src.(*sqlite3.SQLiteConn)
	if !ok {
		return fmt.Errorf("unexpected driver connection %T", src)
	}

	b, err := dstConn.Backup("main", srcConn, "main")
	if err != nil {
		return err
	}
	if _, err := b.Step(-1); err != nil {
		b.Finish()
		return err
	}
	return b.Finish()
}

// CheckMigrations verifies the schema is exactly at the latest version.
func (s *SQLiteDatabase) CheckMigrations() error {
	if err := migrations.CheckStatus(s.db); err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements recon.Database
var _ recon.Database = (*SQLiteDatabase)(nil)
