package database

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"scout/internal/filter"
	"scout/internal/model"
	"scout/internal/recon"
)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func ptr[T any](v T) *T {
	return &v
}

func mustParse(t *testing.T, args ...string) filter.Filter {
	t.Helper()

	f, err := filter.Parse(args)
	if err != nil {
		t.Fatalf("filter.Parse(%q) error = %v", args, err)
	}
	return f
}

func TestSQLiteDatabase_InsertIdempotent(t *testing.T) {
	db := newTestDB(t)
	_, subID, err := db.InsertSubdomainWithDomain("www.example.com", "example.com")
	if err != nil {
		t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
	}
	_, ipID, err := db.InsertIPAddr(model.NewIPAddr{Family: "v4", Value: "192.0.2.1"})
	if err != nil {
		t.Fatalf("InsertIPAddr() error = %v", err)
	}

	tests := []struct {
		name string
		obj  model.Insert
	}{
		{"domain", model.NewDomain{Value: "example.org"}},
		{"subdomain", model.NewSubdomain{DomainID: 1, Value: "mail.example.com", Resolvable: ptr(true)}},
		{"ipaddr", model.NewIPAddr{Family: "v6", Value: "2001:db8::1", Country: ptr("NL"), ASN: ptr(int64(64500))}},
		{"subdomain ipaddr", model.NewSubdomainIPAddr{SubdomainID: subID, IPAddrID: ipID}},
		{"url", model.NewURL{SubdomainID: subID, Value: "https://www.example.com/", Status: ptr(int64(200)), Body: []byte("<html>")}},
		{"email", model.NewEmail{Value: "root@example.com", Valid: ptr(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, id, err := db.Insert(tt.obj)
			if err != nil {
				t.Fatalf("first Insert() error = %v", err)
			}
			if !changed {
				t.Error("first Insert() changed = false, want true")
			}

			changed, again, err := db.Insert(tt.obj)
			if err != nil {
				t.Fatalf("second Insert() error = %v", err)
			}
			if changed {
				t.Error("second Insert() changed = true, want false")
			}
			if again != id {
				t.Errorf("second Insert() id = %d, want %d", again, id)
			}

			n, err := db.Count(tt.obj.Kind())
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			rows, err := db.Select(tt.obj.Kind(), filter.All())
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if int64(len(rows)) != n {
				t.Errorf("Select() returned %d rows, Count() = %d", len(rows), n)
			}
		})
	}
}

func TestSQLiteDatabase_MergeSelectivity(t *testing.T) {
	db := newTestDB(t)

	_, id, err := db.InsertIPAddr(model.NewIPAddr{
		Family:  "v4",
		Value:   "198.51.100.7",
		Country: ptr("Germany"),
		City:    ptr("Berlin"),
		ASN:     ptr(int64(64496)),
	})
	if err != nil {
		t.Fatalf("InsertIPAddr() error = %v", err)
	}

	changed, got, err := db.InsertIPAddr(model.NewIPAddr{
		Family:  "v4",
		Value:   "198.51.100.7",
		Country: ptr("Germany"),
		City:    ptr("Munich"),
	})
	if err != nil {
		t.Fatalf("InsertIPAddr() merge error = %v", err)
	}
	if !changed || got != id {
		t.Errorf("InsertIPAddr() merge = (%v, %d), want (true, %d)", changed, got, id)
	}

	stored, err := db.IPAddrs().GetOpt("198.51.100.7")
	if err != nil || stored == nil {
		t.Fatalf("GetOpt() = %v, %v", stored, err)
	}
	if *stored.City != "Munich" {
		t.Errorf("City = %q, want %q", *stored.City, "Munich")
	}
	if *stored.Country != "Germany" {
		t.Errorf("Country = %q, want %q", *stored.Country, "Germany")
	}
	if stored.ASN == nil || *stored.ASN != 64496 {
		t.Errorf("ASN = %v, want 64496 (absent field must not clear it)", stored.ASN)
	}
	if stored.Latitude != nil {
		t.Errorf("Latitude = %v, want nil", *stored.Latitude)
	}
}

func TestSQLiteDatabase_MergeURLBody(t *testing.T) {
	db := newTestDB(t)
	_, subID, err := db.InsertSubdomainWithDomain("www.example.com", "example.com")
	if err != nil {
		t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
	}

	url := model.NewURL{SubdomainID: subID, Value: "https://www.example.com/login", Body: []byte{}}
	if _, _, err := db.InsertURL(url); err != nil {
		t.Fatalf("InsertURL() error = %v", err)
	}

	changed, _, err := db.InsertURL(url)
	if err != nil {
		t.Fatalf("InsertURL() error = %v", err)
	}
	if changed {
		t.Error("re-inserting an empty body reported a change")
	}

	url.Body = []byte("<form>")
	url.Title = ptr("Login")
	changed, id, err := db.InsertURL(url)
	if err != nil {
		t.Fatalf("InsertURL() error = %v", err)
	}
	if !changed {
		t.Error("changed body reported no change")
	}

	stored, err := db.URLs().Get(id)
	if err != nil || stored == nil {
		t.Fatalf("Get() = %v, %v", stored, err)
	}
	if !bytes.Equal(stored.Body, []byte("<form>")) {
		t.Errorf("Body = %q, want %q", stored.Body, "<form>")
	}
	if stored.Status != nil {
		t.Errorf("Status = %d, want nil", *stored.Status)
	}
}

func TestSQLiteDatabase_InsertSubdomainWithDomain(t *testing.T) {
	t.Run("creates missing domain", func(t *testing.T) {
		db := newTestDB(t)

		changed, subID, err := db.InsertSubdomainWithDomain("www.example.com", "example.com")
		if err != nil {
			t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
		}
		if !changed {
			t.Error("changed = false, want true")
		}

		domains, _ := db.Count(model.KindDomain)
		subdomains, _ := db.Count(model.KindSubdomain)
		if domains != 1 || subdomains != 1 {
			t.Fatalf("counts = (%d domains, %d subdomains), want (1, 1)", domains, subdomains)
		}

		domainID, err := db.Domains().GetID("example.com")
		if err != nil {
			t.Fatalf("GetID() error = %v", err)
		}
		sub, err := db.Subdomains().Get(subID)
		if err != nil || sub == nil {
			t.Fatalf("Get() = %v, %v", sub, err)
		}
		if sub.DomainID != domainID {
			t.Errorf("DomainID = %d, want %d", sub.DomainID, domainID)
		}
	})

	t.Run("reuses existing domain", func(t *testing.T) {
		db := newTestDB(t)

		if _, _, err := db.InsertSubdomainWithDomain("www.example.com", "example.com"); err != nil {
			t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
		}
		if _, _, err := db.InsertSubdomainWithDomain("api.example.com", "example.com"); err != nil {
			t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
		}

		if n, _ := db.Count(model.KindDomain); n != 1 {
			t.Errorf("domains = %d, want 1", n)
		}
		if n, _ := db.Count(model.KindSubdomain); n != 2 {
			t.Errorf("subdomains = %d, want 2", n)
		}
	})
}

func TestSQLiteDatabase_ForeignKeys(t *testing.T) {
	db := newTestDB(t)

	_, _, err := db.InsertURL(model.NewURL{SubdomainID: 4242, Value: "https://orphan.example.com/"})
	if !errors.Is(err, ErrQuery) {
		t.Fatalf("InsertURL() error = %v, want %v", err, ErrQuery)
	}
	if !IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = false", err)
	}
	if IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = true", err)
	}

	_, _, err = db.InsertSubdomainIPAddr(model.NewSubdomainIPAddr{SubdomainID: 1, IPAddrID: 1})
	if !IsForeignKeyViolation(err) {
		t.Errorf("InsertSubdomainIPAddr() error = %v, want foreign key violation", err)
	}
}

func TestTable_Lookups(t *testing.T) {
	db := newTestDB(t)
	_, id, err := db.InsertEmail(model.NewEmail{Value: "admin@example.com"})
	if err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}

	t.Run("GetOpt missing", func(t *testing.T) {
		got, err := db.Emails().GetOpt("nobody@example.com")
		if err != nil {
			t.Fatalf("GetOpt() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetOpt() = %+v, want nil", got)
		}
	})

	t.Run("GetOpt found", func(t *testing.T) {
		got, err := db.Emails().GetOpt("admin@example.com")
		if err != nil {
			t.Fatalf("GetOpt() error = %v", err)
		}
		if got == nil || got.ID != id || got.Valid != nil || got.Unscoped {
			t.Errorf("GetOpt() = %+v", got)
		}
	})

	t.Run("GetID missing", func(t *testing.T) {
		if _, err := db.Emails().GetID("nobody@example.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetID() error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("GetIDOpt", func(t *testing.T) {
		got, ok, err := db.Emails().GetIDOpt("admin@example.com")
		if err != nil || !ok || got != id {
			t.Errorf("GetIDOpt() = (%d, %v, %v), want (%d, true, nil)", got, ok, err, id)
		}
		_, ok, err = db.Emails().GetIDOpt("nobody@example.com")
		if err != nil || ok {
			t.Errorf("GetIDOpt() missing = (%v, %v), want (false, nil)", ok, err)
		}
	})

	t.Run("LookupID", func(t *testing.T) {
		got, ok, err := db.LookupID(model.KindEmail, "admin@example.com")
		if err != nil || !ok || got != id {
			t.Errorf("LookupID() = (%d, %v, %v)", got, ok, err)
		}
		if _, _, err := db.LookupID(model.KindSubdomainIPAddr, "x"); !errors.Is(err, ErrUnsupported) {
			t.Errorf("LookupID() on join error = %v, want %v", err, ErrUnsupported)
		}
	})

	t.Run("join key", func(t *testing.T) {
		_, subID, _ := db.InsertSubdomainWithDomain("www.example.com", "example.com")
		_, ipID, _ := db.InsertIPAddr(model.NewIPAddr{Family: "v4", Value: "192.0.2.10"})
		key := model.SubdomainIPAddrKey{SubdomainID: subID, IPAddrID: ipID}

		if _, ok, _ := db.SubdomainIPAddrs().GetIDOpt(key); ok {
			t.Fatal("GetIDOpt() found link before insert")
		}
		_, linkID, err := db.InsertSubdomainIPAddr(model.NewSubdomainIPAddr{SubdomainID: subID, IPAddrID: ipID})
		if err != nil {
			t.Fatalf("InsertSubdomainIPAddr() error = %v", err)
		}
		got, err := db.SubdomainIPAddrs().GetID(key)
		if err != nil || got != linkID {
			t.Errorf("GetID() = (%d, %v), want %d", got, err, linkID)
		}
	})
}

func TestSQLiteDatabase_SelectQuoting(t *testing.T) {
	db := newTestDB(t)

	for _, v := range []string{"o'reilly.example", "plain.example", "it''s.example"} {
		if _, _, err := db.InsertDomain(model.NewDomain{Value: v}); err != nil {
			t.Fatalf("InsertDomain(%q) error = %v", v, err)
		}
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"where", "value=o'reilly.example"}, "o'reilly.example"},
		{[]string{"where", "value", "=", "it''s.example"}, "it''s.example"},
		{[]string{"where", "value", "like", "plain%"}, "plain.example"},
	}

	for _, tt := range tests {
		rows, err := db.Select(model.KindDomain, mustParse(t, tt.args...))
		if err != nil {
			t.Fatalf("Select(%q) error = %v", tt.args, err)
		}
		if len(rows) != 1 {
			t.Fatalf("Select(%q) returned %d rows, want 1", tt.args, len(rows))
		}
		if d := rows[0].(model.Domain); d.Value != tt.want {
			t.Errorf("Select(%q) = %q, want %q", tt.args, d.Value, tt.want)
		}
	}

	rows, err := db.Select(model.KindDomain, mustParse(t, "where", "value", "=", "x' or '1'='1"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("injection attempt matched %d rows", len(rows))
	}
}

func TestSQLiteDatabase_Scope(t *testing.T) {
	db := newTestDB(t)
	for _, v := range []string{"a.example", "b.example", "c.example"} {
		if _, _, err := db.InsertDomain(model.NewDomain{Value: v}); err != nil {
			t.Fatalf("InsertDomain() error = %v", err)
		}
	}

	n, err := db.Noscope(model.KindDomain, mustParse(t, "where", "value", "like", "%.example"))
	if err != nil {
		t.Fatalf("Noscope() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Noscope() = %d, want 3", n)
	}

	n, err = db.Scope(model.KindDomain, mustParse(t, "where", "value=b.example"))
	if err != nil {
		t.Fatalf("Scope() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Scope() = %d, want 1", n)
	}

	domains, err := db.Domains().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, d := range domains {
		if want := d.Value != "b.example"; d.Unscoped != want {
			t.Errorf("%s Unscoped = %v, want %v", d.Value, d.Unscoped, want)
		}
	}

	inScope, err := db.Select(model.KindDomain, mustParse(t, "where", "unscoped=0"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(inScope) != 1 {
		t.Errorf("in-scope domains = %d, want 1", len(inScope))
	}

	if _, err := db.Scope(model.KindSubdomainIPAddr, filter.All()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Scope() on join error = %v, want %v", err, ErrUnsupported)
	}
}

func TestSQLiteDatabase_DeleteCascades(t *testing.T) {
	db := newTestDB(t)

	_, subID, err := db.InsertSubdomainWithDomain("www.example.com", "example.com")
	if err != nil {
		t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
	}
	_, ipID, _ := db.InsertIPAddr(model.NewIPAddr{Family: "v4", Value: "192.0.2.1"})
	if _, _, err := db.InsertSubdomainIPAddr(model.NewSubdomainIPAddr{SubdomainID: subID, IPAddrID: ipID}); err != nil {
		t.Fatalf("InsertSubdomainIPAddr() error = %v", err)
	}
	if _, _, err := db.InsertURL(model.NewURL{SubdomainID: subID, Value: "https://www.example.com/"}); err != nil {
		t.Fatalf("InsertURL() error = %v", err)
	}
	if _, _, err := db.InsertSubdomainWithDomain("www.example.org", "example.org"); err != nil {
		t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
	}

	n, err := db.Delete(model.KindDomain, mustParse(t, "where", "value=example.com"))
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Delete() = %d, want 1", n)
	}

	want := map[model.Kind]int64{
		model.KindDomain:          1,
		model.KindSubdomain:       1,
		model.KindIPAddr:          1,
		model.KindSubdomainIPAddr: 0,
		model.KindURL:             0,
	}
	for k, w := range want {
		if got, _ := db.Count(k); got != w {
			t.Errorf("Count(%s) = %d, want %d", k, got, w)
		}
	}
}

func TestSQLiteDatabase_Update(t *testing.T) {
	db := newTestDB(t)
	_, subID, err := db.InsertSubdomainWithDomain("www.example.com", "example.com")
	if err != nil {
		t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
	}
	_, urlID, err := db.InsertURL(model.NewURL{SubdomainID: subID, Value: "https://www.example.com/", Title: ptr("Home")})
	if err != nil {
		t.Fatalf("InsertURL() error = %v", err)
	}

	t.Run("writes set fields only", func(t *testing.T) {
		got, err := db.Update(model.URLUpdate{ID: urlID, Status: ptr(int64(301)), Redirect: ptr("https://example.com/")})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got != urlID {
			t.Errorf("Update() = %d, want %d", got, urlID)
		}

		stored, _ := db.URLs().Get(urlID)
		if stored.Status == nil || *stored.Status != 301 {
			t.Errorf("Status = %v, want 301", stored.Status)
		}
		if stored.Title == nil || *stored.Title != "Home" {
			t.Errorf("Title = %v, want Home", stored.Title)
		}
	})

	t.Run("unconditional", func(t *testing.T) {
		if _, err := db.Update(model.SubdomainUpdate{ID: subID, Resolvable: ptr(true)}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if _, err := db.Update(model.SubdomainUpdate{ID: subID, Resolvable: ptr(true)}); err != nil {
			t.Fatalf("repeated Update() error = %v", err)
		}
		sub, _ := db.Subdomains().Get(subID)
		if sub.Resolvable == nil || !*sub.Resolvable {
			t.Errorf("Resolvable = %v, want true", sub.Resolvable)
		}
	})

	t.Run("no fields", func(t *testing.T) {
		if _, err := db.Update(model.EmailUpdate{ID: 1}); !errors.Is(err, ErrNoChanges) {
			t.Errorf("Update() error = %v, want %v", err, ErrNoChanges)
		}
	})

	t.Run("missing row", func(t *testing.T) {
		if _, err := db.Update(model.IPAddrUpdate{ID: 999, City: ptr("Oslo")}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update() error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("typed helper", func(t *testing.T) {
		_, ipID, err := db.InsertIPAddr(model.NewIPAddr{Family: "v4", Value: "192.0.2.1"})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.UpdateIPAddr(model.IPAddrUpdate{ID: ipID, ASN: ptr(int64(64500)), ASOrg: ptr("Example Net")}); err != nil {
			t.Fatalf("UpdateIPAddr() error = %v", err)
		}
		ip, _ := db.IPAddrs().Get(ipID)
		if ip.ASN == nil || *ip.ASN != 64500 {
			t.Errorf("ASN = %v, want 64500", ip.ASN)
		}
	})
}

// racyStore hides existing rows from the first misses lookups, as if another
// writer stored them between the lookup and the insert.
type racyStore[T Model[K], K comparable] struct {
	*Table[T, K]
	misses int
}

func (r *racyStore[T, K]) GetOpt(key K) (*T, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.Table.GetOpt(key)
}

func TestInsertOrMerge_Race(t *testing.T) {
	t.Run("retries once and merges", func(t *testing.T) {
		db := newTestDB(t)
		_, id, err := db.InsertEmail(model.NewEmail{Value: "race@example.com"})
		if err != nil {
			t.Fatalf("InsertEmail() error = %v", err)
		}

		s := &racyStore[model.Email, string]{Table: db.Emails().Table, misses: 1}
		changed, got, err := insertOrMerge(s, emailCandidate(model.NewEmail{Value: "race@example.com", Valid: ptr(true)}), recon.NewNopLogger())
		if err != nil {
			t.Fatalf("insertOrMerge() error = %v", err)
		}
		if !changed || got != id {
			t.Errorf("insertOrMerge() = (%v, %d), want (true, %d)", changed, got, id)
		}

		stored, _ := db.Emails().Get(id)
		if stored.Valid == nil || !*stored.Valid {
			t.Errorf("Valid = %v, want true", stored.Valid)
		}
	})

	t.Run("identical candidate is unchanged after retry", func(t *testing.T) {
		db := newTestDB(t)
		_, id, _ := db.InsertDomain(model.NewDomain{Value: "example.com"})

		s := &racyStore[model.Domain, string]{Table: db.Domains().Table, misses: 1}
		changed, got, err := insertOrMerge(s, domainCandidate(model.NewDomain{Value: "example.com"}), recon.NewNopLogger())
		if err != nil {
			t.Fatalf("insertOrMerge() error = %v", err)
		}
		if changed || got != id {
			t.Errorf("insertOrMerge() = (%v, %d), want (false, %d)", changed, got, id)
		}
	})

	t.Run("second violation is returned", func(t *testing.T) {
		db := newTestDB(t)
		if _, _, err := db.InsertDomain(model.NewDomain{Value: "example.com"}); err != nil {
			t.Fatalf("InsertDomain() error = %v", err)
		}

		s := &racyStore[model.Domain, string]{Table: db.Domains().Table, misses: 2}
		_, _, err := insertOrMerge(s, domainCandidate(model.NewDomain{Value: "example.com"}), recon.NewNopLogger())
		if !IsUniqueViolation(err) {
			t.Errorf("insertOrMerge() error = %v, want unique violation", err)
		}
		if !errors.Is(err, ErrQuery) {
			t.Errorf("insertOrMerge() error = %v, want %v", err, ErrQuery)
		}
	})
}

func TestSQLiteDatabase_BackupRestore(t *testing.T) {
	src := newTestDB(t)
	if _, _, err := src.InsertSubdomainWithDomain("www.example.com", "example.com"); err != nil {
		t.Fatalf("InsertSubdomainWithDomain() error = %v", err)
	}
	if _, _, err := src.InsertEmail(model.NewEmail{Value: "a@example.com"}); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.db")
	if err := src.BackupTo(path); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	dst := newTestDB(t)
	if _, _, err := dst.InsertEmail(model.NewEmail{Value: "stale@example.com"}); err != nil {
		t.Fatalf("InsertEmail() error = %v", err)
	}
	if err := dst.RestoreFrom(path); err != nil {
		t.Fatalf("RestoreFrom() error = %v", err)
	}

	for _, k := range []model.Kind{model.KindDomain, model.KindSubdomain, model.KindEmail} {
		if n, _ := dst.Count(k); n != 1 {
			t.Errorf("Count(%s) after restore = %d, want 1", k, n)
		}
	}
	if _, ok, _ := dst.LookupID(model.KindEmail, "stale@example.com"); ok {
		t.Error("restore kept rows that were not in the snapshot")
	}
	if err := dst.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() after restore error = %v", err)
	}

	_, _, err := dst.InsertURL(model.NewURL{SubdomainID: 999, Value: "https://x.example.com/"})
	if !IsForeignKeyViolation(err) {
		t.Errorf("foreign keys not enforced after restore: %v", err)
	}

	if err := dst.RestoreFrom(filepath.Join(t.TempDir(), "missing.db")); !errors.Is(err, ErrConnection) {
		t.Errorf("RestoreFrom(missing) error = %v, want %v", err, ErrConnection)
	}
}

func TestEstablish(t *testing.T) {
	dir := t.TempDir()

	db, err := Establish("acme", dir, nil)
	if err != nil {
		t.Fatalf("Establish() error = %v", err)
	}
	if db.Name() != "acme" {
		t.Errorf("Name() = %q, want %q", db.Name(), "acme")
	}
	if _, _, err := db.InsertDomain(model.NewDomain{Value: "example.com"}); err != nil {
		t.Fatalf("InsertDomain() error = %v", err)
	}
	db.Close()

	reopened, err := Establish("acme", dir, nil)
	if err != nil {
		t.Fatalf("Establish() reopen error = %v", err)
	}
	defer reopened.Close()

	if n, _ := reopened.Count(model.KindDomain); n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}

	if _, err := Establish("Not Valid", dir, nil); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Establish() error = %v, want %v", err, ErrInvalidName)
	}
}

func TestOpenConnection_ForeignKeysOnEveryConnection(t *testing.T) {
	db, err := OpenConnection(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("OpenConnection() error = %v", err)
	}
	defer db.Close()

	// No idle connections: every query below runs on a fresh connection.
	db.SetMaxIdleConns(0)
	for i := range 3 {
		var on int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
		if on != 1 {
			t.Errorf("query %d: foreign_keys = %d, want 1", i, on)
		}
	}
}

func TestSQLiteDatabase_KindTables(t *testing.T) {
	db := newTestDB(t)
	if _, _, err := db.InsertSubdomainWithDomain("www.example.com", "example.com"); err != nil {
		t.Fatal(err)
	}

	for _, k := range model.Kinds {
		t.Run(string(k), func(t *testing.T) {
			if _, err := db.Count(k); err != nil {
				t.Errorf("Count(%s) error = %v", k, err)
			}
			_, err := db.Scope(k, filter.All())
			if k.Scopable() && err != nil {
				t.Errorf("Scope(%s) error = %v", k, err)
			}
			if !k.Scopable() && !errors.Is(err, ErrUnsupported) {
				t.Errorf("Scope(%s) error = %v, want %v", k, err, ErrUnsupported)
			}
		})
	}

	n, err := db.Delete(model.KindSubdomain, filter.All())
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Delete() = %d, want 1", n)
	}
	if _, err := db.Count(model.Kind("hosts")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Count(hosts) error = %v, want %v", err, ErrUnsupported)
	}
}
