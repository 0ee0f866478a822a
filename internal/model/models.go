// Package model defines the entities of a reconnaissance workspace and the
// representations used to insert and update them.
package model

// Entity is a stored row of any kind.
type Entity interface {
	Kind() Kind
	PrimaryID() int64
}

// Domain is a registrable domain name; the root of the graph.
type Domain struct {
	ID       int64
	Value    string // Natural key, e.g. "example.com"
	Unscoped bool   // Excluded from the active investigation
}

// Subdomain is a host name below a Domain.
type Subdomain struct {
	ID         int64
	DomainID   int64  // Foreign key to Domain
	Value      string // Natural key, e.g. "www.example.com"
	Unscoped   bool
	Resolvable *bool // nil until a resolver has looked at it
}

// IPAddr is an IPv4 or IPv6 address with optional geolocation and ASN data.
type IPAddr struct {
	ID            int64
	Family        string // "v4" or "v6"
	Value         string // Natural key
	Unscoped      bool
	Continent     *string
	ContinentCode *string
	Country       *string
	CountryCode   *string
	City          *string
	Latitude      *float64
	Longitude     *float64
	ASN           *int64
	ASOrg         *string
}

// SubdomainIPAddrKey is the natural key of the subdomain/ip join row.
type SubdomainIPAddrKey struct {
	SubdomainID int64
	IPAddrID    int64
}

// SubdomainIPAddr links a Subdomain to an IPAddr it resolved to.
type SubdomainIPAddr struct {
	ID          int64
	SubdomainID int64
	IPAddrID    int64
}

// URL is a web resource hosted on a Subdomain.
type URL struct {
	ID          int64
	SubdomainID int64  // Foreign key to Subdomain, never created implicitly
	Value       string // Natural key
	Unscoped    bool
	Status      *int64
	Body        []byte // nil when the body was never fetched
	Online      *bool
	Title       *string
	Redirect    *string
}

// Email is an email address.
type Email struct {
	ID       int64
	Value    string // Natural key
	Unscoped bool
	Valid    *bool
}

func (Domain) Kind() Kind          { return KindDomain }
func (Subdomain) Kind() Kind       { return KindSubdomain }
func (IPAddr) Kind() Kind          { return KindIPAddr }
func (SubdomainIPAddr) Kind() Kind { return KindSubdomainIPAddr }
func (URL) Kind() Kind             { return KindURL }
func (Email) Kind() Kind           { return KindEmail }

// PrimaryID and NaturalKey let the database layer treat every entity uniformly.

func (d Domain) PrimaryID() int64      { return d.ID }
func (d Domain) NaturalKey() string    { return d.Value }
func (s Subdomain) PrimaryID() int64   { return s.ID }
func (s Subdomain) NaturalKey() string { return s.Value }
func (i IPAddr) PrimaryID() int64      { return i.ID }
func (i IPAddr) NaturalKey() string    { return i.Value }
func (u URL) PrimaryID() int64         { return u.ID }
func (u URL) NaturalKey() string       { return u.Value }
func (e Email) PrimaryID() int64       { return e.ID }
func (e Email) NaturalKey() string     { return e.Value }

func (s SubdomainIPAddr) PrimaryID() int64 { return s.ID }
func (s SubdomainIPAddr) NaturalKey() SubdomainIPAddrKey {
	return SubdomainIPAddrKey{SubdomainID: s.SubdomainID, IPAddrID: s.IPAddrID}
}
