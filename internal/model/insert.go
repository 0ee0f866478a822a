package model

// Insert is one of the insertable entity representations below. The set is
// closed: only types in this package implement it, so a type switch over the
// New* types is exhaustive.
type Insert interface {
	Kind() Kind
	isInsert()
}

// NewDomain is the insertable form of Domain.
type NewDomain struct {
	Value string
}

// NewSubdomain is the insertable form of Subdomain. DomainID must reference an
// existing Domain; use InsertSubdomain on the database to create it on demand.
type NewSubdomain struct {
	DomainID   int64
	Value      string
	Resolvable *bool
}

// NewIPAddr is the insertable form of IPAddr. Nil attributes are left
// untouched when the address already exists.
type NewIPAddr struct {
	Family        string
	Value         string
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

// NewSubdomainIPAddr is the insertable form of SubdomainIPAddr.
type NewSubdomainIPAddr struct {
	SubdomainID int64
	IPAddrID    int64
}

// NewURL is the insertable form of URL.
type NewURL struct {
	SubdomainID int64
	Value       string
	Status      *int64
	Body        []byte
	Online      *bool
	Title       *string
	Redirect    *string
}

// NewEmail is the insertable form of Email.
type NewEmail struct {
	Value string
	Valid *bool
}

func (NewDomain) Kind() Kind          { return KindDomain }
func (NewSubdomain) Kind() Kind       { return KindSubdomain }
func (NewIPAddr) Kind() Kind          { return KindIPAddr }
func (NewSubdomainIPAddr) Kind() Kind { return KindSubdomainIPAddr }
func (NewURL) Kind() Kind             { return KindURL }
func (NewEmail) Kind() Kind           { return KindEmail }

func (NewDomain) isInsert()          {}
func (NewSubdomain) isInsert()       {}
func (NewIPAddr) isInsert()          {}
func (NewSubdomainIPAddr) isInsert() {}
func (NewURL) isInsert()             {}
func (NewEmail) isInsert()           {}

// Key returns the join row's natural key.
func (n NewSubdomainIPAddr) Key() SubdomainIPAddrKey {
	return SubdomainIPAddrKey{SubdomainID: n.SubdomainID, IPAddrID: n.IPAddrID}
}
