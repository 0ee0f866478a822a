package model

// Update is one of the *Update types below. Updates target a row by ID and
// write every non-nil field without comparing against the stored row.
type Update interface {
	Kind() Kind
	TargetID() int64
	isUpdate()
}

// SubdomainUpdate sets attributes of an existing Subdomain.
type SubdomainUpdate struct {
	ID         int64
	Resolvable *bool
}

// IPAddrUpdate sets attributes of an existing IPAddr.
type IPAddrUpdate struct {
	ID            int64
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

// URLUpdate sets attributes of an existing URL.
type URLUpdate struct {
	ID       int64
	Status   *int64
	Body     []byte
	Online   *bool
	Title    *string
	Redirect *string
}

// EmailUpdate sets attributes of an existing Email.
type EmailUpdate struct {
	ID    int64
	Valid *bool
}

func (u SubdomainUpdate) TargetID() int64 { return u.ID }
func (u IPAddrUpdate) TargetID() int64    { return u.ID }
func (u URLUpdate) TargetID() int64       { return u.ID }
func (u EmailUpdate) TargetID() int64     { return u.ID }

func (SubdomainUpdate) Kind() Kind { return KindSubdomain }
func (IPAddrUpdate) Kind() Kind    { return KindIPAddr }
func (URLUpdate) Kind() Kind       { return KindURL }
func (EmailUpdate) Kind() Kind     { return KindEmail }

func (SubdomainUpdate) isUpdate() {}
func (IPAddrUpdate) isUpdate()    {}
func (URLUpdate) isUpdate()       {}
func (EmailUpdate) isUpdate()     {}
