package model

import "fmt"

// Kind names an entity kind. The string form is also the table name.
type Kind string

const (
	KindDomain          Kind = "domains"
	KindSubdomain       Kind = "subdomains"
	KindIPAddr          Kind = "ipaddrs"
	KindSubdomainIPAddr Kind = "subdomain_ipaddrs"
	KindURL             Kind = "urls"
	KindEmail           Kind = "emails"
)

// Kinds lists every entity kind in parent-before-child order.
var Kinds = []Kind{
	KindDomain,
	KindSubdomain,
	KindIPAddr,
	KindSubdomainIPAddr,
	KindURL,
	KindEmail,
}

// kindAliases maps the names accepted on the command line to kinds.
var kindAliases = map[string]Kind{
	"domain":            KindDomain,
	"domains":           KindDomain,
	"subdomain":         KindSubdomain,
	"subdomains":        KindSubdomain,
	"ipaddr":            KindIPAddr,
	"ipaddrs":           KindIPAddr,
	"subdomain-ipaddr":  KindSubdomainIPAddr,
	"subdomain-ipaddrs": KindSubdomainIPAddr,
	"subdomain_ipaddrs": KindSubdomainIPAddr,
	"url":               KindURL,
	"urls":              KindURL,
	"email":             KindEmail,
	"emails":            KindEmail,
}

// ParseKind resolves a singular or plural entity name.
func ParseKind(name string) (Kind, error) {
	k, ok := kindAliases[name]
	if !ok {
		return "", fmt.Errorf("unknown entity kind: %q", name)
	}
	return k, nil
}

// Scopable reports whether rows of this kind carry a scope marker.
func (k Kind) Scopable() bool {
	return k != KindSubdomainIPAddr
}

func (k Kind) String() string { return string(k) }
