package main

import (
	"fmt"
	"strconv"
	"strings"

	"scout/internal/model"
)

// formatEntity renders one row as "#id value  key=value ...". Unset
// attributes are omitted.
func formatEntity(e model.Entity) string {
	var (
		value string
		attrs []string
	)
	add := func(key, v string) { attrs = append(attrs, key+"="+v) }

	switch r := e.(type) {
	case model.Domain:
		value = r.Value
		scopeAttr(add, r.Unscoped)
	case model.Subdomain:
		value = r.Value
		add("domain", strconv.FormatInt(r.DomainID, 10))
		optAttr(add, "resolvable", r.Resolvable)
		scopeAttr(add, r.Unscoped)
	case model.IPAddr:
		value = r.Value
		add("family", r.Family)
		optAttr(add, "continent", r.Continent)
		optAttr(add, "country", r.Country)
		optAttr(add, "city", r.City)
		optAttr(add, "asn", r.ASN)
		optAttr(add, "as_org", r.ASOrg)
		scopeAttr(add, r.Unscoped)
	case model.SubdomainIPAddr:
		value = fmt.Sprintf("subdomain %d -> ipaddr %d", r.SubdomainID, r.IPAddrID)
	case model.URL:
		value = r.Value
		add("subdomain", strconv.FormatInt(r.SubdomainID, 10))
		optAttr(add, "status", r.Status)
		optAttr(add, "online", r.Online)
		optAttr(add, "title", r.Title)
		optAttr(add, "redirect", r.Redirect)
		if r.Body != nil {
			add("body", strconv.Itoa(len(r.Body))+"B")
		}
		scopeAttr(add, r.Unscoped)
	case model.Email:
		value = r.Value
		optAttr(add, "valid", r.Valid)
		scopeAttr(add, r.Unscoped)
	default:
		value = fmt.Sprintf("%v", e)
	}

	line := fmt.Sprintf("#%d %s", e.PrimaryID(), value)
	if len(attrs) > 0 {
		line += "  " + strings.Join(attrs, " ")
	}
	return line
}

func optAttr[T any](add func(string, string), key string, v *T) {
	if v != nil {
		add(key, fmt.Sprint(*v))
	}
}

func scopeAttr(add func(string, string), unscoped bool) {
	if unscoped {
		add("scope", "out")
	}
}
