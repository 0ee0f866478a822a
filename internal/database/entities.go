package database

import (
	"scout/internal/model"
)

// Column lists, in scan order.

var domainSchema = &schema[model.Domain, string]{
	kind:     model.KindDomain,
	columns:  []string{"id", "value", "unscoped"},
	keyWhere: "value = ?",
	keyArgs:  valueKey,
	scan: func(s scanner) (model.Domain, error) {
		var d model.Domain
		err := s.Scan(&d.ID, &d.Value, &d.Unscoped)
		return d, err
	},
}

var subdomainSchema = &schema[model.Subdomain, string]{
	kind:     model.KindSubdomain,
	columns:  []string{"id", "domain_id", "value", "unscoped", "resolvable"},
	keyWhere: "value = ?",
	keyArgs:  valueKey,
	scan: func(s scanner) (model.Subdomain, error) {
		var d model.Subdomain
		err := s.Scan(&d.ID, &d.DomainID, &d.Value, &d.Unscoped, &d.Resolvable)
		return d, err
	},
}

var ipAddrSchema = &schema[model.IPAddr, string]{
	kind: model.KindIPAddr,
	columns: []string{
		"id", "family", "value", "unscoped",
		"continent", "continent_code", "country", "country_code", "city",
		"latitude", "longitude", "asn", "as_org",
	},
	keyWhere: "value = ?",
	keyArgs:  valueKey,
	scan: func(s scanner) (model.IPAddr, error) {
		var a model.IPAddr
		err := s.Scan(&a.ID, &a.Family, &a.Value, &a.Unscoped,
			&a.Continent, &a.ContinentCode, &a.Country, &a.CountryCode, &a.City,
			&a.Latitude, &a.Longitude, &a.ASN, &a.ASOrg)
		return a, err
	},
}

var subdomainIPAddrSchema = &schema[model.SubdomainIPAddr, model.SubdomainIPAddrKey]{
	kind:     model.KindSubdomainIPAddr,
	columns:  []string{"id", "subdomain_id", "ip_addr_id"},
	keyWhere: "subdomain_id = ? AND ip_addr_id = ?",
	keyArgs: func(k model.SubdomainIPAddrKey) []any {
		return []any{k.SubdomainID, k.IPAddrID}
	},
	scan: func(s scanner) (model.SubdomainIPAddr, error) {
		var l model.SubdomainIPAddr
		err := s.Scan(&l.ID, &l.SubdomainID, &l.IPAddrID)
		return l, err
	},
}

var urlSchema = &schema[model.URL, string]{
	kind:     model.KindURL,
	columns:  []string{"id", "subdomain_id", "value", "unscoped", "status", "body", "online", "title", "redirect"},
	keyWhere: "value = ?",
	keyArgs:  valueKey,
	scan: func(s scanner) (model.URL, error) {
		var u model.URL
		err := s.Scan(&u.ID, &u.SubdomainID, &u.Value, &u.Unscoped,
			&u.Status, &u.Body, &u.Online, &u.Title, &u.Redirect)
		return u, err
	},
}

var emailSchema = &schema[model.Email, string]{
	kind:     model.KindEmail,
	columns:  []string{"id", "value", "unscoped", "valid"},
	keyWhere: "value = ?",
	keyArgs:  valueKey,
	scan: func(s scanner) (model.Email, error) {
		var e model.Email
		err := s.Scan(&e.ID, &e.Value, &e.Unscoped, &e.Valid)
		return e, err
	},
}

func valueKey(v string) []any {
	return []any{v}
}

// Candidates. Each returns the full column set for a fresh row and the dirty
// subset when merged into an existing row.

func domainCandidate(n model.NewDomain) candidate[model.Domain, string] {
	return candidate[model.Domain, string]{
		key: n.Value,
		values: func() changeset {
			return changeset{{"value", n.Value}}
		},
		diff: func(model.Domain) changeset {
			return nil
		},
	}
}

func subdomainCandidate(n model.NewSubdomain) candidate[model.Subdomain, string] {
	return candidate[model.Subdomain, string]{
		key: n.Value,
		values: func() changeset {
			cs := changeset{{"domain_id", n.DomainID}, {"value", n.Value}}
			setOpt(&cs, "resolvable", n.Resolvable)
			return cs
		},
		diff: func(stored model.Subdomain) changeset {
			var cs changeset
			diffOpt(&cs, "resolvable", stored.Resolvable, n.Resolvable)
			return cs
		},
	}
}

func ipAddrCandidate(n model.NewIPAddr) candidate[model.IPAddr, string] {
	return candidate[model.IPAddr, string]{
		key: n.Value,
		values: func() changeset {
			cs := changeset{{"family", n.Family}, {"value", n.Value}}
			setOpt(&cs, "continent", n.Continent)
			setOpt(&cs, "continent_code", n.ContinentCode)
			setOpt(&cs, "country", n.Country)
			setOpt(&cs, "country_code", n.CountryCode)
			setOpt(&cs, "city", n.City)
			setOpt(&cs, "latitude", n.Latitude)
			setOpt(&cs, "longitude", n.Longitude)
			setOpt(&cs, "asn", n.ASN)
			setOpt(&cs, "as_org", n.ASOrg)
			return cs
		},
		diff: func(stored model.IPAddr) changeset {
			var cs changeset
			diffOpt(&cs, "continent", stored.Continent, n.Continent)
			diffOpt(&cs, "continent_code", stored.ContinentCode, n.ContinentCode)
			diffOpt(&cs, "country", stored.Country, n.Country)
			diffOpt(&cs, "country_code", stored.CountryCode, n.CountryCode)
			diffOpt(&cs, "city", stored.City, n.City)
			diffOpt(&cs, "latitude", stored.Latitude, n.Latitude)
			diffOpt(&cs, "longitude", stored.Longitude, n.Longitude)
			diffOpt(&cs, "asn", stored.ASN, n.ASN)
			diffOpt(&cs, "as_org", stored.ASOrg, n.ASOrg)
			return cs
		},
	}
}

// The join row has no attributes; an existing link is never changed.
func subdomainIPAddrCandidate(n model.NewSubdomainIPAddr) candidate[model.SubdomainIPAddr, model.SubdomainIPAddrKey] {
	return candidate[model.SubdomainIPAddr, model.SubdomainIPAddrKey]{
		key: n.Key(),
		values: func() changeset {
			return changeset{{"subdomain_id", n.SubdomainID}, {"ip_addr_id", n.IPAddrID}}
		},
		diff: func(model.SubdomainIPAddr) changeset {
			return nil
		},
	}
}

func urlCandidate(n model.NewURL) candidate[model.URL, string] {
	return candidate[model.URL, string]{
		key: n.Value,
		values: func() changeset {
			cs := changeset{{"subdomain_id", n.SubdomainID}, {"value", n.Value}}
			setOpt(&cs, "status", n.Status)
			setBytes(&cs, "body", n.Body)
			setOpt(&cs, "online", n.Online)
			setOpt(&cs, "title", n.Title)
			setOpt(&cs, "redirect", n.Redirect)
			return cs
		},
		diff: func(stored model.URL) changeset {
			var cs changeset
			diffOpt(&cs, "status", stored.Status, n.Status)
			diffBytes(&cs, "body", stored.Body, n.Body)
			diffOpt(&cs, "online", stored.Online, n.Online)
			diffOpt(&cs, "title", stored.Title, n.Title)
			diffOpt(&cs, "redirect", stored.Redirect, n.Redirect)
			return cs
		},
	}
}

func emailCandidate(n model.NewEmail) candidate[model.Email, string] {
	return candidate[model.Email, string]{
		key: n.Value,
		values: func() changeset {
			cs := changeset{{"value", n.Value}}
			setOpt(&cs, "valid", n.Valid)
			return cs
		},
		diff: func(stored model.Email) changeset {
			var cs changeset
			diffOpt(&cs, "valid", stored.Valid, n.Valid)
			return cs
		},
	}
}

// Updates write every field that is set, without comparing.

func subdomainChanges(u model.SubdomainUpdate) changeset {
	var cs changeset
	setOpt(&cs, "resolvable", u.Resolvable)
	return cs
}

func ipAddrChanges(u model.IPAddrUpdate) changeset {
	var cs changeset
	setOpt(&cs, "continent", u.Continent)
	setOpt(&cs, "continent_code", u.ContinentCode)
	setOpt(&cs, "country", u.Country)
	setOpt(&cs, "country_code", u.CountryCode)
	setOpt(&cs, "city", u.City)
	setOpt(&cs, "latitude", u.Latitude)
	setOpt(&cs, "longitude", u.Longitude)
	setOpt(&cs, "asn", u.ASN)
	setOpt(&cs, "as_org", u.ASOrg)
	return cs
}

func urlChanges(u model.URLUpdate) changeset {
	var cs changeset
	setOpt(&cs, "status", u.Status)
	setBytes(&cs, "body", u.Body)
	setOpt(&cs, "online", u.Online)
	setOpt(&cs, "title", u.Title)
	setOpt(&cs, "redirect", u.Redirect)
	return cs
}

func emailChanges(u model.EmailUpdate) changeset {
	var cs changeset
	setOpt(&cs, "valid", u.Valid)
	return cs
}
