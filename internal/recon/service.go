package recon

import (
	"errors"
	"fmt"
	"net/netip"

	"scout/internal/filter"
	"scout/internal/model"
)

var (
	// ErrUnknownEntity is returned when a referenced entity is not stored.
	ErrUnknownEntity = errors.New("entity not found")
	// ErrNoVault is returned by snapshot operations when no vault is configured.
	ErrNoVault = errors.New("no vault configured")
)

// Service is the layer between the CLI and the workspace database. It
// resolves names to ids, parses filters, and moves snapshots between the
// database and the vault.
type Service struct {
	database  Database
	vault     Vault
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewService creates a Service. vault and encryptor may be nil when snapshots
// are not used.
func NewService(database Database, vault Vault, encryptor Encryptor, logger Logger, clock Clock, idgen IDGenerator) *Service {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	return &Service{
		database:  database,
		vault:     vault,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// Workspace returns the name of the open workspace.
func (s *Service) Workspace() string {
	return s.database.Name()
}

// AddDomain records a domain.
func (s *Service) AddDomain(value string) (bool, int64, error) {
	changed, id, err := s.database.Insert(model.NewDomain{Value: value})
	if err != nil {
		return false, 0, fmt.Errorf("adding domain %q: %w", value, err)
	}
	s.logInsert(model.KindDomain, value, changed, id)
	return changed, id, nil
}

// AddSubdomain records a subdomain, creating its domain if needed.
func (s *Service) AddSubdomain(subdomain, domain string) (bool, int64, error) {
	changed, id, err := s.database.InsertSubdomainWithDomain(subdomain, domain)
	if err != nil {
		return false, 0, fmt.Errorf("adding subdomain %q: %w", subdomain, err)
	}
	s.logInsert(model.KindSubdomain, subdomain, changed, id)
	return changed, id, nil
}

// AddIPAddr records an address. An empty Family is filled in from the
// address; a Family that disagrees with it is an error.
func (s *Service) AddIPAddr(n model.NewIPAddr) (bool, int64, error) {
	family, err := ipFamily(n.Value)
	if err != nil {
		return false, 0, err
	}
	switch n.Family {
	case "":
		n.Family = family
	case family:
	default:
		return false, 0, fmt.Errorf("address %q is %s, not %s", n.Value, family, n.Family)
	}

	changed, id, err := s.database.Insert(n)
	if err != nil {
		return false, 0, fmt.Errorf("adding ipaddr %q: %w", n.Value, err)
	}
	s.logInsert(model.KindIPAddr, n.Value, changed, id)
	return changed, id, nil
}

func ipFamily(value string) (string, error) {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return "", fmt.Errorf("invalid ip address %q: %w", value, err)
	}
	if addr.Is4() || addr.Is4In6() {
		return "v4", nil
	}
	return "v6", nil
}

// Link records that subdomain resolves to ipaddr. Both must already exist.
func (s *Service) Link(subdomain, ipaddr string) (bool, int64, error) {
	subdomainID, err := s.lookup(model.KindSubdomain, subdomain)
	if err != nil {
		return false, 0, err
	}
	ipAddrID, err := s.lookup(model.KindIPAddr, ipaddr)
	if err != nil {
		return false, 0, err
	}

	changed, id, err := s.database.Insert(model.NewSubdomainIPAddr{SubdomainID: subdomainID, IPAddrID: ipAddrID})
	if err != nil {
		return false, 0, fmt.Errorf("linking %q to %q: %w", subdomain, ipaddr, err)
	}
	s.logInsert(model.KindSubdomainIPAddr, subdomain+" -> "+ipaddr, changed, id)
	return changed, id, nil
}

// AddURL records a URL on an existing subdomain. n.SubdomainID is ignored.
func (s *Service) AddURL(subdomain string, n model.NewURL) (bool, int64, error) {
	subdomainID, err := s.lookup(model.KindSubdomain, subdomain)
	if err != nil {
		return false, 0, err
	}
	n.SubdomainID = subdomainID

	changed, id, err := s.database.Insert(n)
	if err != nil {
		return false, 0, fmt.Errorf("adding url %q: %w", n.Value, err)
	}
	s.logInsert(model.KindURL, n.Value, changed, id)
	return changed, id, nil
}

// AddEmail records an email address.
func (s *Service) AddEmail(value string, valid *bool) (bool, int64, error) {
	changed, id, err := s.database.Insert(model.NewEmail{Value: value, Valid: valid})
	if err != nil {
		return false, 0, fmt.Errorf("adding email %q: %w", value, err)
	}
	s.logInsert(model.KindEmail, value, changed, id)
	return changed, id, nil
}

func (s *Service) lookup(k model.Kind, value string) (int64, error) {
	id, ok, err := s.database.LookupID(k, value)
	if err != nil {
		return 0, fmt.Errorf("looking up %s %q: %w", k, value, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s %q", ErrUnknownEntity, k, value)
	}
	return id, nil
}

func (s *Service) logInsert(k model.Kind, value string, changed bool, id int64) {
	if changed {
		s.logger.Info("entity stored", "kind", k, "value", value, "id", id)
		return
	}
	s.logger.Debug("entity unchanged", "kind", k, "value", value, "id", id)
}

// Select returns the entities of kind whose rows match the filter in args.
// With no args every row is returned.
func (s *Service) Select(kind string, args []string) ([]model.Entity, error) {
	k, f, err := s.parse(kind, args, filter.ParseOptional)
	if err != nil {
		return nil, err
	}
	return s.database.Select(k, f)
}

// Delete removes the matching entities. A filter is required.
func (s *Service) Delete(kind string, args []string) (int64, error) {
	k, f, err := s.parse(kind, args, filter.Parse)
	if err != nil {
		return 0, err
	}
	n, err := s.database.Delete(k, f)
	if err != nil {
		return 0, err
	}
	s.logger.Info("entities deleted", "kind", k, "count", n)
	return n, nil
}

// Scope marks the matching entities as part of the investigation.
func (s *Service) Scope(kind string, args []string) (int64, error) {
	k, f, err := s.parse(kind, args, filter.Parse)
	if err != nil {
		return 0, err
	}
	return s.database.Scope(k, f)
}

// Noscope excludes the matching entities from the investigation.
func (s *Service) Noscope(kind string, args []string) (int64, error) {
	k, f, err := s.parse(kind, args, filter.Parse)
	if err != nil {
		return 0, err
	}
	return s.database.Noscope(k, f)
}

func (s *Service) parse(kind string, args []string, parse func([]string) (filter.Filter, error)) (model.Kind, filter.Filter, error) {
	k, err := model.ParseKind(kind)
	if err != nil {
		return "", filter.Filter{}, err
	}
	s.logger.Debug("parsing filter", "kind", k, "tokens", fmt.Sprintf("%q", args))
	f, err := parse(args)
	if err != nil {
		return "", filter.Filter{}, err
	}
	s.logger.Debug("parsed filter", "query", f.Query())
	return k, f, nil
}

// KindCount is the number of stored rows of one kind.
type KindCount struct {
	Kind  model.Kind
	Count int64
}

// Stats counts the rows of every kind.
func (s *Service) Stats() ([]KindCount, error) {
	stats := make([]KindCount, 0, len(model.Kinds))
	for _, k := range model.Kinds {
		n, err := s.database.Count(k)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", k, err)
		}
		stats = append(stats, KindCount{Kind: k, Count: n})
	}
	return stats, nil
}
