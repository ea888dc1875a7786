package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"domain-bot/internal/domain"
	"domain-bot/internal/metrics"
	"domain-bot/internal/repository"
)

var (
	ErrDomainNotFound = errors.New("domain not found")
	ErrLookupFailed   = errors.New("whois lookup failed")
)

const (
	fallbackRegistrar = "Unknown (.ir domain)"
	fallbackStatus    = "Active"
)

// WhoisLookup consulta los datos de registro de un dominio.
type WhoisLookup interface {
	Lookup(ctx context.Context, name string) (domain.WhoisInfo, error)
}

// AddOutcome resume como termino un alta de dominio.
type AddOutcome string

const (
	AddOutcomeAdded        AddOutcome = "added"
	AddOutcomeFallback     AddOutcome = "fallback"
	AddOutcomeDuplicate    AddOutcome = "duplicate"
	AddOutcomeInvalid      AddOutcome = "invalid"
	AddOutcomeLookupFailed AddOutcome = "lookup_failed"
)

type AddDomainInput struct {
	User domain.User
	Raw  string
	// OnLookup se invoca con el nombre normalizado justo antes de la consulta WHOIS.
	OnLookup func(name string)
}

type AddDomainResult struct {
	Outcome AddOutcome
	Name    string
	Domain  domain.TrackedDomain
	Status  domain.ExpiryStatus
}

// DomainService implementa el alta, consulta, refresco y baja de dominios monitoreados.
type DomainService struct {
	logger  *zap.Logger
	domains repository.DomainRepository
	whois   WhoisLookup
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewDomainService(logger *zap.Logger, domains repository.DomainRepository, whois WhoisLookup, m *metrics.Metrics) *DomainService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DomainService{
		logger:  logger,
		domains: domains,
		whois:   whois,
		metrics: m,
		now:     time.Now,
	}
}

// Add normaliza, valida, descarta duplicados, consulta WHOIS y persiste.
// Los resultados recuperables (invalido, duplicado, consulta fallida) vuelven como Outcome sin error;
// el error queda para fallas de persistencia.
func (s *DomainService) Add(ctx context.Context, in AddDomainInput) (AddDomainResult, error) {
	if !in.User.IsVerified {
		return AddDomainResult{}, ErrUserNotVerified
	}
	name := NormalizeDomain(in.Raw)
	res := AddDomainResult{Name: name}
	if !IsValidDomain(name) {
		res.Outcome = AddOutcomeInvalid
		return s.record(res), nil
	}

	existing, err := s.domains.ListByUserID(ctx, in.User.ID)
	if err != nil {
		return AddDomainResult{}, fmt.Errorf("list domains: %w", err)
	}
	for _, d := range existing {
		if strings.EqualFold(d.Domain, name) {
			res.Outcome = AddOutcomeDuplicate
			res.Domain = d
			return s.record(res), nil
		}
	}

	if in.OnLookup != nil {
		in.OnLookup(name)
	}
	info, lookupErr := s.lookup(ctx, name)
	if lookupErr != nil {
		if !HasUnreliableWhois(name) {
			s.logger.Info("domain lookup failed", zap.String("domain", name), zap.Error(lookupErr))
			res.Outcome = AddOutcomeLookupFailed
			return s.record(res), nil
		}
		registrar, status := fallbackRegistrar, fallbackStatus
		info = domain.WhoisInfo{Registrar: &registrar, Status: &status}
		res.Outcome = AddOutcomeFallback
	} else {
		res.Outcome = AddOutcomeAdded
	}

	created, err := s.domains.Create(ctx, domain.TrackedDomain{
		UserID:           in.User.ID,
		Domain:           name,
		RegistrationDate: info.RegistrationDate,
		ExpirationDate:   info.ExpirationDate,
		LastRenewDate:    info.LastRenewDate,
		Registrar:        info.Registrar,
		Status:           info.Status,
		CreatedAt:        s.now().UTC(),
	})
	if err != nil {
		return AddDomainResult{}, fmt.Errorf("create domain: %w", err)
	}
	res.Domain = created
	res.Status = ClassifyExpiry(created.ExpirationDate, s.now())
	s.logger.Info("domain added",
		zap.Int64("user_id", in.User.ID),
		zap.String("domain", name),
		zap.String("outcome", string(res.Outcome)),
	)
	return s.record(res), nil
}

func (s *DomainService) List(ctx context.Context, userID int64) ([]domain.TrackedDomain, error) {
	return s.domains.ListByUserID(ctx, userID)
}

// FindOwned devuelve el dominio solo si pertenece a userID.
func (s *DomainService) FindOwned(ctx context.Context, userID, domainID int64) (domain.TrackedDomain, error) {
	list, err := s.domains.ListByUserID(ctx, userID)
	if err != nil {
		return domain.TrackedDomain{}, err
	}
	for _, d := range list {
		if d.ID == domainID {
			return d, nil
		}
	}
	return domain.TrackedDomain{}, ErrDomainNotFound
}

// Delete borra un dominio propio y devuelve el registro eliminado.
func (s *DomainService) Delete(ctx context.Context, userID, domainID int64) (domain.TrackedDomain, error) {
	d, err := s.FindOwned(ctx, userID, domainID)
	if err != nil {
		return domain.TrackedDomain{}, err
	}
	if err := s.domains.Delete(ctx, userID, domainID); err != nil {
		return domain.TrackedDomain{}, err
	}
	s.logger.Info("domain deleted", zap.Int64("user_id", userID), zap.String("domain", d.Domain))
	return d, nil
}

// Refresh vuelve a consultar WHOIS y guarda los datos nuevos. Si la consulta falla el registro no cambia.
func (s *DomainService) Refresh(ctx context.Context, userID, domainID int64) (domain.TrackedDomain, error) {
	d, err := s.FindOwned(ctx, userID, domainID)
	if err != nil {
		return domain.TrackedDomain{}, err
	}
	info, err := s.lookup(ctx, d.Domain)
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if err := s.domains.UpdateInfo(ctx, userID, domainID, info); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TrackedDomain{}, ErrDomainNotFound
		}
		return domain.TrackedDomain{}, err
	}
	d.RegistrationDate = info.RegistrationDate
	d.ExpirationDate = info.ExpirationDate
	d.LastRenewDate = info.LastRenewDate
	d.Registrar = info.Registrar
	d.Status = info.Status
	return d, nil
}

func (s *DomainService) lookup(ctx context.Context, name string) (domain.WhoisInfo, error) {
	if s.whois == nil {
		s.metrics.IncWhois("error")
		return domain.WhoisInfo{}, errors.New("whois client not configured")
	}
	info, err := s.whois.Lookup(ctx, name)
	if err != nil {
		s.metrics.IncWhois("error")
		return domain.WhoisInfo{}, err
	}
	s.metrics.IncWhois("ok")
	return info, nil
}

func (s *DomainService) record(res AddDomainResult) AddDomainResult {
	s.metrics.IncDomainAdd(string(res.Outcome))
	return res
}

// HasUnreliableWhois indica si el dominio pertenece a un TLD cuyo WHOIS suele fallar (.ir).
func HasUnreliableWhois(name string) bool {
	return strings.HasSuffix(name, ".ir") || strings.Contains(name, ".ir.")
}
