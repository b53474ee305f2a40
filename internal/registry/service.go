// Package registry orchestrates validated issuance, authorized invalidation,
// batch import and the query surface over the role and certificate state.
//
// All mutating operations run under a single exclusion domain (the service
// mutex) so callers never observe an interleaved, partially-applied state:
// validation, the store mutation and the outcome emission of one attempt are
// atomic with respect to every other call.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"certledger/internal/audit"
	"certledger/internal/registry/metrics"
	"certledger/internal/registry/models"
	"certledger/internal/registry/roles"
	"certledger/internal/registry/store"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/platform/sentinel"
)

// Service is the certificate registry core. One instance owns one role state
// and one certificate store; nothing else mutates them.
type Service struct {
	mu      sync.RWMutex
	roles   *roles.Manager
	store   store.Store
	sink    Sink
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	// adminsMayIssue extends issuance rights to explicit admins. The reference
	// behavior only requires owner-or-trusted-issuer; this is the configurable
	// extension point.
	adminsMayIssue bool
}

type serviceConfig struct {
	sink           Sink
	auditor        *audit.Publisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
	adminsMayIssue bool
}

// Option configures a Service.
type Option func(*serviceConfig)

func WithSink(sink Sink) Option {
	return func(cfg *serviceConfig) { cfg.sink = sink }
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(cfg *serviceConfig) { cfg.auditor = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

// WithClock injects the time source. Tests pin it; production uses time.Now.
func WithClock(now func() time.Time) Option {
	return func(cfg *serviceConfig) { cfg.now = now }
}

// WithAdminIssuance lets explicit admins issue certificates in addition to the
// owner and trusted issuers.
func WithAdminIssuance(enabled bool) Option {
	return func(cfg *serviceConfig) { cfg.adminsMayIssue = enabled }
}

// New constructs a Service around the given role manager and store.
func New(roleManager *roles.Manager, certStore store.Store, opts ...Option) (*Service, error) {
	if roleManager == nil {
		return nil, fmt.Errorf("role manager is required")
	}
	if certStore == nil {
		return nil, fmt.Errorf("certificate store is required")
	}
	cfg := &serviceConfig{
		sink:   NopSink{},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		roles:          roleManager,
		store:          certStore,
		sink:           cfg.sink,
		auditor:        cfg.auditor,
		metrics:        cfg.metrics,
		logger:         cfg.logger,
		now:            cfg.now,
		adminsMayIssue: cfg.adminsMayIssue,
	}, nil
}

// AddCertificate runs the issuance pipeline for a single certificate. On
// success the record is inserted with IssueDate set by the registry clock and
// ExpireDate exactly DaysValid days later. On any failure no state changes.
// Every attempt, either way, produces one outcome on the sink.
func (s *Service) AddCertificate(ctx context.Context, caller models.Identity, req models.CertificateRequest) (*models.CertificateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.issueLocked(ctx, caller, req)
	if err != nil {
		s.sink.Emit(ctx, failureOutcome(req.Checksum, err))
		s.metrics.RecordIssuanceFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}

	s.sink.Emit(ctx, successOutcome(record))
	s.metrics.RecordIssued()
	return record, nil
}

// BulkUpload processes items strictly in input order through the same pipeline
// as AddCertificate. The batch is not atomic: a failing item is reported and
// skipped, never aborting or rolling back the rest. The returned outcomes
// preserve input order, interleaving failures and successes as they occurred.
func (s *Service) BulkUpload(ctx context.Context, caller models.Identity, items []models.CertificateRequest) []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcomes := make([]Outcome, 0, len(items))
	for _, item := range items {
		record, err := s.issueLocked(ctx, caller, item)
		if err != nil {
			outcome := failureOutcome(item.Checksum, err)
			s.sink.Emit(ctx, outcome)
			s.metrics.RecordBulkItem(string(StatusFailed))
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome := successOutcome(record)
		s.sink.Emit(ctx, outcome)
		s.metrics.RecordIssued()
		s.metrics.RecordBulkItem(string(StatusSuccess))
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// issueLocked validates and inserts one certificate. Callers hold s.mu. The
// check order is fixed; error precedence is part of the contract.
func (s *Service) issueLocked(ctx context.Context, caller models.Identity, req models.CertificateRequest) (*models.CertificateRecord, error) {
	if !s.mayIssue(caller) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "not a trusted issuer")
	}
	if req.Checksum == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "file checksum must not be empty")
	}
	existing, err := s.store.Get(ctx, req.Checksum)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check certificate presence")
	}
	if existing != nil {
		return nil, dErrors.New(dErrors.CodeConflict, "certificate already present")
	}
	if req.Recipient.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "recipient name must not be empty")
	}
	if req.Recipient.Surname == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "recipient surname must not be empty")
	}
	if req.Recipient.Email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "recipient email must not be empty")
	}
	if req.DaysValid < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "contract must be valid for at least 1 day")
	}
	if req.CertName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "cert name must not be empty")
	}
	if req.IssuerIdentificationName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "issuer identification name must not be empty")
	}

	issueDate := s.now()
	record := models.CertificateRecord{
		Checksum:                 req.Checksum,
		Recipient:                req.Recipient,
		IssueDate:                issueDate,
		ExpireDate:               issueDate.AddDate(0, 0, req.DaysValid),
		Issuer:                   caller,
		CertName:                 req.CertName,
		IssuerIdentificationName: req.IssuerIdentificationName,
	}
	if err := s.store.Insert(ctx, &record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "certificate already present")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert certificate")
	}
	return &record, nil
}

func (s *Service) mayIssue(caller models.Identity) bool {
	if s.roles.IsTrustedIssuer(caller) {
		return true
	}
	return s.adminsMayIssue && s.roles.IsAdmin(caller)
}

// Invalidate hard-deletes the record identified by checksum. Only the identity
// that issued the record may invalidate it. Invalidation is terminal; the same
// checksum may later be re-issued as a fresh record.
func (s *Service) Invalidate(ctx context.Context, caller models.Identity, checksum string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.store.Get(ctx, checksum)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up certificate")
	}
	if record == nil {
		return dErrors.New(dErrors.CodeNotFound, "certificate does not exist")
	}
	if record.Issuer != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "must be contract's issuer")
	}
	if err := s.store.Remove(ctx, checksum); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove certificate")
	}

	s.metrics.RecordInvalidated()
	s.audit(ctx, audit.Event{
		Actor:    caller,
		Action:   audit.EventCertificateInvalidated,
		Checksum: checksum,
	})
	return nil
}

// GetCertificate returns the record for checksum, or nil when absent. Absence
// is not an error.
func (s *Service) GetCertificate(ctx context.Context, checksum string) (*models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, err := s.store.Get(ctx, checksum)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up certificate")
	}
	return record, nil
}

// GetChecksums returns all active checksums in original insertion order.
func (s *Service) GetChecksums(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	checksums, err := s.store.ListChecksums(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list checksums")
	}
	return checksums, nil
}

// GetAllCertificates returns all active records in original insertion order.
func (s *Service) GetAllCertificates(ctx context.Context) ([]models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	return records, nil
}

// GetCertificatesIssuedBy returns the active records issued by the given
// identity, preserving relative insertion order.
func (s *Service) GetCertificatesIssuedBy(ctx context.Context, issuer models.Identity) ([]models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, err := s.store.ListByIssuer(ctx, issuer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list certificates")
	}
	return records, nil
}

// AddAdmin grants the admin role. Owner-only.
func (s *Service) AddAdmin(ctx context.Context, caller, target models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.roles.AddAdmin(caller, target); err != nil {
		return err
	}
	s.audit(ctx, audit.Event{Actor: caller, Target: target, Action: audit.EventAdminAdded})
	return nil
}

// RemoveAdmin revokes the admin role. Owner-only; never the owner itself.
func (s *Service) RemoveAdmin(ctx context.Context, caller, target models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.roles.RemoveAdmin(caller, target); err != nil {
		return err
	}
	s.audit(ctx, audit.Event{Actor: caller, Target: target, Action: audit.EventAdminRemoved})
	return nil
}

// AddTrustedIssuer grants issuance rights. Owner or admin.
func (s *Service) AddTrustedIssuer(ctx context.Context, caller, target models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.roles.AddTrustedIssuer(caller, target); err != nil {
		return err
	}
	s.audit(ctx, audit.Event{Actor: caller, Target: target, Action: audit.EventTrustedIssuerAdded})
	return nil
}

// RemoveTrustedIssuer revokes issuance rights. Owner or admin; never the owner.
func (s *Service) RemoveTrustedIssuer(ctx context.Context, caller, target models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.roles.RemoveTrustedIssuer(caller, target); err != nil {
		return err
	}
	s.audit(ctx, audit.Event{Actor: caller, Target: target, Action: audit.EventTrustedIssuerRemoved})
	return nil
}

// IsOwner reports whether id is the registry owner.
func (s *Service) IsOwner(id models.Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles.IsOwner(id)
}

// IsAdmin reports explicit admin membership.
func (s *Service) IsAdmin(id models.Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles.IsAdmin(id)
}

// IsTrustedIssuer reports whether id may issue certificates.
func (s *Service) IsTrustedIssuer(id models.Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles.IsTrustedIssuer(id)
}

func (s *Service) audit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to append audit event",
			"action", string(event.Action),
			"error", err,
		)
	}
}
