package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"renterverify/internal/platform/ordinal"
	"renterverify/internal/registry/ledger"
	"renterverify/internal/registry/metrics"
	"renterverify/internal/registry/models"
	dErrors "renterverify/pkg/domain-errors"
	"renterverify/pkg/platform/audit"
	"renterverify/pkg/platform/sentinel"
	"renterverify/pkg/requestcontext"
)

const tracerName = "renterverify/internal/registry/service"

// Store is the transactional ledger backing the registry.
type Store interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context, l ledger.Ledger) error) error
	FindRecord(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error)
	Admin(ctx context.Context) (models.Identity, error)
}

// Cache serves record reads and is told about every committed change.
type Cache interface {
	FindRecord(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error)
	Invalidate(ctx context.Context, renter models.Identity) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs registry operations against a Store: it samples the ordinal
// inside the transaction, keeps the cache coherent and records audit events.
// Registry failures (models.Err*) are returned as-is.
type Service struct {
	store          Store
	ordinals       ordinal.Source
	cache          Cache
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(store Store, ordinals ordinal.Source, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("registry store is required")
	}
	if ordinals == nil {
		return nil, errors.New("ordinal source is required")
	}

	svc := &Service{
		store:    store,
		ordinals: ordinals,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// mutation describes one ledger write for the shared run path.
type mutation struct {
	operation string
	action    audit.AuditEvent
	caller    models.Identity
	subject   models.Identity
	// invalidate names the renter whose cached record the write changes.
	invalidate models.Identity
	apply      func(ctx context.Context, l ledger.Ledger, at models.Ordinal) error
}

func (s *Service) SetAdmin(ctx context.Context, caller, newAdmin models.Identity) error {
	return s.mutate(ctx, mutation{
		operation: "set_admin",
		action:    audit.EventAdminChanged,
		caller:    caller,
		subject:   newAdmin,
		apply: func(ctx context.Context, l ledger.Ledger, _ models.Ordinal) error {
			return ledger.SetAdmin(ctx, l, caller, newAdmin)
		},
	})
}

func (s *Service) RequestVerification(ctx context.Context, caller models.Identity, businessName, businessID string) error {
	return s.mutate(ctx, mutation{
		operation:  "request_verification",
		action:     audit.EventVerificationRequested,
		caller:     caller,
		subject:    caller,
		invalidate: caller,
		apply: func(ctx context.Context, l ledger.Ledger, at models.Ordinal) error {
			return ledger.RequestVerification(ctx, l, caller, businessName, businessID, at)
		},
	})
}

func (s *Service) ApproveVerification(ctx context.Context, caller, renter models.Identity) error {
	return s.mutate(ctx, mutation{
		operation:  "approve_verification",
		action:     audit.EventVerificationApproved,
		caller:     caller,
		subject:    renter,
		invalidate: renter,
		apply: func(ctx context.Context, l ledger.Ledger, at models.Ordinal) error {
			return ledger.ApproveVerification(ctx, l, caller, renter, at)
		},
	})
}

func (s *Service) RevokeVerification(ctx context.Context, caller, renter models.Identity) error {
	return s.mutate(ctx, mutation{
		operation:  "revoke_verification",
		action:     audit.EventVerificationRevoked,
		caller:     caller,
		subject:    renter,
		invalidate: renter,
		apply: func(ctx context.Context, l ledger.Ledger, at models.Ordinal) error {
			return ledger.RevokeVerification(ctx, l, caller, renter, at)
		},
	})
}

// IsVerified is false for renters that never requested verification.
func (s *Service) IsVerified(ctx context.Context, renter models.Identity) (bool, error) {
	record, err := s.VerificationDetails(ctx, renter)
	if err != nil || record == nil {
		return false, err
	}
	return record.IsVerified, nil
}

// VerificationDetails returns nil without error when renter is unknown.
func (s *Service) VerificationDetails(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error) {
	ctx, span := s.tracer.Start(ctx, "registry.verification_details",
		trace.WithAttributes(attribute.String("registry.renter", renter.String())))
	defer span.End()
	start := time.Now()

	var (
		record *models.VerificationRecord
		err    error
	)
	if s.cache != nil {
		record, err = s.cache.FindRecord(ctx, renter)
	} else {
		record, err = s.store.FindRecord(ctx, renter)
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.ObserveOperation("verification_details", metrics.OutcomeOK, time.Since(start))
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record lookup failed")
		s.metrics.ObserveOperation("verification_details", metrics.OutcomeError, time.Since(start))
		s.logger.ErrorContext(ctx, "failed to read verification record",
			"renter", renter.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification record")
	}
	s.metrics.ObserveOperation("verification_details", metrics.OutcomeOK, time.Since(start))
	return record, nil
}

// CurrentAdmin returns the identity currently holding admin rights.
func (s *Service) CurrentAdmin(ctx context.Context) (models.Identity, error) {
	admin, err := s.store.Admin(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read registry admin")
	}
	return admin, nil
}

func (s *Service) mutate(ctx context.Context, m mutation) error {
	ctx, span := s.tracer.Start(ctx, "registry."+m.operation,
		trace.WithAttributes(
			attribute.String("registry.caller", m.caller.String()),
			attribute.String("registry.subject", m.subject.String()),
		))
	defer span.End()
	start := time.Now()

	var at models.Ordinal
	err := s.store.RunInTx(ctx, func(txCtx context.Context, l ledger.Ledger) error {
		var err error
		if at, err = s.ordinals.Current(txCtx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read current ordinal")
		}
		return m.apply(txCtx, l, at)
	})
	span.SetAttributes(attribute.Int64("registry.ordinal", int64(at)))

	if err != nil {
		if code, ok := models.ResultCodeOf(err); ok {
			span.SetAttributes(attribute.Int("registry.result_code", int(code)))
			s.metrics.ObserveOperation(m.operation, code.Slug(), time.Since(start))
			if code == models.ResultNotAuthorized {
				s.logger.WarnContext(ctx, "registry access denied",
					"operation", m.operation,
					"caller", m.caller.String(),
					"subject", m.subject.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				s.emit(ctx, audit.Event{
					Action:   string(audit.EventAccessDenied),
					Ordinal:  uint64(at),
					Actor:    m.caller.String(),
					Subject:  m.subject.String(),
					Decision: "denied",
					Reason:   m.operation,
				})
			}
			return err
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, m.operation+" failed")
		s.metrics.ObserveOperation(m.operation, metrics.OutcomeError, time.Since(start))
		s.logger.ErrorContext(ctx, "registry operation failed",
			"operation", m.operation,
			"caller", m.caller.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if _, coded := dErrors.From(err); coded {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, m.operation+" failed")
	}

	s.metrics.ObserveOperation(m.operation, metrics.OutcomeOK, time.Since(start))
	if !m.invalidate.IsZero() {
		s.invalidate(ctx, m.invalidate)
	}
	s.emit(ctx, audit.Event{
		Action:   string(m.action),
		Ordinal:  uint64(at),
		Actor:    m.caller.String(),
		Subject:  m.subject.String(),
		Decision: "applied",
	})
	s.logger.InfoContext(ctx, "registry operation applied",
		"operation", m.operation,
		"caller", m.caller.String(),
		"subject", m.subject.String(),
		"ordinal", uint64(at),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// invalidate drops the cached record after a commit. A failure leaves the
// stale entry to expire with its TTL.
func (s *Service) invalidate(ctx context.Context, renter models.Identity) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, renter); err != nil {
		s.metrics.IncrementCacheInvalidation(metrics.OutcomeError)
		s.logger.WarnContext(ctx, "failed to invalidate cached record",
			"renter", renter.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.metrics.IncrementCacheInvalidation(metrics.OutcomeOK)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.metrics.IncrementAuditEmitFailures()
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}
