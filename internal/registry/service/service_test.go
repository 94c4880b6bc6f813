package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"renterverify/internal/platform/ordinal/ordinaltest"
	"renterverify/internal/registry/ledger"
	"renterverify/internal/registry/metrics"
	"renterverify/internal/registry/models"
	"renterverify/internal/registry/store"
	dErrors "renterverify/pkg/domain-errors"
	"renterverify/pkg/platform/audit"
	"renterverify/pkg/platform/audit/publisher"
	auditmemory "renterverify/pkg/platform/audit/store/memory"
	"renterverify/pkg/requestcontext"
)

const (
	admin    models.Identity = "ST1ADMIN"
	renter   models.Identity = "ST2RENTER"
	stranger models.Identity = "ST3STRANGER"
)

// recordingCache serves reads from the store and remembers invalidations.
type recordingCache struct {
	store       *store.InMemory
	invalidated []models.Identity
	failWith    error
}

func (c *recordingCache) FindRecord(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error) {
	return c.store.FindRecord(ctx, renter)
}

func (c *recordingCache) Invalidate(_ context.Context, renter models.Identity) error {
	c.invalidated = append(c.invalidated, renter)
	return c.failWith
}

type brokenStore struct {
	*store.InMemory
}

func (brokenStore) RunInTx(context.Context, func(context.Context, ledger.Ledger) error) error {
	return errors.New("connection reset by peer")
}

func (brokenStore) FindRecord(context.Context, models.Identity) (*models.VerificationRecord, error) {
	return nil, errors.New("connection reset by peer")
}

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	store      *store.InMemory
	clock      *ordinaltest.Counter
	cache      *recordingCache
	auditStore *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-1")
	s.store = store.NewInMemory(admin)
	s.clock = ordinaltest.NewCounter(100)
	s.cache = &recordingCache{store: s.store}
	s.auditStore = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())

	svc, err := New(s.store, s.clock,
		WithCache(s.cache),
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *ServiceSuite) events(subject models.Identity) []audit.Event {
	events, err := s.auditStore.ListBySubject(s.ctx, subject.String())
	s.Require().NoError(err)
	return events
}

func (s *ServiceSuite) TestNew() {
	_, err := New(nil, s.clock)
	s.Error(err)

	_, err = New(s.store, nil)
	s.Error(err)
}

func (s *ServiceSuite) TestRequestVerification() {
	s.Run("records the current ordinal", func() {
		s.Require().NoError(s.service.RequestVerification(s.ctx, renter, "ABC Construction", "BUS12345"))

		record, err := s.service.VerificationDetails(s.ctx, renter)
		s.Require().NoError(err)
		s.Equal(models.VerificationRecord{
			BusinessName: "ABC Construction",
			BusinessID:   "BUS12345",
			LastUpdated:  100,
		}, *record)
		s.Equal([]models.Identity{renter}, s.cache.invalidated)

		events := s.events(renter)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventVerificationRequested), events[0].Action)
		s.Equal(audit.CategoryCompliance, events[0].Category)
		s.Equal(uint64(100), events[0].Ordinal)
		s.Equal("req-1", events[0].RequestID)
	})

	s.Run("validation failures are returned unchanged", func() {
		err := s.service.RequestVerification(s.ctx, renter, "", "")
		s.ErrorIs(err, models.ErrEmptyBusinessName)

		err = s.service.RequestVerification(s.ctx, renter, "ABC Construction", "")
		s.ErrorIs(err, models.ErrEmptyBusinessID)

		s.Empty(s.cache.invalidated)
		s.Empty(s.events(renter))
		s.Equal(float64(1), promtest.ToFloat64(s.metrics.OperationsTotal.WithLabelValues("request_verification", "empty_business_id")))
	})
}

func (s *ServiceSuite) TestApproveAndRevoke() {
	s.Run("admin lifecycle", func() {
		s.Require().NoError(s.service.RequestVerification(s.ctx, renter, "ABC Construction", "BUS12345"))
		s.clock.Advance(5)
		s.Require().NoError(s.service.ApproveVerification(s.ctx, admin, renter))

		verified, err := s.service.IsVerified(s.ctx, renter)
		s.Require().NoError(err)
		s.True(verified)

		s.clock.Advance(5)
		s.Require().NoError(s.service.RevokeVerification(s.ctx, admin, renter))

		record, err := s.service.VerificationDetails(s.ctx, renter)
		s.Require().NoError(err)
		s.False(record.IsVerified)
		s.Equal(models.Ordinal(105), record.VerificationDate)
		s.Equal(models.Ordinal(110), record.LastUpdated)
		s.Len(s.events(renter), 3)
	})

	s.Run("non-admin is denied and audited", func() {
		s.Require().NoError(s.service.RequestVerification(s.ctx, renter, "ABC Construction", "BUS12345"))

		err := s.service.ApproveVerification(s.ctx, stranger, renter)
		s.ErrorIs(err, models.ErrNotAuthorized)

		verified, err := s.service.IsVerified(s.ctx, renter)
		s.Require().NoError(err)
		s.False(verified)

		events := s.events(renter)
		s.Require().Len(events, 2)
		denied := events[1]
		s.Equal(string(audit.EventAccessDenied), denied.Action)
		s.Equal(audit.CategorySecurity, denied.Category)
		s.Equal(stranger.String(), denied.Actor)
		s.Equal("approve_verification", denied.Reason)
	})

	s.Run("unknown renter is not found for the admin", func() {
		err := s.service.RevokeVerification(s.ctx, admin, renter)
		s.ErrorIs(err, models.ErrRenterNotFound)
		s.Empty(s.cache.invalidated)
	})

	s.Run("a failed invalidation does not fail the call", func() {
		s.cache.failWith = errors.New("redis down")
		s.Require().NoError(s.service.RequestVerification(s.ctx, renter, "ABC Construction", "BUS12345"))
		s.Equal(float64(1), promtest.ToFloat64(s.metrics.CacheInvalidation.WithLabelValues(metrics.OutcomeError)))
	})
}

func (s *ServiceSuite) TestSetAdmin() {
	s.Run("handover", func() {
		s.Require().NoError(s.service.SetAdmin(s.ctx, admin, stranger))

		current, err := s.service.CurrentAdmin(s.ctx)
		s.Require().NoError(err)
		s.Equal(stranger, current)

		err = s.service.SetAdmin(s.ctx, admin, admin)
		s.ErrorIs(err, models.ErrNotAuthorized)
		s.Empty(s.cache.invalidated)
	})
}

func (s *ServiceSuite) TestReadsOfUnknownRenter() {
	verified, err := s.service.IsVerified(s.ctx, renter)
	s.Require().NoError(err)
	s.False(verified)

	record, err := s.service.VerificationDetails(s.ctx, renter)
	s.Require().NoError(err)
	s.Nil(record)
}

func (s *ServiceSuite) TestInfrastructureErrors() {
	svc, err := New(brokenStore{s.store}, s.clock, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	s.Require().NoError(err)

	err = svc.ApproveVerification(s.ctx, admin, renter)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	_, isRegistryFailure := models.ResultCodeOf(err)
	s.False(isRegistryFailure)

	_, err = svc.IsVerified(s.ctx, renter)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	err := s.service.RequestVerification(ctx, renter, "ABC Construction", "BUS12345")
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}
