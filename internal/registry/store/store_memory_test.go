package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"renterverify/internal/registry/ledger"
	"renterverify/internal/registry/models"
	"renterverify/pkg/platform/sentinel"
)

const (
	testAdmin  models.Identity = "ST1ADMIN"
	testRenter models.Identity = "ST2RENTER"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory(testAdmin)
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *InMemoryStoreSuite) request(at models.Ordinal) {
	err := s.store.RunInTx(s.ctx, func(txCtx context.Context, l ledger.Ledger) error {
		return ledger.RequestVerification(txCtx, l, testRenter, "ABC Construction", "BUS12345", at)
	})
	s.Require().NoError(err)
}

// TestCommit verifies successful operations become visible to readers.
func (s *InMemoryStoreSuite) TestCommit() {
	s.Run("committed record is readable", func() {
		s.request(100)

		record, err := s.store.FindRecord(s.ctx, testRenter)
		s.Require().NoError(err)
		s.Equal(models.Ordinal(100), record.LastUpdated)
	})

	s.Run("unknown renter returns ErrNotFound", func() {
		_, err := s.store.FindRecord(s.ctx, testRenter)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("admin transfer is visible", func() {
		err := s.store.RunInTx(s.ctx, func(txCtx context.Context, l ledger.Ledger) error {
			return ledger.SetAdmin(txCtx, l, testAdmin, "ST9NEWADMIN")
		})
		s.Require().NoError(err)

		admin, err := s.store.Admin(s.ctx)
		s.Require().NoError(err)
		s.Equal(models.Identity("ST9NEWADMIN"), admin)
	})
}

// TestRollback verifies a failing operation leaves no partial writes.
func (s *InMemoryStoreSuite) TestRollback() {
	s.Run("writes before an error are discarded", func() {
		s.request(100)
		boom := errors.New("abort")

		err := s.store.RunInTx(s.ctx, func(txCtx context.Context, l ledger.Ledger) error {
			if err := ledger.ApproveVerification(txCtx, l, testAdmin, testRenter, 105); err != nil {
				return err
			}
			if err := l.PutAdmin(txCtx, "ST9HIJACK"); err != nil {
				return err
			}
			return boom
		})
		s.Require().ErrorIs(err, boom)

		record, err := s.store.FindRecord(s.ctx, testRenter)
		s.Require().NoError(err)
		s.False(record.IsVerified)
		admin, err := s.store.Admin(s.ctx)
		s.Require().NoError(err)
		s.Equal(testAdmin, admin)
	})

	s.Run("cancelled context is rejected before running", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		ran := false

		err := s.store.RunInTx(ctx, func(context.Context, ledger.Ledger) error {
			ran = true
			return nil
		})
		s.Require().ErrorIs(err, context.Canceled)
		s.False(ran)
	})
}

// TestSerialization verifies concurrent mutations never lose updates.
func (s *InMemoryStoreSuite) TestSerialization() {
	const writers = 50
	renters := make([]models.Identity, writers)
	var wg sync.WaitGroup
	for i := range writers {
		renters[i] = models.Identity("ST" + string(rune('A'+i%26)) + string(rune('a'+i/26)))
		wg.Add(1)
		go func(renter models.Identity, at models.Ordinal) {
			defer wg.Done()
			_ = s.store.RunInTx(s.ctx, func(txCtx context.Context, l ledger.Ledger) error {
				return ledger.RequestVerification(txCtx, l, renter, "Biz", "ID", at)
			})
		}(renters[i], models.Ordinal(i+1))
	}
	wg.Wait()

	for i, renter := range renters {
		record, err := s.store.FindRecord(s.ctx, renter)
		s.Require().NoError(err, "renter %s lost", renter)
		s.Equal(models.Ordinal(i+1), record.LastUpdated)
	}
}
