//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"renterverify/internal/registry/ledger"
	"renterverify/internal/registry/models"
	"renterverify/internal/registry/store"
	"renterverify/pkg/platform/sentinel"
	"renterverify/pkg/testutil/containers"
)

// committingFinder reads the backing store, then lets one write commit and
// invalidate before handing back what it read.
type committingFinder struct {
	backing *store.InMemory
	onRead  func()
}

func (f *committingFinder) FindRecord(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error) {
	record, err := f.backing.FindRecord(ctx, renter)
	if hook := f.onRead; hook != nil {
		f.onRead = nil
		hook()
	}
	return record, err
}

type RedisCacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backing *store.InMemory
	cache   *store.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backing = store.NewInMemory("ST1ADMIN")
	s.cache = store.NewRedisCache(s.redis.Client, s.backing, time.Minute)
}

func (s *RedisCacheSuite) request(renter models.Identity, name string) {
	s.Require().NoError(s.backing.RunInTx(context.Background(), func(txCtx context.Context, l ledger.Ledger) error {
		return ledger.RequestVerification(txCtx, l, renter, name, "BUS12345", 100)
	}))
}

func (s *RedisCacheSuite) TestReadThrough() {
	ctx := context.Background()
	s.request("ST2RENTER", "ABC Construction")

	first, err := s.cache.FindRecord(ctx, "ST2RENTER")
	s.Require().NoError(err)
	s.Equal("ABC Construction", first.BusinessName)

	// The backing store changes but the cache still serves the first read.
	s.request("ST2RENTER", "ABC Holdings")
	cached, err := s.cache.FindRecord(ctx, "ST2RENTER")
	s.Require().NoError(err)
	s.Equal("ABC Construction", cached.BusinessName)

	s.Require().NoError(s.cache.Invalidate(ctx, "ST2RENTER"))
	fresh, err := s.cache.FindRecord(ctx, "ST2RENTER")
	s.Require().NoError(err)
	s.Equal("ABC Holdings", fresh.BusinessName)
}

func (s *RedisCacheSuite) TestAbsenceIsCached() {
	ctx := context.Background()

	_, err := s.cache.FindRecord(ctx, "ST3NEW")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.request("ST3NEW", "Late Co")
	_, err = s.cache.FindRecord(ctx, "ST3NEW")
	s.Require().ErrorIs(err, sentinel.ErrNotFound, "absence should be served from cache until invalidated")

	s.Require().NoError(s.cache.Invalidate(ctx, "ST3NEW"))
	record, err := s.cache.FindRecord(ctx, "ST3NEW")
	s.Require().NoError(err)
	s.Equal("Late Co", record.BusinessName)
}

func (s *RedisCacheSuite) TestMissRacingRevokeDoesNotRecacheStaleRecord() {
	ctx := context.Background()
	s.request("ST4RENTER", "ABC Construction")
	s.Require().NoError(s.backing.RunInTx(ctx, func(txCtx context.Context, l ledger.Ledger) error {
		return ledger.ApproveVerification(txCtx, l, "ST1ADMIN", "ST4RENTER", 100)
	}))

	finder := &committingFinder{backing: s.backing}
	cache := store.NewRedisCache(s.redis.Client, finder, time.Minute)
	finder.onRead = func() {
		s.Require().NoError(s.backing.RunInTx(ctx, func(txCtx context.Context, l ledger.Ledger) error {
			return ledger.RevokeVerification(txCtx, l, "ST1ADMIN", "ST4RENTER", 101)
		}))
		s.Require().NoError(cache.Invalidate(ctx, "ST4RENTER"))
	}

	// The read that raced the revoke may return what it saw.
	raced, err := cache.FindRecord(ctx, "ST4RENTER")
	s.Require().NoError(err)
	s.True(raced.IsVerified)

	after, err := cache.FindRecord(ctx, "ST4RENTER")
	s.Require().NoError(err)
	s.False(after.IsVerified, "a revoked renter must not be served from the cache as verified")

	stored, err := s.backing.FindRecord(ctx, "ST4RENTER")
	s.Require().NoError(err)
	s.Equal(stored.IsVerified, after.IsVerified)
}

func (s *RedisCacheSuite) TestInvalidateBumpsGeneration() {
	ctx := context.Background()
	s.request("ST5RENTER", "Gen Co")

	s.Require().NoError(s.cache.Invalidate(ctx, "ST5RENTER"))
	s.Require().NoError(s.cache.Invalidate(ctx, "ST5RENTER"))

	gen, err := s.redis.Client.Get(ctx, "registry:renter-gen:ST5RENTER").Int()
	s.Require().NoError(err)
	s.Equal(2, gen)

	// Fills after the last invalidation are cached again.
	_, err = s.cache.FindRecord(ctx, "ST5RENTER")
	s.Require().NoError(err)
	exists, err := s.redis.Client.Exists(ctx, "registry:renter:ST5RENTER").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)
}
