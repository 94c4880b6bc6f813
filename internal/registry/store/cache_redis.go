package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"renterverify/internal/registry/models"
	"renterverify/pkg/platform/sentinel"
)

const (
	cacheKeyPrefix      = "registry:renter:"
	generationKeyPrefix = "registry:renter-gen:"
	defaultCacheTTL     = 30 * time.Second
	// generationTTL must outlive any in-flight miss; it is refreshed on every
	// invalidation.
	generationTTL = 24 * time.Hour
	absentMarker  = "null"
)

// fillScript caches a record only if the renter's generation still matches
// the one read before the source of truth was consulted. A mismatch means a
// write committed and invalidated in between, so the value is stale.
var fillScript = redis.NewScript(`
local gen = redis.call("GET", KEYS[2])
if not gen then gen = "" end
if gen ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// RecordFinder reads one verification record; sentinel.ErrNotFound means the
// renter never requested verification.
type RecordFinder interface {
	FindRecord(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error)
}

// RedisCache is a read-through cache in front of a RecordFinder. Absence is
// cached too, so repeated status checks for unknown renters stay cheap.
// Writers call Invalidate after commit, which bumps a per-renter generation;
// a miss that read the source of truth before that bump never fills.
type RedisCache struct {
	client redis.Cmdable
	next   RecordFinder
	ttl    time.Duration
}

// NewRedisCache wraps next with a Redis cache. ttl <= 0 selects the default.
func NewRedisCache(client redis.Cmdable, next RecordFinder, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, next: next, ttl: ttl}
}

func cacheKey(renter models.Identity) string {
	return cacheKeyPrefix + renter.String()
}

func generationKey(renter models.Identity) string {
	return generationKeyPrefix + renter.String()
}

func (c *RedisCache) FindRecord(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error) {
	key, genKey := cacheKey(renter), generationKey(renter)

	// The generation is read together with the entry, before the source of
	// truth, so the fill below can tell whether a write slipped in.
	vals, err := c.client.MGet(ctx, key, genKey).Result()
	if err != nil || len(vals) != 2 {
		// Cache outage: serve from the source of truth.
		return c.next.FindRecord(ctx, renter)
	}
	if raw, ok := vals[0].(string); ok {
		if record, ok := decodeCached(raw); ok {
			if record == nil {
				return nil, sentinel.ErrNotFound
			}
			return record, nil
		}
	}
	generation, _ := vals[1].(string)

	record, err := c.next.FindRecord(ctx, renter)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	payload := absentMarker
	if record != nil {
		encoded, mErr := json.Marshal(record)
		if mErr != nil {
			return nil, fmt.Errorf("encode cached record: %w", mErr)
		}
		payload = string(encoded)
	}
	_ = fillScript.Run(ctx, c.client, []string{key, genKey},
		generation, payload, c.ttl.Milliseconds()).Err()

	return record, err
}

// Invalidate drops the cached entry for renter and bumps its generation so
// that misses already in flight do not write back what they read.
func (c *RedisCache) Invalidate(ctx context.Context, renter models.Identity) error {
	genKey := generationKey(renter)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, cacheKey(renter))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached record: %w", err)
	}
	return nil
}

func decodeCached(raw string) (*models.VerificationRecord, bool) {
	if raw == absentMarker {
		return nil, true
	}
	var record models.VerificationRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false
	}
	return &record, true
}
