// Package ordinal supplies the block-height style counter the registry uses
// in place of timestamps. Every source starts at 1 and never goes backwards.
package ordinal

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"renterverify/internal/registry/models"
)

// Source reports the current ordinal.
type Source interface {
	Current(ctx context.Context) (models.Ordinal, error)
}

// BlockClock derives a block height from wall time: height 1 at genesis,
// plus one per elapsed interval. The high-water mark keeps it monotonic if
// the wall clock steps backwards.
type BlockClock struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
	high     atomic.Uint64
}

// NewBlockClock creates a clock. interval must be positive.
func NewBlockClock(genesis time.Time, interval time.Duration) (*BlockClock, error) {
	if interval <= 0 {
		return nil, errors.New("block interval must be positive")
	}
	return &BlockClock{genesis: genesis, interval: interval, now: time.Now}, nil
}

func (c *BlockClock) Current(ctx context.Context) (models.Ordinal, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	height := uint64(1)
	if elapsed := c.now().Sub(c.genesis); elapsed > 0 {
		height += uint64(elapsed / c.interval)
	}
	for {
		high := c.high.Load()
		if height <= high {
			return models.Ordinal(high), nil
		}
		if c.high.CompareAndSwap(high, height) {
			return models.Ordinal(height), nil
		}
	}
}
