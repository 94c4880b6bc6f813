// Package ordinaltest provides an ordinal source that tests advance by hand.
package ordinaltest

import (
	"context"
	"sync/atomic"

	"renterverify/internal/registry/models"
)

// Counter is a manually advanced ordinal source.
type Counter struct {
	value atomic.Uint64
}

// NewCounter starts the counter at start, or 1 when start is 0.
func NewCounter(start models.Ordinal) *Counter {
	if start == 0 {
		start = 1
	}
	c := &Counter{}
	c.value.Store(uint64(start))
	return c
}

func (c *Counter) Current(_ context.Context) (models.Ordinal, error) {
	return models.Ordinal(c.value.Load()), nil
}

// Advance moves the counter forward by n and returns the new value.
func (c *Counter) Advance(n uint64) models.Ordinal {
	return models.Ordinal(c.value.Add(n))
}
