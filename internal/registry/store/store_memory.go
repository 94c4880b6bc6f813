package store

import (
	"context"
	"sync"

	"renterverify/internal/registry/ledger"
	"renterverify/internal/registry/models"
	dErrors "renterverify/pkg/domain-errors"
)

// InMemory keeps the registry in process memory. Mutations are serialized by
// one lock and applied to a clone that replaces the live state only when the
// operation succeeds, so a failed call leaves no partial writes.
type InMemory struct {
	mu    sync.RWMutex
	state *ledger.State
}

// NewInMemory creates an empty registry administered by admin.
func NewInMemory(admin models.Identity) *InMemory {
	return &InMemory{state: ledger.NewState(admin)}
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(txCtx context.Context, l ledger.Ledger) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.Clone()
	if err := fn(ctx, working); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *InMemory) FindRecord(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Record(ctx, renter)
}

func (s *InMemory) Admin(ctx context.Context) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Admin(ctx)
}

// Ping always succeeds; it lets the health check treat every store alike.
func (s *InMemory) Ping(_ context.Context) error {
	return nil
}
