package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "renterverify/pkg/platform/audit"
	"renterverify/pkg/platform/audit/store/memory"
)

const renter = "ST2PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTOABC"

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Subject: renter,
		Action:  string(audit.EventVerificationRequested),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), renter)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventVerificationRequested), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Subject: renter,
			Action:  string(audit.EventVerificationApproved),
		})
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListBySubject(context.Background(), renter)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventAdminChanged)})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	pub := NewPublisher(blockingStore{release: make(chan struct{})}, WithAsyncBuffer(1))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		dropped int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventVerificationRevoked)})
			if errors.Is(err, ErrBufferFull) {
				mu.Lock()
				dropped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// One event is held by the worker and at most one sits in the buffer.
	assert.GreaterOrEqual(t, dropped, 8)
}

func TestPublisher_SetsTimestampAndCategory(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Subject: renter,
		Action:  string(audit.EventAccessDenied),
	}))

	events, err := pub.List(context.Background(), renter)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Subject:   renter,
		Action:    string(audit.EventVerificationRequested),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), renter)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_ListUnsupported(t *testing.T) {
	pub := NewPublisher(blockingStore{})
	_, err := pub.List(context.Background(), renter)
	assert.Error(t, err)
}

// blockingStore holds every Append until release is closed.
type blockingStore struct {
	release chan struct{}
}

func (s blockingStore) Append(ctx context.Context, _ audit.Event) error {
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}
