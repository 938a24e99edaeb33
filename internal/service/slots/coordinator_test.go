package slots

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/memory"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
	"github.com/m04kA/SMC-BranchAppointments/pkg/metrics"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type mockSlotStore struct {
	mock.Mock
}

func (m *mockSlotStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*domain.Slot); ok {
		return s.Clone(), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSlotStore) ConditionalUpdate(ctx context.Context, s *domain.Slot, expectedVersion int64) (bool, error) {
	args := m.Called(ctx, s, expectedVersion)
	return args.Bool(0), args.Error(1)
}

type passThroughTx struct{}

func (passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegisterer("test", prometheus.NewRegistry())
}

func newMemoryCoordinator(t *testing.T, capacity int) (*Coordinator, *memory.Store, *domain.Slot) {
	t.Helper()
	store := memory.NewStore()
	slot := domain.NewSlot(uuid.New(), testNow, "10:00", "10:30", capacity, testNow)
	n, err := store.Slots().UpsertMany(context.Background(), []*domain.Slot{slot})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	c := NewCoordinator(store.Slots(), store, newTestMetrics(), Options{MaxAttempts: 3, Backoff: time.Millisecond}, logger.Discard())
	c.timeProvider = fixedClock{}
	return c, store, slot
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return testNow }

func TestCoordinator_NoOverbooking(t *testing.T) {
	const capacity, extra = 5, 4
	c, store, slot := newMemoryCoordinator(t, capacity)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		full      int
	)
	for i := 0; i < capacity+extra; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Apply(context.Background(), slot.ID, domain.BookSlot{Now: testNow})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrSlotFullyBooked):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, successes)
	assert.Equal(t, extra, full)

	stored, err := store.Slots().FindByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, stored.BookingCount)
	assert.Equal(t, domain.SlotFullyBooked, stored.Status)
	assert.Equal(t, int64(capacity), stored.Version)
}

// barrierSlotStore задерживает первые parties чтений, пока все они не прочитают одну и ту же версию
type barrierSlotStore struct {
	SlotStore

	mu      sync.Mutex
	arrived int
	parties int
	release chan struct{}
}

func newBarrierSlotStore(store SlotStore, parties int) *barrierSlotStore {
	return &barrierSlotStore{SlotStore: store, parties: parties, release: make(chan struct{})}
}

func (s *barrierSlotStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	slot, err := s.SlotStore.FindByID(ctx, id)

	s.mu.Lock()
	wait := s.arrived < s.parties
	if wait {
		s.arrived++
		if s.arrived == s.parties {
			close(s.release)
		}
	}
	s.mu.Unlock()

	if wait {
		<-s.release
	}
	return slot, err
}

type countingMetrics struct {
	retries int32
}

func (m *countingMetrics) IncSlotTransition(string, string) {}

func (m *countingMetrics) IncOCCRetry(string) {
	atomic.AddInt32(&m.retries, 1)
}

func TestCoordinator_NoOverbookingWhenWritesCollide(t *testing.T) {
	const capacity, extra = 3, 3
	bookers := capacity + extra

	store := memory.NewStore()
	slot := domain.NewSlot(uuid.New(), testNow, "10:00", "10:30", capacity, testNow)
	_, err := store.Slots().UpsertMany(context.Background(), []*domain.Slot{slot})
	require.NoError(t, err)

	// каждый проигрыш означает чужую успешную запись, поэтому capacity+1 попыток хватает всем
	m := &countingMetrics{}
	c := NewCoordinator(newBarrierSlotStore(store.Slots(), bookers), passThroughTx{}, m,
		Options{MaxAttempts: capacity + 1, Backoff: time.Millisecond}, logger.Discard())
	c.timeProvider = fixedClock{}

	var (
		wg        sync.WaitGroup
		successes int32
		full      int32
	)
	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Apply(context.Background(), slot.ID, domain.BookSlot{Now: testNow})
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case errors.Is(err, domain.ErrSlotFullyBooked):
				atomic.AddInt32(&full, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(capacity), successes)
	assert.Equal(t, int32(extra), full)
	// все первые чтения видели версию 0, записать по ней смог только один
	assert.GreaterOrEqual(t, atomic.LoadInt32(&m.retries), int32(bookers-1))

	stored, err := store.Slots().FindByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, stored.BookingCount)
	assert.Equal(t, domain.SlotFullyBooked, stored.Status)
	assert.Equal(t, int64(capacity), stored.Version)
}

func TestCoordinator_BookReleaseRoundTrip(t *testing.T) {
	c, store, slot := newMemoryCoordinator(t, 2)
	ctx := context.Background()

	booked, err := c.Apply(ctx, slot.ID, domain.BookSlot{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, 1, booked.BookingCount)

	released, err := c.Apply(ctx, slot.ID, domain.ReleaseSlot{Now: testNow})
	require.NoError(t, err)

	stored, err := store.Slots().FindByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slot.BookingCount, stored.BookingCount)
	assert.Equal(t, slot.Status, stored.Status)
	assert.Equal(t, slot.Version+2, stored.Version)
	assert.Equal(t, stored.Version, released.Version)
}

func TestCoordinator_Block(t *testing.T) {
	c, _, slot := newMemoryCoordinator(t, 2)
	ctx := context.Background()

	_, err := c.Apply(ctx, slot.ID, domain.BookSlot{Now: testNow})
	require.NoError(t, err)

	blocked, err := c.Block(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotBlocked, blocked.Status)
	assert.Equal(t, 1, blocked.BookingCount)

	_, err = c.Apply(ctx, slot.ID, domain.BookSlot{Now: testNow})
	assert.ErrorIs(t, err, domain.ErrIllegalState)
}

func TestCoordinator_RetriesLostRace(t *testing.T) {
	store := &mockSlotStore{}
	slot := domain.NewSlot(uuid.New(), testNow, "10:00", "10:30", 3, testNow)
	slot.Version = 7

	store.On("FindByID", mock.Anything, slot.ID).Return(slot, nil).Twice()
	store.On("ConditionalUpdate", mock.Anything, mock.Anything, int64(7)).Return(false, nil).Once()
	store.On("ConditionalUpdate", mock.Anything, mock.Anything, int64(7)).Return(true, nil).Once()

	c := NewCoordinator(store, passThroughTx{}, newTestMetrics(), Options{MaxAttempts: 3}, logger.Discard())
	got, err := c.Apply(context.Background(), slot.ID, domain.BookSlot{Now: testNow})

	require.NoError(t, err)
	assert.Equal(t, 1, got.BookingCount)
	store.AssertExpectations(t)
}

func TestCoordinator_ExhaustedRetries(t *testing.T) {
	store := &mockSlotStore{}
	slot := domain.NewSlot(uuid.New(), testNow, "10:00", "10:30", 3, testNow)

	store.On("FindByID", mock.Anything, slot.ID).Return(slot, nil)
	store.On("ConditionalUpdate", mock.Anything, mock.Anything, int64(0)).Return(false, nil)

	c := NewCoordinator(store, passThroughTx{}, newTestMetrics(), Options{MaxAttempts: 3}, logger.Discard())
	_, err := c.Apply(context.Background(), slot.ID, domain.BookSlot{Now: testNow})

	assert.ErrorIs(t, err, domain.ErrConcurrencyExhausted)
	assert.Equal(t, domain.ClassConflict, domain.Classify(err))
	store.AssertNumberOfCalls(t, "FindByID", 3)
	store.AssertNumberOfCalls(t, "ConditionalUpdate", 3)
}

func TestCoordinator_DomainRejectionIsNotRetried(t *testing.T) {
	store := &mockSlotStore{}
	slot, err := domain.NewSlot(uuid.New(), testNow, "10:00", "10:30", 1, testNow).Apply(domain.BookSlot{Now: testNow})
	require.NoError(t, err)

	store.On("FindByID", mock.Anything, slot.ID).Return(slot, nil).Once()

	c := NewCoordinator(store, passThroughTx{}, newTestMetrics(), Options{MaxAttempts: 3}, logger.Discard())
	_, err = c.Apply(context.Background(), slot.ID, domain.BookSlot{Now: testNow})

	assert.ErrorIs(t, err, domain.ErrSlotFullyBooked)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCoordinator_StoreErrors(t *testing.T) {
	store := &mockSlotStore{}
	missing, broken := uuid.New(), uuid.New()

	store.On("FindByID", mock.Anything, missing).Return(nil, memory.ErrSlotNotFound)
	store.On("FindByID", mock.Anything, broken).Return(nil, errors.New("connection reset"))

	c := NewCoordinator(store, passThroughTx{}, newTestMetrics(), Options{MaxAttempts: 3}, logger.Discard())

	_, err := c.Apply(context.Background(), missing, domain.ReleaseSlot{Now: testNow})
	assert.ErrorIs(t, err, domain.ErrSlotNotFound)

	_, err = c.Apply(context.Background(), broken, domain.ReleaseSlot{Now: testNow})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, domain.ClassInfrastructure, domain.Classify(err))
	store.AssertNumberOfCalls(t, "FindByID", 2)
}
