package expire_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/memory"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/slots"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
	"github.com/m04kA/SMC-BranchAppointments/pkg/metrics"
	"github.com/m04kA/SMC-BranchAppointments/pkg/types"
)

var today = time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return today.Add(7 * time.Hour) }

func seedSlots(t *testing.T, store *memory.Store, branchID uuid.UUID, day time.Time, starts ...string) []*domain.Slot {
	t.Helper()
	out := make([]*domain.Slot, 0, len(starts))
	for _, start := range starts {
		s := domain.NewSlot(branchID, day, types.TimeString(start), "23:59", 2, day.Add(-48*time.Hour))
		out = append(out, s)
	}
	_, err := store.Slots().UpsertMany(context.Background(), out)
	require.NoError(t, err)
	return out
}

func TestExpireSlots_ExpiresElapsedDaysOnly(t *testing.T) {
	store := memory.NewStore()
	branchID := uuid.New()
	past := seedSlots(t, store, branchID, today.AddDate(0, 0, -2), "09:00", "10:00", "11:00")
	past = append(past, seedSlots(t, store, branchID, today.AddDate(0, 0, -1), "09:00", "10:00")...)
	current := seedSlots(t, store, branchID, today, "09:00")

	// заблокированный слот тоже закрывается
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	coordinator := slots.NewCoordinator(store.Slots(), store, m, slots.Options{MaxAttempts: 3}, logger.Discard())
	_, err := coordinator.Block(context.Background(), past[0].ID)
	require.NoError(t, err)

	uc := NewUseCase(store.Slots(), coordinator, 0, logger.Discard())
	uc.timeProvider = fixedClock{}

	resp, err := uc.Execute(context.Background(), &Request{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Expired)
	assert.Zero(t, resp.Failed)
	assert.Equal(t, today, resp.Before)

	for _, s := range past {
		got, err := store.Slots().FindByID(context.Background(), s.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SlotExpired, got.Status)
	}
	got, err := store.Slots().FindByID(context.Background(), current[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, got.Status)

	// expired слот не принимает записи
	_, err = coordinator.Apply(context.Background(), past[1].ID, domain.BookSlot{Now: fixedClock{}.Now()})
	assert.ErrorIs(t, err, domain.ErrIllegalState)

	resp, err = uc.Execute(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Zero(t, resp.Expired)
}

func TestExpireSlots_DefaultCutoffKeepsGraceDays(t *testing.T) {
	store := memory.NewStore()
	branchID := uuid.New()
	old := seedSlots(t, store, branchID, today.AddDate(0, 0, -3), "09:00")
	recent := seedSlots(t, store, branchID, today.AddDate(0, 0, -2), "09:00")
	recent = append(recent, seedSlots(t, store, branchID, today.AddDate(0, 0, -1), "09:00")...)

	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	coordinator := slots.NewCoordinator(store.Slots(), store, m, slots.Options{MaxAttempts: 3}, logger.Discard())

	// запись на вчерашний слот ещё можно отменить, место должно освободиться
	_, err := coordinator.Apply(context.Background(), recent[1].ID, domain.BookSlot{Now: today.AddDate(0, 0, -3)})
	require.NoError(t, err)

	uc := NewUseCase(store.Slots(), coordinator, 2, logger.Discard())
	uc.timeProvider = fixedClock{}

	resp, err := uc.Execute(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, -2), resp.Before)
	assert.Equal(t, 1, resp.Expired)

	got, err := store.Slots().FindByID(context.Background(), old[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotExpired, got.Status)

	for _, s := range recent {
		got, err := store.Slots().FindByID(context.Background(), s.ID)
		require.NoError(t, err)
		assert.NotEqual(t, domain.SlotExpired, got.Status)
	}

	_, err = coordinator.Apply(context.Background(), recent[1].ID, domain.ReleaseSlot{Now: fixedClock{}.Now()})
	assert.NoError(t, err)
}

func TestExpireSlots_RejectsFutureCutoff(t *testing.T) {
	uc := NewUseCase(nil, nil, 0, logger.Discard())
	uc.timeProvider = fixedClock{}

	_, err := uc.Execute(context.Background(), &Request{Before: today.AddDate(0, 0, 1)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) ListElapsed(ctx context.Context, before time.Time, after domain.SlotCursor, limit int) ([]*domain.Slot, error) {
	args := m.Called(ctx, before, after, limit)
	if s, ok := args.Get(0).([]*domain.Slot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCoordinator struct{ mock.Mock }

func (m *mockCoordinator) Apply(ctx context.Context, slotID uuid.UUID, action domain.SlotAction) (*domain.Slot, error) {
	args := m.Called(ctx, slotID, action)
	if s, ok := args.Get(0).(*domain.Slot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestExpireSlots_FailedSlotDoesNotLoop(t *testing.T) {
	stuck := domain.NewSlot(uuid.New(), today.AddDate(0, 0, -1), "09:00", "09:30", 1, today)

	store := &mockStore{}
	store.On("ListElapsed", mock.Anything, today, domain.SlotCursor{}, defaultLimit).Return([]*domain.Slot{stuck}, nil)
	coordinator := &mockCoordinator{}
	coordinator.On("Apply", mock.Anything, stuck.ID, mock.Anything).Return(nil, domain.ErrConcurrencyExhausted)

	uc := NewUseCase(store, coordinator, 0, logger.Discard())
	uc.timeProvider = fixedClock{}

	resp, err := uc.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, domain.ErrConcurrencyExhausted)
	assert.Equal(t, 1, resp.Failed)
	coordinator.AssertNumberOfCalls(t, "Apply", 1)
}

func TestExpireSlots_StoreError(t *testing.T) {
	store := &mockStore{}
	store.On("ListElapsed", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	uc := NewUseCase(store, &mockCoordinator{}, 0, logger.Discard())
	uc.timeProvider = fixedClock{}

	_, err := uc.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExpireSlots_FailedPageDoesNotStopLaterPages(t *testing.T) {
	stuck := domain.NewSlot(uuid.New(), today.AddDate(0, 0, -2), "09:00", "09:30", 1, today)
	next := domain.NewSlot(uuid.New(), today.AddDate(0, 0, -1), "09:00", "09:30", 1, today)

	store := &mockStore{}
	store.On("ListElapsed", mock.Anything, today, domain.SlotCursor{}, 1).Return([]*domain.Slot{stuck}, nil).Once()
	store.On("ListElapsed", mock.Anything, today, domain.CursorOf(stuck), 1).Return([]*domain.Slot{next}, nil).Once()
	store.On("ListElapsed", mock.Anything, today, domain.CursorOf(next), 1).Return([]*domain.Slot{}, nil).Once()

	coordinator := &mockCoordinator{}
	coordinator.On("Apply", mock.Anything, stuck.ID, mock.Anything).Return(nil, domain.ErrConcurrencyExhausted)
	coordinator.On("Apply", mock.Anything, next.ID, mock.Anything).Return(next, nil)

	uc := NewUseCase(store, coordinator, 0, logger.Discard())
	uc.timeProvider = fixedClock{}

	resp, err := uc.Execute(context.Background(), &Request{Limit: 1})
	assert.ErrorIs(t, err, domain.ErrConcurrencyExhausted)
	assert.Equal(t, 1, resp.Expired)
	assert.Equal(t, 1, resp.Failed)
	store.AssertExpectations(t)
	coordinator.AssertNumberOfCalls(t, "Apply", 2)
}
