package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
	"github.com/m04kA/SMC-BranchAppointments/internal/infra/storage/memory"
	"github.com/m04kA/SMC-BranchAppointments/internal/service/slots"
	"github.com/m04kA/SMC-BranchAppointments/pkg/logger"
	"github.com/m04kA/SMC-BranchAppointments/pkg/metrics"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return testNow }

type recordingSink struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
}

func (s *recordingSink) Publish(_ context.Context, events ...domain.LifecycleEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

type failingCreate struct {
	*memory.AppointmentRepository
}

func (failingCreate) Create(context.Context, *domain.Appointment) error {
	return errors.New("disk full")
}

type fixture struct {
	store *memory.Store
	sink  *recordingSink
	uc    *UseCase
	slot  *domain.Slot
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	store := memory.NewStore()
	slot := domain.NewSlot(uuid.New(), testNow, "10:00", "10:30", capacity, testNow)
	_, err := store.Slots().UpsertMany(context.Background(), []*domain.Slot{slot})
	require.NoError(t, err)

	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	coordinator := slots.NewCoordinator(store.Slots(), store, m, slots.Options{MaxAttempts: 3}, logger.Discard())
	sink := &recordingSink{}

	uc := NewUseCase(store.Slots(), store.Appointments(), coordinator, sink, store, m, logger.Discard())
	uc.timeProvider = fixedClock{}
	return &fixture{store: store, sink: sink, uc: uc, slot: slot}
}

func (f *fixture) request(customer string) *Request {
	return &Request{SlotID: f.slot.ID, BranchID: f.slot.BranchID, CustomerID: customer, ServiceType: "deposit"}
}

func (f *fixture) storedSlot(t *testing.T) *domain.Slot {
	t.Helper()
	s, err := f.store.Slots().FindByID(context.Background(), f.slot.ID)
	require.NoError(t, err)
	return s
}

func TestUseCase_Execute(t *testing.T) {
	f := newFixture(t, 2)

	resp, err := f.uc.Execute(context.Background(), f.request("customer-1"))
	require.NoError(t, err)

	assert.Equal(t, "booked", resp.Status)
	assert.Equal(t, f.slot.ID, resp.SlotID)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), resp.ScheduledAt)
	assert.Regexp(t, `^BR-[0-9A-F]{8}$`, resp.ReferenceCode)
	assert.Zero(t, resp.Version)

	stored, err := f.store.Appointments().FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, stored.Status)

	slot := f.storedSlot(t)
	assert.Equal(t, 1, slot.BookingCount)
	assert.Equal(t, int64(1), slot.Version)

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, domain.EventBooked, f.sink.events[0].Type)
	assert.Equal(t, domain.StatusBooked, f.sink.events[0].NextStatus)
}

func TestUseCase_OneActiveAppointmentPerDay(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.uc.Execute(context.Background(), f.request("customer-1"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), f.request("customer-1"))
	assert.ErrorIs(t, err, domain.ErrAlreadyBooked)
	assert.Equal(t, domain.ClassConflict, domain.Classify(err))

	assert.Equal(t, 1, f.storedSlot(t).BookingCount)
	assert.Len(t, f.sink.events, 1)
}

func TestUseCase_FullSlot(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.uc.Execute(context.Background(), f.request("customer-1"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), f.request("customer-2"))
	assert.ErrorIs(t, err, domain.ErrSlotFullyBooked)

	active, err := f.store.Appointments().FindActiveByCustomerAndDay(context.Background(), "customer-2", testNow)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestUseCase_SlotAndAppointmentAreAtomic(t *testing.T) {
	f := newFixture(t, 2)
	f.uc.appointmentRepo = failingCreate{f.store.Appointments()}

	_, err := f.uc.Execute(context.Background(), f.request("customer-1"))
	assert.ErrorIs(t, err, ErrInternal)

	slot := f.storedSlot(t)
	assert.Zero(t, slot.BookingCount)
	assert.Zero(t, slot.Version)
	assert.Empty(t, f.sink.events)
}

func TestUseCase_Rejections(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{SlotID: f.slot.ID, BranchID: f.slot.BranchID, ServiceType: "deposit"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	req := f.request("customer-1")
	req.BranchID = uuid.New()
	_, err = f.uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrSlotOfOtherBranch)

	req = f.request("customer-1")
	req.SlotID = uuid.New()
	_, err = f.uc.Execute(ctx, req)
	assert.ErrorIs(t, err, domain.ErrSlotNotFound)

	f.uc.timeProvider = lateClock{}
	_, err = f.uc.Execute(ctx, f.request("customer-1"))
	assert.ErrorIs(t, err, ErrSlotStarted)
	assert.Equal(t, domain.ClassInvalidState, domain.Classify(err))
}

type lateClock struct{}

func (lateClock) Now() time.Time { return testNow.Add(time.Hour) }
